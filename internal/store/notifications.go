package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/jobdeck/jobdeck-be/internal/domain"
)

// InsertNotificationTx inserts a notification row inside an open
// transaction. Every mutating lifecycle transition calls this in the same
// transaction as the entity change, so the row and the transition commit
// or fail together.
func (s *Store) InsertNotificationTx(ctx context.Context, tx *sqlx.Tx, n *domain.Notification) error {
	query := `
		INSERT INTO notifications (
			notification_id, user_id, type, message, read, created_at
		) VALUES (
			$1, $2, $3, $4, false, $5
		)
	`

	_, err := tx.ExecContext(
		ctx,
		query,
		n.NotificationID,
		n.UserID,
		n.Type,
		n.Message,
		n.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}

	return nil
}

// ListNotifications lists a user's notifications, newest first
func (s *Store) ListNotifications(ctx context.Context, userID string, unreadOnly bool, limit int) ([]domain.Notification, error) {
	query := `
		SELECT notification_id, user_id, type, message, read, created_at
		FROM notifications
		WHERE user_id = $1
	`
	args := []interface{}{userID}

	if unreadOnly {
		query += " AND read = false"
	}

	query += " ORDER BY created_at DESC LIMIT $2"
	args = append(args, limit)

	var notifications []domain.Notification
	err := s.db.SelectContext(ctx, &notifications, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	return notifications, nil
}

// MarkNotificationRead flags one notification as read. The user id guard
// keeps callers from flipping someone else's rows.
func (s *Store) MarkNotificationRead(ctx context.Context, notificationID, userID string) error {
	query := `
		UPDATE notifications
		SET read = true
		WHERE notification_id = $1 AND user_id = $2
	`

	result, err := s.db.ExecContext(ctx, query, notificationID, userID)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return domain.NotFound("notification %s not found", notificationID)
	}

	return nil
}

// MarkAllNotificationsRead flags all of a user's notifications as read
func (s *Store) MarkAllNotificationsRead(ctx context.Context, userID string) (int64, error) {
	query := `
		UPDATE notifications
		SET read = true
		WHERE user_id = $1 AND read = false
	`

	result, err := s.db.ExecContext(ctx, query, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rows, nil
}

// PurgeOldNotifications removes notifications older than the cutoff. Called
// by the daily maintenance sweep with a 90-day retention.
func (s *Store) PurgeOldNotifications(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM notifications WHERE created_at < $1`

	result, err := s.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge notifications: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	s.logger.Info("Notification purge completed",
		slog.Int64("rows_deleted", rows),
		slog.Time("cutoff", cutoff),
	)

	return rows, nil
}
