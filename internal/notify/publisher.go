// Package notify delivers committed notifications to live clients. Domain
// services publish the row they just committed to a fanout exchange; the
// gateway subscribes and forwards to any websocket connection registered for
// the recipient. Every step is best-effort: the row in the store is the
// durable record, live delivery is a bonus.
package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/jobdeck/jobdeck-be/internal/domain"
	"github.com/jobdeck/jobdeck-be/shared/rabbitmq"
)

// Publisher pushes committed notifications onto the fanout exchange
type Publisher struct {
	broker *rabbitmq.Client
	logger *slog.Logger
}

// NewPublisher creates a notification publisher
func NewPublisher(broker *rabbitmq.Client, logger *slog.Logger) *Publisher {
	return &Publisher{broker: broker, logger: logger}
}

// Publish sends a just-committed notification for live delivery. Called
// only after the owning transaction commits; failures are logged, never
// returned, because the caller's work is already durable.
func (p *Publisher) Publish(ctx context.Context, n *domain.Notification) {
	body, err := json.Marshal(n)
	if err != nil {
		p.logger.Error("Failed to marshal notification",
			slog.String("notification_id", n.NotificationID),
			slog.String("error", err.Error()),
		)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := p.broker.PublishNotification(ctx, body); err != nil {
		p.logger.Warn("Live notification delivery skipped",
			slog.String("notification_id", n.NotificationID),
			slog.String("user_id", n.UserID),
			slog.String("error", err.Error()),
		)
	}
}
