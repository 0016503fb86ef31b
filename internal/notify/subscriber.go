package notify

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"

	"github.com/jobdeck/jobdeck-be/internal/domain"
	"github.com/jobdeck/jobdeck-be/shared/rabbitmq"
)

// Subscriber consumes the fanout exchange in the gateway and forwards each
// notification to the hub.
type Subscriber struct {
	broker *rabbitmq.Client
	hub    *Hub
	logger *slog.Logger
}

// NewSubscriber creates a notification subscriber feeding the hub
func NewSubscriber(broker *rabbitmq.Client, hub *Hub, logger *slog.Logger) *Subscriber {
	return &Subscriber{broker: broker, hub: hub, logger: logger}
}

// Start consumes notifications until ctx is canceled
func (s *Subscriber) Start(ctx context.Context) error {
	queue, err := s.broker.DeclareNotifyQueue()
	if err != nil {
		return err
	}

	deliveries, err := s.broker.Consume(queue, "notify-"+uuid.New().String()[:8], true)
	if err != nil {
		return err
	}

	s.logger.Info("Notification subscriber started",
		slog.String("queue", queue),
	)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Notification subscriber stopped")
			return nil

		case delivery, ok := <-deliveries:
			if !ok {
				s.logger.Warn("Notification delivery channel closed")
				return nil
			}

			var n domain.Notification
			if err := json.Unmarshal(delivery.Body, &n); err != nil {
				s.logger.Error("Failed to parse notification",
					slog.String("error", err.Error()),
				)
				continue
			}

			delivered := s.hub.Send(n.UserID, &n)
			s.logger.Debug("Notification forwarded",
				slog.String("notification_id", n.NotificationID),
				slog.String("user_id", n.UserID),
				slog.Int("connections", delivered),
			)
		}
	}
}
