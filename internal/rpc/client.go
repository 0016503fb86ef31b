package rpc

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/jobdeck/jobdeck-be/internal/domain"
	"github.com/jobdeck/jobdeck-be/shared/rabbitmq"
)

// Caller is the gateway-facing interface for issuing RPC calls. Handlers
// depend on this rather than the concrete client so they can be tested
// without a broker.
type Caller interface {
	Call(ctx context.Context, req *Request) (json.RawMessage, error)
}

// Client issues request/reply calls over the broker. One client owns one
// exclusive reply queue and a consumer goroutine feeding the pending-reply
// registry.
type Client struct {
	broker         *rabbitmq.Client
	routes         *RoutingTable
	logger         *slog.Logger
	replyQueue     string
	pending        *pendingReplies
	defaultTimeout time.Duration
}

// ClientConfig holds RPC client configuration
type ClientConfig struct {
	Routes         *RoutingTable
	DefaultTimeout time.Duration
}

// NewClient creates an RPC client, declares its reply queue, and starts the
// reply consumer. The consumer stops when ctx is canceled.
func NewClient(ctx context.Context, broker *rabbitmq.Client, cfg *ClientConfig, logger *slog.Logger) (*Client, error) {
	replyQueue, err := broker.DeclareReplyQueue()
	if err != nil {
		return nil, err
	}

	c := &Client{
		broker:         broker,
		routes:         cfg.Routes,
		logger:         logger,
		replyQueue:     replyQueue,
		pending:        newPendingReplies(),
		defaultTimeout: cfg.DefaultTimeout,
	}

	deliveries, err := broker.Consume(replyQueue, "rpc-client-"+uuid.New().String()[:8], true)
	if err != nil {
		return nil, err
	}

	go c.consumeReplies(ctx, deliveries)

	logger.Info("RPC client ready",
		slog.String("reply_queue", replyQueue),
		slog.Duration("default_timeout", cfg.DefaultTimeout),
	)

	return c, nil
}

// Call publishes the request to the owning service's queue and blocks until
// the correlated reply arrives or the deadline passes. On timeout the call
// returns UNAVAILABLE without resending; retrying a mutating operation is
// never done here because a slow service may still commit the first send.
func (c *Client) Call(ctx context.Context, req *Request) (json.RawMessage, error) {
	route, err := c.routes.Resolve(req.Op)
	if err != nil {
		c.logger.Error("Unroutable operation",
			slog.String("op", req.Op),
		)
		return nil, domain.BadRequest("unknown operation %s", req.Op)
	}

	timeout := route.Timeout
	if timeout <= 0 {
		timeout = c.defaultTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	body, err := json.Marshal(req)
	if err != nil {
		return nil, domain.BadRequest("unencodable request: %v", err)
	}

	correlationID := uuid.New().String()
	waiter := c.pending.register(correlationID)

	if err := c.broker.PublishRequest(ctx, route.Queue, body, correlationID, c.replyQueue); err != nil {
		c.pending.drop(correlationID)
		return nil, domain.Unavailable("service %s unreachable", Prefix(req.Op))
	}

	select {
	case reply := <-waiter:
		if err := reply.Err(); err != nil {
			return nil, err
		}
		return reply.Data, nil

	case <-ctx.Done():
		c.pending.drop(correlationID)
		c.logger.Warn("RPC call timed out",
			slog.String("op", req.Op),
			slog.String("correlation_id", correlationID),
			slog.Duration("timeout", timeout),
		)
		return nil, domain.Unavailable("service %s did not reply in time", Prefix(req.Op))
	}
}

// consumeReplies feeds the reply queue into the pending registry
func (c *Client) consumeReplies(ctx context.Context, deliveries <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			c.logger.Info("RPC reply consumer stopped - context canceled")
			return

		case delivery, ok := <-deliveries:
			if !ok {
				c.logger.Warn("RPC reply channel closed")
				return
			}

			var reply Reply
			if err := json.Unmarshal(delivery.Body, &reply); err != nil {
				c.logger.Error("Failed to parse RPC reply",
					slog.String("correlation_id", delivery.CorrelationId),
					slog.String("error", err.Error()),
				)
				continue
			}

			if !c.pending.resolve(delivery.CorrelationId, &reply) {
				// Caller already timed out; the durable row (if any) is the
				// record of what happened.
				c.logger.Debug("Dropping reply for expired call",
					slog.String("correlation_id", delivery.CorrelationId),
				)
			}
		}
	}
}
