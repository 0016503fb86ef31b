package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/jobdeck/jobdeck-be/internal/domain"
	"github.com/jobdeck/jobdeck-be/shared/rabbitmq"
)

// HandlerFunc executes one operation. The returned value is marshaled into
// the reply frame; errors are translated through the domain error taxonomy.
// Delivery is at-least-once, so every handler must tolerate receiving the
// same logical call twice.
type HandlerFunc func(ctx context.Context, req *Request) (any, error)

// ServerConfig holds dispatch loop configuration
type ServerConfig struct {
	Queue         string
	Concurrency   int
	PrefetchCount int
}

// Server consumes one durable queue and dispatches requests by operation
// name to registered handlers across a pool of worker goroutines.
type Server struct {
	broker      *rabbitmq.Client
	logger      *slog.Logger
	queue       string
	serverID    string
	concurrency int
	prefetch    int
	handlers    map[string]HandlerFunc
	jobsChan    chan amqp.Delivery
	wg          sync.WaitGroup
	started     bool
}

// NewServer creates a dispatch server for one service queue
func NewServer(broker *rabbitmq.Client, cfg *ServerConfig, logger *slog.Logger) *Server {
	return &Server{
		broker:      broker,
		logger:      logger,
		queue:       cfg.Queue,
		serverID:    fmt.Sprintf("%s-%s", cfg.Queue, uuid.New().String()[:8]),
		concurrency: cfg.Concurrency,
		prefetch:    cfg.PrefetchCount,
		handlers:    make(map[string]HandlerFunc),
		jobsChan:    make(chan amqp.Delivery),
	}
}

// Handle registers a handler for an operation name. The handler map is
// built once before Start and must not be modified afterwards.
func (s *Server) Handle(op string, fn HandlerFunc) {
	if s.started {
		panic("rpc: Handle called after Start")
	}
	if _, dup := s.handlers[op]; dup {
		panic(fmt.Sprintf("rpc: duplicate handler for %q", op))
	}
	s.handlers[op] = fn
}

// Start declares the queue, begins consuming, and runs the dispatcher plus
// worker pool until ctx is canceled.
func (s *Server) Start(ctx context.Context) error {
	s.started = true

	if err := s.broker.DeclareServiceQueue(s.queue); err != nil {
		return err
	}

	if err := s.broker.Qos(s.prefetch); err != nil {
		return err
	}

	deliveries, err := s.broker.Consume(s.queue, s.serverID, false)
	if err != nil {
		return err
	}

	s.logger.Info("RPC server started",
		slog.String("queue", s.queue),
		slog.String("server_id", s.serverID),
		slog.Int("concurrency", s.concurrency),
		slog.Int("prefetch_count", s.prefetch),
		slog.Int("operations", len(s.handlers)),
	)

	for i := 0; i < s.concurrency; i++ {
		s.wg.Add(1)
		go s.workerLoop(ctx, i)
	}

	s.dispatch(ctx, deliveries)

	close(s.jobsChan)
	s.wg.Wait()

	s.logger.Info("RPC server stopped",
		slog.String("queue", s.queue),
	)
	return nil
}

// dispatch feeds broker deliveries into the worker pool
func (s *Server) dispatch(ctx context.Context, deliveries <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Dispatcher stopped - context canceled")
			return

		case delivery, ok := <-deliveries:
			if !ok {
				s.logger.Warn("RabbitMQ delivery channel closed")
				return
			}

			select {
			case s.jobsChan <- delivery:
			case <-ctx.Done():
				// Requeue so another consumer picks it up after shutdown
				if nackErr := delivery.Nack(false, true); nackErr != nil {
					s.logger.Error("Failed to NACK message on shutdown",
						slog.String("error", nackErr.Error()),
					)
				}
				return
			}
		}
	}
}

// workerLoop processes deliveries from the pool channel
func (s *Server) workerLoop(ctx context.Context, workerNum int) {
	defer s.wg.Done()

	workerName := fmt.Sprintf("%s-%d", s.serverID, workerNum)
	s.logger.Debug("Worker goroutine started",
		slog.String("worker_name", workerName),
	)

	for delivery := range s.jobsChan {
		s.handleDelivery(ctx, workerName, delivery)
	}

	s.logger.Debug("Worker goroutine stopped",
		slog.String("worker_name", workerName),
	)
}

// handleDelivery parses one request, runs its handler, replies, and acks.
// A malformed frame gets a BAD_REQUEST reply and is acked: requeueing it
// could never succeed. The delivery is acked after the reply publish so a
// crashed worker leads to redelivery, relying on handler idempotency.
func (s *Server) handleDelivery(ctx context.Context, workerName string, delivery amqp.Delivery) {
	var req Request
	var reply *Reply

	if err := json.Unmarshal(delivery.Body, &req); err != nil {
		s.logger.Error("Failed to parse request frame",
			slog.String("worker_name", workerName),
			slog.String("error", err.Error()),
		)
		reply = NewErrorReply(domain.BadRequest("malformed request frame"))
	} else {
		reply = s.execute(ctx, workerName, &req)
	}

	if delivery.ReplyTo != "" {
		body, err := json.Marshal(reply)
		if err != nil {
			s.logger.Error("Failed to marshal reply",
				slog.String("worker_name", workerName),
				slog.String("op", req.Op),
				slog.String("error", err.Error()),
			)
		} else if err := s.broker.PublishReply(ctx, delivery.ReplyTo, body, delivery.CorrelationId); err != nil {
			// The caller will time out and report UNAVAILABLE; the committed
			// state is still the durable record.
			s.logger.Error("Failed to publish reply",
				slog.String("worker_name", workerName),
				slog.String("op", req.Op),
				slog.String("correlation_id", delivery.CorrelationId),
				slog.String("error", err.Error()),
			)
		}
	}

	if ackErr := delivery.Ack(false); ackErr != nil {
		s.logger.Error("Failed to ACK message",
			slog.String("worker_name", workerName),
			slog.String("op", req.Op),
			slog.String("error", ackErr.Error()),
		)
	}
}

// execute looks up and runs the handler for one request
func (s *Server) execute(ctx context.Context, workerName string, req *Request) *Reply {
	handler, ok := s.handlers[req.Op]
	if !ok {
		s.logger.Warn("No handler for operation",
			slog.String("worker_name", workerName),
			slog.String("op", req.Op),
		)
		return NewErrorReply(domain.BadRequest("unknown operation %s", req.Op))
	}

	s.logger.Debug("Executing operation",
		slog.String("worker_name", workerName),
		slog.String("op", req.Op),
		slog.String("actor_id", req.ActorID),
	)

	data, err := handler(ctx, req)
	if err != nil {
		kind := domain.KindOf(err)
		if kind == domain.KindInternal {
			s.logger.Error("Handler failed",
				slog.String("worker_name", workerName),
				slog.String("op", req.Op),
				slog.String("error", err.Error()),
			)
		} else {
			s.logger.Info("Operation rejected",
				slog.String("worker_name", workerName),
				slog.String("op", req.Op),
				slog.String("kind", string(kind)),
			)
		}
		return NewErrorReply(err)
	}

	reply, err := NewDataReply(data)
	if err != nil {
		s.logger.Error("Failed to marshal handler result",
			slog.String("worker_name", workerName),
			slog.String("op", req.Op),
			slog.String("error", err.Error()),
		)
		return NewErrorReply(fmt.Errorf("marshal result: %w", err))
	}

	return reply
}
