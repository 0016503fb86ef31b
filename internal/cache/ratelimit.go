package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jobdeck/jobdeck-be/shared/redis"
)

// Limiter implements fixed-window rate limiting on Redis counters. The
// first increment in a window sets the window's expiry; boundary bursts
// across adjacent windows are an accepted approximation. Store errors fail
// open: throttling is protection, not a dependency.
type Limiter struct {
	store  *redis.Client
	logger *slog.Logger
	limit  int64
	window time.Duration
}

// NewLimiter creates a fixed-window limiter
func NewLimiter(store *redis.Client, limit int64, window time.Duration, logger *slog.Logger) *Limiter {
	return &Limiter{
		store:  store,
		logger: logger,
		limit:  limit,
		window: window,
	}
}

// LimitKey builds the counter key for one actor performing one action
func LimitKey(actorID, action string) string {
	return fmt.Sprintf("%s:%s", actorID, action)
}

// Allow reports whether the actor may perform the action in the current
// window.
func (l *Limiter) Allow(ctx context.Context, actorID, action string) bool {
	key := LimitKey(actorID, action)

	count, err := l.store.Incr(ctx, key)
	if err != nil {
		l.logger.Warn("Rate limit counter unavailable, allowing request",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return true
	}

	if count == 1 {
		if err := l.store.Expire(ctx, key, l.window); err != nil {
			l.logger.Warn("Failed to set rate limit window expiry",
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
		}
	}

	if count > l.limit {
		l.logger.Info("Rate limit exceeded",
			slog.String("key", key),
			slog.Int64("count", count),
			slog.Int64("limit", l.limit),
		)
		return false
	}

	return true
}
