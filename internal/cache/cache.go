// Package cache implements the read-through cache with background refresh
// and the fixed-window rate limiter, both over one Redis store. The store
// is an optimization, never a dependency: any store error falls back to the
// underlying fetch and the request proceeds.
package cache

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jobdeck/jobdeck-be/shared/redis"
)

// FetchFunc loads the value for a key from the source of truth
type FetchFunc func(ctx context.Context) ([]byte, error)

// Config holds cache behavior configuration
type Config struct {
	DefaultTTL     time.Duration
	StaleThreshold time.Duration
	RefreshTimeout time.Duration
}

// Cache serves reads through Redis with stale-while-revalidate semantics
type Cache struct {
	store  *redis.Client
	logger *slog.Logger
	config *Config

	mu        sync.Mutex
	refreshes map[string]struct{}
}

// New creates a cache over the given store
func New(store *redis.Client, config *Config, logger *slog.Logger) *Cache {
	return &Cache{
		store:     store,
		logger:    logger,
		config:    config,
		refreshes: make(map[string]struct{}),
	}
}

// GetWithRefresh looks up key and returns the cached value when present.
// When the entry's remaining TTL has fallen below staleThreshold, one
// background refresh is scheduled and the still-valid cached value is
// returned without blocking. A miss fetches inline and stores the result.
func (c *Cache) GetWithRefresh(ctx context.Context, key string, ttl, staleThreshold time.Duration, fetch FetchFunc) ([]byte, error) {
	if ttl <= 0 {
		ttl = c.config.DefaultTTL
	}
	if staleThreshold <= 0 {
		staleThreshold = c.config.StaleThreshold
	}

	val, remaining, err := c.store.GetWithTTL(ctx, key)
	if err != nil {
		if !redis.IsNil(err) {
			// Store trouble must never fail the request
			c.logger.Warn("Cache read failed, fetching directly",
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
			return fetch(ctx)
		}
		return c.fetchAndStore(ctx, key, ttl, fetch)
	}

	if remaining < staleThreshold {
		c.scheduleRefresh(key, ttl, fetch)
	}

	return val, nil
}

// fetchAndStore loads from the source and stores the result with ttl
func (c *Cache) fetchAndStore(ctx context.Context, key string, ttl time.Duration, fetch FetchFunc) ([]byte, error) {
	val, err := fetch(ctx)
	if err != nil {
		return nil, err
	}

	if err := c.store.Set(ctx, key, val, ttl); err != nil {
		c.logger.Warn("Cache write failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}

	return val, nil
}

// scheduleRefresh runs fetch detached from the calling request and
// overwrites the entry when it resolves. At most one refresh per key is in
// flight at a time.
func (c *Cache) scheduleRefresh(key string, ttl time.Duration, fetch FetchFunc) {
	c.mu.Lock()
	if _, inFlight := c.refreshes[key]; inFlight {
		c.mu.Unlock()
		return
	}
	c.refreshes[key] = struct{}{}
	c.mu.Unlock()

	go func() {
		defer func() {
			c.mu.Lock()
			delete(c.refreshes, key)
			c.mu.Unlock()
		}()

		timeout := c.config.RefreshTimeout
		if timeout <= 0 {
			timeout = 5 * time.Second
		}
		// Detached from the request that triggered it
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		val, err := fetch(ctx)
		if err != nil {
			// The stale entry stays; the next stale read tries again
			c.logger.Warn("Background refresh failed",
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
			return
		}

		if err := c.store.Set(ctx, key, val, ttl); err != nil {
			c.logger.Warn("Background refresh write failed",
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
			return
		}

		c.logger.Debug("Cache entry refreshed",
			slog.String("key", key),
		)
	}()
}
