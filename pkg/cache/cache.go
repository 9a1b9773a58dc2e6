// Package cache defines the key/value store renderers memoize their
// decisions in, plus in-memory and layered implementations.
package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

const (
	DefaultExpiration      = gocache.NoExpiration
	DefaultCleanupInterval = 30 * time.Minute
)

// Cache stores small values (names, lookup results) under string keys. It
// must be safe for concurrent use; last write wins.
type Cache interface {
	Get(ctx context.Context, key string) (any, bool)
	Set(ctx context.Context, key string, value any)
}

// Flusher is implemented by caches that can drop every entry, for instance
// when templates change on disk.
type Flusher interface {
	Flush(ctx context.Context) error
}

// InMemory is a process local Cache backed by go-cache.
type InMemory struct {
	useCase    string
	expiration time.Duration
	cache      *gocache.Cache
	logger     *zap.Logger
}

// Ensure InMemory implements Cache and Flusher.
var (
	_ Cache   = (*InMemory)(nil)
	_ Flusher = (*InMemory)(nil)
)

// NewInMemory initializes an in-memory cache. Entries never expire when
// expiration is DefaultExpiration.
func NewInMemory(useCase string, expiration, cleanupInterval time.Duration, logger *zap.Logger) *InMemory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InMemory{
		useCase:    useCase,
		expiration: expiration,
		cache:      gocache.New(expiration, cleanupInterval),
		logger:     logger.Named("cache").With(zap.String("use_case", useCase)),
	}
}

// Get retrieves an item from the cache by its key.
func (c *InMemory) Get(_ context.Context, key string) (any, bool) {
	value, found := c.cache.Get(key)
	if !found {
		c.logger.Debug("cache miss", zap.String("cache_key", key))
		return nil, false
	}
	c.logger.Debug("cache hit", zap.String("cache_key", key))
	return value, true
}

// Set stores value under key with the default expiration.
func (c *InMemory) Set(_ context.Context, key string, value any) {
	c.cache.Set(key, value, gocache.DefaultExpiration)
}

// Flush removes every entry.
func (c *InMemory) Flush(_ context.Context) error {
	c.cache.Flush()
	c.logger.Debug("cache flushed")
	return nil
}

// Len returns the number of stored entries, expired ones included until the
// next cleanup.
func (c *InMemory) Len() int {
	return c.cache.ItemCount()
}
