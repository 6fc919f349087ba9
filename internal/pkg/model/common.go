package model

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
)

// ICache is the injectable keyed store shared by the orchestrator and the
// API layer. Backends: redis (builder), gorm (database/cachedb), in-memory
// (tests). Get must return ErrCacheMiss for absent or expired entries.
type ICache interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string, dst interface{}) error
}

// ErrCacheMiss is returned by ICache.Get when no live entry exists.
var ErrCacheMiss = errors.New("cache: miss")

func IsNilErr(err error) bool {
	return errors.Is(err, redis.Nil) || errors.Is(err, ErrCacheMiss)
}

// SellabilityTTL is how long a persisted sellability partition stays valid.
const SellabilityTTL = 24 * time.Hour
