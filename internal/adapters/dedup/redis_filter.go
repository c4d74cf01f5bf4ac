// Package dedup remembers content fingerprints so repeated ingests of the
// same message can be flagged.
package dedup

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	// DefaultTTL is how long a seen fingerprint is remembered
	DefaultTTL = 30 * 24 * time.Hour

	// keyPrefix namespaces dedup keys in Redis.
	keyPrefix = "style-responder:seen:"
)

// RedisFilter tracks seen fingerprints in Redis so scopes survive restarts
// and are shared between processes.
type RedisFilter struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisFilter creates a fingerprint filter backed by Redis
func NewRedisFilter(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisFilter {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisFilter{
		rdb:    rdb,
		ttl:    ttl,
		logger: logger,
	}
}

// IsNew returns true if the fingerprint has NOT been seen in the scope.
// If true, the fingerprint is marked as seen atomically (SETNX).
func (f *RedisFilter) IsNew(ctx context.Context, scope, fingerprint string) (bool, error) {
	key := redisKey(scope, fingerprint)

	set, err := f.rdb.SetNX(ctx, key, 1, f.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("dedup SETNX: %w", err)
	}

	if !set {
		f.logger.Debug("Fingerprint already seen", zap.String("scope", scope), zap.String("fingerprint", fingerprint))
	}
	return set, nil
}

// Close closes the Redis connection
func (f *RedisFilter) Close() error {
	return f.rdb.Close()
}

func redisKey(scope, fingerprint string) string {
	return fmt.Sprintf("%s%s:%s", keyPrefix, scope, fingerprint)
}
