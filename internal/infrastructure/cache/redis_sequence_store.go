package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/storefront/backend/internal/domain/order"
)

const (
	defaultSequenceKeyPrefix = "storefront:order_seq:"
	// Counters outlive their UTC day so late requests near midnight still
	// see the same key.
	sequenceKeyTTL = 48 * time.Hour
)

// RedisSequenceStore issues order sequences with INCR, which is atomic
// across every server instance sharing the Redis database.
type RedisSequenceStore struct {
	client    redis.Cmdable
	keyPrefix string
}

// NewRedisSequenceStore creates a store on an existing client.
func NewRedisSequenceStore(client redis.Cmdable, keyPrefix string) *RedisSequenceStore {
	if keyPrefix == "" {
		keyPrefix = defaultSequenceKeyPrefix
	}
	return &RedisSequenceStore{client: client, keyPrefix: keyPrefix}
}

// NextValue increments the counter for key and refreshes its expiry.
func (s *RedisSequenceStore) NextValue(ctx context.Context, key string) (int64, error) {
	redisKey := s.keyPrefix + key

	var incr *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, redisKey)
		pipe.Expire(ctx, redisKey, sequenceKeyTTL)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("increment sequence %s: %w", key, err)
	}
	return incr.Val(), nil
}

var _ order.SequenceStore = (*RedisSequenceStore)(nil)
