package storage

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	idempotencyKeyTTL = 24 * time.Hour
	sequenceKeyPrefix = "seq:"
)

// nextSequenceScript increments the counter and sets its expiry on first use
// so a counter never outlives its window.
var nextSequenceScript = redis.NewScript(`
local key = KEYS[1]
local ttl = tonumber(ARGV[1])

local value = redis.call('INCR', key)
if value == 1 and ttl > 0 then
	redis.call('PEXPIRE', key, ttl)
end

return value
`)

type RedisAdapter struct {
	client *redis.Client
}

func NewRedisAdapter(client *redis.Client) *RedisAdapter {
	return &RedisAdapter{client: client}
}

func (r *RedisAdapter) SetIdempotency(ctx context.Context, key string) (bool, error) {
	ok, err := r.client.SetNX(ctx, key, 1, idempotencyKeyTTL).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}

func (r *RedisAdapter) ReleaseIdempotency(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

func (r *RedisAdapter) NextSequence(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	return nextSequenceScript.Run(ctx, r.client, []string{sequenceKeyPrefix + key}, ttl.Milliseconds()).Int64()
}
