package storage

import (
	"context"
	"sync"
	"time"
)

// MemoryCache is an in-process port.CacheRepository for single-node runs
// and tests.
type MemoryCache struct {
	mu        sync.Mutex
	keys      map[string]time.Time
	sequences map[string]*sequence
	now       func() time.Time
}

type sequence struct {
	value     int64
	expiresAt time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		keys:      make(map[string]time.Time),
		sequences: make(map[string]*sequence),
		now:       time.Now,
	}
}

func (c *MemoryCache) SetIdempotency(ctx context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if exp, ok := c.keys[key]; ok && now.Before(exp) {
		return false, nil
	}
	c.keys[key] = now.Add(idempotencyKeyTTL)
	return true, nil
}

func (c *MemoryCache) ReleaseIdempotency(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.keys, key)
	return nil
}

// NextSequence increments key, starting again from 1 once ttl has passed
// since the counter was created. Expired counters are dropped on each call.
func (c *MemoryCache) NextSequence(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for k, seq := range c.sequences {
		if !now.Before(seq.expiresAt) {
			delete(c.sequences, k)
		}
	}

	seq, ok := c.sequences[key]
	if !ok {
		seq = &sequence{expiresAt: now.Add(ttl)}
		c.sequences[key] = seq
	}
	seq.value++
	return seq.value, nil
}
