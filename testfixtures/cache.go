package testfixtures

import (
	"context"
	"sync"
	"time"

	"calendo/services/scheduling"
)

// MemoryCache is a WorkerCache backed by a map. TTLs are ignored.
type MemoryCache struct {
	mu     sync.Mutex
	values map[string][]byte
	// Err, when set, is returned by every call.
	Err error
}

var _ scheduling.WorkerCache = (*MemoryCache)(nil)

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{values: map[string][]byte{}}
}

func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return nil, c.Err
	}
	v, ok := c.values[key]
	if !ok {
		return nil, scheduling.ErrCacheMiss
	}
	return v, nil
}

func (c *MemoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return c.Err
	}
	c.values[key] = value
	return nil
}

func (c *MemoryCache) Del(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return c.Err
	}
	delete(c.values, key)
	return nil
}

func (c *MemoryCache) Has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.values[key]
	return ok
}
