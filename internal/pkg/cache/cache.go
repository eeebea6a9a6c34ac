// Package cache is a small in-process cache backed by ristretto.
package cache

import (
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

// Cache holds values of type V keyed by string. Costs are supplied by the
// caller, usually as an approximate size in bytes.
type Cache[V any] struct {
	c *ristretto.Cache[string, V]
}

// New creates a cache bounded by maxCostBytes.
func New[V any](maxCostBytes int64) (*Cache[V], error) {
	if maxCostBytes <= 0 {
		maxCostBytes = 1 << 20
	}
	c, err := ristretto.NewCache(&ristretto.Config[string, V]{
		NumCounters: max(maxCostBytes/100*10, 1000),
		MaxCost:     maxCostBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &Cache[V]{c: c}, nil
}

func (c *Cache[V]) Get(key string) (V, bool) {
	return c.c.Get(key)
}

// Set stores value until ttl elapses. It blocks until the value is visible to
// Get so callers can rely on read-after-write.
func (c *Cache[V]) Set(key string, value V, cost int64, ttl time.Duration) bool {
	ok := c.c.SetWithTTL(key, value, cost, ttl)
	c.c.Wait()
	return ok
}

func (c *Cache[V]) Delete(key string) {
	c.c.Del(key)
}

func (c *Cache[V]) Clear() {
	c.c.Clear()
}

func (c *Cache[V]) Close() {
	c.c.Close()
}
