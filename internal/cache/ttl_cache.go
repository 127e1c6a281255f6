package cache

import (
	"sync"
	"time"
)

type cacheEntry[V any] struct {
	value     V
	expiresAt time.Time
}

// TTLCache stores values in-memory with per-entry TTLs. The engine uses
// it to avoid recomputing a full batch report on every request.
type TTLCache[K comparable, V any] struct {
	mu       sync.Mutex
	items    map[K]cacheEntry[V]
	inflight map[K]*sync.WaitGroup
}

// NewTTLCache constructs a new TTLCache instance.
func NewTTLCache[K comparable, V any]() *TTLCache[K, V] {
	return &TTLCache[K, V]{
		items:    make(map[K]cacheEntry[V]),
		inflight: make(map[K]*sync.WaitGroup),
	}
}

// Get returns a cached value if it exists and has not expired.
func (c *TTLCache[K, V]) Get(key K) (V, bool) {
	var zero V
	if c == nil {
		return zero, false
	}
	c.mu.Lock()
	entry, ok := c.items[key]
	if ok && !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		delete(c.items, key)
		ok = false
	}
	c.mu.Unlock()
	if !ok {
		return zero, false
	}
	return entry.value, true
}

// Set stores a value with the provided TTL. A non-positive TTL stores
// the value without expiry.
func (c *TTLCache[K, V]) Set(key K, value V, ttl time.Duration) {
	if c == nil {
		return
	}
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}
	c.mu.Lock()
	c.items[key] = cacheEntry[V]{value: value, expiresAt: expiresAt}
	c.mu.Unlock()
}

// Delete removes a cached entry.
func (c *TTLCache[K, V]) Delete(key K) {
	if c == nil {
		return
	}
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
}

// GetOrCompute returns the cached value or computes and stores it.
// Concurrent callers for the same key wait for the first computation
// instead of racing a duplicate batch run.
func (c *TTLCache[K, V]) GetOrCompute(key K, ttl time.Duration, compute func() (V, error)) (V, error) {
	var zero V
	if c == nil {
		return compute()
	}

	for {
		if value, ok := c.Get(key); ok {
			return value, nil
		}

		c.mu.Lock()
		if wg, waiting := c.inflight[key]; waiting {
			c.mu.Unlock()
			wg.Wait()
			continue
		}
		wg := &sync.WaitGroup{}
		wg.Add(1)
		c.inflight[key] = wg
		c.mu.Unlock()

		value, err := compute()

		c.mu.Lock()
		delete(c.inflight, key)
		c.mu.Unlock()
		wg.Done()

		if err != nil {
			return zero, err
		}
		c.Set(key, value, ttl)
		return value, nil
	}
}
