// Package querycache provides an in-process cache for server-derived query results.
package querycache

import (
	"container/list"
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// LRU is a bounded in-memory cache with a per-cache TTL.
// Concurrency: methods are safe for concurrent use.
type LRU struct {
	mu    sync.Mutex
	cap   int
	ttl   time.Duration
	ll    *list.List               // front = most-recently used
	items map[string]*list.Element // key -> element
	now   func() time.Time         // injectable clock for tests

	hits   atomic.Uint64
	misses atomic.Uint64
	evicts atomic.Uint64
	clears atomic.Uint64
}

type entry struct {
	key    string
	value  []byte
	expiry time.Time // zero means no expiry
}

// Config groups constructor options.
type Config struct {
	Capacity int
	TTL      time.Duration // <= 0 disables expiry
	Now      func() time.Time
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{Capacity: 512, TTL: 5 * time.Minute, Now: time.Now}
}

// NewLRU creates a new LRU with the given config.
func NewLRU(cfg Config) *LRU {
	capacity := cfg.Capacity
	if capacity <= 0 {
		capacity = DefaultConfig().Capacity
	}
	nowFn := cfg.Now
	if nowFn == nil {
		nowFn = time.Now
	}
	return &LRU{
		cap:   capacity,
		ttl:   cfg.TTL,
		ll:    list.New(),
		items: make(map[string]*list.Element, capacity),
		now:   nowFn,
	}
}

// Get returns a copy of the cached value if present and not expired.
func (c *LRU) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, found := c.items[key]
	if !found {
		c.misses.Add(1)
		return nil, false, nil
	}
	ent, _ := el.Value.(*entry)
	if ent == nil || c.isExpired(ent) {
		c.removeElement(el)
		c.misses.Add(1)
		return nil, false, nil
	}
	c.ll.MoveToFront(el)
	c.hits.Add(1)
	return append([]byte(nil), ent.value...), true, nil
}

// Set inserts or updates a value.
func (c *LRU) Set(_ context.Context, key string, value []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var exp time.Time
	if c.ttl > 0 {
		exp = c.now().Add(c.ttl)
	}
	stored := append([]byte(nil), value...)

	if el, found := c.items[key]; found {
		if ent, ok := el.Value.(*entry); ok {
			ent.value = stored
			ent.expiry = exp
			c.ll.MoveToFront(el)
			return nil
		}
		c.removeElement(el)
	}

	el := c.ll.PushFront(&entry{key: key, value: stored, expiry: exp})
	c.items[key] = el
	c.evictIfNeeded()
	return nil
}

// Delete removes a key from the cache.
func (c *LRU) Delete(_ context.Context, key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		c.removeElement(el)
		return true
	}
	return false
}

// Clear drops every entry.
func (c *LRU) Clear(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.ll.Init()
	c.items = make(map[string]*list.Element, c.cap)
	c.clears.Add(1)
	return nil
}

// Len returns the current number of items in the cache.
func (c *LRU) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}

// Stats are simple counters for observability.
type Stats struct {
	Hits, Misses, Evictions, Clears uint64
	Size, Capacity                  int
}

// Stats returns a snapshot of counters and sizes.
func (c *LRU) Stats() Stats {
	return Stats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evicts.Load(),
		Clears:    c.clears.Load(),
		Size:      c.Len(),
		Capacity:  c.cap,
	}
}

// Helpers (caller must hold c.mu).
func (c *LRU) isExpired(e *entry) bool {
	if e.expiry.IsZero() {
		return false
	}
	return c.now().After(e.expiry)
}

func (c *LRU) removeElement(el *list.Element) {
	c.ll.Remove(el)
	if ent, ok := el.Value.(*entry); ok {
		delete(c.items, ent.key)
	}
}

func (c *LRU) evictIfNeeded() {
	for c.ll.Len() > c.cap {
		el := c.ll.Back()
		if el == nil {
			return
		}
		c.removeElement(el)
		c.evicts.Add(1)
	}
}
