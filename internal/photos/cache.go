package photos

import (
	"sync"
	"time"
)

type entry struct {
	data      []byte
	fetchedAt time.Time
}

// Cache holds downloaded profile photos by URL for a limited time.
type Cache struct {
	entries map[string]*entry
	mu      sync.RWMutex
	ttl     time.Duration
}

func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		entries: make(map[string]*entry),
		ttl:     ttl,
	}
}

// Get returns a copy of the cached bytes for url.
func (c *Cache) Get(url string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, exists := c.entries[url]
	if !exists || time.Since(e.fetchedAt) > c.ttl {
		return nil, false
	}

	return append([]byte(nil), e.data...), true
}

func (c *Cache) Set(url string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[url] = &entry{
		data:      append([]byte(nil), data...),
		fetchedAt: time.Now(),
	}
}

func (c *Cache) Invalidate(url string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, url)
}

func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*entry)
}

// Cleanup drops expired entries.
func (c *Cache) Cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for url, e := range c.entries {
		if now.Sub(e.fetchedAt) > c.ttl {
			delete(c.entries, url)
		}
	}
}

func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}
