package query

import (
	"sync"
)

// DefaultCacheSize bounds the in-memory response cache.
const DefaultCacheSize = 256

// Cache holds completed responses keyed by query ID so follow-up queries
// can continue from them. Eviction is FIFO by insertion order.
type Cache struct {
	mu      sync.RWMutex
	max     int
	entries map[string]*Response
	order   []string
}

// NewCache creates a cache holding up to max responses. Non-positive max
// uses DefaultCacheSize.
func NewCache(max int) *Cache {
	if max <= 0 {
		max = DefaultCacheSize
	}
	return &Cache{
		max:     max,
		entries: make(map[string]*Response),
	}
}

// Put stores a response under its query ID. Re-putting an existing ID
// replaces the entry without changing its eviction position.
func (c *Cache) Put(resp *Response) {
	if resp == nil || resp.QueryID == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[resp.QueryID]; !exists {
		c.order = append(c.order, resp.QueryID)
		for len(c.order) > c.max {
			oldest := c.order[0]
			c.order = c.order[1:]
			delete(c.entries, oldest)
		}
	}
	c.entries[resp.QueryID] = resp
}

// Get returns the cached response for a query ID.
func (c *Cache) Get(queryID string) (*Response, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	resp, ok := c.entries[queryID]
	return resp, ok
}

// Len returns the number of cached responses.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
