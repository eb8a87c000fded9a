package catalog

import (
	"sync"
	"time"

	"github.com/Eizen94/pokedex-api/internal/model"
)

type cacheEntry struct {
	detail *model.PokemonDetail
	setAt  time.Time
}

// detailCache memoizes composed detail objects by Pokémon id.  Entries carry
// a fixed wall-clock TTL; when the entry count exceeds the bound, the
// least-recently-set entries are evicted in set order.  This is deliberately
// not an LRU: reads do not refresh an entry's position.
type detailCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	max     int
	entries map[int]*cacheEntry
	order   []int // ids in set order, oldest first
}

func newDetailCache(ttl time.Duration, max int) *detailCache {
	if max < 1 {
		max = 1
	}
	return &detailCache{
		ttl:     ttl,
		max:     max,
		entries: make(map[int]*cacheEntry),
	}
}

// get returns the cached detail for id.  fresh reports whether the entry is
// within its TTL; stale entries are still returned so the caller can fall
// back to them when the upstream is unreachable.
func (c *detailCache) get(id int, now time.Time) (detail *model.PokemonDetail, fresh, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[id]
	if !ok {
		return nil, false, false
	}
	return e.detail, now.Sub(e.setAt) < c.ttl, true
}

// set stores detail under id, stamping it with now.  Re-setting an existing
// id moves it to the newest position.  When the bound is exceeded the oldest
// entries are dropped.
func (c *detailCache) set(id int, detail *model.PokemonDetail, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[id]; exists {
		c.removeFromOrder(id)
	}
	c.entries[id] = &cacheEntry{detail: detail, setAt: now}
	c.order = append(c.order, id)
	for len(c.entries) > c.max {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
}

// flush drops every entry.
func (c *detailCache) flush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[int]*cacheEntry)
	c.order = nil
}

// len reports the current entry count.
func (c *detailCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *detailCache) removeFromOrder(id int) {
	for i, v := range c.order {
		if v == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}
