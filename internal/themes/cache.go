package themes

import (
	"strconv"
	"sync"
	"time"
)

const globalCacheKey = "global"

type cacheEntry struct {
	value   Effective
	expires time.Time
}

// effectiveCache remembers resolved theme keys per project for ttl. A
// non-positive ttl disables it. Every invalidation bumps generation so a
// resolve that started before a write cannot store its result afterwards.
type effectiveCache struct {
	mu         sync.Mutex
	ttl        time.Duration
	now        func() time.Time
	entries    map[string]cacheEntry
	generation uint64
}

func newEffectiveCache(ttl time.Duration) *effectiveCache {
	return &effectiveCache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
}

func cacheKeyFor(projectID *int64) string {
	if projectID == nil {
		return globalCacheKey
	}
	return projectCacheKey(*projectID)
}

func projectCacheKey(projectID int64) string {
	return "project:" + strconv.FormatInt(projectID, 10)
}

func (c *effectiveCache) get(key string) (Effective, bool) {
	if c.ttl <= 0 {
		return Effective{}, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return Effective{}, false
	}
	if !c.now().Before(entry.expires) {
		delete(c.entries, key)
		return Effective{}, false
	}
	return entry.value, true
}

// currentGeneration is read before resolving; pass it to putIfGeneration.
func (c *effectiveCache) currentGeneration() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

// putIfGeneration stores value unless the cache was invalidated since gen
// was read.
func (c *effectiveCache) putIfGeneration(key string, value Effective, gen uint64) bool {
	if c.ttl <= 0 {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generation != gen {
		return false
	}
	c.entries[key] = cacheEntry{value: value, expires: c.now().Add(c.ttl)}
	return true
}

func (c *effectiveCache) delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	delete(c.entries, key)
}

func (c *effectiveCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	c.entries = make(map[string]cacheEntry)
}

// sweep drops expired entries and returns how many it removed.
func (c *effectiveCache) sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for key, entry := range c.entries {
		if !now.Before(entry.expires) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

func (c *effectiveCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
