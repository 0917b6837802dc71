package cache

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// memoEntry holds a memoized value with its expiry.
type memoEntry struct {
	value     string
	expiresAt time.Time // zero means never
}

func (e memoEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// InMemoryCache is a thread-safe in-memory memo with optional TTL.
type InMemoryCache struct {
	cache map[string]memoEntry
	mu    sync.RWMutex
	ttl   time.Duration
}

// NewInMemoryCache creates an in-memory cache. A ttl of 0 or less keeps
// entries until Clear, which is what the translation store expects.
func NewInMemoryCache(ttl time.Duration) *InMemoryCache {
	if ttl < 0 {
		ttl = 0
	}
	return &InMemoryCache{
		cache: make(map[string]memoEntry),
		ttl:   ttl,
	}
}

// Get retrieves a value from the cache.
func (c *InMemoryCache) Get(key string) (string, bool) {
	c.mu.RLock()
	entry, ok := c.cache[key]
	c.mu.RUnlock()

	if !ok {
		return "", false
	}

	if entry.expired(time.Now()) {
		c.mu.Lock()
		if current, still := c.cache[key]; still && current.expired(time.Now()) {
			delete(c.cache, key)
		}
		c.mu.Unlock()
		return "", false
	}

	return entry.value, true
}

// Set stores a value in the cache.
func (c *InMemoryCache) Set(key string, value string) error {
	entry := memoEntry{value: value}
	if c.ttl > 0 {
		entry.expiresAt = time.Now().Add(c.ttl)
	}

	c.mu.Lock()
	c.cache[key] = entry
	c.mu.Unlock()
	return nil
}

// Len returns the number of entries in the cache (including expired ones).
func (c *InMemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}

// Clear removes all entries from the cache.
func (c *InMemoryCache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = make(map[string]memoEntry)
	return nil
}

// ExportEntries returns all unexpired entries.
func (c *InMemoryCache) ExportEntries() ([]ExportEntry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	now := time.Now()
	entries := make([]ExportEntry, 0, len(c.cache))
	for key, entry := range c.cache {
		if entry.expired(now) {
			continue
		}
		raw, err := json.Marshal(entry.value)
		if err != nil {
			return nil, err
		}
		out := ExportEntry{Key: key, Value: raw}
		if !entry.expiresAt.IsZero() {
			exp := entry.expiresAt
			out.ExpiresAt = &exp
		}
		entries = append(entries, out)
	}
	return entries, nil
}

// ImportEntry stores one exported entry. The value must be a JSON string.
func (c *InMemoryCache) ImportEntry(e ExportEntry) error {
	var value string
	if err := json.Unmarshal(e.Value, &value); err != nil {
		return fmt.Errorf("entry %q: %w", e.Key, err)
	}

	entry := memoEntry{value: value}
	if e.ExpiresAt != nil {
		entry.expiresAt = *e.ExpiresAt
	} else if c.ttl > 0 {
		entry.expiresAt = time.Now().Add(c.ttl)
	}

	c.mu.Lock()
	c.cache[e.Key] = entry
	c.mu.Unlock()
	return nil
}

var (
	_ TranslationCache = (*InMemoryCache)(nil)
	_ Exportable       = (*InMemoryCache)(nil)
	_ Importable       = (*InMemoryCache)(nil)
)
