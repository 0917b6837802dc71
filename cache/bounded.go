package cache

import (
	"container/list"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/ZaguanLabs/linguaswap"
)

// Bounded is a generic in-memory cache with three ceilings: entry count,
// summed byte estimate and per-entry TTL. On a ceiling breach the least
// recently used entries are evicted first. A background janitor removes
// strictly expired entries; reads remove them lazily.
//
// The map gives O(1) lookup and the list keeps recency order, most recent
// at the front.
type Bounded[V any] struct {
	mu    sync.Mutex
	items map[string]*list.Element
	lru   *list.List
	bytes int64
	cfg   boundedConfig
	stats Stats

	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// NewBounded creates a Bounded cache and starts its janitor.
func NewBounded[V any](opts ...BoundedOption) *Bounded[V] {
	cfg := defaultBoundedConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	c := &Bounded[V]{
		items: make(map[string]*list.Element),
		lru:   list.New(),
		cfg:   cfg,
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}
	c.startJanitor()
	return c
}

// Get returns the value for key and refreshes its recency. The boolean is
// false on a miss, so a cached zero value is distinguishable from absence.
func (c *Bounded[V]) Get(key string) (V, bool) {
	var zero V

	c.mu.Lock()
	defer c.mu.Unlock()

	elem, found := c.items[key]
	if !found {
		c.stats.Misses++
		return zero, false
	}

	e := elem.Value.(*entry[V])
	now := c.cfg.clock()
	if e.expired(now) {
		c.removeElement(elem)
		c.stats.Expirations++
		c.stats.Misses++
		return zero, false
	}

	e.accessCount++
	e.lastAccess = now
	c.lru.MoveToFront(elem)
	c.stats.Hits++
	return e.value, true
}

// Set stores value under key. The optional ttl overrides the default TTL; a
// ttl of zero or less stores the entry without expiry.
//
// A value that cannot be JSON-encoded, or whose estimate alone exceeds the
// byte ceiling, is rejected with a *linguaswap.CacheError and nothing is
// stored. Otherwise least recently used entries are evicted until both the
// count and byte ceilings hold with the new entry in place.
func (c *Bounded[V]) Set(key string, value V, ttl ...time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		c.reject()
		return &linguaswap.CacheError{Key: key, Message: "value is not serializable", Cause: err}
	}

	size := int64(len(key) + len(data))
	if c.cfg.maxBytes > 0 && size > c.cfg.maxBytes {
		c.reject()
		return &linguaswap.CacheError{
			Key:     key,
			Message: fmt.Sprintf("entry of %d bytes exceeds the %d byte ceiling", size, c.cfg.maxBytes),
		}
	}

	d := c.cfg.defaultTTL
	if len(ttl) > 0 {
		d = ttl[0]
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.cfg.clock()
	if elem, found := c.items[key]; found {
		c.removeElement(elem)
	}

	for c.overCeiling(size) {
		if !c.evictOldest() {
			break
		}
	}

	e := &entry[V]{
		key:        key,
		value:      value,
		size:       size,
		insertedAt: now,
		lastAccess: now,
	}
	if d > 0 {
		e.expiresAt = now.Add(d)
	}

	c.items[key] = c.lru.PushFront(e)
	c.bytes += size
	c.stats.Sets++
	return nil
}

func (c *Bounded[V]) reject() {
	c.mu.Lock()
	c.stats.Rejected++
	c.mu.Unlock()
}

// Delete removes key and reports whether it was present.
func (c *Bounded[V]) Delete(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, found := c.items[key]
	if !found {
		return false
	}
	c.removeElement(elem)
	return true
}

// Clear removes every entry. Statistics are kept.
func (c *Bounded[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*list.Element)
	c.lru.Init()
	c.bytes = 0
}

// Len returns the number of resident entries, expired or not.
func (c *Bounded[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// Bytes returns the summed size estimate of resident entries.
func (c *Bounded[V]) Bytes() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bytes
}

// Keys returns resident keys from most to least recently used.
func (c *Bounded[V]) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]string, 0, c.lru.Len())
	for elem := c.lru.Front(); elem != nil; elem = elem.Next() {
		keys = append(keys, elem.Value.(*entry[V]).key)
	}
	return keys
}

// Close stops the janitor. It is safe to call more than once; the cache
// stays usable afterwards.
func (c *Bounded[V]) Close() error {
	c.closeOnce.Do(func() {
		close(c.stop)
		if c.cfg.cleanupInterval > 0 {
			<-c.done
		}
	})
	return nil
}

// ExportEntries returns every unexpired entry with its JSON-encoded value.
func (c *Bounded[V]) ExportEntries() ([]ExportEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.cfg.clock()
	out := make([]ExportEntry, 0, c.lru.Len())
	for elem := c.lru.Front(); elem != nil; elem = elem.Next() {
		e := elem.Value.(*entry[V])
		if e.expired(now) {
			continue
		}
		raw, err := json.Marshal(e.value)
		if err != nil {
			return nil, &linguaswap.CacheError{Key: e.key, Message: "value is not serializable", Cause: err}
		}
		exported := ExportEntry{Key: e.key, Value: raw}
		if !e.expiresAt.IsZero() {
			exp := e.expiresAt
			exported.ExpiresAt = &exp
		}
		out = append(out, exported)
	}
	return out, nil
}

// ImportEntry decodes and stores one exported entry, keeping its remaining TTL.
func (c *Bounded[V]) ImportEntry(ex ExportEntry) error {
	var value V
	if err := json.Unmarshal(ex.Value, &value); err != nil {
		return &linguaswap.CacheError{Key: ex.Key, Message: "cannot decode exported value", Cause: err}
	}

	if ex.ExpiresAt == nil {
		return c.Set(ex.Key, value, 0)
	}
	remaining := ex.ExpiresAt.Sub(c.cfg.clock())
	if remaining <= 0 {
		return &linguaswap.CacheError{Key: ex.Key, Message: "exported entry already expired"}
	}
	return c.Set(ex.Key, value, remaining)
}

var (
	_ Exportable = (*Bounded[string])(nil)
	_ Importable = (*Bounded[string])(nil)
)
