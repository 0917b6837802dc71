package cache

import (
	"cmp"
	"container/list"
	"slices"
	"time"
)

// overCeiling reports whether inserting an entry of size would breach a ceiling.
func (c *Bounded[V]) overCeiling(size int64) bool {
	if c.cfg.maxEntries > 0 && c.lru.Len() >= c.cfg.maxEntries {
		return true
	}
	return c.cfg.maxBytes > 0 && c.bytes+size > c.cfg.maxBytes
}

// evictOldest removes the least recently used entry. It returns false when
// the cache is empty.
func (c *Bounded[V]) evictOldest() bool {
	elem := c.lru.Back()
	if elem == nil {
		return false
	}
	c.removeElement(elem)
	c.stats.Evictions++
	return true
}

func (c *Bounded[V]) removeElement(elem *list.Element) {
	e := c.lru.Remove(elem).(*entry[V])
	delete(c.items, e.key)
	c.bytes -= e.size
}

// removeExpired deletes every strictly expired entry and returns how many.
func (c *Bounded[V]) removeExpired(now time.Time) int {
	removed := 0
	for elem := c.lru.Back(); elem != nil; {
		prev := elem.Prev()
		if elem.Value.(*entry[V]).expired(now) {
			c.removeElement(elem)
			removed++
		}
		elem = prev
	}
	c.stats.Expirations += uint64(removed)
	return removed
}

// evictLargest removes the largest entries until bytes is at most target.
func (c *Bounded[V]) evictLargest(target int64) int {
	if c.bytes <= target {
		return 0
	}

	elems := make([]*list.Element, 0, c.lru.Len())
	for elem := c.lru.Front(); elem != nil; elem = elem.Next() {
		elems = append(elems, elem)
	}
	slices.SortStableFunc(elems, func(a, b *list.Element) int {
		return cmp.Compare(b.Value.(*entry[V]).size, a.Value.(*entry[V]).size)
	})

	evicted := 0
	for _, elem := range elems {
		if c.bytes <= target {
			break
		}
		c.removeElement(elem)
		c.stats.Evictions++
		evicted++
	}
	return evicted
}
