package cache

import "time"

func (c *Bounded[V]) startJanitor() {
	if c.cfg.cleanupInterval <= 0 {
		return
	}

	ticker := time.NewTicker(c.cfg.cleanupInterval)
	go func() {
		defer close(c.done)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.sweep()
			case <-c.stop:
				return
			}
		}
	}()
}

// sweep removes strictly expired entries. LRU pressure plays no part here.
func (c *Bounded[V]) sweep() {
	c.mu.Lock()
	removed := c.removeExpired(c.cfg.clock())
	remaining := c.lru.Len()
	c.mu.Unlock()

	if removed > 0 {
		c.cfg.logger.Debug("cache sweep", "expired", removed, "entries", remaining)
	}
}
