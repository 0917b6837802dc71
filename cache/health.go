package cache

import (
	"math"
)

// Stats holds cache counters.
type Stats struct {
	Hits        uint64 `json:"hits"`
	Misses      uint64 `json:"misses"`
	Sets        uint64 `json:"sets"`
	Evictions   uint64 `json:"evictions"`
	Expirations uint64 `json:"expirations"`
	Rejected    uint64 `json:"rejected"`
	Entries     int    `json:"entries"`
	Bytes       int64  `json:"bytes"`
}

// HitRate returns hits / (hits + misses), or 1 before the first lookup.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 1
	}
	return float64(s.Hits) / float64(total)
}

// Statistics returns a copy of the counters with the current footprint.
func (c *Bounded[V]) Statistics() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.stats
	s.Entries = c.lru.Len()
	s.Bytes = c.bytes
	return s
}

// Footprint is the resident size of the cache at one point in time.
type Footprint struct {
	Entries int   `json:"entries"`
	Bytes   int64 `json:"bytes"`
}

// OptimizeReport describes one Optimize run.
type OptimizeReport struct {
	Before      Footprint `json:"before"`
	After       Footprint `json:"after"`
	Expired     int       `json:"expired"`
	LRUEvicted  int       `json:"lru_evicted"`
	SizeEvicted int       `json:"size_evicted"`
}

// optimizeTarget is the fraction of each ceiling Optimize shrinks down to.
const optimizeTarget = 0.8

// Optimize removes expired entries, then evicts least recently used entries
// down to 80% of the count ceiling, then evicts the largest entries down to
// 80% of the byte ceiling.
func (c *Bounded[V]) Optimize() OptimizeReport {
	c.mu.Lock()
	defer c.mu.Unlock()

	report := OptimizeReport{Before: Footprint{Entries: c.lru.Len(), Bytes: c.bytes}}

	report.Expired = c.removeExpired(c.cfg.clock())

	if c.cfg.maxEntries > 0 {
		target := int(float64(c.cfg.maxEntries) * optimizeTarget)
		for c.lru.Len() > target && c.evictOldest() {
			report.LRUEvicted++
		}
	}

	if c.cfg.maxBytes > 0 {
		report.SizeEvicted = c.evictLargest(int64(float64(c.cfg.maxBytes) * optimizeTarget))
	}

	report.After = Footprint{Entries: c.lru.Len(), Bytes: c.bytes}
	c.cfg.logger.Debug("cache optimized",
		"expired", report.Expired,
		"lru_evicted", report.LRUEvicted,
		"size_evicted", report.SizeEvicted,
		"entries", report.After.Entries,
		"bytes", report.After.Bytes)
	return report
}

// HealthStatus buckets a health score.
type HealthStatus string

const (
	HealthHealthy   HealthStatus = "healthy"
	HealthDegraded  HealthStatus = "degraded"
	HealthUnhealthy HealthStatus = "unhealthy"
)

// HealthReport is a read-only assessment of the cache.
type HealthReport struct {
	Score           int          `json:"score"`
	Status          HealthStatus `json:"status"`
	HitRate         float64      `json:"hit_rate"`
	MemoryPressure  float64      `json:"memory_pressure"`
	ExpiredRatio    float64      `json:"expired_ratio"`
	Entries         int          `json:"entries"`
	Bytes           int64        `json:"bytes"`
	Recommendations []string     `json:"recommendations,omitempty"`
}

// Health scores the cache from 0 to 100:
// 50·hitRate + 30·(1−memoryPressure) + 20·(1−expiredRatio).
// It never mutates the cache.
func (c *Bounded[V]) Health() HealthReport {
	c.mu.Lock()
	now := c.cfg.clock()
	count := c.lru.Len()
	expired := 0
	for elem := c.lru.Front(); elem != nil; elem = elem.Next() {
		if elem.Value.(*entry[V]).expired(now) {
			expired++
		}
	}
	stats := c.stats
	bytes := c.bytes
	maxEntries, maxBytes := c.cfg.maxEntries, c.cfg.maxBytes
	c.mu.Unlock()

	r := HealthReport{
		HitRate: stats.HitRate(),
		Entries: count,
		Bytes:   bytes,
	}
	if maxBytes > 0 {
		r.MemoryPressure = math.Min(float64(bytes)/float64(maxBytes), 1)
	}
	if count > 0 {
		r.ExpiredRatio = float64(expired) / float64(count)
	}

	score := 50*r.HitRate + 30*(1-r.MemoryPressure) + 20*(1-r.ExpiredRatio)
	r.Score = int(math.Round(math.Max(0, math.Min(100, score))))

	switch {
	case r.Score >= 80:
		r.Status = HealthHealthy
	case r.Score >= 50:
		r.Status = HealthDegraded
	default:
		r.Status = HealthUnhealthy
	}

	if r.HitRate < 0.5 {
		r.Recommendations = append(r.Recommendations,
			"hit rate is below 50%: raise the default TTL or the entry ceiling")
	}
	if r.MemoryPressure > 0.8 {
		r.Recommendations = append(r.Recommendations,
			"memory pressure is above 80%: raise the byte ceiling or call Optimize")
	}
	if r.ExpiredRatio > 0.2 {
		r.Recommendations = append(r.Recommendations,
			"more than 20% of entries are expired: shorten the cleanup interval")
	}
	if maxEntries > 0 && float64(count) >= 0.9*float64(maxEntries) {
		r.Recommendations = append(r.Recommendations,
			"entry count is near its ceiling: raise max entries")
	}

	return r
}
