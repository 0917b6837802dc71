package cache

import (
	"log/slog"
	"time"

	"github.com/ZaguanLabs/linguaswap"
)

// Defaults applied by NewBounded.
const (
	DefaultMaxEntries      = 1000
	DefaultMaxBytes        = 5 << 20
	DefaultTTL             = 5 * time.Minute
	DefaultCleanupInterval = time.Minute
)

type boundedConfig struct {
	maxEntries      int
	maxBytes        int64
	defaultTTL      time.Duration
	cleanupInterval time.Duration
	clock           func() time.Time
	logger          *slog.Logger
}

func defaultBoundedConfig() boundedConfig {
	return boundedConfig{
		maxEntries:      DefaultMaxEntries,
		maxBytes:        DefaultMaxBytes,
		defaultTTL:      DefaultTTL,
		cleanupInterval: DefaultCleanupInterval,
		clock:           time.Now,
		logger:          linguaswap.DiscardLogger(),
	}
}

// BoundedOption configures a Bounded cache.
type BoundedOption func(*boundedConfig)

// WithMaxEntries sets the entry count ceiling. Zero or less disables it.
func WithMaxEntries(n int) BoundedOption {
	return func(c *boundedConfig) {
		c.maxEntries = max(n, 0)
	}
}

// WithMaxBytes sets the ceiling on the summed size estimates. Zero or less disables it.
func WithMaxBytes(n int64) BoundedOption {
	return func(c *boundedConfig) {
		c.maxBytes = max(n, 0)
	}
}

// WithDefaultTTL sets the TTL used when Set is called without one. Zero or
// less means entries never expire.
func WithDefaultTTL(d time.Duration) BoundedOption {
	return func(c *boundedConfig) {
		c.defaultTTL = max(d, 0)
	}
}

// WithCleanupInterval sets how often the janitor sweeps expired entries.
// Zero or less disables the janitor; expired entries are then only removed on read.
func WithCleanupInterval(d time.Duration) BoundedOption {
	return func(c *boundedConfig) {
		c.cleanupInterval = max(d, 0)
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) BoundedOption {
	return func(c *boundedConfig) {
		if now != nil {
			c.clock = now
		}
	}
}

// WithLogger sets the logger used for eviction and sweep diagnostics.
func WithLogger(l *slog.Logger) BoundedOption {
	return func(c *boundedConfig) {
		if l != nil {
			c.logger = l
		}
	}
}
