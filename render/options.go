package render

import (
	"log/slog"
	"time"

	"github.com/ZaguanLabs/linguaswap"
	"github.com/ZaguanLabs/linguaswap/cache"
)

// Defaults for batched application.
const (
	DefaultBatchSize  = 50
	DefaultGroupSize  = 4
	DefaultGroupDelay = 8 * time.Millisecond
)

type config struct {
	batchSize  int
	groupSize  int
	groupDelay time.Duration
	frames     FrameSource
	announcer  *Announcer
	logger     *slog.Logger
	snapshots  *cache.Bounded[linguaswap.Snapshot]
}

// Option configures a Renderer.
type Option func(*config)

// WithBatchSize sets how many element updates are applied per frame.
func WithBatchSize(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.batchSize = n
		}
	}
}

// WithGroupSize sets how many batches form a group.
func WithGroupSize(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.groupSize = n
		}
	}
}

// WithGroupDelay sets the pause between groups of batches.
func WithGroupDelay(d time.Duration) Option {
	return func(c *config) {
		if d >= 0 {
			c.groupDelay = d
		}
	}
}

// WithFrames sets the frame source waited on between batches.
func WithFrames(f FrameSource) Option {
	return func(c *config) {
		if f != nil {
			c.frames = f
		}
	}
}

// WithAnnouncer announces every completed render.
func WithAnnouncer(a *Announcer) Option {
	return func(c *config) {
		c.announcer = a
	}
}

// WithLogger sets the renderer's logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithSnapshotCache memoizes snapshots by language and bound key set.
func WithSnapshotCache(c *cache.Bounded[linguaswap.Snapshot]) Option {
	return func(cfg *config) {
		cfg.snapshots = c
	}
}

func defaultConfig() config {
	return config{
		batchSize:  DefaultBatchSize,
		groupSize:  DefaultGroupSize,
		groupDelay: DefaultGroupDelay,
		frames:     IntervalFrames(DefaultFrameInterval),
		logger:     slog.Default(),
	}
}
