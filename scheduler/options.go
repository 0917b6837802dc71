package scheduler

import (
	"log/slog"
	"time"

	"github.com/ZaguanLabs/linguaswap"
)

// Defaults applied by New.
const (
	DefaultBudget   = 300 * time.Millisecond
	DefaultPoolSize = 32
)

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithPreparer sets the component that readies a language before units run.
// A preparation failure aborts that switch.
func WithPreparer(p linguaswap.Preparer) Option {
	return func(s *Scheduler) {
		s.preparer = p
	}
}

// WithBudget sets the soft time budget of one switch. Exceeding it is
// reported and logged, never enforced.
func WithBudget(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.budget = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithPoolSize bounds how many units run at once within a wave.
func WithPoolSize(n int) Option {
	return func(s *Scheduler) {
		if n > 0 {
			s.poolSize = n
		}
	}
}

// WithInitialLanguage sets the language reported as From by the first switch.
func WithInitialLanguage(lang string) Option {
	return func(s *Scheduler) {
		s.current = lang
	}
}

// WithStrictCycles makes a dependency cycle fail the switch with a
// *linguaswap.CycleError instead of running the cyclic units last.
func WithStrictCycles(strict bool) Option {
	return func(s *Scheduler) {
		s.strictCycles = strict
	}
}
