package scheduler

import (
	"sync"
	"time"

	"github.com/ZaguanLabs/linguaswap"
)

// ErrorHandler receives the failure of one unit during one switch.
type ErrorHandler func(err *linguaswap.UnitError)

// Registration describes an update unit.
type Registration struct {
	// Priority orders units within a wave; higher starts first.
	Priority int
	// Dependencies are unit ids that must finish before this unit starts.
	Dependencies []string
	// Update is called once per switch.
	Update linguaswap.UpdateFunc
	// OnError replaces the default handler, which logs the failure.
	OnError ErrorHandler
}

// UnitStats are running statistics for one unit.
type UnitStats struct {
	Runs          uint64        `json:"runs"`
	Failures      uint64        `json:"failures"`
	Panics        uint64        `json:"panics"`
	LastDuration  time.Duration `json:"last_duration"`
	TotalDuration time.Duration `json:"total_duration"`
	LastRun       time.Time     `json:"last_run"`
	LastError     string        `json:"last_error,omitempty"`
}

// AverageDuration returns the mean run time.
func (s UnitStats) AverageDuration() time.Duration {
	if s.Runs == 0 {
		return 0
	}
	return s.TotalDuration / time.Duration(s.Runs)
}

type unit struct {
	id  string
	reg Registration

	mu    sync.Mutex
	stats UnitStats
}

func (u *unit) node() Node {
	return Node{ID: u.id, Priority: u.reg.Priority, Dependencies: u.reg.Dependencies}
}

func (u *unit) record(at time.Time, d time.Duration, err *linguaswap.UnitError) {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.stats.Runs++
	u.stats.LastRun = at
	u.stats.LastDuration = d
	u.stats.TotalDuration += d
	if err != nil {
		u.stats.Failures++
		if err.Panic {
			u.stats.Panics++
		}
		u.stats.LastError = err.Error()
	}
}

func (u *unit) snapshot() UnitStats {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.stats
}
