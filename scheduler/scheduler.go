// Package scheduler runs registered update units whenever the interface
// language changes. Units are grouped into dependency waves; a failing unit
// never stops its siblings or later switches, and switch requests are
// applied one at a time in arrival order.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/ZaguanLabs/linguaswap"
)

// request is one queued switch.
type request struct {
	lang string
	seq  uint64
	at   time.Time
	done chan Result
}

// Scheduler coordinates language switches across update units.
type Scheduler struct {
	preparer     linguaswap.Preparer
	budget       time.Duration
	logger       *slog.Logger
	poolSize     int
	strictCycles bool

	pool *ants.Pool

	mu      sync.Mutex
	state   State
	current string
	queue   fifo[*request]
	units   map[string]*unit
	seq     uint64
	closed  bool
	stats   Stats
	total   time.Duration
	running sync.WaitGroup
}

// New creates a Scheduler.
func New(opts ...Option) (*Scheduler, error) {
	s := &Scheduler{
		budget:   DefaultBudget,
		logger:   slog.Default(),
		poolSize: DefaultPoolSize,
		units:    make(map[string]*unit),
	}
	for _, opt := range opts {
		opt(s)
	}

	pool, err := ants.NewPool(s.poolSize, ants.WithLogger(antsLogger{s.logger}))
	if err != nil {
		return nil, fmt.Errorf("creating unit pool: %w", err)
	}
	s.pool = pool
	return s, nil
}

// Register adds an update unit. Registering during a switch affects the next one.
func (s *Scheduler) Register(id string, reg Registration) error {
	if id == "" {
		return errors.New("unit id must not be empty")
	}
	if reg.Update == nil {
		return fmt.Errorf("unit %q: update function must not be nil", id)
	}

	reg.Dependencies = slices.Clone(reg.Dependencies)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return linguaswap.ErrClosed
	}
	if _, exists := s.units[id]; exists {
		return fmt.Errorf("%w: %s", linguaswap.ErrDuplicateUnit, id)
	}
	s.units[id] = &unit{id: id, reg: reg}
	return nil
}

// Unregister removes a unit and reports whether it was registered.
func (s *Scheduler) Unregister(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.units[id]; !ok {
		return false
	}
	delete(s.units, id)
	return true
}

// Request queues a switch to lang and returns a channel that receives its
// result exactly once. Requests run in arrival order; none are dropped.
func (s *Scheduler) Request(lang string) <-chan Result {
	done := make(chan Result, 1)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		done <- Result{Err: linguaswap.ErrClosed}
		return done
	}

	s.seq++
	s.queue.push(&request{lang: lang, seq: s.seq, at: time.Now(), done: done})

	if s.state == Idle {
		s.state = mustTransition(s.state, Batching)
		s.running.Add(1)
		go s.drain()
	}
	return done
}

// Switch requests a switch to lang and waits for its report. Cancelling ctx
// stops the wait; the switch itself still runs.
func (s *Scheduler) Switch(ctx context.Context, lang string) (*SwitchReport, error) {
	select {
	case res := <-s.Request(lang):
		return res.Report, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// drain applies queued requests until the queue is empty.
func (s *Scheduler) drain() {
	defer s.running.Done()

	first := true
	for {
		s.mu.Lock()
		req, ok := s.queue.pop()
		if !ok {
			s.state = mustTransition(s.state, Idle)
			s.mu.Unlock()
			return
		}
		if !first && s.state == Batching {
			s.state = mustTransition(s.state, Draining)
		}
		first = false
		s.mu.Unlock()

		report, err := s.apply(req)
		req.done <- Result{Report: report, Err: err}
	}
}

// apply runs one switch to completion. It is detached from every caller's
// context: a dequeued request always finishes.
func (s *Scheduler) apply(req *request) (*SwitchReport, error) {
	ctx := context.Background()
	started := time.Now()

	s.mu.Lock()
	from := s.current
	units := make(map[string]*unit, len(s.units))
	nodes := make([]Node, 0, len(s.units))
	for id, u := range s.units {
		units[id] = u
		nodes = append(nodes, u.node())
	}
	s.mu.Unlock()

	ev := linguaswap.SwitchEvent{From: from, To: req.lang, Sequence: req.seq, RequestedAt: req.at}

	if s.preparer != nil {
		if err := s.preparer.Prepare(ctx, req.lang); err != nil {
			s.finish(nil, time.Since(started), err)
			s.logger.Error("language switch aborted", "from", from, "to", req.lang, "error", err)
			return nil, fmt.Errorf("prepare %s: %w", req.lang, err)
		}
	}

	graph := NewGraph(nodes...)
	plan := graph.Plan()
	for id, missing := range plan.Unknown {
		s.logger.Warn("ignoring unknown dependencies", "unit", id, "dependencies", missing)
	}

	waves := plan.Waves
	if len(plan.Cycle) > 0 {
		cycleErr := &linguaswap.CycleError{Units: plan.Cycle, Path: graph.FindCycle(plan.Cycle)}
		if s.strictCycles {
			s.finish(nil, time.Since(started), cycleErr)
			s.logger.Error("language switch aborted", "from", from, "to", req.lang, "error", cycleErr)
			return nil, cycleErr
		}
		s.logger.Warn("dependency cycle, running units in a final wave",
			"units", plan.Cycle, "cycle", cycleErr.Path)
		waves = append(waves, plan.Cycle)
	}

	report := &SwitchReport{
		Sequence: req.seq,
		From:     from,
		To:       req.lang,
		Started:  started,
		Waves:    waves,
		Cycle:    plan.Cycle,
	}

	for i, wave := range waves {
		report.Outcomes = append(report.Outcomes, s.runWave(ctx, i, wave, units, ev)...)
	}

	report.Duration = time.Since(started)
	report.OverBudget = report.Duration > s.budget
	s.finish(report, report.Duration, nil)

	attrs := []any{
		"from", from,
		"to", req.lang,
		"sequence", req.seq,
		"waves", len(waves),
		"units", len(report.Outcomes),
		"failed", len(report.Failed()),
		"duration", report.Duration,
	}
	if report.OverBudget {
		s.logger.Warn("language switch over budget", append(attrs, "budget", s.budget)...)
	} else {
		s.logger.Info("language switched", attrs...)
	}
	return report, nil
}

// runWave starts every unit of a wave and waits for all of them.
func (s *Scheduler) runWave(ctx context.Context, index int, wave []string, units map[string]*unit, ev linguaswap.SwitchEvent) []UnitOutcome {
	outcomes := make([]UnitOutcome, len(wave))

	var wg sync.WaitGroup
	for i, id := range wave {
		wg.Add(1)
		task := func() {
			defer wg.Done()
			outcomes[i] = s.runUnit(ctx, index, units[id], ev)
		}
		if err := s.pool.Submit(task); err != nil {
			go task()
		}
	}
	wg.Wait()
	return outcomes
}

// runUnit calls one unit, converting errors and panics into a UnitError
// that is routed to the unit's handler.
func (s *Scheduler) runUnit(ctx context.Context, wave int, u *unit, ev linguaswap.SwitchEvent) UnitOutcome {
	start := time.Now()

	var panicked bool
	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				panicked = true
				err = fmt.Errorf("panic: %v", r)
			}
		}()
		return u.reg.Update(ctx, ev)
	}()
	elapsed := time.Since(start)

	outcome := UnitOutcome{UnitID: u.id, Wave: wave, Duration: elapsed}
	if err == nil {
		u.record(start, elapsed, nil)
		return outcome
	}

	unitErr := &linguaswap.UnitError{
		UnitID: u.id,
		From:   ev.From,
		To:     ev.To,
		At:     time.Now(),
		Panic:  panicked,
		Cause:  err,
	}
	u.record(start, elapsed, unitErr)
	s.handle(u, unitErr)
	outcome.Err = unitErr
	return outcome
}

func (s *Scheduler) handle(u *unit, err *linguaswap.UnitError) {
	handler := u.reg.OnError
	if handler == nil {
		handler = s.logUnitError
	}

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("unit error handler panicked", "unit", u.id, "panic", r)
		}
	}()
	handler(err)
}

func (s *Scheduler) logUnitError(err *linguaswap.UnitError) {
	s.logger.Error("update unit failed",
		"unit", err.UnitID,
		"from", err.From,
		"to", err.To,
		"at", err.At,
		"panic", err.Panic,
		"error", err.Cause)
}

// finish records the outcome of a switch.
func (s *Scheduler) finish(report *SwitchReport, elapsed time.Duration, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.stats.FailedSwitches++
		return
	}

	s.current = report.To
	s.stats.Switches++
	s.stats.LastDuration = elapsed
	s.total += elapsed
	s.stats.UnitFailures += uint64(len(report.Failed()))
	if report.OverBudget {
		s.stats.OverBudget++
	}
}

// Language returns the language of the last completed switch.
func (s *Scheduler) Language() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Status returns the scheduler's current status.
func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		State:    s.state.String(),
		Language: s.current,
		Queued:   s.queue.len(),
		Units:    len(s.units),
	}
}

// Statistics returns aggregate and per-unit statistics.
func (s *Scheduler) Statistics() Stats {
	s.mu.Lock()
	st := s.stats
	if st.Switches > 0 {
		st.AverageDuration = s.total / time.Duration(st.Switches)
	}
	units := make([]*unit, 0, len(s.units))
	for _, u := range s.units {
		units = append(units, u)
	}
	s.mu.Unlock()

	st.Units = make(map[string]UnitStats, len(units))
	for _, u := range units {
		st.Units[u.id] = u.snapshot()
	}
	return st
}

// Close waits for queued switches to finish and releases the unit pool.
// Later requests fail with linguaswap.ErrClosed.
func (s *Scheduler) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.running.Wait()
	s.pool.Release()
	return nil
}

// antsLogger routes pool diagnostics to slog.
type antsLogger struct {
	l *slog.Logger
}

func (a antsLogger) Printf(format string, args ...any) {
	a.l.Warn(fmt.Sprintf(format, args...), "component", "unit-pool")
}
