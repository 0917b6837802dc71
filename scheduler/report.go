package scheduler

import "time"

// UnitOutcome is the result of one unit in one switch.
type UnitOutcome struct {
	UnitID   string        `json:"unit"`
	Wave     int           `json:"wave"`
	Duration time.Duration `json:"duration"`
	Err      error         `json:"-"`
}

// SwitchReport describes one applied language switch.
type SwitchReport struct {
	Sequence   uint64        `json:"sequence"`
	From       string        `json:"from"`
	To         string        `json:"to"`
	Started    time.Time     `json:"started"`
	Duration   time.Duration `json:"duration"`
	Waves      [][]string    `json:"waves"`
	Cycle      []string      `json:"cycle,omitempty"`
	Outcomes   []UnitOutcome `json:"outcomes"`
	OverBudget bool          `json:"over_budget"`
}

// Failed returns the outcomes of units that returned an error or panicked.
func (r *SwitchReport) Failed() []UnitOutcome {
	var failed []UnitOutcome
	for _, o := range r.Outcomes {
		if o.Err != nil {
			failed = append(failed, o)
		}
	}
	return failed
}

// Result is delivered once per request.
type Result struct {
	Report *SwitchReport
	Err    error
}

// Status is a read-only view of the scheduler.
type Status struct {
	State    string `json:"state"`
	Language string `json:"language"`
	Queued   int    `json:"queued"`
	Units    int    `json:"units"`
}

// Stats are aggregate switch statistics.
type Stats struct {
	Switches        uint64               `json:"switches"`
	FailedSwitches  uint64               `json:"failed_switches"`
	UnitFailures    uint64               `json:"unit_failures"`
	OverBudget      uint64               `json:"over_budget"`
	LastDuration    time.Duration        `json:"last_duration"`
	AverageDuration time.Duration        `json:"average_duration"`
	Units           map[string]UnitStats `json:"units"`
}
