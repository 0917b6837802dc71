package scheduler

import "fmt"

// State is the scheduler's batching state.
type State int

const (
	// Idle means no switch is running and the queue is empty.
	Idle State = iota
	// Batching means the first request of a run is being applied.
	Batching
	// Draining means requests that queued up during a batch are being applied.
	Draining
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Batching:
		return "batching"
	case Draining:
		return "draining"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// transitions lists the legal successor states.
var transitions = map[State][]State{
	Idle:     {Batching},
	Batching: {Draining, Idle},
	Draining: {Idle},
}

// canTransition reports whether from -> to is legal.
func canTransition(from, to State) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// mustTransition returns to, panicking on an illegal move. Reaching the panic
// is a bug in this package.
func mustTransition(from, to State) State {
	if !canTransition(from, to) {
		panic(fmt.Sprintf("scheduler: illegal state transition %s -> %s", from, to))
	}
	return to
}
