package scheduler

import "testing"

func TestTransitions(t *testing.T) {
	tests := []struct {
		from, to State
		legal    bool
	}{
		{Idle, Batching, true},
		{Batching, Draining, true},
		{Batching, Idle, true},
		{Draining, Idle, true},
		{Idle, Draining, false},
		{Draining, Batching, false},
		{Idle, Idle, false},
	}

	for _, tt := range tests {
		t.Run(tt.from.String()+"->"+tt.to.String(), func(t *testing.T) {
			if got := canTransition(tt.from, tt.to); got != tt.legal {
				t.Errorf("canTransition = %v, want %v", got, tt.legal)
			}
		})
	}
}

func TestMustTransitionPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic on illegal transition")
		}
	}()
	mustTransition(Idle, Draining)
}

func TestFIFO(t *testing.T) {
	var q fifo[int]
	for i := 0; i < 100; i++ {
		q.push(i)
	}
	for i := 0; i < 100; i++ {
		v, ok := q.pop()
		if !ok || v != i {
			t.Fatalf("pop %d = %d, %v", i, v, ok)
		}
		if i == 60 {
			q.push(100)
		}
	}
	if v, ok := q.pop(); !ok || v != 100 {
		t.Errorf("expected late push to come out last, got %d, %v", v, ok)
	}
	if _, ok := q.pop(); ok || q.len() != 0 {
		t.Error("queue should be empty")
	}
}
