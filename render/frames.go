package render

import (
	"context"
	"time"
)

// DefaultFrameInterval approximates one display frame.
const DefaultFrameInterval = 16 * time.Millisecond

// FrameSource yields frame boundaries. The renderer waits for one between
// consecutive batches.
type FrameSource interface {
	Next(ctx context.Context) error
}

// IntervalFrames is a FrameSource that waits a fixed interval per frame.
type IntervalFrames time.Duration

// Next waits for the next frame or for ctx to end.
func (f IntervalFrames) Next(ctx context.Context) error {
	return sleep(ctx, time.Duration(f))
}

// FrameFunc adapts a function to FrameSource.
type FrameFunc func(ctx context.Context) error

// Next calls f.
func (f FrameFunc) Next(ctx context.Context) error {
	return f(ctx)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
