package analyzer

import (
	"context"
	"sync/atomic"
)

// ProgressFunc reports that the file at path finished, as item current of total.
type ProgressFunc func(current, total int, path string)

// Tracker counts processed files and forwards each tick to a callback.
// It is safe for concurrent use, and a nil *Tracker ignores every call.
type Tracker struct {
	total    atomic.Int32
	current  atomic.Int32
	callback ProgressFunc
}

// NewTracker creates a tracker with an optional callback.
func NewTracker(callback ProgressFunc) *Tracker {
	return &Tracker{callback: callback}
}

// Start resets the count and sets the number of files expected.
func (t *Tracker) Start(total int) {
	if t == nil {
		return
	}
	t.current.Store(0)
	t.total.Store(int32(total))
}

// Tick marks one file as done.
func (t *Tracker) Tick(path string) {
	if t == nil {
		return
	}
	current := int(t.current.Add(1))
	if t.callback != nil {
		t.callback(current, int(t.total.Load()), path)
	}
}

// Current returns the number of files done.
func (t *Tracker) Current() int {
	if t == nil {
		return 0
	}
	return int(t.current.Load())
}

// Total returns the number of files expected.
func (t *Tracker) Total() int {
	if t == nil {
		return 0
	}
	return int(t.total.Load())
}

type trackerKey struct{}

// WithTracker returns a context that carries a progress tracker.
func WithTracker(ctx context.Context, t *Tracker) context.Context {
	return context.WithValue(ctx, trackerKey{}, t)
}

// TrackerFromContext extracts the progress tracker from the context, or nil.
func TrackerFromContext(ctx context.Context) *Tracker {
	if t, ok := ctx.Value(trackerKey{}).(*Tracker); ok {
		return t
	}
	return nil
}
