// Package fsm adapts error-returning functions to looplab/fsm callbacks.
package fsm

import (
	"context"

	"github.com/looplab/fsm"
)

// WrapEvent turns fn into a callback. A returned error is stored on the event
// and comes back from FSM.Event.
func WrapEvent(fn func(ctx context.Context, event *fsm.Event) error) fsm.Callback {
	return func(ctx context.Context, event *fsm.Event) {
		if err := fn(ctx, event); err != nil {
			event.Err = err
		}
	}
}

// LogTransitions returns an enter_state callback that reports each change to logf.
func LogTransitions(logf func(msg string, keysAndValues ...any)) fsm.Callback {
	return func(_ context.Context, e *fsm.Event) {
		logf("State transition", "event", e.Event, "from", e.Src, "to", e.Dst)
	}
}
