package buggy

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/looplab/fsm"

	"github.com/half-shot/matrix-poweredup/internal/pkg/metrics"
	fsmutil "github.com/half-shot/matrix-poweredup/internal/pkg/util/fsm"
	"github.com/half-shot/matrix-poweredup/pkg/log"
)

// Lifecycle states.
const (
	StateIdle       = "idle"
	StateScanning   = "scanning"
	StateConnecting = "connecting"
	StateResolving  = "resolving"
	StateReady      = "ready"
	StateFailed     = "failed"
)

// Lifecycle events.
const (
	EventScan    = "scan"
	EventConnect = "connect"
	EventResolve = "resolve"
	EventReady   = "ready"
	EventFail    = "fail"
)

// Lifecycle tracks discovery progress. It backs the readiness probe.
type Lifecycle struct {
	fsm *fsm.FSM

	mu      sync.Mutex
	hubName string
	failure error
}

func NewLifecycle() *Lifecycle {
	l := &Lifecycle{}

	events := fsm.Events{
		{Name: EventScan, Src: []string{StateIdle}, Dst: StateScanning},
		{Name: EventConnect, Src: []string{StateScanning}, Dst: StateConnecting},
		{Name: EventResolve, Src: []string{StateConnecting}, Dst: StateResolving},
		{Name: EventReady, Src: []string{StateResolving}, Dst: StateReady},
		{Name: EventFail, Src: []string{StateIdle, StateScanning, StateConnecting, StateResolving}, Dst: StateFailed},
	}

	callbacks := fsm.Callbacks{
		"enter_state":            fsmutil.LogTransitions(log.Info),
		"before_" + EventConnect: fsmutil.WrapEvent(l.guardConnect),
		"enter_" + StateReady:    fsmutil.WrapEvent(l.actionEnterReady),
		"enter_" + StateFailed:   fsmutil.WrapEvent(l.actionEnterFailed),
	}

	l.fsm = fsm.NewFSM(StateIdle, events, callbacks)
	return l
}

// State returns the current state.
func (l *Lifecycle) State() string {
	return l.fsm.Current()
}

// Ready returns nil once the buggy is usable, otherwise why it is not.
func (l *Lifecycle) Ready() error {
	switch state := l.fsm.Current(); state {
	case StateReady:
		return nil
	case StateFailed:
		l.mu.Lock()
		defer l.mu.Unlock()
		return fmt.Errorf("hub discovery failed: %w", l.failure)
	default:
		return fmt.Errorf("hub discovery in progress: %s", state)
	}
}

// HubName returns the name of the hub being connected, if any.
func (l *Lifecycle) HubName() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.hubName
}

// Scan, Connect, Resolve, MarkReady and Fail fire the matching event.
func (l *Lifecycle) Scan(ctx context.Context) error { return l.fire(ctx, EventScan) }

func (l *Lifecycle) Connect(ctx context.Context, hubName string) error {
	return l.fire(ctx, EventConnect, hubName)
}

func (l *Lifecycle) Resolve(ctx context.Context) error { return l.fire(ctx, EventResolve) }

func (l *Lifecycle) MarkReady(ctx context.Context) error { return l.fire(ctx, EventReady) }

func (l *Lifecycle) Fail(ctx context.Context, cause error) error {
	return l.fire(ctx, EventFail, cause)
}

func (l *Lifecycle) fire(ctx context.Context, event string, args ...any) error {
	return l.fsm.Event(ctx, event, args...)
}

// guardConnect records the hub name and refuses a connect without one.
func (l *Lifecycle) guardConnect(_ context.Context, e *fsm.Event) error {
	name, _ := firstArg[string](e)
	if name == "" {
		e.Cancel(errors.New("connect requires a hub name"))
		return nil
	}
	l.mu.Lock()
	l.hubName = name
	l.mu.Unlock()
	return nil
}

func (l *Lifecycle) actionEnterReady(_ context.Context, _ *fsm.Event) error {
	metrics.HubReady.Set(1)
	return nil
}

func (l *Lifecycle) actionEnterFailed(_ context.Context, e *fsm.Event) error {
	cause, ok := firstArg[error](e)
	if !ok || cause == nil {
		cause = errors.New("unknown error")
	}
	l.mu.Lock()
	l.failure = cause
	l.mu.Unlock()
	metrics.HubReady.Set(0)
	return nil
}

func firstArg[T any](e *fsm.Event) (T, bool) {
	var zero T
	if len(e.Args) == 0 {
		return zero, false
	}
	v, ok := e.Args[0].(T)
	return v, ok
}
