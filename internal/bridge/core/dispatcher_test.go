package core

import (
	"context"
	"regexp"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/half-shot/matrix-poweredup/pkg/matrix"
	"github.com/half-shot/matrix-poweredup/pkg/matrix/matrixtest"
)

func TestDispatchDiscards(t *testing.T) {
	empty := ""
	key := "@bot:example.org"

	stale := textEvent("buggy speed 10")
	stale.Age = 30001

	borderline := textEvent("buggy speed 10")
	borderline.Age = 30000

	state := textEvent("buggy speed 10")
	state.StateKey = &key

	emptyState := textEvent("buggy speed 10")
	emptyState.StateKey = &empty

	staleWire := &matrix.Event{Type: EventSpeed, Age: 45000, Content: map[string]any{"speed": 10.0}}
	unknownType := &matrix.Event{Type: "m.reaction", Content: map[string]any{}}

	tests := []struct {
		name       string
		evt        *matrix.Event
		dispatched bool
	}{
		{"stale text", stale, false},
		{"stale wire", staleWire, false},
		{"at threshold", borderline, true},
		{"state event", state, false},
		{"empty state key", emptyState, false},
		{"unmatched text", textEvent("hello buggy"), false},
		{"unknown type", unknownType, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &fakeVehicle{}
			d, rec := newTestDispatcher(v)

			cc, err := d.Dispatch(t.Context(), tt.evt)
			require.NoError(t, err)
			assert.Equal(t, tt.dispatched, cc != nil)
			assert.Equal(t, tt.dispatched, len(v.Calls()) == 1)
			assert.Empty(t, rec.Sent())
		})
	}
}

func TestDispatchSerializes(t *testing.T) {
	var inFlight, maxInFlight atomic.Int32
	consumer := ConsumerFunc(func(ctx context.Context, cc *CommandContext) error {
		n := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			cur := maxInFlight.Load()
			if n <= cur || maxInFlight.CompareAndSwap(cur, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		return nil
	})
	d := NewDispatcher(Commands(), matrixtest.NewRecorder(), consumer)

	done := make(chan struct{})
	for range 8 {
		go func() {
			defer func() { done <- struct{}{} }()
			d.HandleEvent(t.Context(), textEvent("buggy speed 10"))
		}()
	}
	for range 8 {
		<-done
	}
	assert.Equal(t, int32(1), maxInFlight.Load())
}

func TestDispatchDefaultHandlerAfterConsumer(t *testing.T) {
	var order []string
	def := &Definition{
		Name:    "ping",
		Pattern: regexp.MustCompile(`^ping$`),
		DefaultHandler: func(ctx context.Context, cc *CommandContext) error {
			order = append(order, "default")
			return nil
		},
	}
	consumer := ConsumerFunc(func(ctx context.Context, cc *CommandContext) error {
		order = append(order, "consumer")
		return nil
	})
	d := NewDispatcher(NewRegistry(def), matrixtest.NewRecorder(), consumer)

	cc, err := d.Dispatch(t.Context(), textEvent("ping"))
	require.NoError(t, err)
	assert.Equal(t, "ping", cc.Name)
	assert.NotEmpty(t, cc.RequestID)
	assert.Equal(t, []string{"consumer", "default"}, order)
}
