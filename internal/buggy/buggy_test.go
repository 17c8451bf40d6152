package buggy

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/half-shot/matrix-poweredup/internal/poweredup/sim"
)

func newTestBuggy(t *testing.T, opts ...sim.Option) (*Buggy, *sim.Hub) {
	t.Helper()
	ctx := context.Background()
	hub := sim.NewBuggyHub("test-buggy", opts...)
	require.NoError(t, hub.Connect(ctx))
	b, err := FromHub(ctx, hub)
	require.NoError(t, err)
	return b, hub
}

func TestReset(t *testing.T) {
	b, hub := newTestBuggy(t)
	ctx := context.Background()

	require.NoError(t, b.Steer(ctx, Right, 10))
	require.NoError(t, b.Reset(ctx))

	assert.Equal(t, 0, b.Angle())
	calls := hub.Calls()
	assert.Equal(t, sim.Call{Port: SteeringPort, Op: sim.OpGoto, Position: 0, Speed: 100}, calls[len(calls)-1])
}

func TestSteer(t *testing.T) {
	tests := []struct {
		name      string
		start     int
		dir       SteerDirection
		degrees   int
		wantAngle int
		wantCall  *sim.Call
	}{
		{"right from centre", 0, Right, 15, 15, &sim.Call{Port: "B", Op: sim.OpRotate, Degrees: 15, Speed: 100}},
		{"left from centre", 0, Left, 15, -15, &sim.Call{Port: "B", Op: sim.OpRotate, Degrees: 15, Speed: -100}},
		{"clamped right", 20, Right, 25, 30, &sim.Call{Port: "B", Op: sim.OpRotate, Degrees: 10, Speed: 100}},
		{"clamped left", -20, Left, 25, -30, &sim.Call{Port: "B", Op: sim.OpRotate, Degrees: 10, Speed: -100}},
		{"already at limit", 30, Right, 5, 30, nil},
		{"zero degrees", 0, Left, 0, 0, nil},
		{"negative degrees reverse direction", 0, Left, -10, 10, &sim.Call{Port: "B", Op: sim.OpRotate, Degrees: 10, Speed: 100}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, hub := newTestBuggy(t)
			b.angle = tt.start

			require.NoError(t, b.Steer(context.Background(), tt.dir, tt.degrees))
			assert.Equal(t, tt.wantAngle, b.Angle())

			calls := hub.Calls()
			if tt.wantCall == nil {
				assert.Empty(t, calls)
				return
			}
			require.Len(t, calls, 1)
			assert.Equal(t, *tt.wantCall, calls[0])
		})
	}
}

// The angle stays within bounds no matter how the commands are sequenced,
// and always equals the steering motor's travel from centre.
func TestSteerAngleInvariant(t *testing.T) {
	b, hub := newTestBuggy(t)
	ctx := context.Background()

	dev, err := hub.DeviceAtPort(ctx, SteeringPort)
	require.NoError(t, err)
	motor := dev.(*sim.Motor)

	seq := []struct {
		dir SteerDirection
		deg int
	}{{Right, 12}, {Right, 12}, {Right, 12}, {Left, 5}, {Left, 40}, {Left, 1}, {Right, 30}, {Right, 0}}
	for _, s := range seq {
		require.NoError(t, b.Steer(ctx, s.dir, s.deg))
		assert.LessOrEqual(t, b.Angle(), MaxAngle)
		assert.GreaterOrEqual(t, b.Angle(), -MaxAngle)
		assert.Equal(t, b.Angle(), motor.Position())
	}
	assert.Equal(t, 14, b.Angle())
}

// The increment rule this replaces added clamp(degrees+sign) to the running
// total: two right turns of 20 would track 42 while the motor sat at 40.
func TestSteerDoesNotUseIncrementFormula(t *testing.T) {
	b, _ := newTestBuggy(t)
	ctx := context.Background()

	require.NoError(t, b.Steer(ctx, Right, 20))
	require.NoError(t, b.Steer(ctx, Right, 20))

	inherited := 0
	for range 2 {
		inherited += clamp(20+1, -MaxAngle, MaxAngle)
	}
	assert.Equal(t, 42, inherited)
	assert.Equal(t, 30, b.Angle())
}

func TestSteerUnknownDirection(t *testing.T) {
	b, hub := newTestBuggy(t)
	assert.Error(t, b.Steer(context.Background(), SteerDirection("up"), 5))
	assert.Empty(t, hub.Calls())
}

func TestSteerFailureKeepsAngle(t *testing.T) {
	b, hub := newTestBuggy(t)
	boom := errors.New("stalled")
	hub.FailPort(SteeringPort, boom)

	assert.ErrorIs(t, b.Steer(context.Background(), Right, 10), boom)
	assert.Equal(t, 0, b.Angle())
}

func TestDrive(t *testing.T) {
	b, hub := newTestBuggy(t)
	ctx := context.Background()

	require.NoError(t, b.Drive(ctx, Forward, 60, 0))
	require.NoError(t, b.Drive(ctx, Reverse, 40, 0))

	assert.Equal(t, []sim.Call{
		{Port: DrivePort, Op: sim.OpSpeed, Speed: -60, Ramp: 500 * time.Millisecond},
		{Port: DrivePort, Op: sim.OpSpeed, Speed: 40, Ramp: 500 * time.Millisecond},
	}, hub.Calls())

	assert.Error(t, b.Drive(ctx, DriveDirection("sideways"), 10, 0))
}

func TestDriveWithDurationStops(t *testing.T) {
	clk := clock.NewMock()
	b, hub := newTestBuggy(t, sim.WithClock(clk))

	done := make(chan error, 1)
	go func() { done <- b.Drive(context.Background(), Forward, 60, 500*time.Millisecond) }()

	assert.Eventually(t, func() bool {
		clk.Add(100 * time.Millisecond)
		select {
		case err := <-done:
			assert.NoError(t, err)
			return true
		default:
			return false
		}
	}, 2*time.Second, 5*time.Millisecond)

	calls := hub.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, -60, calls[0].Speed)
	assert.Equal(t, 0, calls[1].Speed)
}

func TestDriveStopsWhenCancelled(t *testing.T) {
	b, hub := newTestBuggy(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- b.Drive(ctx, Reverse, 30, time.Hour) }()

	assert.Eventually(t, func() bool { return len(hub.Calls()) == 1 }, time.Second, time.Millisecond)
	cancel()

	assert.ErrorIs(t, <-done, context.Canceled)
	calls := hub.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, 0, calls[1].Speed)
}

func TestSetSpeed(t *testing.T) {
	b, hub := newTestBuggy(t)
	require.NoError(t, b.SetSpeed(context.Background(), -75))
	assert.Equal(t, []sim.Call{{Port: DrivePort, Op: sim.OpSpeed, Speed: -75, Ramp: 500 * time.Millisecond}}, hub.Calls())
}
