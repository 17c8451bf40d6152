package buggy

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/half-shot/matrix-poweredup/internal/poweredup"
	"github.com/half-shot/matrix-poweredup/internal/poweredup/sim"
)

func TestDiscover(t *testing.T) {
	hub := sim.NewBuggyHub("buggy")
	lc := NewLifecycle()

	b, err := Discover(context.Background(), sim.NewScanner(hub), DiscoverOptions{Lifecycle: lc})
	require.NoError(t, err)
	require.NotNil(t, b)

	assert.True(t, hub.Connected())
	assert.Equal(t, StateReady, lc.State())
	assert.NoError(t, lc.Ready())
	assert.Equal(t, "buggy", lc.HubName())
}

func TestDiscoverCentersSteering(t *testing.T) {
	hub := sim.NewBuggyHub("buggy", sim.WithMotorPosition(SteeringPort, 20))

	b, err := Discover(context.Background(), sim.NewScanner(hub), DiscoverOptions{})
	require.NoError(t, err)

	assert.Equal(t, []sim.Call{{Port: SteeringPort, Op: sim.OpGoto, Position: 0, Speed: 100}}, hub.Calls())
	assert.Equal(t, 0, b.Devices().SteeringMotor.(*sim.Motor).Position())
	assert.Equal(t, 0, b.Angle())
}

func TestDiscoverResetFailure(t *testing.T) {
	hub := sim.NewBuggyHub("buggy")
	hub.FailPort(SteeringPort, errors.New("motor stalled"))
	lc := NewLifecycle()

	_, err := Discover(context.Background(), sim.NewScanner(hub), DiscoverOptions{Lifecycle: lc})
	assert.EqualError(t, err, "failed to center steering: motor stalled")
	assert.Equal(t, StateFailed, lc.State())
	assert.False(t, hub.Connected())
}

func TestDiscoverSkipsOtherNames(t *testing.T) {
	other := sim.NewBuggyHub("other")
	want := sim.NewBuggyHub("wanted")

	b, err := Discover(context.Background(), sim.NewScanner(other, want), DiscoverOptions{Name: "wanted"})
	require.NoError(t, err)
	assert.Equal(t, "wanted", b.Hub().Name())
	assert.False(t, other.Connected())
}

func TestDiscoverTimeout(t *testing.T) {
	clk := clock.NewMock()
	lc := NewLifecycle()

	errCh := make(chan error, 1)
	go func() {
		_, err := Discover(context.Background(), sim.NewScanner(), DiscoverOptions{Clock: clk, Lifecycle: lc})
		errCh <- err
	}()

	var err error
	assert.Eventually(t, func() bool {
		clk.Add(5 * time.Second)
		select {
		case err = <-errCh:
			return true
		default:
			return false
		}
	}, 2*time.Second, 5*time.Millisecond)

	assert.ErrorIs(t, err, ErrDiscoveryTimeout)
	assert.EqualError(t, err, "took too long to find hub")
	assert.Equal(t, StateFailed, lc.State())
	assert.ErrorIs(t, lc.Ready(), ErrDiscoveryTimeout)
}

func TestDiscoverTimeoutCoversSlowAdvertisement(t *testing.T) {
	clk := clock.NewMock()
	hub := sim.NewBuggyHub("late")
	scanner := sim.NewScanner(hub).WithDelay(clk, 31*time.Second)

	errCh := make(chan error, 1)
	go func() {
		_, err := Discover(context.Background(), scanner, DiscoverOptions{Clock: clk})
		errCh <- err
	}()

	var err error
	assert.Eventually(t, func() bool {
		clk.Add(time.Second)
		select {
		case err = <-errCh:
			return true
		default:
			return false
		}
	}, 2*time.Second, 5*time.Millisecond)

	assert.ErrorIs(t, err, ErrDiscoveryTimeout)
	assert.False(t, hub.Connected())
}

func TestDiscoverResolveFailure(t *testing.T) {
	hub := sim.NewHub("wrong", poweredup.HubTypeHub)
	lc := NewLifecycle()

	_, err := Discover(context.Background(), sim.NewScanner(hub), DiscoverOptions{Lifecycle: lc})
	assert.ErrorIs(t, err, ErrWrongHubType)
	assert.Equal(t, StateFailed, lc.State())
	assert.False(t, hub.Connected(), "hub is released after a failed resolve")
}

func TestDiscoverParentCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Discover(ctx, sim.NewScanner(), DiscoverOptions{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrDiscoveryTimeout)
}
