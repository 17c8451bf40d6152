package mqtthub

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/half-shot/matrix-poweredup/internal/buggy"
	"github.com/half-shot/matrix-poweredup/internal/poweredup"
	"github.com/half-shot/matrix-poweredup/internal/poweredup/sim"
)

func TestGatewayServesSimHub(t *testing.T) {
	f := newFakeBroker()
	f.onPublish = f.deliverRaw
	d := New(f, Options{TopicRoot: root, RequestTimeout: 2 * time.Second})

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	hubs, err := d.Scan(ctx)
	require.NoError(t, err)

	simHub := sim.NewBuggyHub("Buggy")
	done := make(chan error, 1)
	go func() {
		done <- NewGateway(f, root).Serve(ctx, map[string]poweredup.Hub{"90:84:2b:00:00:01": simHub})
	}()

	var h poweredup.Hub
	select {
	case h = <-hubs:
	case <-time.After(2 * time.Second):
		t.Fatal("hub was never announced")
	}
	assert.Equal(t, "Buggy", h.Name())
	assert.Equal(t, poweredup.HubTypeTechnicMedium, h.Type())

	require.NoError(t, h.Connect(ctx))
	assert.True(t, simHub.Connected())

	b, err := buggy.FromHub(ctx, h)
	require.NoError(t, err)

	require.NoError(t, b.Steer(ctx, buggy.Right, 10))
	calls := simHub.Calls()
	require.NotEmpty(t, calls)
	assert.Equal(t, sim.Call{Port: "B", Op: sim.OpRotate, Degrees: 10, Speed: 100}, calls[len(calls)-1])

	simHub.FailPort("A", errors.New("motor stalled"))
	err = b.SetSpeed(ctx, 40)
	var gwErr *GatewayError
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, "motor stalled", gwErr.Message)

	require.NoError(t, h.Disconnect(ctx))
	assert.Eventually(t, func() bool { return !simHub.Connected() }, time.Second, 5*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
	assert.False(t, f.subscribed(root+"/hub/command/+"))
}

func TestExecuteRejectsNonMotor(t *testing.T) {
	h := sim.NewBuggyHub("Buggy")
	require.NoError(t, h.Connect(t.Context()))

	err := execute(t.Context(), h, commandRequest{Port: "LED", Op: opSpeed})
	assert.ErrorContains(t, err, "not a motor")

	err = execute(t.Context(), h, commandRequest{Port: "A", Op: "fly"})
	assert.ErrorContains(t, err, "unknown op")
}
