package gamepad

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/half-shot/matrix-poweredup/internal/bridge/core"
	"github.com/half-shot/matrix-poweredup/pkg/matrix/matrixtest"
)

func TestSenderStopsAtFirstFailure(t *testing.T) {
	rec := matrixtest.NewRecorder()
	s := NewSender(rec, testRoom)

	cmds := []Command{
		{EventType: core.EventTurn, Content: map[string]any{"direction": "left", "angle": 3}},
		{EventType: core.EventSpeed, Content: map[string]any{"speed": 20}},
	}
	n, err := s.Send(t.Context(), cmds)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Len(t, rec.Sent(), 2)

	rec.SendErr = errors.New("rate limited")
	n, err = s.Send(t.Context(), cmds)
	assert.Error(t, err)
	assert.Zero(t, n)
	assert.Len(t, rec.Sent(), 2)
}
