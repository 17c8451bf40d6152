package gamepad

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/half-shot/matrix-poweredup/internal/bridge/core"
	"github.com/half-shot/matrix-poweredup/pkg/matrix/matrixtest"
	"github.com/half-shot/matrix-poweredup/pkg/options"
)

const testRoom = "!buggy:example.org"

func newTestServer(t *testing.T) (*httptest.Server, *matrixtest.Recorder) {
	t.Helper()
	rec := matrixtest.NewRecorder()
	srv := NewServer(options.NewHttpOptions(":0"), NewTranslator(options.NewGamepadOptions(), clock.NewMock()), NewSender(rec, testRoom))
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, rec
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestServeIndex(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "Buggy gamepad")
}

func TestWebsocketSendsEvents(t *testing.T) {
	ts, rec := newTestServer(t)
	conn := dial(t, ts)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	require.NoError(t, conn.WriteJSON(Sample{Gamepad: "pad", Axes: []float64{0.3, -1}}))

	assert.Eventually(t, func() bool {
		return len(rec.Sent()) == 2
	}, 2*time.Second, 5*time.Millisecond)

	sent := rec.Sent()
	assert.Equal(t, testRoom, sent[0].RoomID)
	assert.Equal(t, core.EventTurn, sent[0].EventType)
	assert.Equal(t, core.EventSpeed, sent[1].EventType)
	assert.Equal(t, 100, sent[1].Content.(map[string]any)["speed"])
}

func TestWebsocketReportsSendErrors(t *testing.T) {
	ts, rec := newTestServer(t)
	rec.SendErr = errors.New("forbidden")
	conn := dial(t, ts)

	require.NoError(t, conn.WriteJSON(Sample{Axes: []float64{1, 0}}))

	var reply map[string]string
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&reply))
	assert.Equal(t, "forbidden", reply["error"])
}

func TestWebsocketResendsAfterFailure(t *testing.T) {
	clk := clock.NewMock()
	rec := matrixtest.NewRecorder()
	srv := NewServer(options.NewHttpOptions(":0"), NewTranslator(options.NewGamepadOptions(), clk), NewSender(rec, testRoom))
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	conn := dial(t, ts)

	rec.FailSends(errors.New("rate limited"))
	require.NoError(t, conn.WriteJSON(Sample{Axes: []float64{0, -0.6}}))

	var reply map[string]string
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&reply))
	assert.Equal(t, "rate limited", reply["error"])

	rec.FailSends(nil)
	clk.Add(time.Second)
	require.NoError(t, conn.WriteJSON(Sample{Axes: []float64{0, -0.6}}))

	assert.Eventually(t, func() bool {
		return len(rec.Sent()) == 1
	}, 2*time.Second, 5*time.Millisecond)
	sent := rec.Sent()[0]
	assert.Equal(t, core.EventSpeed, sent.EventType)
	assert.Equal(t, 60, sent.Content.(map[string]any)["speed"])
}
