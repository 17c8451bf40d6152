// Package gamepad turns browser gamepad samples into buggy wire events.
package gamepad

import (
	"math"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/half-shot/matrix-poweredup/internal/bridge/core"
	"github.com/half-shot/matrix-poweredup/pkg/options"
)

// Command is one wire event ready to send.
type Command struct {
	EventType string
	Content   map[string]any

	// axis is the clamped stick position the command was built from.
	axis float64
}

// Translator applies a minimum sample interval and a per-axis deadband.
// Both axes start at neutral, so a stick at rest sends nothing. The deadband
// is measured from the last committed position of each axis.
type Translator struct {
	clock     clock.Clock
	interval  time.Duration
	deadband  float64
	steerAxis int
	speedAxis int

	mu       sync.Mutex
	lastSeen time.Time
	steer    float64
	speed    float64
}

// NewTranslator builds a Translator from opts. A nil clk uses the wall clock.
func NewTranslator(opts *options.GamepadOptions, clk clock.Clock) *Translator {
	if clk == nil {
		clk = clock.New()
	}
	return &Translator{
		clock:     clk,
		interval:  opts.Interval,
		deadband:  opts.Deadband,
		steerAxis: opts.SteerAxis,
		speedAxis: opts.SpeedAxis,
	}
}

// Translate returns the events for one sample of gamepad axes, in [-1, 1].
// Samples arriving sooner than the interval after the last accepted one are
// dropped. The axis state only moves on Commit, so a command that was never
// delivered is produced again by the next sample.
func (t *Translator) Translate(axes []float64) []Command {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.clock.Now()
	if !t.lastSeen.IsZero() && now.Sub(t.lastSeen) < t.interval {
		return nil
	}
	t.lastSeen = now

	ts := now.UnixMilli()
	var cmds []Command

	if x, ok := axis(axes, t.steerAxis); ok && math.Abs(x-t.steer) > t.deadband {
		direction := "right"
		if x < 0 {
			direction = "left"
		}
		cmds = append(cmds, Command{
			EventType: core.EventTurn,
			Content:   map[string]any{"ts": ts, "direction": direction, "angle": round(math.Abs(x) * 10)},
			axis:      x,
		})
	}

	if y, ok := axis(axes, t.speedAxis); ok && math.Abs(y-t.speed) > t.deadband {
		cmds = append(cmds, Command{
			EventType: core.EventSpeed,
			Content:   map[string]any{"ts": ts, "speed": round(-y * 100)},
			axis:      y,
		})
	}

	return cmds
}

// Commit records cmds as delivered.
func (t *Translator) Commit(cmds []Command) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, cmd := range cmds {
		switch cmd.EventType {
		case core.EventTurn:
			t.steer = cmd.axis
		case core.EventSpeed:
			t.speed = cmd.axis
		}
	}
}

func axis(axes []float64, i int) (float64, bool) {
	if i >= len(axes) {
		return 0, false
	}
	v := axes[i]
	if math.IsNaN(v) {
		return 0, false
	}
	return max(-1, min(v, 1)), true
}

// round rounds half up, as browsers do.
func round(v float64) int {
	return int(math.Floor(v + 0.5))
}
