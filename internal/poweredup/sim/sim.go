// Package sim is an in-memory Powered UP hub. It stands in for hardware
// during development and in tests, and records every motor command.
package sim

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/half-shot/matrix-poweredup/internal/poweredup"
	"github.com/half-shot/matrix-poweredup/pkg/log"
)

// Op names recorded in a Call.
const (
	OpRotate = "rotate"
	OpGoto   = "goto"
	OpSpeed  = "speed"
)

// Call is one motor command received by the simulator.
type Call struct {
	Port     string
	Op       string
	Degrees  int
	Position int
	Speed    int
	Ramp     time.Duration
}

// Hub is a simulated hub.
type Hub struct {
	name  string
	typ   poweredup.HubType
	clock clock.Clock

	mu        sync.Mutex
	connected bool
	devices   []poweredup.Device
	calls     []Call
	failures  map[string]error
}

var _ poweredup.Hub = (*Hub)(nil)

// Option configures a Hub.
type Option func(*Hub)

// WithClock replaces the wall clock used by Sleep.
func WithClock(clk clock.Clock) Option {
	return func(h *Hub) { h.clock = clk }
}

// WithDevice attaches a device of type t at port. Tacho motor types get a
// simulated motor.
func WithDevice(port string, t poweredup.DeviceType) Option {
	return func(h *Hub) { h.attach(port, t) }
}

// WithMotorPosition starts the motor at port from position instead of 0.
// Apply it after the motor is attached.
func WithMotorPosition(port string, position int) Option {
	return func(h *Hub) {
		for _, d := range h.devices {
			if m, ok := d.(*Motor); ok && m.port == port {
				m.position = position
			}
		}
	}
}

// NewHub creates an empty hub of type typ.
func NewHub(name string, typ poweredup.HubType, opts ...Option) *Hub {
	h := &Hub{
		name:     name,
		typ:      typ,
		clock:    clock.New(),
		failures: map[string]error{},
	}
	for _, o := range opts {
		o(h)
	}
	return h
}

// NewBuggyHub returns a Technic medium hub wired as the buggy: large linear
// motors on A (drive) and B (steering) plus the hub's built-in sensors.
func NewBuggyHub(name string, opts ...Option) *Hub {
	base := []Option{
		WithDevice("A", poweredup.DeviceTypeTechnicLargeLinearMotor),
		WithDevice("B", poweredup.DeviceTypeTechnicLargeLinearMotor),
		WithDevice("TILT", poweredup.DeviceTypeTechnicMediumHubTiltSensor),
		WithDevice("GYRO", poweredup.DeviceTypeTechnicMediumHubGyroSensor),
		WithDevice("ACCEL", poweredup.DeviceTypeTechnicMediumHubAccelerometer),
		WithDevice("CURRENT", poweredup.DeviceTypeCurrentSensor),
		WithDevice("VOLTAGE", poweredup.DeviceTypeVoltageSensor),
		WithDevice("LED", poweredup.DeviceTypeHubLED),
	}
	return NewHub(name, poweredup.HubTypeTechnicMedium, append(base, opts...)...)
}

func (h *Hub) attach(port string, t poweredup.DeviceType) {
	h.devices = slices.DeleteFunc(h.devices, func(d poweredup.Device) bool { return d.Port() == port })
	if t == "" {
		return
	}
	if poweredup.IsTachoMotor(t) {
		h.devices = append(h.devices, &Motor{hub: h, port: port, typ: t})
		return
	}
	h.devices = append(h.devices, &device{port: port, typ: t})
}

// Detach removes whatever is at port.
func (h *Hub) Detach(port string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.attach(port, "")
}

// FailPort makes every subsequent command on port return err. A nil err clears it.
func (h *Hub) FailPort(port string, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err == nil {
		delete(h.failures, port)
		return
	}
	h.failures[port] = err
}

// Calls returns a copy of the recorded motor commands.
func (h *Hub) Calls() []Call {
	h.mu.Lock()
	defer h.mu.Unlock()
	return slices.Clone(h.calls)
}

// Connected reports whether Connect has been called without a later Disconnect.
func (h *Hub) Connected() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.connected
}

func (h *Hub) Name() string            { return h.name }
func (h *Hub) Type() poweredup.HubType { return h.typ }

func (h *Hub) Connect(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.connected = true
	log.Info("[sim] Hub connected", "hub", h.name)
	return ctx.Err()
}

func (h *Hub) Disconnect(_ context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.connected = false
	return nil
}

func (h *Hub) DeviceAtPort(_ context.Context, port string) (poweredup.Device, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, d := range h.devices {
		if d.Port() == port {
			return d, nil
		}
	}
	return nil, fmt.Errorf("port %s: %w", port, poweredup.ErrNotAttached)
}

func (h *Hub) DevicesByType(_ context.Context, t poweredup.DeviceType) ([]poweredup.Device, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []poweredup.Device
	for _, d := range h.devices {
		if d.Type() == t {
			out = append(out, d)
		}
	}
	return out, nil
}

func (h *Hub) Sleep(ctx context.Context, d time.Duration) error {
	return poweredup.SleepContext(ctx, h.clock, d)
}

func (h *Hub) record(ctx context.Context, c Call) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.connected {
		return errors.New("hub not connected")
	}
	if err := h.failures[c.Port]; err != nil {
		return err
	}
	h.calls = append(h.calls, c)
	log.Debug("[sim] Motor command", "port", c.Port, "op", c.Op, "degrees", c.Degrees, "position", c.Position, "speed", c.Speed)
	return nil
}

type device struct {
	port string
	typ  poweredup.DeviceType
}

func (d *device) Type() poweredup.DeviceType { return d.typ }
func (d *device) Port() string               { return d.port }

// Motor is a simulated tacho motor. Its position follows the commands it receives.
type Motor struct {
	hub  *Hub
	port string
	typ  poweredup.DeviceType

	mu       sync.Mutex
	position int
	speed    int
}

var _ poweredup.TachoMotor = (*Motor)(nil)

func (m *Motor) Type() poweredup.DeviceType { return m.typ }
func (m *Motor) Port() string               { return m.port }

// Position returns the simulated encoder position in degrees.
func (m *Motor) Position() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.position
}

// Speed returns the last speed set with SetSpeed.
func (m *Motor) Speed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.speed
}

func (m *Motor) RotateByDegrees(ctx context.Context, degrees int, speed int) error {
	if err := m.hub.record(ctx, Call{Port: m.port, Op: OpRotate, Degrees: degrees, Speed: speed}); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if speed < 0 {
		m.position -= degrees
	} else {
		m.position += degrees
	}
	return nil
}

func (m *Motor) GotoAbsolutePosition(ctx context.Context, position int, speed int) error {
	if err := m.hub.record(ctx, Call{Port: m.port, Op: OpGoto, Position: position, Speed: speed}); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.position = position
	return nil
}

func (m *Motor) SetSpeed(ctx context.Context, speed int, ramp time.Duration) error {
	if err := m.hub.record(ctx, Call{Port: m.port, Op: OpSpeed, Speed: speed, Ramp: ramp}); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.speed = speed
	return nil
}
