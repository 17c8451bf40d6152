package mqtthub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/half-shot/matrix-poweredup/internal/pkg/mqtt/paths"
	"github.com/half-shot/matrix-poweredup/internal/poweredup"
	"github.com/half-shot/matrix-poweredup/pkg/log"
)

var errNotConnected = errors.New("hub not connected")

// Hub is a hub seen through the gateway.
type Hub struct {
	d    *Driver
	id   string
	name string
	typ  poweredup.HubType

	mu        sync.RWMutex
	connected bool
	devices   []poweredup.Device
}

var _ poweredup.Hub = (*Hub)(nil)

func (d *Driver) newHub(id string, a announcement) *Hub {
	name := a.Name
	if name == "" {
		name = id
	}
	typ := a.Type
	if typ == "" {
		typ = poweredup.HubTypeUnknown
	}
	return &Hub{d: d, id: id, name: name, typ: typ}
}

// ID is the gateway's identifier for the hub, usually its BLE address.
func (h *Hub) ID() string              { return h.id }
func (h *Hub) Name() string            { return h.name }
func (h *Hub) Type() poweredup.HubType { return h.typ }

// Connect asks the gateway to connect and records the attached devices it reports.
func (h *Hub) Connect(ctx context.Context) error {
	reqID := uuid.NewString()
	r, err := h.d.request(ctx, "connect", h.d.topics.Build(paths.Connect, h.id), reqID, connectRequest{RequestID: reqID})
	if err != nil {
		return fmt.Errorf("failed to connect to hub %s: %w", h.name, err)
	}

	devices := make([]poweredup.Device, 0, len(r.Devices))
	for _, info := range r.Devices {
		devices = append(devices, h.newDevice(info))
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.devices = devices
	h.connected = true
	log.Info("Connected to hub", "hub", h.name, "devices", len(devices))
	return nil
}

// Disconnect tells the gateway to drop the link. It does not wait for a reply.
func (h *Hub) Disconnect(ctx context.Context) error {
	h.mu.Lock()
	h.connected = false
	h.devices = nil
	h.mu.Unlock()

	body, _ := json.Marshal(connectRequest{RequestID: uuid.NewString()})
	return h.d.client.Publish(ctx, h.d.topics.Build(paths.Disconnect, h.id), 1, false, body)
}

func (h *Hub) DeviceAtPort(_ context.Context, port string) (poweredup.Device, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if !h.connected {
		return nil, errNotConnected
	}
	for _, dev := range h.devices {
		if dev.Port() == port {
			return dev, nil
		}
	}
	return nil, fmt.Errorf("port %s: %w", port, poweredup.ErrNotAttached)
}

func (h *Hub) DevicesByType(_ context.Context, t poweredup.DeviceType) ([]poweredup.Device, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if !h.connected {
		return nil, errNotConnected
	}
	var out []poweredup.Device
	for _, dev := range h.devices {
		if dev.Type() == t {
			out = append(out, dev)
		}
	}
	return out, nil
}

// Sleep waits locally; the gateway has no scheduling of its own.
func (h *Hub) Sleep(ctx context.Context, d time.Duration) error {
	return poweredup.SleepContext(ctx, h.d.clock, d)
}

func (h *Hub) newDevice(info deviceInfo) poweredup.Device {
	if poweredup.IsTachoMotor(info.Type) {
		return &motor{hub: h, port: info.Port, typ: info.Type}
	}
	return &device{port: info.Port, typ: info.Type}
}

func (h *Hub) command(ctx context.Context, req commandRequest) error {
	h.mu.RLock()
	connected := h.connected
	h.mu.RUnlock()
	if !connected {
		return errNotConnected
	}

	req.RequestID = uuid.NewString()
	_, err := h.d.request(ctx, req.Op, h.d.topics.Build(paths.Command, h.id), req.RequestID, req)
	return err
}

type device struct {
	port string
	typ  poweredup.DeviceType
}

func (d *device) Type() poweredup.DeviceType { return d.typ }
func (d *device) Port() string               { return d.port }

type motor struct {
	hub  *Hub
	port string
	typ  poweredup.DeviceType
}

var _ poweredup.TachoMotor = (*motor)(nil)

func (m *motor) Type() poweredup.DeviceType { return m.typ }
func (m *motor) Port() string               { return m.port }

func (m *motor) RotateByDegrees(ctx context.Context, degrees int, speed int) error {
	return m.hub.command(ctx, commandRequest{Port: m.port, Op: opRotate, Degrees: degrees, Speed: speed})
}

func (m *motor) GotoAbsolutePosition(ctx context.Context, position int, speed int) error {
	return m.hub.command(ctx, commandRequest{Port: m.port, Op: opGoto, Position: position, Speed: speed})
}

func (m *motor) SetSpeed(ctx context.Context, speed int, ramp time.Duration) error {
	return m.hub.command(ctx, commandRequest{Port: m.port, Op: opSpeed, Speed: speed, RampMs: ramp.Milliseconds()})
}
