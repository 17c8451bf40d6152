package mqtthub

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/half-shot/matrix-poweredup/internal/pkg/mqtt/paths"
	"github.com/half-shot/matrix-poweredup/internal/poweredup"
	"github.com/half-shot/matrix-poweredup/pkg/log"
	"github.com/half-shot/matrix-poweredup/pkg/mqtt"
	"github.com/half-shot/matrix-poweredup/pkg/mqtt/topic"
)

// Gateway is the other end of the protocol: it serves local hubs to a Driver
// over MQTT. With a sim hub it stands in for a BLE gateway during development.
type Gateway struct {
	client mqtt.Client
	topics *topic.Builder

	mu   sync.Mutex
	hubs map[string]poweredup.Hub
}

func NewGateway(client mqtt.Client, topicRoot string) *Gateway {
	return &Gateway{
		client: client,
		topics: topic.NewBuilder(topicRoot),
		hubs:   make(map[string]poweredup.Hub),
	}
}

// Serve announces hubs by ID and answers requests until ctx is done. On exit
// the retained announcements are cleared.
func (g *Gateway) Serve(ctx context.Context, hubs map[string]poweredup.Hub) error {
	g.mu.Lock()
	for id, h := range hubs {
		g.hubs[id] = h
	}
	g.mu.Unlock()

	routes := map[string]mqtt.MessageHandler{
		paths.Connect:    g.handleConnect,
		paths.Command:    g.handleCommand,
		paths.Disconnect: g.handleDisconnect,
	}
	for segment, h := range routes {
		if err := g.client.Subscribe(ctx, g.topics.Wildcard(segment), 1, h); err != nil {
			return fmt.Errorf("failed to subscribe to %s: %w", segment, err)
		}
	}

	for id, h := range hubs {
		body, _ := json.Marshal(announcement{Name: h.Name(), Type: h.Type()})
		if err := g.client.Publish(ctx, g.topics.Build(paths.Announce, id), 1, true, body); err != nil {
			return fmt.Errorf("failed to announce hub %s: %w", id, err)
		}
		log.Info("Announced hub", "hubID", id, "name", h.Name())
	}

	<-ctx.Done()

	cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	for id := range hubs {
		_ = g.client.Publish(cleanupCtx, g.topics.Build(paths.Announce, id), 1, true, nil)
	}
	for segment := range routes {
		_ = g.client.Unsubscribe(cleanupCtx, g.topics.Wildcard(segment))
	}
	return nil
}

func (g *Gateway) hub(segment, t string) (string, poweredup.Hub, bool) {
	id, ok := g.topics.ID(segment, t)
	if !ok {
		return "", nil, false
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	h, ok := g.hubs[id]
	return id, h, ok
}

func (g *Gateway) handleConnect(ctx context.Context, t string, payload []byte) {
	id, h, ok := g.hub(paths.Connect, t)
	if !ok {
		return
	}
	var req connectRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		log.Warn("Ignoring malformed connect request", "topic", t, "err", err)
		return
	}

	r := reply{RequestID: req.RequestID}
	if err := h.Connect(ctx); err != nil {
		r.Error = err.Error()
	} else {
		r.Devices = listDevices(ctx, h)
	}
	g.reply(ctx, paths.Attached, id, r)
}

func (g *Gateway) handleCommand(ctx context.Context, t string, payload []byte) {
	id, h, ok := g.hub(paths.Command, t)
	if !ok {
		return
	}
	var req commandRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		log.Warn("Ignoring malformed command", "topic", t, "err", err)
		return
	}

	r := reply{RequestID: req.RequestID}
	if err := execute(ctx, h, req); err != nil {
		r.Error = err.Error()
	}
	g.reply(ctx, paths.CommandAck, id, r)
}

func (g *Gateway) handleDisconnect(ctx context.Context, t string, _ []byte) {
	_, h, ok := g.hub(paths.Disconnect, t)
	if !ok {
		return
	}
	if err := h.Disconnect(ctx); err != nil {
		log.Warn("Failed to disconnect hub", "hub", h.Name(), "err", err)
	}
}

func (g *Gateway) reply(ctx context.Context, segment, id string, r reply) {
	body, _ := json.Marshal(r)
	if err := g.client.Publish(ctx, g.topics.Build(segment, id), 1, false, body); err != nil {
		log.Error(err, "Failed to publish gateway reply", "hubID", id, "requestId", r.RequestID)
	}
}

func listDevices(ctx context.Context, h poweredup.Hub) []deviceInfo {
	var out []deviceInfo
	for _, typ := range poweredup.DeviceTypes {
		devs, err := h.DevicesByType(ctx, typ)
		if err != nil {
			continue
		}
		for _, d := range devs {
			out = append(out, deviceInfo{Port: d.Port(), Type: d.Type()})
		}
	}
	return out
}

func execute(ctx context.Context, h poweredup.Hub, req commandRequest) error {
	dev, err := h.DeviceAtPort(ctx, req.Port)
	if err != nil {
		return err
	}
	m, ok := dev.(poweredup.TachoMotor)
	if !ok {
		return fmt.Errorf("device at port %s is not a motor", req.Port)
	}

	switch req.Op {
	case opRotate:
		return m.RotateByDegrees(ctx, req.Degrees, req.Speed)
	case opGoto:
		return m.GotoAbsolutePosition(ctx, req.Position, req.Speed)
	case opSpeed:
		return m.SetSpeed(ctx, req.Speed, time.Duration(req.RampMs)*time.Millisecond)
	}
	return fmt.Errorf("unknown op %q", req.Op)
}
