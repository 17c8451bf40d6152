// Package mqtthub reaches Powered UP hubs through a BLE gateway that
// publishes hub advertisements and executes motor commands over MQTT.
package mqtthub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/half-shot/matrix-poweredup/internal/pkg/metrics"
	"github.com/half-shot/matrix-poweredup/internal/pkg/mqtt/paths"
	"github.com/half-shot/matrix-poweredup/internal/poweredup"
	"github.com/half-shot/matrix-poweredup/pkg/log"
	"github.com/half-shot/matrix-poweredup/pkg/mqtt"
	"github.com/half-shot/matrix-poweredup/pkg/mqtt/topic"
)

// ErrTimeout is returned when the gateway does not answer in time.
var ErrTimeout = errors.New("gateway did not respond in time")

// GatewayError is a failure reported by the gateway for a request.
type GatewayError struct {
	Op      string
	Message string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway %s failed: %s", e.Op, e.Message)
}

// Options configures a Driver.
type Options struct {
	TopicRoot      string
	RequestTimeout time.Duration
	Clock          clock.Clock
}

// Driver implements poweredup.Scanner on top of an MQTT client.
type Driver struct {
	client  mqtt.Client
	topics  *topic.Builder
	timeout time.Duration
	clock   clock.Clock

	subMu      sync.Mutex
	subscribed bool

	lock    sync.Mutex
	pending map[string]chan reply
}

var _ poweredup.Scanner = (*Driver)(nil)

// New returns a Driver. The client must already be started.
func New(client mqtt.Client, opts Options) *Driver {
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 70 * time.Second
	}
	return &Driver{
		client:  client,
		topics:  topic.NewBuilder(opts.TopicRoot),
		timeout: opts.RequestTimeout,
		clock:   opts.Clock,
		pending: make(map[string]chan reply),
	}
}

// Scan subscribes to hub announcements. Retained announcements arrive
// immediately; each hub ID is yielded once per scan.
func (d *Driver) Scan(ctx context.Context) (<-chan poweredup.Hub, error) {
	if err := d.ensureSubscribed(ctx); err != nil {
		return nil, err
	}

	var (
		mu     sync.Mutex
		seen   = map[string]bool{}
		closed bool
		ch     = make(chan poweredup.Hub, 8)
	)

	filter := d.topics.Wildcard(paths.Announce)
	handler := func(_ context.Context, t string, payload []byte) {
		id, ok := d.topics.ID(paths.Announce, t)
		if !ok || len(payload) == 0 {
			return
		}
		var a announcement
		if err := json.Unmarshal(payload, &a); err != nil {
			log.Warn("Ignoring malformed hub announcement", "topic", t, "err", err)
			return
		}

		mu.Lock()
		defer mu.Unlock()
		if closed || seen[id] {
			return
		}
		seen[id] = true

		log.Info("Discovered hub", "hubID", id, "name", a.Name, "type", a.Type)
		select {
		case ch <- d.newHub(id, a):
		default:
			log.Warn("Dropping hub announcement, scanner is not being drained", "hubID", id)
		}
	}

	if err := d.client.Subscribe(ctx, filter, 1, handler); err != nil {
		return nil, fmt.Errorf("failed to subscribe to announcements: %w", err)
	}

	go func() {
		<-ctx.Done()
		unsubCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := d.client.Unsubscribe(unsubCtx, filter); err != nil {
			log.Debug("Failed to unsubscribe from announcements", "err", err)
		}

		mu.Lock()
		defer mu.Unlock()
		closed = true
		close(ch)
	}()

	return ch, nil
}

func (d *Driver) ensureSubscribed(ctx context.Context) error {
	d.subMu.Lock()
	defer d.subMu.Unlock()
	if d.subscribed {
		return nil
	}

	for _, segment := range []string{paths.Attached, paths.CommandAck} {
		filter := d.topics.Wildcard(segment)
		if err := d.client.Subscribe(ctx, filter, 1, d.handleReply); err != nil {
			return fmt.Errorf("failed to subscribe to %s: %w", filter, err)
		}
	}
	d.subscribed = true
	return nil
}

func (d *Driver) handleReply(_ context.Context, t string, payload []byte) {
	var r reply
	if err := json.Unmarshal(payload, &r); err != nil {
		log.Warn("Ignoring malformed gateway reply", "topic", t, "err", err)
		return
	}

	d.lock.Lock()
	defer d.lock.Unlock()
	if ch, ok := d.pending[r.RequestID]; ok {
		ch <- r
		delete(d.pending, r.RequestID)
	}
}

// request publishes payload to t and waits for the reply carrying requestID.
func (d *Driver) request(ctx context.Context, op, t, requestID string, payload any) (reply, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return reply{}, err
	}

	ch := make(chan reply, 1)
	d.lock.Lock()
	d.pending[requestID] = ch
	d.lock.Unlock()
	defer func() {
		d.lock.Lock()
		delete(d.pending, requestID)
		d.lock.Unlock()
	}()

	start := d.clock.Now()
	if err := d.client.Publish(ctx, t, 1, false, body); err != nil {
		return reply{}, fmt.Errorf("failed to publish %s: %w", op, err)
	}

	ctx, cancel := d.clock.WithTimeout(ctx, d.timeout)
	defer cancel()

	select {
	case r := <-ch:
		metrics.HubRequestLatency.WithLabelValues(op).Observe(d.clock.Since(start).Seconds())
		if r.Error != "" {
			return r, &GatewayError{Op: op, Message: r.Error}
		}
		return r, nil
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return reply{}, fmt.Errorf("%s: %w", op, ErrTimeout)
		}
		return reply{}, ctx.Err()
	}
}
