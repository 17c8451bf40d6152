package core

import (
	"context"
	"sync"
	"time"

	"github.com/half-shot/matrix-poweredup/internal/pkg/metrics"
	"github.com/half-shot/matrix-poweredup/pkg/log"
	"github.com/half-shot/matrix-poweredup/pkg/matrix"
)

// StaleAfter is the event age beyond which commands are dropped.
const StaleAfter = 30 * time.Second

// Consumer handles a dispatched command.
type Consumer interface {
	Handle(ctx context.Context, cc *CommandContext) error
}

// ConsumerFunc adapts a function to Consumer.
type ConsumerFunc func(ctx context.Context, cc *CommandContext) error

func (f ConsumerFunc) Handle(ctx context.Context, cc *CommandContext) error { return f(ctx, cc) }

// Dispatcher turns room events into commands. Commands are handled one at a
// time in the order events arrive.
type Dispatcher struct {
	registry *Registry
	client   matrix.Client
	consumer Consumer

	mu sync.Mutex
}

func NewDispatcher(registry *Registry, client matrix.Client, consumer Consumer) *Dispatcher {
	return &Dispatcher{registry: registry, client: client, consumer: consumer}
}

// Dispatch handles one event. It returns the command context, or nil when
// the event was not a command for this bot.
func (d *Dispatcher) Dispatch(ctx context.Context, evt *matrix.Event) (*CommandContext, error) {
	if evt.Age > StaleAfter.Milliseconds() {
		log.Debug("Ignoring stale event", "event", evt.ID, "age", evt.Age)
		metrics.EventsDiscardedTotal.WithLabelValues("stale").Inc()
		return nil, nil
	}
	if evt.StateKey != nil {
		metrics.EventsDiscardedTotal.WithLabelValues("state").Inc()
		return nil, nil
	}

	var (
		def     *Definition
		payload Payload
		ok      bool
	)
	if evt.Type == matrix.EventMessage {
		def, payload, ok = d.registry.Match(evt.Body())
		if !ok {
			log.Debug("Command not understood", "event", evt.ID, "room", evt.RoomID)
			metrics.EventsDiscardedTotal.WithLabelValues("unmatched").Inc()
			return nil, nil
		}
	} else {
		def, ok = d.registry.ByEventType(evt.Type)
		if !ok {
			return nil, nil
		}
		payload = Payload(evt.Content)
	}

	cc := NewCommandContext(def, payload, evt, d.client)

	d.mu.Lock()
	defer d.mu.Unlock()

	cc.Log().Info("Handling command", "sender", evt.Sender)
	if err := d.consumer.Handle(ctx, cc); err != nil {
		return cc, err
	}
	if def.DefaultHandler != nil {
		return cc, def.DefaultHandler(ctx, cc)
	}
	return cc, nil
}

// HandleEvent is a matrix.EventHandler that logs failures.
func (d *Dispatcher) HandleEvent(ctx context.Context, evt *matrix.Event) {
	cc, err := d.Dispatch(ctx, evt)
	if err != nil && cc != nil {
		cc.Log().Error(err, "Command failed")
	}
}
