// Package bridge runs the chat bot: it finds the buggy, joins the room and
// turns room events into buggy commands.
package bridge

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/half-shot/matrix-poweredup/internal/bridge/core"
	"github.com/half-shot/matrix-poweredup/internal/buggy"
	"github.com/half-shot/matrix-poweredup/internal/pkg/server/http"
	"github.com/half-shot/matrix-poweredup/internal/poweredup"
	"github.com/half-shot/matrix-poweredup/pkg/log"
	"github.com/half-shot/matrix-poweredup/pkg/matrix"
	pkgmqtt "github.com/half-shot/matrix-poweredup/pkg/mqtt"
)

const (
	statusOnline  = "online"
	statusOffline = "offline"

	stopTimeout = 5 * time.Second
)

// Bridge is the bot service.
type Bridge struct {
	matrix   matrix.Client
	roomID   string
	scanner  poweredup.Scanner
	discover buggy.DiscoverOptions

	lifecycle *buggy.Lifecycle

	// Optional.
	mqtt        pkgmqtt.Client
	statusTopic string
	ops         *http.Server
}

func newBridge(mc matrix.Client, roomID string, scanner poweredup.Scanner, discover buggy.DiscoverOptions) *Bridge {
	lc := buggy.NewLifecycle()
	discover.Lifecycle = lc
	return &Bridge{
		matrix:    mc,
		roomID:    roomID,
		scanner:   scanner,
		discover:  discover,
		lifecycle: lc,
	}
}

// Lifecycle exposes the hub lifecycle, mostly for readiness checks.
func (b *Bridge) Lifecycle() *buggy.Lifecycle {
	return b.lifecycle
}

// Run blocks until ctx is done or a component fails. The room is only
// listened to once the buggy is ready.
func (b *Bridge) Run(ctx context.Context) error {
	log.Info("Starting buggy bridge", "room", b.roomID)

	g, ctx := errgroup.WithContext(ctx)
	if b.ops != nil {
		g.Go(func() error {
			return b.ops.Start(ctx)
		})
	}
	g.Go(func() error {
		return b.serve(ctx)
	})
	return g.Wait()
}

func (b *Bridge) serve(ctx context.Context) error {
	if b.mqtt != nil {
		if err := b.startMQTT(ctx); err != nil {
			return err
		}
		defer b.stopMQTT(context.WithoutCancel(ctx))
	}

	vehicle, err := buggy.Discover(ctx, b.scanner, b.discover)
	if err != nil {
		return fmt.Errorf("failed to find buggy: %w", err)
	}
	defer func() {
		if err := vehicle.Hub().Disconnect(context.WithoutCancel(ctx)); err != nil {
			log.Warn("Failed to disconnect hub", "error", err)
		}
	}()

	if err := b.matrix.EnsureJoined(ctx, b.roomID); err != nil {
		return fmt.Errorf("failed to join %s: %w", b.roomID, err)
	}

	d := core.NewDispatcher(core.Commands(), b.matrix, core.NewHandler(vehicle, nil))
	log.Info("Bot is now listening", "room", b.roomID)
	return b.matrix.Sync(ctx, d.HandleEvent)
}

func (b *Bridge) startMQTT(ctx context.Context) error {
	if err := b.mqtt.Start(ctx); err != nil {
		return fmt.Errorf("failed to start mqtt client: %w", err)
	}
	if err := b.mqtt.AwaitConnection(ctx); err != nil {
		return fmt.Errorf("failed to connect to mqtt broker: %w", err)
	}
	if b.statusTopic != "" {
		if err := b.mqtt.Publish(ctx, b.statusTopic, 1, true, []byte(statusOnline)); err != nil {
			log.Warn("Failed to publish bridge status", "topic", b.statusTopic, "error", err)
		}
	}
	return nil
}

func (b *Bridge) stopMQTT(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, stopTimeout)
	defer cancel()

	if b.statusTopic != "" {
		if err := b.mqtt.Publish(ctx, b.statusTopic, 1, true, []byte(statusOffline)); err != nil {
			log.Debug("Failed to publish bridge status", "error", err)
		}
	}
	b.mqtt.Disconnect(ctx)
}
