package buggy

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/half-shot/matrix-poweredup/internal/poweredup"
	"github.com/half-shot/matrix-poweredup/pkg/log"
)

// DefaultDiscoveryTimeout bounds scanning, connecting and resolving.
const DefaultDiscoveryTimeout = 30 * time.Second

// ErrDiscoveryTimeout is returned when no usable hub is ready in time.
var ErrDiscoveryTimeout = errors.New("took too long to find hub")

// DiscoverOptions tunes Discover.
type DiscoverOptions struct {
	Timeout time.Duration

	// Name, if set, skips hubs advertising any other name.
	Name string

	Clock     clock.Clock
	Lifecycle *Lifecycle
}

// Discover scans for a hub, connects to the first acceptable one, resolves
// it as a buggy and centers the steering, all within opts.Timeout.
func Discover(ctx context.Context, scanner poweredup.Scanner, opts DiscoverOptions) (*Buggy, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultDiscoveryTimeout
	}
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	lc := opts.Lifecycle
	if lc == nil {
		lc = NewLifecycle()
	}

	dctx, cancel := opts.Clock.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	b, err := discover(dctx, scanner, opts.Name, lc)
	if err != nil {
		if errors.Is(dctx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			err = ErrDiscoveryTimeout
		}
		_ = lc.Fail(context.WithoutCancel(ctx), err)
		return nil, err
	}
	return b, nil
}

func discover(ctx context.Context, scanner poweredup.Scanner, name string, lc *Lifecycle) (*Buggy, error) {
	if err := lc.Scan(ctx); err != nil {
		return nil, err
	}

	hub, err := scanFor(ctx, scanner, name)
	if err != nil {
		return nil, err
	}

	log.Info("Discovered hub", "hub", hub.Name(), "type", hub.Type())
	if err := lc.Connect(ctx, hub.Name()); err != nil {
		return nil, err
	}
	if err := hub.Connect(ctx); err != nil {
		return nil, err
	}

	if err := lc.Resolve(ctx); err != nil {
		return nil, err
	}
	b, err := FromHub(ctx, hub)
	if err != nil {
		_ = hub.Disconnect(context.WithoutCancel(ctx))
		return nil, err
	}
	// Steering starts wherever the motor was left; the tracked angle assumes center.
	if err := b.Reset(ctx); err != nil {
		_ = hub.Disconnect(context.WithoutCancel(ctx))
		return nil, fmt.Errorf("failed to center steering: %w", err)
	}

	if err := lc.MarkReady(ctx); err != nil {
		return nil, err
	}
	log.Info("Found buggy", "hub", hub.Name())
	return b, nil
}

// scanFor returns the first hub matching name and stops the scan.
func scanFor(ctx context.Context, scanner poweredup.Scanner, name string) (poweredup.Hub, error) {
	scanCtx, stop := context.WithCancel(ctx)
	defer stop()

	log.Info("Scanning for hubs")
	hubs, err := scanner.Scan(scanCtx)
	if err != nil {
		return nil, err
	}

	for {
		select {
		case hub, ok := <-hubs:
			if !ok {
				if err := ctx.Err(); err != nil {
					return nil, err
				}
				return nil, errors.New("scan ended without finding a hub")
			}
			if name != "" && hub.Name() != name {
				log.Debug("Skipping hub", "hub", hub.Name(), "want", name)
				continue
			}
			return hub, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}
