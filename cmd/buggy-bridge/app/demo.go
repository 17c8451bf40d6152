package app

import (
	"context"
	"fmt"

	genericapiserver "k8s.io/apiserver/pkg/server"

	"github.com/half-shot/matrix-poweredup/cmd/buggy-bridge/app/options"
	"github.com/half-shot/matrix-poweredup/internal/buggy"
	"github.com/half-shot/matrix-poweredup/pkg/app"
	"github.com/half-shot/matrix-poweredup/pkg/log"
)

const demoDesc = `Find the buggy and run a short routine without Matrix: centre the
steering, ramp the drive motor up, sweep the steering right and left, stop.`

func newDemoApp() *app.App {
	opts := options.NewDemoOptions()
	return app.NewApp(
		"demo",
		"Exercise the buggy's motors",
		app.WithDescription(demoDesc),
		app.WithOptions(opts),
		app.WithDefaultValidArgs(),
		app.WithRunFunc(func() error {
			log.Init(opts.Log)
			return runDemo(genericapiserver.SetupSignalContext(), opts)
		}),
	)
}

func runDemo(ctx context.Context, opts *options.DemoOptions) error {
	scanner, client, err := opts.Config().NewScanner()
	if err != nil {
		return err
	}
	if client != nil {
		if err := client.Start(ctx); err != nil {
			return fmt.Errorf("failed to start mqtt client: %w", err)
		}
		defer client.Disconnect(context.WithoutCancel(ctx))
		if err := client.AwaitConnection(ctx); err != nil {
			return fmt.Errorf("failed to connect to mqtt broker: %w", err)
		}
	}

	b, err := buggy.Discover(ctx, scanner, buggy.DiscoverOptions{
		Timeout: opts.HubOptions.DiscoveryTimeout,
		Name:    opts.HubOptions.Name,
	})
	if err != nil {
		return fmt.Errorf("failed to find buggy: %w", err)
	}
	defer func() {
		_ = b.Hub().Disconnect(context.WithoutCancel(ctx))
	}()

	return buggy.RunDemo(ctx, b)
}
