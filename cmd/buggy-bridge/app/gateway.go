package app

import (
	"context"
	"fmt"

	genericapiserver "k8s.io/apiserver/pkg/server"

	"github.com/half-shot/matrix-poweredup/cmd/buggy-bridge/app/options"
	"github.com/half-shot/matrix-poweredup/internal/poweredup"
	"github.com/half-shot/matrix-poweredup/internal/poweredup/mqtthub"
	"github.com/half-shot/matrix-poweredup/internal/poweredup/sim"
	"github.com/half-shot/matrix-poweredup/pkg/app"
	"github.com/half-shot/matrix-poweredup/pkg/log"
	"github.com/half-shot/matrix-poweredup/pkg/mqtt"
)

const gatewayDesc = `Announce a simulated buggy hub on the MQTT broker and answer the hub
gateway protocol for it, so the bridge can run with --hub.driver=mqtt without
Bluetooth hardware.`

func newGatewayApp() *app.App {
	opts := options.NewGatewayOptions()
	return app.NewApp(
		"simulate-gateway",
		"Serve a simulated hub over MQTT",
		app.WithDescription(gatewayDesc),
		app.WithOptions(opts),
		app.WithDefaultValidArgs(),
		app.WithRunFunc(func() error {
			log.Init(opts.Log)
			return runGateway(genericapiserver.SetupSignalContext(), opts)
		}),
	)
}

func runGateway(ctx context.Context, opts *options.GatewayOptions) error {
	client, err := mqtt.NewClient(opts.MqttOptions.ToClientConfig())
	if err != nil {
		return fmt.Errorf("failed to init mqtt client: %w", err)
	}
	if err := client.Start(ctx); err != nil {
		return fmt.Errorf("failed to start mqtt client: %w", err)
	}
	defer client.Disconnect(context.WithoutCancel(ctx))
	if err := client.AwaitConnection(ctx); err != nil {
		return fmt.Errorf("failed to connect to mqtt broker: %w", err)
	}

	hub := sim.NewBuggyHub(opts.HubName)
	gw := mqtthub.NewGateway(client, opts.MqttOptions.TopicRoot)
	return gw.Serve(ctx, map[string]poweredup.Hub{opts.HubID: hub})
}
