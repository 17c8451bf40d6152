package app

import (
	"fmt"

	genericapiserver "k8s.io/apiserver/pkg/server"

	"github.com/half-shot/matrix-poweredup/cmd/buggy-bridge/app/options"
	"github.com/half-shot/matrix-poweredup/pkg/app"
	"github.com/half-shot/matrix-poweredup/pkg/log"
)

const (
	commandName = "buggy-bridge"
	commandDesc = `The buggy bridge is a Matrix bot that drives a LEGO Powered UP Technic buggy.

It finds the buggy's hub, joins the configured room and turns messages such as
"buggy turn left 15" or "buggy drive forward 60 500", as well as structured
buggy events, into motor commands.`
)

func NewApp() *app.App {
	opts := options.NewBridgeOptions()
	return app.NewApp(
		commandName,
		"Run the buggy Matrix bot",
		app.WithDescription(commandDesc),
		app.WithOptions(opts),
		app.WithDefaultValidArgs(),
		app.WithRunFunc(run(opts)),
		app.WithSubCommands(
			newDemoApp().Command(),
			newCommandsApp().Command(),
			newGatewayApp().Command(),
		),
	)
}

func run(opts *options.BridgeOptions) app.RunFunc {
	return func() error {
		log.Init(opts.Log)
		ctx := genericapiserver.SetupSignalContext()

		cfg, err := opts.Config()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		b, err := cfg.NewBridge()
		if err != nil {
			return fmt.Errorf("failed to create bridge: %w", err)
		}

		return b.Run(ctx)
	}
}
