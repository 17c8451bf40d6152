package app

import (
	"fmt"

	genericapiserver "k8s.io/apiserver/pkg/server"

	"github.com/half-shot/matrix-poweredup/cmd/buggy-gamepad/app/options"
	"github.com/half-shot/matrix-poweredup/pkg/app"
	"github.com/half-shot/matrix-poweredup/pkg/log"
)

const (
	commandName = "buggy-gamepad"
	commandDesc = `The buggy gamepad serves a page that reads a browser gamepad and
sends its sticks to the buggy bot's room as buggy.turn and buggy.speed events.

Open the page, press a button on the gamepad and drive.`
)

func NewApp() *app.App {
	opts := options.NewGamepadOptions()
	return app.NewApp(
		commandName,
		"Drive the buggy with a gamepad",
		app.WithDescription(commandDesc),
		app.WithOptions(opts),
		app.WithDefaultValidArgs(),
		app.WithRunFunc(run(opts)),
	)
}

func run(opts *options.GamepadOptions) app.RunFunc {
	return func() error {
		log.Init(opts.Log)
		ctx := genericapiserver.SetupSignalContext()

		cfg, err := opts.Config()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		c, err := cfg.NewController()
		if err != nil {
			return fmt.Errorf("failed to create gamepad controller: %w", err)
		}

		return c.Run(ctx)
	}
}
