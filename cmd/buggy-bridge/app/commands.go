package app

import (
	"fmt"
	"io"
	"os"

	"github.com/gosuri/uitable"

	"github.com/half-shot/matrix-poweredup/internal/bridge/core"
	"github.com/half-shot/matrix-poweredup/pkg/app"
)

func newCommandsApp() *app.App {
	return app.NewApp(
		"commands",
		"List the commands the bot understands",
		app.WithNoConfig(),
		app.WithDefaultValidArgs(),
		app.WithRunFunc(func() error {
			return printCommands(os.Stdout, core.Commands())
		}),
	)
}

func printCommands(w io.Writer, reg *core.Registry) error {
	table := uitable.New()
	table.MaxColWidth = 60
	table.Wrap = true

	table.AddRow("NAME", "PATTERN", "EVENT TYPE", "USAGE")
	for _, def := range reg.Definitions() {
		eventType := def.EventType
		if eventType == "" {
			eventType = "-"
		}
		table.AddRow(def.Name, def.Pattern.String(), eventType, def.Usage)
	}

	_, err := fmt.Fprintln(w, table)
	return err
}
