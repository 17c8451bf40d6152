package gamepad

import (
	"context"
	"fmt"

	"github.com/half-shot/matrix-poweredup/pkg/log"
	"github.com/half-shot/matrix-poweredup/pkg/matrix"
	"github.com/half-shot/matrix-poweredup/pkg/options"
)

type Config struct {
	MatrixOptions  *options.MatrixOptions
	GamepadOptions *options.GamepadOptions
	HttpOptions    *options.HttpOptions
}

// Controller is the gamepad service: a page and websocket feeding the room.
type Controller struct {
	matrix matrix.Client
	roomID string
	server *Server
}

// NewController builds the controller from its options.
func (cfg *Config) NewController() (*Controller, error) {
	mc, err := matrix.NewClient(matrix.Config{
		HomeserverURL: cfg.MatrixOptions.HomeserverURL,
		AccessToken:   cfg.MatrixOptions.AccessToken,
		UserID:        cfg.MatrixOptions.UserID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to init matrix client: %w", err)
	}
	return newController(mc, cfg.MatrixOptions.RoomID, cfg.GamepadOptions, cfg.HttpOptions), nil
}

func newController(mc matrix.Client, roomID string, gp *options.GamepadOptions, httpOpts *options.HttpOptions) *Controller {
	return &Controller{
		matrix: mc,
		roomID: roomID,
		server: NewServer(httpOpts, NewTranslator(gp, nil), NewSender(mc, roomID)),
	}
}

// Run joins the room and serves the page until ctx is done.
func (c *Controller) Run(ctx context.Context) error {
	if err := c.matrix.EnsureJoined(ctx, c.roomID); err != nil {
		return fmt.Errorf("failed to join %s: %w", c.roomID, err)
	}
	log.Info("Gamepad controller ready", "room", c.roomID)
	return c.server.Start(ctx)
}
