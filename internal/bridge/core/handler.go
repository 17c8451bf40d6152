package core

import (
	"context"
	"errors"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/half-shot/matrix-poweredup/internal/buggy"
	"github.com/half-shot/matrix-poweredup/internal/pkg/metrics"
)

// Vehicle is the part of *buggy.Buggy commands act on.
type Vehicle interface {
	Steer(ctx context.Context, dir buggy.SteerDirection, degrees int) error
	Drive(ctx context.Context, dir buggy.DriveDirection, speed int, duration time.Duration) error
	SetSpeed(ctx context.Context, speed int) error
}

var _ Vehicle = (*buggy.Buggy)(nil)

// CommandFunc runs one named command.
type CommandFunc func(ctx context.Context, cc *CommandContext) error

// Handler runs buggy commands against a Vehicle.
type Handler struct {
	vehicle Vehicle
	clock   clock.Clock
	routes  map[string]CommandFunc
}

var _ Consumer = (*Handler)(nil)

// NewHandler returns a Handler for v. A nil clk uses the wall clock.
func NewHandler(v Vehicle, clk clock.Clock) *Handler {
	if clk == nil {
		clk = clock.New()
	}
	h := &Handler{vehicle: v, clock: clk}
	h.routes = map[string]CommandFunc{
		CommandTurn:  h.turn,
		CommandDrive: h.drive,
		CommandSpeed: h.speed,
	}
	return h
}

// Routes lists the commands this handler acts on.
func (h *Handler) Routes() map[string]CommandFunc {
	return h.routes
}

// Handle runs the route for cc. Commands without a route are counted as ok
// and left to their default handler.
func (h *Handler) Handle(ctx context.Context, cc *CommandContext) error {
	fn, ok := h.routes[cc.Name]
	if !ok {
		metrics.CommandsTotal.WithLabelValues(cc.Name, result(nil)).Inc()
		return nil
	}

	err := fn(ctx, cc)
	metrics.CommandsTotal.WithLabelValues(cc.Name, result(err)).Inc()
	if err == nil {
		h.observeRoundTrip(cc)
	}
	return cc.ErrorPassthrough(ctx, err)
}

func (h *Handler) turn(ctx context.Context, cc *CommandContext) error {
	cmd, err := ValidateTurn(cc.Payload)
	if err != nil {
		return err
	}
	return h.vehicle.Steer(ctx, cmd.Direction, cmd.Angle)
}

func (h *Handler) drive(ctx context.Context, cc *CommandContext) error {
	cmd, err := ValidateDrive(cc.Payload)
	if err != nil {
		return err
	}
	return h.vehicle.Drive(ctx, cmd.Direction, cmd.Power, cmd.Duration)
}

func (h *Handler) speed(ctx context.Context, cc *CommandContext) error {
	cmd, err := ValidateSpeed(cc.Payload)
	if err != nil {
		return err
	}
	return h.vehicle.SetSpeed(ctx, cmd.Speed)
}

// observeRoundTrip records the time since the sender's ts, when one was sent.
func (h *Handler) observeRoundTrip(cc *CommandContext) {
	ts, ok := cc.Payload["ts"].(float64)
	if !ok || ts <= 0 {
		return
	}
	elapsed := h.clock.Now().Sub(time.UnixMilli(int64(ts)))
	if elapsed < 0 {
		return
	}
	metrics.CommandRoundTrip.WithLabelValues(cc.Name).Observe(elapsed.Seconds())
}

func result(err error) string {
	if err == nil {
		return "ok"
	}
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		return "invalid"
	}
	return "failed"
}
