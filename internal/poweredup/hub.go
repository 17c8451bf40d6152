// Package poweredup defines the capability surface of a LEGO Powered UP hub:
// discovering hubs, reaching their devices and driving motors. Drivers live
// in sub-packages.
package poweredup

import (
	"context"
	"errors"
	"time"

	"github.com/benbjohnson/clock"
)

// ErrNotAttached is returned when no device sits at the requested port.
var ErrNotAttached = errors.New("no device attached")

// Device is anything attached to, or built into, a hub.
type Device interface {
	Type() DeviceType

	// Port is the hub port name ("A".."D") or an internal identifier.
	Port() string
}

// TachoMotor is a motor with a rotation sensor.
// Speeds are percentages in [-100, 100]; the sign selects the direction.
type TachoMotor interface {
	Device

	// RotateByDegrees turns the motor by degrees in the direction of speed
	// and returns once the rotation completes.
	RotateByDegrees(ctx context.Context, degrees int, speed int) error

	// GotoAbsolutePosition moves to position degrees from the calibrated zero.
	GotoAbsolutePosition(ctx context.Context, position int, speed int) error

	// SetSpeed runs the motor continuously, reaching speed over ramp.
	SetSpeed(ctx context.Context, speed int, ramp time.Duration) error
}

// Hub is a connected (or connectable) Powered UP hub.
type Hub interface {
	Name() string
	Type() HubType

	Connect(ctx context.Context) error
	Disconnect(ctx context.Context) error

	// DeviceAtPort returns the device at port, or ErrNotAttached.
	DeviceAtPort(ctx context.Context, port string) (Device, error)

	// DevicesByType returns every device of type t. The result may be empty.
	DevicesByType(ctx context.Context, t DeviceType) ([]Device, error)

	// Sleep waits for d on the hub's schedule.
	Sleep(ctx context.Context, d time.Duration) error
}

// Scanner discovers hubs. The returned channel yields each hub once and is
// closed when ctx is done.
type Scanner interface {
	Scan(ctx context.Context) (<-chan Hub, error)
}

// SleepContext waits d on clk, returning early with ctx's error.
func SleepContext(ctx context.Context, clk clock.Clock, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := clk.Timer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
