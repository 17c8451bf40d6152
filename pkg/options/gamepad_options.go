package options

import (
	"errors"
	"time"

	"github.com/spf13/pflag"
)

var _ IOptions = (*GamepadOptions)(nil)

// GamepadOptions tunes how raw stick positions become buggy events.
type GamepadOptions struct {
	// Interval is the minimum spacing between processed samples.
	Interval time.Duration `json:"interval" mapstructure:"interval"`

	// Deadband is the smallest axis change that produces an event.
	Deadband float64 `json:"deadband" mapstructure:"deadband"`

	// SteerAxis and SpeedAxis index the browser Gamepad.axes array.
	SteerAxis int `json:"steer-axis" mapstructure:"steer-axis"`
	SpeedAxis int `json:"speed-axis" mapstructure:"speed-axis"`
}

func NewGamepadOptions() *GamepadOptions {
	return &GamepadOptions{
		Interval:  33 * time.Millisecond,
		Deadband:  0.05,
		SteerAxis: 0,
		SpeedAxis: 1,
	}
}

func (o *GamepadOptions) Validate() []error {
	if o == nil {
		return nil
	}

	var errs []error
	if o.Interval <= 0 {
		errs = append(errs, errors.New("gamepad.interval must be positive"))
	}
	if o.Deadband < 0 || o.Deadband >= 1 {
		errs = append(errs, errors.New("gamepad.deadband must be in [0, 1)"))
	}
	if o.SteerAxis < 0 || o.SpeedAxis < 0 {
		errs = append(errs, errors.New("gamepad axes must not be negative"))
	}
	return errs
}

func (o *GamepadOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.DurationVar(&o.Interval, "gamepad.interval", o.Interval, "Minimum time between processed gamepad samples.")
	fs.Float64Var(&o.Deadband, "gamepad.deadband", o.Deadband, "Axis changes smaller than this are ignored.")
	fs.IntVar(&o.SteerAxis, "gamepad.steer-axis", o.SteerAxis, "Gamepad axis index used for steering.")
	fs.IntVar(&o.SpeedAxis, "gamepad.speed-axis", o.SpeedAxis, "Gamepad axis index used for speed.")
}
