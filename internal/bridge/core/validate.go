package core

import (
	"fmt"
	"math"
	"time"

	"github.com/half-shot/matrix-poweredup/internal/buggy"
)

// Bounds and defaults for command arguments.
const (
	MaxTurnAngle = buggy.MaxAngle

	DefaultPower    = 50
	MaxPower        = 100
	DefaultDuration = 1000 * time.Millisecond
	MaxDuration     = 60000 * time.Millisecond

	MaxSpeed = 100
)

// TurnCommand is a validated buggy_turn payload.
type TurnCommand struct {
	Direction buggy.SteerDirection
	Angle     int
}

// DriveCommand is a validated buggy_drive payload.
type DriveCommand struct {
	Direction buggy.DriveDirection
	Power     int
	Duration  time.Duration
}

// SpeedCommand is a validated buggy_speed payload.
type SpeedCommand struct {
	Speed int
}

// ValidateTurn requires a direction and an angle within ±MaxTurnAngle.
func ValidateTurn(p Payload) (TurnCommand, error) {
	dir, err := enumField(p, "direction", string(buggy.Left), string(buggy.Right))
	if err != nil {
		return TurnCommand{}, err
	}

	angle, ok, err := intField(p, "angle")
	if err != nil {
		return TurnCommand{}, err
	}
	if !ok {
		return TurnCommand{}, InvalidValue("angle is required")
	}
	if angle < -MaxTurnAngle || angle > MaxTurnAngle {
		return TurnCommand{}, InvalidValue(fmt.Sprintf("angle must be between %d and %d", -MaxTurnAngle, MaxTurnAngle))
	}

	return TurnCommand{Direction: buggy.SteerDirection(dir), Angle: angle}, nil
}

// ValidateDrive requires a direction. Power and duration fall back to their
// defaults only when absent; an explicit 0 is kept.
func ValidateDrive(p Payload) (DriveCommand, error) {
	dir, err := enumField(p, "direction", string(buggy.Forward), string(buggy.Reverse))
	if err != nil {
		return DriveCommand{}, err
	}

	power, ok, err := intField(p, "power")
	if err != nil {
		return DriveCommand{}, err
	}
	if !ok {
		power = DefaultPower
	}
	if power < 0 || power > MaxPower {
		return DriveCommand{}, InvalidValue(fmt.Sprintf("power must be between 0 and %d", MaxPower))
	}

	duration := DefaultDuration
	ms, ok, err := intField(p, "duration")
	if err != nil {
		return DriveCommand{}, err
	}
	if ok {
		duration = time.Duration(ms) * time.Millisecond
	}
	if duration < 0 || duration > MaxDuration {
		return DriveCommand{}, InvalidValue(fmt.Sprintf("duration must be between 0 and %d ms", MaxDuration.Milliseconds()))
	}

	return DriveCommand{Direction: buggy.DriveDirection(dir), Power: power, Duration: duration}, nil
}

// ValidateSpeed requires a speed within ±MaxSpeed.
func ValidateSpeed(p Payload) (SpeedCommand, error) {
	speed, ok, err := intField(p, "speed")
	if err != nil {
		return SpeedCommand{}, err
	}
	if !ok {
		return SpeedCommand{}, InvalidValue("speed is required")
	}
	if speed < -MaxSpeed || speed > MaxSpeed {
		return SpeedCommand{}, InvalidValue(fmt.Sprintf("speed must be between %d and %d", -MaxSpeed, MaxSpeed))
	}
	return SpeedCommand{Speed: speed}, nil
}

func enumField(p Payload, key string, allowed ...string) (string, error) {
	v, _ := p[key].(string)
	for _, a := range allowed {
		if v == a {
			return v, nil
		}
	}
	if v == "" {
		return "", InvalidValue(key + " is required")
	}
	return "", InvalidValue(fmt.Sprintf("%s must be one of %v", key, allowed))
}

// intField reads an integral number. ok is false when the key is absent or null.
func intField(p Payload, key string) (v int, ok bool, err error) {
	raw, present := p[key]
	if !present || raw == nil {
		return 0, false, nil
	}

	var f float64
	switch n := raw.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		return n, true, nil
	case int64:
		f = float64(n)
	default:
		return 0, false, InvalidValue(key + " must be a number")
	}

	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, false, InvalidValue(key + " must be a whole number")
	}
	return int(f), true, nil
}
