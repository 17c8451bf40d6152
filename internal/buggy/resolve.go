package buggy

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/half-shot/matrix-poweredup/internal/poweredup"
)

// Ports the motors are expected on.
const (
	DrivePort    = "A"
	SteeringPort = "B"
)

// ErrWrongHubType is returned when the hub is not a Technic medium hub.
var ErrWrongHubType = errors.New("wrong hub type, expected " + string(poweredup.HubTypeTechnicMedium))

// MissingDevicesError names every device that could not be found.
type MissingDevicesError struct {
	Devices []string
}

func (e *MissingDevicesError) Error() string {
	return "could not find devices: " + strings.Join(e.Devices, ", ")
}

// FromHub resolves a buggy on a connected hub. Every device is looked up
// before failing so the error lists all of the missing ones.
func FromHub(ctx context.Context, hub poweredup.Hub) (*Buggy, error) {
	if hub.Type() != poweredup.HubTypeTechnicMedium {
		return nil, fmt.Errorf("%w, got %s", ErrWrongHubType, hub.Type())
	}

	var (
		devices Devices
		missing []string
	)

	motorAt := func(name, port string) (poweredup.TachoMotor, error) {
		dev, err := hub.DeviceAtPort(ctx, port)
		if errors.Is(err, poweredup.ErrNotAttached) {
			missing = append(missing, name)
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		m, ok := dev.(poweredup.TachoMotor)
		if !ok {
			missing = append(missing, fmt.Sprintf("%s (port %s has %s)", name, port, dev.Type()))
			return nil, nil
		}
		return m, nil
	}

	byType := func(name string, t poweredup.DeviceType) (poweredup.Device, error) {
		found, err := hub.DevicesByType(ctx, t)
		if err != nil {
			return nil, err
		}
		if len(found) == 0 {
			missing = append(missing, name)
			return nil, nil
		}
		return found[0], nil
	}

	var err error
	if devices.DriveMotor, err = motorAt("driveMotor", DrivePort); err != nil {
		return nil, err
	}
	if devices.SteeringMotor, err = motorAt("steeringMotor", SteeringPort); err != nil {
		return nil, err
	}

	sensors := []struct {
		name string
		typ  poweredup.DeviceType
		dst  *poweredup.Device
	}{
		{"tiltSensor", poweredup.DeviceTypeTechnicMediumHubTiltSensor, &devices.TiltSensor},
		{"gyroSensor", poweredup.DeviceTypeTechnicMediumHubGyroSensor, &devices.GyroSensor},
		{"accelSensor", poweredup.DeviceTypeTechnicMediumHubAccelerometer, &devices.AccelSensor},
		{"currentSensor", poweredup.DeviceTypeCurrentSensor, &devices.CurrentSensor},
		{"voltageSensor", poweredup.DeviceTypeVoltageSensor, &devices.VoltageSensor},
		{"led", poweredup.DeviceTypeHubLED, &devices.LED},
	}
	for _, s := range sensors {
		if *s.dst, err = byType(s.name, s.typ); err != nil {
			return nil, err
		}
	}

	if len(missing) > 0 {
		return nil, &MissingDevicesError{Devices: missing}
	}
	return New(hub, devices), nil
}
