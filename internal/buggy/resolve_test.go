package buggy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/half-shot/matrix-poweredup/internal/poweredup"
	"github.com/half-shot/matrix-poweredup/internal/poweredup/sim"
)

func TestFromHub(t *testing.T) {
	hub := sim.NewBuggyHub("buggy")
	require.NoError(t, hub.Connect(context.Background()))

	b, err := FromHub(context.Background(), hub)
	require.NoError(t, err)

	d := b.Devices()
	assert.Equal(t, DrivePort, d.DriveMotor.Port())
	assert.Equal(t, SteeringPort, d.SteeringMotor.Port())
	for _, dev := range []poweredup.Device{d.TiltSensor, d.GyroSensor, d.AccelSensor, d.CurrentSensor, d.VoltageSensor, d.LED} {
		assert.NotNil(t, dev)
	}
	assert.Equal(t, poweredup.DeviceTypeTechnicMediumHubTiltSensor, d.TiltSensor.Type())
	assert.Same(t, hub, b.Hub().(*sim.Hub))
}

func TestFromHubWrongType(t *testing.T) {
	hub := sim.NewHub("move", poweredup.HubTypeMoveHub)

	_, err := FromHub(context.Background(), hub)
	assert.ErrorIs(t, err, ErrWrongHubType)
}

func TestFromHubMissingDevices(t *testing.T) {
	tests := []struct {
		name   string
		detach []string
		want   []string
	}{
		{"drive motor", []string{"A"}, []string{"driveMotor"}},
		{"steering motor", []string{"B"}, []string{"steeringMotor"}},
		{"tilt", []string{"TILT"}, []string{"tiltSensor"}},
		{"gyro", []string{"GYRO"}, []string{"gyroSensor"}},
		{"accelerometer", []string{"ACCEL"}, []string{"accelSensor"}},
		{"current", []string{"CURRENT"}, []string{"currentSensor"}},
		{"voltage", []string{"VOLTAGE"}, []string{"voltageSensor"}},
		{"led", []string{"LED"}, []string{"led"}},
		{"several", []string{"B", "GYRO", "LED"}, []string{"steeringMotor", "gyroSensor", "led"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hub := sim.NewBuggyHub("buggy")
			for _, port := range tt.detach {
				hub.Detach(port)
			}

			_, err := FromHub(context.Background(), hub)
			var missing *MissingDevicesError
			require.ErrorAs(t, err, &missing)
			assert.Equal(t, tt.want, missing.Devices)
			for _, name := range tt.want {
				assert.Contains(t, err.Error(), name)
			}
		})
	}
}

func TestFromHubNonTachoMotor(t *testing.T) {
	hub := sim.NewBuggyHub("buggy", sim.WithDevice("A", poweredup.DeviceTypeSimpleMediumLinearMotor))

	_, err := FromHub(context.Background(), hub)
	var missing *MissingDevicesError
	require.ErrorAs(t, err, &missing)
	assert.Len(t, missing.Devices, 1)
	assert.Contains(t, missing.Devices[0], "driveMotor")
}
