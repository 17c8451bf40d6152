package poweredup

// HubType identifies a hub model as reported in its advertisement.
type HubType string

const (
	HubTypeUnknown       HubType = "UNKNOWN"
	HubTypeWeDo2         HubType = "WEDO2_SMART_HUB"
	HubTypeMoveHub       HubType = "MOVE_HUB"
	HubTypeHub           HubType = "HUB"
	HubTypeRemoteControl HubType = "REMOTE_CONTROL"
	HubTypeTechnicMedium HubType = "TECHNIC_MEDIUM_HUB"
)

// DeviceType identifies an attached or built-in device.
type DeviceType string

const (
	DeviceTypeUnknown DeviceType = "UNKNOWN"

	DeviceTypeMediumLinearMotor        DeviceType = "MEDIUM_LINEAR_MOTOR"
	DeviceTypeTechnicLargeLinearMotor  DeviceType = "TECHNIC_LARGE_LINEAR_MOTOR"
	DeviceTypeTechnicXLargeLinearMotor DeviceType = "TECHNIC_XLARGE_LINEAR_MOTOR"
	DeviceTypeTechnicMediumAngular     DeviceType = "TECHNIC_MEDIUM_ANGULAR_MOTOR"
	DeviceTypeTechnicLargeAngular      DeviceType = "TECHNIC_LARGE_ANGULAR_MOTOR"
	DeviceTypeSimpleMediumLinearMotor  DeviceType = "SIMPLE_MEDIUM_LINEAR_MOTOR"

	DeviceTypeTechnicMediumHubTiltSensor    DeviceType = "TECHNIC_MEDIUM_HUB_TILT_SENSOR"
	DeviceTypeTechnicMediumHubGyroSensor    DeviceType = "TECHNIC_MEDIUM_HUB_GYRO_SENSOR"
	DeviceTypeTechnicMediumHubAccelerometer DeviceType = "TECHNIC_MEDIUM_HUB_ACCELEROMETER"
	DeviceTypeTechnicMediumHubTemperature   DeviceType = "TECHNIC_MEDIUM_HUB_TEMPERATURE_SENSOR"
	DeviceTypeCurrentSensor                 DeviceType = "CURRENT_SENSOR"
	DeviceTypeVoltageSensor                 DeviceType = "VOLTAGE_SENSOR"
	DeviceTypeHubLED                        DeviceType = "HUB_LED"
)

// DeviceTypes lists every known device type.
var DeviceTypes = []DeviceType{
	DeviceTypeMediumLinearMotor,
	DeviceTypeTechnicLargeLinearMotor,
	DeviceTypeTechnicXLargeLinearMotor,
	DeviceTypeTechnicMediumAngular,
	DeviceTypeTechnicLargeAngular,
	DeviceTypeSimpleMediumLinearMotor,
	DeviceTypeTechnicMediumHubTiltSensor,
	DeviceTypeTechnicMediumHubGyroSensor,
	DeviceTypeTechnicMediumHubAccelerometer,
	DeviceTypeTechnicMediumHubTemperature,
	DeviceTypeCurrentSensor,
	DeviceTypeVoltageSensor,
	DeviceTypeHubLED,
}

// IsTachoMotor reports whether devices of type t have a rotation sensor and
// accept position commands.
func IsTachoMotor(t DeviceType) bool {
	switch t {
	case DeviceTypeMediumLinearMotor,
		DeviceTypeTechnicLargeLinearMotor,
		DeviceTypeTechnicXLargeLinearMotor,
		DeviceTypeTechnicMediumAngular,
		DeviceTypeTechnicLargeAngular:
		return true
	}
	return false
}
