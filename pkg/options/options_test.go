package options

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateAddress(t *testing.T) {
	assert.NoError(t, ValidateAddress(":8080"))
	assert.NoError(t, ValidateAddress("127.0.0.1:9090"))
	assert.NoError(t, ValidateAddress("localhost:9090"))
	assert.Error(t, ValidateAddress("8080"))
	assert.Error(t, ValidateAddress("example.com:80"))
	assert.Error(t, ValidateAddress(":99999"))
}

func TestMatrixOptionsValidate(t *testing.T) {
	o := NewMatrixOptions()
	assert.Len(t, o.Validate(), 3)

	o.HomeserverURL = "https://matrix.example.org"
	o.AccessToken = "syt_token"
	o.RoomID = "!room:example.org"
	assert.Empty(t, o.Validate())

	o.RoomID = "#alias:example.org"
	o.UserID = "bot"
	assert.Len(t, o.Validate(), 2)
}

func TestHubOptionsValidate(t *testing.T) {
	o := NewHubOptions()
	assert.Empty(t, o.Validate())

	o.Driver = "bluetooth"
	o.DiscoveryTimeout = 0
	assert.Len(t, o.Validate(), 2)
}

func TestMqttOptions(t *testing.T) {
	o := NewMqttOptions()
	assert.Empty(t, o.Validate())

	cfg := o.ToClientConfig()
	assert.Contains(t, cfg.ClientID, "buggy-bridge-")
	assert.EqualValues(t, 60, cfg.KeepAlive)

	o.Broker = "nonsense"
	o.TopicRoot = ""
	assert.Len(t, o.Validate(), 2)
}

func TestHttpOptions(t *testing.T) {
	o := NewHttpOptions("")
	assert.False(t, o.Enabled())
	assert.Empty(t, o.Validate())

	o.Addr = "bad"
	assert.True(t, o.Enabled())
	assert.Len(t, o.Validate(), 1)
}

func TestGamepadOptionsValidate(t *testing.T) {
	o := NewGamepadOptions()
	assert.Empty(t, o.Validate())

	o.Deadband = 1
	o.Interval = 0
	assert.Len(t, o.Validate(), 2)
}
