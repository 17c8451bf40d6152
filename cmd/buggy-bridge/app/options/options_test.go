package options

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/half-shot/matrix-poweredup/pkg/options"
)

func validBridgeOptions() *BridgeOptions {
	o := NewBridgeOptions()
	o.MatrixOptions.HomeserverURL = "https://matrix.example.org"
	o.MatrixOptions.AccessToken = "syt_token"
	o.MatrixOptions.RoomID = "!buggy:example.org"
	return o
}

func TestBridgeOptionsValidate(t *testing.T) {
	o := validBridgeOptions()
	require.NoError(t, o.Validate())

	o.MatrixOptions.AccessToken = ""
	o.HubOptions.Driver = "bluetooth"
	assert.Error(t, o.Validate())
}

func TestBridgeOptionsSkipsMqttForSim(t *testing.T) {
	o := validBridgeOptions()
	o.MqttOptions.Broker = ""
	assert.Error(t, o.Validate())

	o.HubOptions.Driver = options.HubDriverSim
	assert.NoError(t, o.Validate())
}

func TestBridgeOptionsFlags(t *testing.T) {
	fss := NewBridgeOptions().Flags()
	for _, name := range []string{"matrix", "hub", "mqtt", "http", "log"} {
		assert.Contains(t, fss.FlagSets, name)
	}
	assert.NotNil(t, fss.FlagSet("hub").Lookup("hub.driver"))
}

func TestBridgeOptionsConfig(t *testing.T) {
	o := validBridgeOptions()
	cfg, err := o.Config()
	require.NoError(t, err)
	assert.Same(t, o.MatrixOptions, cfg.MatrixOptions)
	assert.Same(t, o.HttpOptions, cfg.HttpOptions)
	assert.Equal(t, DefaultOpsAddr, cfg.HttpOptions.Addr)
}

func TestDemoOptionsValidate(t *testing.T) {
	o := NewDemoOptions()
	assert.NoError(t, o.Validate())

	o.HubOptions.DiscoveryTimeout = 0
	assert.Error(t, o.Validate())
}

func TestGatewayOptionsValidate(t *testing.T) {
	o := NewGatewayOptions()
	require.NoError(t, o.Validate())

	o.HubID = "a/b"
	assert.Error(t, o.Validate())
}
