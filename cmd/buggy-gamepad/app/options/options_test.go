package options

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGamepadOptionsValidate(t *testing.T) {
	o := NewGamepadOptions()
	o.MatrixOptions.HomeserverURL = "https://matrix.example.org"
	o.MatrixOptions.AccessToken = "syt_token"
	o.MatrixOptions.RoomID = "!buggy:example.org"
	require.NoError(t, o.Validate())

	o.HttpOptions.Addr = ""
	err := o.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "http.addr is required")

	o.HttpOptions.Addr = DefaultAddr
	o.GamepadOptions.Deadband = 2
	assert.Error(t, o.Validate())
}

func TestGamepadOptionsConfig(t *testing.T) {
	o := NewGamepadOptions()
	cfg, err := o.Config()
	require.NoError(t, err)
	assert.Same(t, o.GamepadOptions, cfg.GamepadOptions)
}
