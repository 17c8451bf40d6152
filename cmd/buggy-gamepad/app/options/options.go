package options

import (
	"errors"

	utilerrors "k8s.io/apimachinery/pkg/util/errors"
	cliflag "k8s.io/component-base/cli/flag"

	"github.com/half-shot/matrix-poweredup/internal/gamepad"
	"github.com/half-shot/matrix-poweredup/pkg/app"
	"github.com/half-shot/matrix-poweredup/pkg/log"
	"github.com/half-shot/matrix-poweredup/pkg/options"
)

// DefaultAddr serves the controller page.
const DefaultAddr = "127.0.0.1:8080"

var errHTTPRequired = errors.New("http.addr is required to serve the controller page")

type GamepadOptions struct {
	MatrixOptions  *options.MatrixOptions  `json:"matrix" mapstructure:"matrix"`
	GamepadOptions *options.GamepadOptions `json:"gamepad" mapstructure:"gamepad"`
	HttpOptions    *options.HttpOptions    `json:"http" mapstructure:"http"`
	Log            *log.Options            `json:"log" mapstructure:"log"`
}

var _ app.NamedFlagSetOptions = (*GamepadOptions)(nil)

func NewGamepadOptions() *GamepadOptions {
	return &GamepadOptions{
		MatrixOptions:  options.NewMatrixOptions(),
		GamepadOptions: options.NewGamepadOptions(),
		HttpOptions:    options.NewHttpOptions(DefaultAddr),
		Log:            log.NewOptions(),
	}
}

func (o *GamepadOptions) Flags() cliflag.NamedFlagSets {
	fss := cliflag.NamedFlagSets{}
	o.MatrixOptions.AddFlags(fss.FlagSet("matrix"))
	o.GamepadOptions.AddFlags(fss.FlagSet("gamepad"))
	o.HttpOptions.AddFlags(fss.FlagSet("http"))
	o.Log.AddFlags(fss.FlagSet("log"))
	return fss
}

func (o *GamepadOptions) Complete() error {
	return nil
}

func (o *GamepadOptions) Validate() error {
	errs := []error{}
	errs = append(errs, o.MatrixOptions.Validate()...)
	errs = append(errs, o.GamepadOptions.Validate()...)
	if !o.HttpOptions.Enabled() {
		errs = append(errs, errHTTPRequired)
	}
	errs = append(errs, o.HttpOptions.Validate()...)
	errs = append(errs, o.Log.Validate()...)
	return utilerrors.NewAggregate(errs)
}

func (o *GamepadOptions) Config() (*gamepad.Config, error) {
	return &gamepad.Config{
		MatrixOptions:  o.MatrixOptions,
		GamepadOptions: o.GamepadOptions,
		HttpOptions:    o.HttpOptions,
	}, nil
}
