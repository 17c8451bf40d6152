package options

import (
	"fmt"
	"strings"

	utilerrors "k8s.io/apimachinery/pkg/util/errors"
	cliflag "k8s.io/component-base/cli/flag"

	"github.com/half-shot/matrix-poweredup/internal/bridge"
	"github.com/half-shot/matrix-poweredup/pkg/app"
	"github.com/half-shot/matrix-poweredup/pkg/log"
	"github.com/half-shot/matrix-poweredup/pkg/options"
)

// DefaultOpsAddr serves /healthz, /readyz and /metrics.
const DefaultOpsAddr = ":9090"

type BridgeOptions struct {
	MatrixOptions *options.MatrixOptions `json:"matrix" mapstructure:"matrix"`
	HubOptions    *options.HubOptions    `json:"hub" mapstructure:"hub"`
	MqttOptions   *options.MqttOptions   `json:"mqtt" mapstructure:"mqtt"`
	HttpOptions   *options.HttpOptions   `json:"http" mapstructure:"http"`
	Log           *log.Options           `json:"log" mapstructure:"log"`
}

var _ app.NamedFlagSetOptions = (*BridgeOptions)(nil)

func NewBridgeOptions() *BridgeOptions {
	return &BridgeOptions{
		MatrixOptions: options.NewMatrixOptions(),
		HubOptions:    options.NewHubOptions(),
		MqttOptions:   options.NewMqttOptions(),
		HttpOptions:   options.NewHttpOptions(DefaultOpsAddr),
		Log:           log.NewOptions(),
	}
}

func (o *BridgeOptions) Flags() cliflag.NamedFlagSets {
	fss := cliflag.NamedFlagSets{}
	o.MatrixOptions.AddFlags(fss.FlagSet("matrix"))
	o.HubOptions.AddFlags(fss.FlagSet("hub"))
	o.MqttOptions.AddFlags(fss.FlagSet("mqtt"))
	o.HttpOptions.AddFlags(fss.FlagSet("http"))
	o.Log.AddFlags(fss.FlagSet("log"))
	return fss
}

func (o *BridgeOptions) Complete() error {
	return nil
}

func (o *BridgeOptions) Validate() error {
	errs := []error{}
	errs = append(errs, o.MatrixOptions.Validate()...)
	errs = append(errs, o.HubOptions.Validate()...)
	if o.HubOptions.Driver == options.HubDriverMQTT {
		errs = append(errs, o.MqttOptions.Validate()...)
	}
	errs = append(errs, o.HttpOptions.Validate()...)
	errs = append(errs, o.Log.Validate()...)
	return utilerrors.NewAggregate(errs)
}

func (o *BridgeOptions) Config() (*bridge.Config, error) {
	return &bridge.Config{
		MatrixOptions: o.MatrixOptions,
		HubOptions:    o.HubOptions,
		MqttOptions:   o.MqttOptions,
		HttpOptions:   o.HttpOptions,
	}, nil
}

// DemoOptions are the options of the demo command, which needs a hub but
// no homeserver.
type DemoOptions struct {
	HubOptions  *options.HubOptions  `json:"hub" mapstructure:"hub"`
	MqttOptions *options.MqttOptions `json:"mqtt" mapstructure:"mqtt"`
	Log         *log.Options         `json:"log" mapstructure:"log"`
}

var _ app.NamedFlagSetOptions = (*DemoOptions)(nil)

func NewDemoOptions() *DemoOptions {
	return &DemoOptions{
		HubOptions:  options.NewHubOptions(),
		MqttOptions: options.NewMqttOptions(),
		Log:         log.NewOptions(),
	}
}

func (o *DemoOptions) Flags() cliflag.NamedFlagSets {
	fss := cliflag.NamedFlagSets{}
	o.HubOptions.AddFlags(fss.FlagSet("hub"))
	o.MqttOptions.AddFlags(fss.FlagSet("mqtt"))
	o.Log.AddFlags(fss.FlagSet("log"))
	return fss
}

func (o *DemoOptions) Complete() error {
	return nil
}

func (o *DemoOptions) Validate() error {
	errs := []error{}
	errs = append(errs, o.HubOptions.Validate()...)
	if o.HubOptions.Driver == options.HubDriverMQTT {
		errs = append(errs, o.MqttOptions.Validate()...)
	}
	errs = append(errs, o.Log.Validate()...)
	return utilerrors.NewAggregate(errs)
}

func (o *DemoOptions) Config() *bridge.Config {
	return &bridge.Config{
		HubOptions:  o.HubOptions,
		MqttOptions: o.MqttOptions,
	}
}

// GatewayOptions are the options of the simulate-gateway command.
type GatewayOptions struct {
	MqttOptions *options.MqttOptions `json:"mqtt" mapstructure:"mqtt"`
	Log         *log.Options         `json:"log" mapstructure:"log"`

	// HubID is the identifier the simulated hub is announced under.
	HubID   string `json:"hub-id" mapstructure:"hub-id"`
	HubName string `json:"hub-name" mapstructure:"hub-name"`
}

var _ app.NamedFlagSetOptions = (*GatewayOptions)(nil)

func NewGatewayOptions() *GatewayOptions {
	return &GatewayOptions{
		MqttOptions: options.NewMqttOptions(),
		Log:         log.NewOptions(),
		HubID:       "sim-0001",
		HubName:     bridge.SimHubName,
	}
}

func (o *GatewayOptions) Flags() cliflag.NamedFlagSets {
	fss := cliflag.NamedFlagSets{}
	o.MqttOptions.AddFlags(fss.FlagSet("mqtt"))
	o.Log.AddFlags(fss.FlagSet("log"))

	fs := fss.FlagSet("gateway")
	fs.StringVar(&o.HubID, "hub-id", o.HubID, "Identifier the simulated hub is announced under.")
	fs.StringVar(&o.HubName, "hub-name", o.HubName, "Name the simulated hub advertises.")
	return fss
}

func (o *GatewayOptions) Complete() error {
	return nil
}

func (o *GatewayOptions) Validate() error {
	errs := []error{}
	errs = append(errs, o.MqttOptions.Validate()...)
	errs = append(errs, o.Log.Validate()...)
	if o.HubID == "" || strings.ContainsAny(o.HubID, "/+#") {
		errs = append(errs, fmt.Errorf("hub-id must be a single topic level, got %q", o.HubID))
	}
	return utilerrors.NewAggregate(errs)
}
