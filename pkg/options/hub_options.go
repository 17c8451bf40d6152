package options

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
)

var _ IOptions = (*HubOptions)(nil)

// Hub drivers.
const (
	HubDriverMQTT = "mqtt"
	HubDriverSim  = "sim"
)

// HubOptions selects how the bridge reaches the buggy's hub.
type HubOptions struct {
	// Driver is either "mqtt" (BLE gateway over MQTT) or "sim" (in-memory).
	Driver string `json:"driver" mapstructure:"driver"`

	// DiscoveryTimeout bounds scanning, connecting and resolving the hub.
	DiscoveryTimeout time.Duration `json:"discovery-timeout" mapstructure:"discovery-timeout"`

	// Name restricts discovery to a hub advertising this name. Empty accepts the first hub.
	Name string `json:"name" mapstructure:"name"`
}

func NewHubOptions() *HubOptions {
	return &HubOptions{
		Driver:           HubDriverMQTT,
		DiscoveryTimeout: 30 * time.Second,
	}
}

func (o *HubOptions) Validate() []error {
	if o == nil {
		return nil
	}

	var errs []error
	switch o.Driver {
	case HubDriverMQTT, HubDriverSim:
	default:
		errs = append(errs, fmt.Errorf("hub.driver: must be %q or %q, got %q", HubDriverMQTT, HubDriverSim, o.Driver))
	}
	if o.DiscoveryTimeout <= 0 {
		errs = append(errs, fmt.Errorf("hub.discovery-timeout must be positive"))
	}
	return errs
}

func (o *HubOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.StringVar(&o.Driver, "hub.driver", o.Driver, "Hub driver: 'mqtt' for a BLE gateway, 'sim' for a simulated buggy.")
	fs.DurationVar(&o.DiscoveryTimeout, "hub.discovery-timeout", o.DiscoveryTimeout, "How long to look for the hub before giving up.")
	fs.StringVar(&o.Name, "hub.name", o.Name, "Only connect to a hub advertising this name.")
}
