package options

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/pflag"

	"github.com/half-shot/matrix-poweredup/pkg/mqtt"
)

var _ IOptions = (*MqttOptions)(nil)

// MqttOptions contains configuration for the MQTT client and topic namespace.
type MqttOptions struct {
	Broker   string `json:"broker" mapstructure:"broker"`
	Username string `json:"username" mapstructure:"username"`
	Password string `json:"password" mapstructure:"password"`
	ClientID string `json:"client-id" mapstructure:"client-id"`

	KeepAlive      time.Duration `json:"keep-alive" mapstructure:"keep-alive"`
	ConnectTimeout time.Duration `json:"connect-timeout" mapstructure:"connect-timeout"`
	SessionExpiry  uint32        `json:"session-expiry" mapstructure:"session-expiry"`
	CleanStart     bool          `json:"clean-start" mapstructure:"clean-start"`

	// InsecureSkipVerify disables TLS certificate checks. Only for local brokers.
	InsecureSkipVerify bool `json:"insecure-skip-verify" mapstructure:"insecure-skip-verify"`

	// TopicRoot prefixes every topic: {TopicRoot}/hub/...
	TopicRoot string `json:"topic-root" mapstructure:"topic-root"`

	// RequestTimeout bounds a single request/ack round trip with the gateway.
	RequestTimeout time.Duration `json:"request-timeout" mapstructure:"request-timeout"`
}

// NewMqttOptions creates a new MqttOptions with default values.
func NewMqttOptions() *MqttOptions {
	return &MqttOptions{
		Broker:         "tcp://localhost:1883",
		KeepAlive:      60 * time.Second,
		ConnectTimeout: 5 * time.Second,
		SessionExpiry:  60,
		CleanStart:     true,
		TopicRoot:      "poweredup/v1",
		RequestTimeout: 70 * time.Second,
	}
}

func (o *MqttOptions) Validate() []error {
	if o == nil {
		return nil
	}

	var errs []error
	if err := o.ToClientConfig().Validate(); err != nil {
		errs = append(errs, errors.New("mqtt.broker: "+err.Error()))
	}
	if o.TopicRoot == "" {
		errs = append(errs, errors.New("mqtt.topic-root must not be empty"))
	}
	if o.RequestTimeout <= 0 {
		errs = append(errs, errors.New("mqtt.request-timeout must be positive"))
	}
	return errs
}

// AddFlags adds flags for MqttOptions to the specified FlagSet.
func (o *MqttOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.StringVar(&o.Broker, "mqtt.broker", o.Broker, "The URL of the MQTT broker.")
	fs.StringVar(&o.Username, "mqtt.username", o.Username, "The username for MQTT authentication.")
	fs.StringVar(&o.Password, "mqtt.password", o.Password, "The password for MQTT authentication.")
	fs.StringVar(&o.ClientID, "mqtt.client-id", o.ClientID, "Explicit client ID. Generated when empty.")

	fs.DurationVar(&o.KeepAlive, "mqtt.keep-alive", o.KeepAlive, "MQTT keep alive interval.")
	fs.DurationVar(&o.ConnectTimeout, "mqtt.connect-timeout", o.ConnectTimeout, "Timeout for establishing the MQTT connection.")
	fs.Uint32Var(&o.SessionExpiry, "mqtt.session-expiry", o.SessionExpiry, "MQTT session expiry interval in seconds.")
	fs.BoolVar(&o.CleanStart, "mqtt.clean-start", o.CleanStart, "Start a clean MQTT session.")
	fs.BoolVar(&o.InsecureSkipVerify, "mqtt.insecure-skip-verify", o.InsecureSkipVerify, "If true, skips TLS certificate verification.")

	fs.StringVar(&o.TopicRoot, "mqtt.topic-root", o.TopicRoot, "Namespace prefix of the hub gateway topics.")
	fs.DurationVar(&o.RequestTimeout, "mqtt.request-timeout", o.RequestTimeout, "Maximum wait for a gateway acknowledgement.")
}

// ToClientConfig converts the options into a client config. A missing client
// ID is generated so several bridges can share a broker.
func (o *MqttOptions) ToClientConfig() *mqtt.ClientConfig {
	clientID := o.ClientID
	if clientID == "" {
		clientID = "buggy-bridge-" + uuid.NewString()[:8]
	}
	return &mqtt.ClientConfig{
		BrokerURL:          o.Broker,
		Username:           o.Username,
		Password:           o.Password,
		ClientID:           clientID,
		KeepAlive:          uint16(o.KeepAlive.Seconds()),
		SessionExpiry:      o.SessionExpiry,
		ConnectTimeout:     o.ConnectTimeout,
		CleanStart:         o.CleanStart,
		InsecureSkipVerify: o.InsecureSkipVerify,
	}
}
