package bridge

import (
	"fmt"

	"github.com/half-shot/matrix-poweredup/internal/buggy"
	"github.com/half-shot/matrix-poweredup/internal/pkg/metrics"
	"github.com/half-shot/matrix-poweredup/internal/pkg/mqtt/paths"
	"github.com/half-shot/matrix-poweredup/internal/pkg/server/http"
	"github.com/half-shot/matrix-poweredup/internal/poweredup"
	"github.com/half-shot/matrix-poweredup/internal/poweredup/mqtthub"
	"github.com/half-shot/matrix-poweredup/internal/poweredup/sim"
	"github.com/half-shot/matrix-poweredup/pkg/matrix"
	pkgmqtt "github.com/half-shot/matrix-poweredup/pkg/mqtt"
	"github.com/half-shot/matrix-poweredup/pkg/mqtt/topic"
	"github.com/half-shot/matrix-poweredup/pkg/options"
)

// SimHubName is the name the simulated buggy hub advertises.
const SimHubName = "Technic Hub"

type Config struct {
	MatrixOptions *options.MatrixOptions
	HubOptions    *options.HubOptions
	MqttOptions   *options.MqttOptions
	HttpOptions   *options.HttpOptions
}

// NewBridge builds the bot from its options. Nothing is connected until Run.
func (cfg *Config) NewBridge() (*Bridge, error) {
	mc, err := matrix.NewClient(matrix.Config{
		HomeserverURL: cfg.MatrixOptions.HomeserverURL,
		AccessToken:   cfg.MatrixOptions.AccessToken,
		UserID:        cfg.MatrixOptions.UserID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to init matrix client: %w", err)
	}

	scanner, mqttClient, statusTopic, err := cfg.newScanner()
	if err != nil {
		return nil, err
	}

	b := newBridge(mc, cfg.MatrixOptions.RoomID, scanner, buggy.DiscoverOptions{
		Timeout: cfg.HubOptions.DiscoveryTimeout,
		Name:    cfg.HubOptions.Name,
	})
	b.mqtt = mqttClient
	b.statusTopic = statusTopic

	if cfg.HttpOptions != nil && cfg.HttpOptions.Enabled() {
		b.ops = http.NewServer(cfg.HttpOptions, metrics.Registry, b.lifecycle.Ready)
	}
	return b, nil
}

// NewScanner returns the hub scanner for the configured driver. The MQTT
// client is nil for the sim driver.
func (cfg *Config) NewScanner() (poweredup.Scanner, pkgmqtt.Client, error) {
	scanner, client, _, err := cfg.newScanner()
	return scanner, client, err
}

func (cfg *Config) newScanner() (poweredup.Scanner, pkgmqtt.Client, string, error) {
	if cfg.HubOptions.Driver == options.HubDriverSim {
		return sim.NewScanner(sim.NewBuggyHub(SimHubName)), nil, "", nil
	}

	clientCfg := cfg.MqttOptions.ToClientConfig()
	statusTopic := topic.NewBuilder(cfg.MqttOptions.TopicRoot).Build(paths.Status, clientCfg.ClientID)
	clientCfg.WillTopic = statusTopic
	clientCfg.WillPayload = []byte(statusOffline)
	clientCfg.WillQoS = 1
	clientCfg.WillRetain = true

	client, err := pkgmqtt.NewClient(clientCfg)
	if err != nil {
		return nil, nil, "", fmt.Errorf("failed to init mqtt client: %w", err)
	}

	driver := mqtthub.New(client, mqtthub.Options{
		TopicRoot:      cfg.MqttOptions.TopicRoot,
		RequestTimeout: cfg.MqttOptions.RequestTimeout,
	})
	return driver, client, statusTopic, nil
}
