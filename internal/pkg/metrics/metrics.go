package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry holds every collector the bridge exports on /metrics.
var Registry = prometheus.NewRegistry()

var (
	// CommandsTotal counts handled commands by name and outcome, help included.
	// result: ok / invalid / failed
	CommandsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "buggy_commands_total",
			Help: "Total number of buggy commands handled.",
		},
		[]string{"command", "result"},
	)

	// EventsDiscardedTotal counts room events the dispatcher dropped.
	// reason: stale / state / unmatched
	EventsDiscardedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "buggy_events_discarded_total",
			Help: "Total number of room events discarded before reaching a handler.",
		},
		[]string{"reason"},
	)

	// CommandRoundTrip measures sender timestamp to handler completion.
	CommandRoundTrip = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "buggy_command_roundtrip_seconds",
			Help:    "Time from the sender's ts field to the command finishing on the buggy.",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"command"},
	)

	// SteeringAngle mirrors the buggy's tracked steering angle.
	SteeringAngle = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "buggy_steering_angle_degrees",
			Help: "Current steering angle tracked by the bridge (negative is left).",
		},
	)

	// HubReady is 1 once the hub has been discovered and resolved.
	HubReady = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "buggy_hub_ready",
			Help: "The connectivity status to the buggy hub (1=Ready, 0=NotReady).",
		},
	)

	// HubRequestLatency measures gateway request/ack round trips.
	HubRequestLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "buggy_hub_request_latency_seconds",
			Help:    "Latency of hub gateway requests over MQTT.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"op"},
	)
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		CommandsTotal,
		EventsDiscardedTotal,
		CommandRoundTrip,
		SteeringAngle,
		HubReady,
		HubRequestLatency,
	)
}
