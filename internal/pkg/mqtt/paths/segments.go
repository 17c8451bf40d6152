package paths

// Topic segments of the hub gateway protocol. A gateway bridges BLE hubs
// onto the broker; the bridge talks to hubs only through these topics.

// Downstream: Bridge -> Gateway
const (
	// Connect asks the gateway to open the BLE link.
	// Payload: { "requestId": "..." }
	// Pattern: {root}/hub/connect/{hubID}
	Connect = "hub/connect"

	// Command carries a single motor or hub instruction.
	// Payload: { "requestId": "...", "port": "A", "op": "rotate", "degrees": 10, "speed": 100 }
	// Pattern: {root}/hub/command/{hubID}
	Command = "hub/command"

	// Disconnect asks the gateway to drop the BLE link.
	Disconnect = "hub/disconnect"
)

// Upstream: Gateway -> Bridge
const (
	// Announce is a retained advertisement of a hub the gateway can see.
	// Payload: { "name": "...", "type": "TECHNIC_MEDIUM_HUB" }
	// Pattern: {root}/hub/announce/{hubID}
	Announce = "hub/announce"

	// Attached lists the devices present once the link is up.
	// Payload: { "requestId": "...", "devices": [{ "port": "A", "type": "TECHNIC_LARGE_LINEAR_MOTOR" }] }
	Attached = "hub/attached"

	// CommandAck reports completion of a Command.
	// Payload: { "requestId": "...", "error": "" }
	// Pattern: {root}/hub/command/ack/{hubID}
	CommandAck = "hub/command/ack"
)

// Bridge presence
const (
	// Status is "online" while the bridge is connected and "offline" once the
	// broker publishes its last will. Retained.
	// Pattern: {root}/bridge/status/{clientID}
	Status = "bridge/status"
)
