package mqtthub

import (
	"github.com/half-shot/matrix-poweredup/internal/poweredup"
)

// Command ops understood by the gateway.
const (
	opRotate = "rotate"
	opGoto   = "goto"
	opSpeed  = "speed"
)

type announcement struct {
	Name string            `json:"name"`
	Type poweredup.HubType `json:"type"`
}

type deviceInfo struct {
	Port string               `json:"port"`
	Type poweredup.DeviceType `json:"type"`
}

type connectRequest struct {
	RequestID string `json:"requestId"`
}

type commandRequest struct {
	RequestID string `json:"requestId"`
	Port      string `json:"port"`
	Op        string `json:"op"`
	Degrees   int    `json:"degrees,omitempty"`
	Position  int    `json:"position"`
	Speed     int    `json:"speed"`
	RampMs    int64  `json:"rampMs,omitempty"`
}

// reply is the body of both hub/attached and hub/command/ack.
type reply struct {
	RequestID string       `json:"requestId"`
	Error     string       `json:"error,omitempty"`
	Devices   []deviceInfo `json:"devices,omitempty"`
}
