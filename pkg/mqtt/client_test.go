package mqtt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopicsMatch(t *testing.T) {
	tests := []struct {
		filter, topic string
		want          bool
	}{
		{"poweredup/v1/hub/announce/abc", "poweredup/v1/hub/announce/abc", true},
		{"poweredup/v1/hub/announce/+", "poweredup/v1/hub/announce/abc", true},
		{"poweredup/v1/hub/announce/+", "poweredup/v1/hub/announce/abc/extra", false},
		{"poweredup/v1/hub/#", "poweredup/v1/hub/command/ack/abc", true},
		{"poweredup/v1/hub/command/+", "poweredup/v1/hub/command/ack/abc", false},
		{"poweredup/v1/hub/command/ack/+", "poweredup/v1/hub/command/ack/abc", true},
		{"poweredup/v1/hub/attached/+", "poweredup/v1/hub/connect/abc", false},
	}
	for _, tt := range tests {
		t.Run(tt.filter+"~"+tt.topic, func(t *testing.T) {
			assert.Equal(t, tt.want, topicsMatch(tt.filter, tt.topic))
		})
	}
}

func TestTopicFilterStripsSharePrefix(t *testing.T) {
	assert.Equal(t, "a/b/+", topicFilter("$share/group/a/b/+"))
	assert.Equal(t, "a/b", topicFilter("a/b"))
}

func TestNewClient(t *testing.T) {
	_, err := NewClient(nil)
	require.Error(t, err)

	_, err = NewClient(&ClientConfig{BrokerURL: "localhost"})
	require.Error(t, err)

	_, err = NewClient(&ClientConfig{BrokerURL: "tcp://localhost:1883", WillTopic: "x", WillQoS: 3})
	require.Error(t, err)

	cfg := &ClientConfig{BrokerURL: "tcp://localhost:1883", ClientID: "buggy-bridge"}
	c, err := NewClient(cfg)
	require.NoError(t, err)
	assert.False(t, c.IsConnected())
	assert.EqualValues(t, 60, cfg.KeepAlive)
	assert.ErrorIs(t, c.Publish(t.Context(), "x", 0, false, nil), errNotStarted)
}
