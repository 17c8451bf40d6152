package topic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuilder(t *testing.T) {
	b := NewBuilder("poweredup/v1/")
	assert.Equal(t, "poweredup/v1", b.Root())
	assert.Equal(t, "poweredup/v1/hub/command/ack/h1", b.Build("hub/command/ack", "h1"))
	assert.Equal(t, "poweredup/v1/hub/announce/+", b.Wildcard("hub/announce"))
}

func TestBuilderID(t *testing.T) {
	b := NewBuilder("poweredup/v1")

	id, ok := b.ID("hub/attached", "poweredup/v1/hub/attached/h1")
	assert.True(t, ok)
	assert.Equal(t, "h1", id)

	_, ok = b.ID("hub/command", "poweredup/v1/hub/command/ack/h1")
	assert.False(t, ok)

	_, ok = b.ID("hub/announce", "other/v1/hub/announce/h1")
	assert.False(t, ok)
}
