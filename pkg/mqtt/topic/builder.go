package topic

import (
	"strings"
)

// Standard MQTT wildcards.
const (
	Wildcard      = "+"
	MultiWildcard = "#"
)

// Builder constructs topic strings under a fixed root namespace.
type Builder struct {
	root string
}

// NewBuilder returns a Builder rooted at root, e.g. "poweredup/v1".
func NewBuilder(root string) *Builder {
	return &Builder{root: strings.TrimSuffix(root, "/")}
}

// Root returns the namespace all topics are built under.
func (b *Builder) Root() string { return b.root }

// Build returns {root}/{segment}/{id}.
func (b *Builder) Build(segment, id string) string {
	return b.root + "/" + segment + "/" + id
}

// Wildcard returns {root}/{segment}/+.
func (b *Builder) Wildcard(segment string) string {
	return b.Build(segment, Wildcard)
}

// ID extracts the trailing identifier of a topic built for segment.
// It returns false when topic does not belong to segment.
func (b *Builder) ID(segment, topic string) (string, bool) {
	prefix := b.root + "/" + segment + "/"
	if !strings.HasPrefix(topic, prefix) {
		return "", false
	}
	id := topic[len(prefix):]
	if id == "" || strings.Contains(id, "/") {
		return "", false
	}
	return id, true
}
