// Package matrix is the bridge's view of a Matrix homeserver: a stream of
// room events in, message events out.
package matrix

import (
	"context"
)

// Well-known event and message types.
const (
	EventMessage = "m.room.message"
	MsgNotice    = "m.notice"
	MsgText      = "m.text"
)

// Event is a room event as delivered by sync.
type Event struct {
	ID       string
	RoomID   string
	Sender   string
	Type     string
	StateKey *string

	// Age is the server-reported time since the event was sent, in milliseconds.
	Age int64

	// Timestamp is the origin server timestamp in milliseconds since the epoch.
	Timestamp int64

	// Content is the raw event content.
	Content map[string]any
}

// Body returns the text body of a message event.
func (e *Event) Body() string {
	body, _ := e.Content["body"].(string)
	return body
}

// EventHandler receives every room event seen by sync.
type EventHandler func(ctx context.Context, evt *Event)

// Client is the subset of a Matrix client the bridge and gamepad use.
type Client interface {
	// Sync runs the sync loop until ctx is done, delivering events to handler.
	Sync(ctx context.Context, handler EventHandler) error

	// EnsureJoined joins roomID unless the account is already a member.
	EnsureJoined(ctx context.Context, roomID string) error

	// SendMessage sends a message-class event and returns its event ID.
	SendMessage(ctx context.Context, roomID, eventType string, content any) (string, error)
}

// Reply builds message content of msgtype replying to evt.
func Reply(evt *Event, msgtype, body string) map[string]any {
	content := map[string]any{
		"msgtype": msgtype,
		"body":    body,
	}
	if evt != nil && evt.ID != "" {
		content["m.relates_to"] = map[string]any{
			"m.in_reply_to": map[string]any{"event_id": evt.ID},
		}
	}
	return content
}
