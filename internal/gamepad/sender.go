package gamepad

import (
	"context"

	"github.com/half-shot/matrix-poweredup/pkg/log"
	"github.com/half-shot/matrix-poweredup/pkg/matrix"
)

// Sender posts commands into the bot's room.
type Sender struct {
	client matrix.Client
	roomID string
}

func NewSender(client matrix.Client, roomID string) *Sender {
	return &Sender{client: client, roomID: roomID}
}

// Send posts cmds in order and stops at the first failure. It returns how
// many were sent.
func (s *Sender) Send(ctx context.Context, cmds []Command) (int, error) {
	for i, cmd := range cmds {
		eventID, err := s.client.SendMessage(ctx, s.roomID, cmd.EventType, cmd.Content)
		if err != nil {
			return i, err
		}
		log.Debug("Sent gamepad event", "type", cmd.EventType, "event", eventID)
	}
	return len(cmds), nil
}
