package core

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/half-shot/matrix-poweredup/pkg/log"
	"github.com/half-shot/matrix-poweredup/pkg/matrix"
)

// CommandContext is one recognised command and the means to answer it.
type CommandContext struct {
	Name       string
	Definition *Definition
	Payload    Payload
	Event      *matrix.Event
	RoomID     string
	RequestID  string

	client matrix.Client
	logger log.Logger
}

// NewCommandContext binds a matched command to the event it came from.
func NewCommandContext(def *Definition, payload Payload, evt *matrix.Event, client matrix.Client) *CommandContext {
	reqID := uuid.NewString()
	return &CommandContext{
		Name:       def.Name,
		Definition: def,
		Payload:    payload,
		Event:      evt,
		RoomID:     evt.RoomID,
		RequestID:  reqID,
		client:     client,
		logger:     log.WithValues("reqId", reqID, "command", def.Name, "room", evt.RoomID, "event", evt.ID),
	}
}

// Log returns a logger tagged with the command and request.
func (cc *CommandContext) Log() log.Logger {
	return cc.logger
}

// Notice sends a plain notice into the command's room.
func (cc *CommandContext) Notice(ctx context.Context, body string) error {
	_, err := cc.client.SendMessage(ctx, cc.RoomID, matrix.EventMessage, matrix.Reply(nil, matrix.MsgNotice, body))
	return err
}

// ErrorPassthrough tells the sender about a *CommandError with a notice
// replying to their event, then returns err unchanged. Other errors are
// returned without a notice.
func (cc *CommandContext) ErrorPassthrough(ctx context.Context, err error) error {
	var cmdErr *CommandError
	if !errors.As(err, &cmdErr) {
		return err
	}

	content := matrix.Reply(cc.Event, matrix.MsgNotice, cmdErr.Friendly)
	content["errcode"] = string(cmdErr.Code)
	if _, sendErr := cc.client.SendMessage(ctx, cc.RoomID, matrix.EventMessage, content); sendErr != nil {
		cc.logger.Error(sendErr, "Failed to report command error to room")
	}
	return err
}
