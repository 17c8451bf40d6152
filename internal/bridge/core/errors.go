package core

import (
	"errors"
	"fmt"
)

// ErrCode classifies a CommandError for the sender.
type ErrCode string

const (
	ErrCodeUnknown      ErrCode = "UNKNOWN"
	ErrCodeInvalidValue ErrCode = "INVALID_VALUE"
)

const defaultFriendly = "An issue occurred when handling your command"

// CommandError is a failure the sender should hear about. Friendly is shown
// in the room; Err is for logs.
type CommandError struct {
	Err      error
	Friendly string
	Code     ErrCode
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %v", e.Code, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// NewCommandError returns a CommandError with the default message and code
// where none are given.
func NewCommandError(err error, friendly string, code ErrCode) *CommandError {
	if friendly == "" {
		friendly = defaultFriendly
	}
	if code == "" {
		code = ErrCodeUnknown
	}
	return &CommandError{Err: err, Friendly: friendly, Code: code}
}

// InvalidValue reports a rejected payload field; msg is shown to the sender.
func InvalidValue(msg string) *CommandError {
	return NewCommandError(errors.New(msg), msg, ErrCodeInvalidValue)
}
