package options

import (
	"errors"
	"net/url"
	"strings"

	"github.com/spf13/pflag"
)

var _ IOptions = (*MatrixOptions)(nil)

// MatrixOptions holds the credentials and room used to talk to a homeserver.
type MatrixOptions struct {
	HomeserverURL string `json:"homeserver-url" mapstructure:"homeserver-url"`
	AccessToken   string `json:"access-token" mapstructure:"access-token"`

	// UserID is optional; it is resolved with whoami when empty.
	UserID string `json:"user-id" mapstructure:"user-id"`

	// RoomID is the room the bot must be joined to. Commands from any
	// joined room are still handled.
	RoomID string `json:"room-id" mapstructure:"room-id"`
}

func NewMatrixOptions() *MatrixOptions {
	return &MatrixOptions{}
}

func (o *MatrixOptions) Validate() []error {
	if o == nil {
		return nil
	}

	var errs []error
	if o.HomeserverURL == "" {
		errs = append(errs, errors.New("matrix.homeserver-url is required"))
	} else if u, err := url.Parse(o.HomeserverURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, errors.New("matrix.homeserver-url must be an absolute URL"))
	}
	if o.AccessToken == "" {
		errs = append(errs, errors.New("matrix.access-token is required"))
	}
	if o.RoomID == "" {
		errs = append(errs, errors.New("matrix.room-id is required"))
	} else if !strings.HasPrefix(o.RoomID, "!") {
		errs = append(errs, errors.New("matrix.room-id must be a room ID starting with '!'"))
	}
	if o.UserID != "" && !strings.HasPrefix(o.UserID, "@") {
		errs = append(errs, errors.New("matrix.user-id must start with '@'"))
	}
	return errs
}

func (o *MatrixOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.StringVar(&o.HomeserverURL, "matrix.homeserver-url", o.HomeserverURL, "Base URL of the Matrix homeserver.")
	fs.StringVar(&o.AccessToken, "matrix.access-token", o.AccessToken, "Access token of the bot account.")
	fs.StringVar(&o.UserID, "matrix.user-id", o.UserID, "User ID of the bot account. Looked up when empty.")
	fs.StringVar(&o.RoomID, "matrix.room-id", o.RoomID, "Room the bot joins and the gamepad sends to.")
}
