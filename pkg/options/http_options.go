package options

import (
	"time"

	"github.com/spf13/pflag"
)

var _ IOptions = (*HttpOptions)(nil)

// HttpOptions configures an HTTP listener.
type HttpOptions struct {
	// Addr is the bind address. An empty string disables the server.
	Addr string `json:"addr" mapstructure:"addr"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `json:"shutdown-timeout" mapstructure:"shutdown-timeout"`
}

// NewHttpOptions creates a HttpOptions object listening on addr.
func NewHttpOptions(addr string) *HttpOptions {
	return &HttpOptions{
		Addr:            addr,
		ShutdownTimeout: 5 * time.Second,
	}
}

// Enabled reports whether a listener should be started.
func (o *HttpOptions) Enabled() bool {
	return o != nil && o.Addr != ""
}

func (o *HttpOptions) Validate() []error {
	if !o.Enabled() {
		return nil
	}

	var errs []error
	if err := ValidateAddress(o.Addr); err != nil {
		errs = append(errs, err)
	}
	return errs
}

// AddFlags binds http.* flags to the specified FlagSet.
func (o *HttpOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.StringVar(&o.Addr, "http.addr", o.Addr, "Bind address for the HTTP server. Empty disables it.")
	fs.DurationVar(&o.ShutdownTimeout, "http.shutdown-timeout", o.ShutdownTimeout, "Time allowed for in-flight requests on shutdown.")
}
