// Copyright 2025 The Matrix PoweredUP Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package log

import (
	"fmt"

	"github.com/spf13/pflag"
	"go.uber.org/zap/zapcore"
)

// Options configures the process logger. Both binaries bind it under the
// "log." flag prefix and the "log" config section.
type Options struct {
	// Name prefixes every entry, e.g. "bridge" or "gamepad".
	Name string `json:"name,omitempty" mapstructure:"name"`

	// Level is one of debug, info, warn or error.
	Level string `json:"level,omitempty" mapstructure:"level"`

	// Format is "console" for people and "json" for log shippers.
	Format string `json:"format,omitempty" mapstructure:"format"`

	// EnableColor only affects the console format.
	EnableColor bool `json:"enable-color,omitempty" mapstructure:"enable-color"`

	DisableCaller bool `json:"disable-caller,omitempty" mapstructure:"disable-caller"`

	// CallerSkip is the number of extra frames between the caller and zap.
	CallerSkip int `json:"caller-skip,omitempty" mapstructure:"caller-skip"`

	// OutputPaths are zap sink URLs or file paths; "stdout" and "stderr" work too.
	OutputPaths []string `json:"output-paths,omitempty" mapstructure:"output-paths"`
}

// NewOptions logs info and above to stdout in color.
func NewOptions() *Options {
	return &Options{
		Level:       "info",
		Format:      "console",
		EnableColor: true,
		CallerSkip:  1,
		OutputPaths: []string{"stdout"},
	}
}

func (o *Options) Validate() []error {
	var errs []error

	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(o.Level)); err != nil {
		errs = append(errs, fmt.Errorf("log.level: unrecognized level %q", o.Level))
	}
	switch o.Format {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format: must be 'console' or 'json', got %q", o.Format))
	}
	return errs
}

func (o *Options) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.Name, "log.name", o.Name, "Name prefixed to every log entry.")
	fs.StringVar(&o.Level, "log.level", o.Level, "Minimum level to log: debug, info, warn or error.")
	fs.StringVar(&o.Format, "log.format", o.Format, "Log encoding: console or json.")
	fs.BoolVar(&o.EnableColor, "log.enable-color", o.EnableColor, "Colorize levels in console output.")
	fs.BoolVar(&o.DisableCaller, "log.disable-caller", o.DisableCaller, "Omit the file:line of the caller.")
	fs.IntVar(&o.CallerSkip, "log.caller-skip", o.CallerSkip, "Extra stack frames to skip when reporting the caller.")
	fs.StringSliceVar(&o.OutputPaths, "log.output-paths", o.OutputPaths, "Where to write logs, e.g. stdout or /var/log/buggy-bridge.log.")
}
