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


// Package log is the structured logger shared by both binaries. It wraps zap
// and hands out logr adapters for code that expects one.
package log

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger takes a message followed by alternating keys and values. An error
// passed in place of a key is logged under "error".
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(err error, msg string, keysAndValues ...any)

	// WithName appends to the "module" field, e.g. "bridge.core".
	WithName(name string) Logger
	// WithValues attaches fields to every later entry, e.g. a request id.
	WithValues(keysAndValues ...any) Logger

	Logr() logr.Logger
}

var _ Logger = (*zapLogger)(nil)

type zapLogger struct {
	core *zap.Logger
}

// NewLogger builds a Logger from opts, or from NewOptions when opts is nil.
// It panics when an output path cannot be opened.
func NewLogger(opts *Options) Logger {
	if opts == nil {
		opts = NewOptions()
	}

	paths := opts.OutputPaths
	if len(paths) == 0 {
		paths = []string{"stdout"}
	}
	sink, _, err := zap.Open(paths...)
	if err != nil {
		panic(fmt.Sprintf("failed to open log output %v: %v", paths, err))
	}

	encCfg := encoderConfig(opts)
	var enc zapcore.Encoder
	if opts.Format == "json" {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		enc = zapcore.NewConsoleEncoder(encCfg)
	}

	zopts := []zap.Option{
		zap.AddStacktrace(zapcore.ErrorLevel),
		zap.ErrorOutput(zapcore.Lock(os.Stderr)),
	}
	if !opts.DisableCaller {
		zopts = append(zopts, zap.AddCaller(), zap.AddCallerSkip(opts.CallerSkip))
	}

	z := zap.New(zapcore.NewCore(enc, sink, zap.NewAtomicLevelAt(parseLevel(opts.Level))), zopts...)
	if opts.Name != "" {
		z = z.Named(opts.Name)
	}
	return &zapLogger{core: z}
}

// encoderConfig prints short wall-clock times and millisecond durations on
// the console; json gets ISO8601 timestamps.
func encoderConfig(opts *Options) zapcore.EncoderConfig {
	cfg := zapcore.EncoderConfig{
		MessageKey:    "message",
		LevelKey:      "level",
		TimeKey:       "timestamp",
		NameKey:       "module",
		CallerKey:     "caller",
		StacktraceKey: "stacktrace",
		LineEnding:    zapcore.DefaultLineEnding,
		EncodeLevel:   zapcore.CapitalLevelEncoder,
		EncodeTime:    zapcore.TimeEncoderOfLayout("15:04:05.000"),
		EncodeCaller:  zapcore.ShortCallerEncoder,
		EncodeDuration: func(d time.Duration, enc zapcore.PrimitiveArrayEncoder) {
			enc.AppendFloat64(float64(d) / float64(time.Millisecond))
		},
	}
	switch {
	case opts.Format == "json":
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	case opts.EnableColor:
		cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	return cfg
}

// parseLevel falls back to info for anything Options.Validate would reject.
func parseLevel(s string) zapcore.Level {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}

func (z *zapLogger) Debug(msg string, keysAndValues ...any) {
	z.core.Debug(msg, toFields(keysAndValues...)...)
}

func (z *zapLogger) Info(msg string, keysAndValues ...any) {
	z.core.Info(msg, toFields(keysAndValues...)...)
}

func (z *zapLogger) Warn(msg string, keysAndValues ...any) {
	z.core.Warn(msg, toFields(keysAndValues...)...)
}

// Error logs at error level with a stack trace. A nil err adds no field.
func (z *zapLogger) Error(err error, msg string, keysAndValues ...any) {
	z.core.Error(msg, append(toFields(keysAndValues...), zap.Error(err))...)
}

func (z *zapLogger) WithName(name string) Logger {
	return &zapLogger{core: z.core.Named(name)}
}

func (z *zapLogger) WithValues(keysAndValues ...any) Logger {
	return &zapLogger{core: z.core.With(toFields(keysAndValues...)...)}
}

func (z *zapLogger) Logr() logr.Logger {
	return zapr.NewLogger(z.core)
}

var (
	initOnce sync.Once

	// std discards everything until Init runs, so library code and tests
	// can log without any setup.
	std = NewNopLogger()
)

// Init installs the process logger from opts. Only the first call has any
// effect; subcommands call it from their run functions.
func Init(opts *Options) {
	initOnce.Do(func() {
		std = NewLogger(opts)
	})
}

// Std returns the process logger.
func Std() Logger { return std }

func NewNopLogger() Logger {
	return &zapLogger{core: zap.NewNop()}
}

// The package-level helpers log through Std.

func Debug(msg string, keysAndValues ...any)            { std.Debug(msg, keysAndValues...) }
func Info(msg string, keysAndValues ...any)             { std.Info(msg, keysAndValues...) }
func Warn(msg string, keysAndValues ...any)             { std.Warn(msg, keysAndValues...) }
func Error(err error, msg string, keysAndValues ...any) { std.Error(err, msg, keysAndValues...) }
func WithName(name string) Logger                       { return std.WithName(name) }
func WithValues(keysAndValues ...any) Logger            { return std.WithValues(keysAndValues...) }
func Logr() logr.Logger                                 { return std.Logr() }

type contextKey struct{}

// IntoContext returns a copy of ctx carrying l.
func IntoContext(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// FromContext returns the logger stored in ctx, or Std.
func FromContext(ctx context.Context) Logger {
	if ctx != nil {
		if l, ok := ctx.Value(contextKey{}).(Logger); ok {
			return l
		}
	}
	return std
}
