package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New builds the service logger. Development gets a colored console writer,
// every other environment JSON lines on stdout.
func New(environment string, opts ...Option) zerolog.Logger {
	o := options{level: "info", format: ""}
	for _, opt := range opts {
		opt(&o)
	}

	format := strings.ToLower(o.format)
	if format == "" {
		format = "json"
		if environment == "development" {
			format = "console"
		}
	}

	var out io.Writer = os.Stdout
	if o.out != nil {
		out = o.out
	}
	if format == "console" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	level, err := zerolog.ParseLevel(strings.ToLower(o.level))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	return zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Str("service", "faktura").
		Str("env", environment).
		Logger()
}

type options struct {
	level  string
	format string
	out    io.Writer
}

type Option func(*options)

func WithLevel(level string) Option {
	return func(o *options) { o.level = level }
}

func WithFormat(format string) Option {
	return func(o *options) { o.format = format }
}

func WithOutput(w io.Writer) Option {
	return func(o *options) { o.out = w }
}

// WithComponent tags every entry with the emitting component.
func WithComponent(log zerolog.Logger, component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}
