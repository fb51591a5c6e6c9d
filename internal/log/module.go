package log

import (
	"os"
	"time"

	"github.com/ipfans/fxlogger"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
)

// NewLogger creates a configured zerolog.Logger instance
func NewLogger() zerolog.Logger {
	logWriter := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}

	level := zerolog.InfoLevel
	if os.Getenv("DEBUG") == "true" {
		level = zerolog.DebugLevel
	}

	return zerolog.New(logWriter).
		Level(level).
		With().
		Timestamp().
		Caller().
		Logger()
}

// Module provides the logger and routes fx events through it.
func Module() fx.Option {
	return fx.Options(
		fx.Module(
			"log",
			fx.Provide(
				NewLogger,
			),
		),
		fx.WithLogger(
			func(log zerolog.Logger) fxevent.Logger {
				return fxlogger.WithZerolog(log)()
			},
		),
	)
}
