// Package zerologadapter adapts a github.com/rs/zerolog.Logger to
// tracelog.Logger.
package zerologadapter

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/drjokepu/libpx/tracelog"
)

// Logger wraps a zerolog.Logger, tagging every line with module=libpx.
type Logger struct {
	logger zerolog.Logger
}

// NewLogger wraps logger for use as a Config.Tracer.
func NewLogger(logger zerolog.Logger) *Logger {
	return &Logger{logger: logger.With().Str("module", "libpx").Logger()}
}

func (l *Logger) Log(_ context.Context, level tracelog.LogLevel, msg string, data map[string]any) {
	var zlevel zerolog.Level
	switch level {
	case tracelog.LogLevelNone:
		zlevel = zerolog.NoLevel
	case tracelog.LogLevelError:
		zlevel = zerolog.ErrorLevel
	case tracelog.LogLevelWarn:
		zlevel = zerolog.WarnLevel
	case tracelog.LogLevelInfo:
		zlevel = zerolog.InfoLevel
	case tracelog.LogLevelDebug, tracelog.LogLevelTrace:
		zlevel = zerolog.DebugLevel
	default:
		zlevel = zerolog.DebugLevel
	}

	event := l.logger.WithLevel(zlevel)
	if event.Enabled() {
		event.Fields(data).Msg(msg)
	}
}
