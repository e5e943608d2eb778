// Package logrusadapter adapts a github.com/sirupsen/logrus.Logger to
// tracelog.Logger.
package logrusadapter

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/drjokepu/libpx/tracelog"
)

// Logger wraps a logrus.Logger.
type Logger struct {
	l *logrus.Logger
}

// NewLogger wraps l for use as a Config.Tracer.
func NewLogger(l *logrus.Logger) *Logger {
	return &Logger{l: l}
}

func (l *Logger) Log(_ context.Context, level tracelog.LogLevel, msg string, data map[string]any) {
	var entry logrus.FieldLogger = l.l
	if data != nil {
		entry = l.l.WithFields(data)
	}

	switch level {
	case tracelog.LogLevelTrace:
		entry.WithField("LIBPX_LOG_LEVEL", level.String()).Debug(msg)
	case tracelog.LogLevelDebug:
		entry.Debug(msg)
	case tracelog.LogLevelInfo:
		entry.Info(msg)
	case tracelog.LogLevelWarn:
		entry.Warn(msg)
	case tracelog.LogLevelError:
		entry.Error(msg)
	default:
		entry.WithField("INVALID_LIBPX_LOG_LEVEL", level.String()).Error(msg)
	}
}
