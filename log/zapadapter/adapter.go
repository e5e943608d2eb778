// Package zapadapter adapts a go.uber.org/zap.Logger to tracelog.Logger.
package zapadapter

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/drjokepu/libpx/tracelog"
)

// Logger wraps a zap.Logger.
type Logger struct {
	logger *zap.Logger
}

// NewLogger wraps logger for use as a Config.Tracer.
func NewLogger(logger *zap.Logger) *Logger {
	return &Logger{logger: logger}
}

func (l *Logger) Log(_ context.Context, level tracelog.LogLevel, msg string, data map[string]any) {
	fields := make([]zap.Field, 0, len(data))
	for k, v := range data {
		fields = append(fields, zap.Any(k, v))
	}

	var zlevel zapcore.Level
	switch level {
	case tracelog.LogLevelTrace, tracelog.LogLevelDebug:
		zlevel = zapcore.DebugLevel
	case tracelog.LogLevelInfo:
		zlevel = zapcore.InfoLevel
	case tracelog.LogLevelWarn:
		zlevel = zapcore.WarnLevel
	case tracelog.LogLevelError:
		zlevel = zapcore.ErrorLevel
	default:
		zlevel = zapcore.DebugLevel
	}

	if ce := l.logger.Check(zlevel, msg); ce != nil {
		ce.Write(fields...)
	}
}
