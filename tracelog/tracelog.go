// Package tracelog provides the logging seam this core's Connection writes
// through: a small Logger interface plus a leveled wrapper, independent of
// any particular logging library.
package tracelog

import (
	"context"
	"errors"
	"fmt"
)

// LogLevel is the severity of one log event. The values are chosen so the
// zero value means "no level specified".
type LogLevel int

const (
	LogLevelTrace = LogLevel(6)
	LogLevelDebug = LogLevel(5)
	LogLevelInfo  = LogLevel(4)
	LogLevelWarn  = LogLevel(3)
	LogLevelError = LogLevel(2)
	LogLevelNone  = LogLevel(1)
)

func (ll LogLevel) String() string {
	switch ll {
	case LogLevelTrace:
		return "trace"
	case LogLevelDebug:
		return "debug"
	case LogLevelInfo:
		return "info"
	case LogLevelWarn:
		return "warn"
	case LogLevelError:
		return "error"
	case LogLevelNone:
		return "none"
	default:
		return fmt.Sprintf("invalid level %d", ll)
	}
}

// LogLevelFromString converts a level name ("trace".."none") to a LogLevel.
func LogLevelFromString(s string) (LogLevel, error) {
	switch s {
	case "trace":
		return LogLevelTrace, nil
	case "debug":
		return LogLevelDebug, nil
	case "info":
		return LogLevelInfo, nil
	case "warn":
		return LogLevelWarn, nil
	case "error":
		return LogLevelError, nil
	case "none":
		return LogLevelNone, nil
	default:
		return 0, errors.New("invalid log level")
	}
}

// Logger is the interface a concrete logging library adapter implements.
type Logger interface {
	Log(ctx context.Context, level LogLevel, msg string, data map[string]any)
}

// LoggerFunc adapts a plain function to Logger.
type LoggerFunc func(ctx context.Context, level LogLevel, msg string, data map[string]any)

func (f LoggerFunc) Log(ctx context.Context, level LogLevel, msg string, data map[string]any) {
	f(ctx, level, msg, data)
}

// TraceLog wraps a Logger with a minimum level filter — events below
// LogLevel are dropped before reaching the underlying adapter.
type TraceLog struct {
	Logger   Logger
	LogLevel LogLevel
}

func (tl *TraceLog) shouldLog(lvl LogLevel) bool {
	return tl.Logger != nil && tl.LogLevel >= lvl
}

// Log records one event at lvl if the TraceLog's level permits it.
func (tl *TraceLog) Log(ctx context.Context, lvl LogLevel, msg string, data map[string]any) {
	if !tl.shouldLog(lvl) {
		return
	}
	if data == nil {
		data = map[string]any{}
	}
	tl.Logger.Log(ctx, lvl, msg, data)
}
