// Package zapadapter adapts pqlog.Logger to a go.uber.org/zap.Logger.
package zapadapter

import (
	"context"

	"go.uber.org/zap"

	"github.com/nbpq/nbpq/pqlog"
)

type Logger struct {
	l *zap.Logger
}

func NewLogger(l *zap.Logger) *Logger {
	return &Logger{l: l}
}

func (l *Logger) Log(ctx context.Context, level pqlog.Level, msg string, data map[string]any) {
	fields := make([]zap.Field, 0, len(data))
	for k, v := range data {
		fields = append(fields, zap.Any(k, v))
	}

	switch level {
	case pqlog.LevelTrace, pqlog.LevelDebug:
		l.l.Debug(msg, fields...)
	case pqlog.LevelInfo:
		l.l.Info(msg, fields...)
	case pqlog.LevelWarn:
		l.l.Warn(msg, fields...)
	case pqlog.LevelError:
		l.l.Error(msg, fields...)
	default:
		l.l.Error(msg, append(fields, zap.Stringer("INVALID_PQLOG_LEVEL", level))...)
	}
}
