// Package log15adapter adapts pqlog.Logger to a
// gopkg.in/inconshreveable/log15.v2.Logger.
package log15adapter

import (
	"context"

	log15 "gopkg.in/inconshreveable/log15.v2"

	"github.com/nbpq/nbpq/pqlog"
)

type Logger struct {
	l log15.Logger
}

func NewLogger(l log15.Logger) *Logger {
	return &Logger{l: l}
}

func (l *Logger) Log(ctx context.Context, level pqlog.Level, msg string, data map[string]any) {
	ctxArgs := make([]any, 0, len(data)*2)
	for k, v := range data {
		ctxArgs = append(ctxArgs, k, v)
	}

	switch level {
	case pqlog.LevelTrace:
		l.l.Debug(msg, append(ctxArgs, "PQLOG_LEVEL", level.String())...)
	case pqlog.LevelDebug:
		l.l.Debug(msg, ctxArgs...)
	case pqlog.LevelInfo:
		l.l.Info(msg, ctxArgs...)
	case pqlog.LevelWarn:
		l.l.Warn(msg, ctxArgs...)
	case pqlog.LevelError:
		l.l.Error(msg, ctxArgs...)
	default:
		l.l.Error(msg, append(ctxArgs, "INVALID_PQLOG_LEVEL", level.String())...)
	}
}
