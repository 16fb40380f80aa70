// Package kitlogadapter adapts pqlog.Logger to a github.com/go-kit/log.Logger.
package kitlogadapter

import (
	"context"

	kitlog "github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/nbpq/nbpq/pqlog"
)

type Logger struct {
	l kitlog.Logger
}

func NewLogger(l kitlog.Logger) *Logger {
	return &Logger{l: l}
}

func (l *Logger) Log(ctx context.Context, lvl pqlog.Level, msg string, data map[string]any) {
	logger := l.l
	if data != nil {
		keyvals := make([]any, 0, len(data)*2)
		for k, v := range data {
			keyvals = append(keyvals, k, v)
		}
		logger = kitlog.With(logger, keyvals...)
	}

	switch lvl {
	case pqlog.LevelTrace:
		level.Debug(logger).Log("PQLOG_LEVEL", lvl.String(), "msg", msg)
	case pqlog.LevelDebug:
		level.Debug(logger).Log("msg", msg)
	case pqlog.LevelInfo:
		level.Info(logger).Log("msg", msg)
	case pqlog.LevelWarn:
		level.Warn(logger).Log("msg", msg)
	case pqlog.LevelError:
		level.Error(logger).Log("msg", msg)
	default:
		logger.Log("INVALID_PQLOG_LEVEL", lvl.String(), "msg", msg)
	}
}
