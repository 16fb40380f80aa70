// Package logrusadapter adapts pqlog.Logger to a github.com/sirupsen/logrus.Logger.
package logrusadapter

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/nbpq/nbpq/pqlog"
)

type Logger struct {
	l *logrus.Logger
}

func NewLogger(l *logrus.Logger) *Logger {
	return &Logger{l: l}
}

func (l *Logger) Log(ctx context.Context, level pqlog.Level, msg string, data map[string]any) {
	var logger logrus.FieldLogger = l.l
	if data != nil {
		logger = l.l.WithFields(data)
	}

	switch level {
	case pqlog.LevelTrace:
		logger.WithField("PQLOG_LEVEL", level.String()).Debug(msg)
	case pqlog.LevelDebug:
		logger.Debug(msg)
	case pqlog.LevelInfo:
		logger.Info(msg)
	case pqlog.LevelWarn:
		logger.Warn(msg)
	case pqlog.LevelError:
		logger.Error(msg)
	default:
		logger.WithField("INVALID_PQLOG_LEVEL", level.String()).Error(msg)
	}
}
