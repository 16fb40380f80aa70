// Package zerologadapter adapts pqlog.Logger to a github.com/rs/zerolog.Logger.
package zerologadapter

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/nbpq/nbpq/pqlog"
)

type Logger struct {
	logger zerolog.Logger
}

func NewLogger(logger zerolog.Logger) *Logger {
	return &Logger{logger: logger}
}

func (l *Logger) Log(ctx context.Context, level pqlog.Level, msg string, data map[string]any) {
	var evt *zerolog.Event
	switch level {
	case pqlog.LevelTrace:
		evt = l.logger.Trace()
	case pqlog.LevelDebug:
		evt = l.logger.Debug()
	case pqlog.LevelInfo:
		evt = l.logger.Info()
	case pqlog.LevelWarn:
		evt = l.logger.Warn()
	case pqlog.LevelError:
		evt = l.logger.Error()
	default:
		evt = l.logger.Error().Str("INVALID_PQLOG_LEVEL", level.String())
	}

	for k, v := range data {
		evt = evt.Interface(k, v)
	}
	evt.Msg(msg)
}
