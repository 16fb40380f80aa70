// Package testingadapter routes pqlog output to a testing.TB's Log method,
// for tests that want query tracing visible under `go test -v` without
// standing up a real logger. Grounded on the teacher's log/testingadapter.
package testingadapter

import (
	"context"
	"fmt"

	"github.com/nbpq/nbpq/pqlog"
)

// TestingLogger is the subset of testing.TB this adapter needs.
type TestingLogger interface {
	Log(args ...any)
}

type Logger struct {
	l TestingLogger
}

func NewLogger(l TestingLogger) *Logger {
	return &Logger{l: l}
}

func (l *Logger) Log(ctx context.Context, level pqlog.Level, msg string, data map[string]any) {
	args := make([]any, 0, 2+len(data))
	args = append(args, level.String(), msg)
	for k, v := range data {
		args = append(args, fmt.Sprintf("%s=%v", k, v))
	}
	l.l.Log(args...)
}
