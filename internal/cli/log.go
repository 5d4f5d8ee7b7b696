package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

func newLogger(w io.Writer, level log.Level) *log.Logger {
	l := log.New(w)
	l.SetReportTimestamp(true)
	l.SetTimeFormat("15:04:05.00")
	l.SetLevel(level)
	return l
}

// timed starts a clock. The returned func logs msg at info level with the
// elapsed time under the "took" key.
func timed(l *log.Logger) func(msg string, keyvals ...any) {
	start := time.Now()
	return func(msg string, keyvals ...any) {
		l.Info(msg, append(keyvals, "took", time.Since(start).Round(time.Millisecond))...)
	}
}

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return log.WithContext(ctx, l)
}

// loggerFromContext falls back to the package default logger.
func loggerFromContext(ctx context.Context) *log.Logger {
	return log.FromContext(ctx)
}
