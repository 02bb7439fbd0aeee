package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

func init() {
	zerolog.MessageFieldName = "msg"
}

// New returns a JSON line logger writing to w. Every entry carries a "ts"
// field formatted as RFC3339Nano in loc (UTC when loc is nil).
func New(w io.Writer, loc *time.Location) zerolog.Logger {
	if loc == nil {
		loc = time.UTC
	}
	return zerolog.New(w).Hook(zerolog.HookFunc(func(e *zerolog.Event, _ zerolog.Level, _ string) {
		e.Str("ts", time.Now().In(loc).Format(time.RFC3339Nano))
	}))
}

// Stdout is New bound to os.Stdout.
func Stdout(loc *time.Location) zerolog.Logger {
	return New(os.Stdout, loc)
}

// Component returns a child logger tagged with the given component name.
func Component(l zerolog.Logger, name string) zerolog.Logger {
	return l.With().Str("component", name).Logger()
}
