// Package logging defines the structured-logging interface used across
// gophdiary, with slog and zap backed implementations.
package logging

import "context"

// Logger is a context-aware, structured logger.
//
// The variadic args are interpreted as key–value pairs, e.g.:
//
//	log.Info(ctx, "entry created", "entry_id", id, "user_id", uid)
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key–value pairs.
	With(args ...any) Logger
}

// New picks a backend by name: "zap" builds a production zap logger, anything
// else a JSON slog logger on stdout.
func New(format string) (Logger, error) {
	if format == "zap" {
		return NewZapProductionLogger()
	}
	return NewJSONSlogLogger(), nil
}

// Sync flushes l when its backend buffers output and is a no-op otherwise.
// Call it before the process exits.
func Sync(l Logger) error {
	if s, ok := l.(interface{ Sync() error }); ok {
		return s.Sync()
	}
	return nil
}
