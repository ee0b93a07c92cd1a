// Package logging is a minimal decred/slog backend exposing a
// Logger(subsystem) shape the rest of this repository calls.
package logging

import (
	"os"

	"github.com/decred/slog"
)

// Backend hands out per-subsystem loggers sharing one debug level and one
// output stream.
type Backend struct {
	backend *slog.Backend
	level   slog.Level
}

// Config selects the backend's debug level ("trace", "debug", "info",
// "warn", "error").
type Config struct {
	DebugLevel string
}

// NewBackend builds a Backend writing to stderr.
func NewBackend(cfg Config) (*Backend, error) {
	level, ok := slog.LevelFromString(cfg.DebugLevel)
	if !ok {
		level = slog.LevelInfo
	}
	return &Backend{
		backend: slog.NewBackend(os.Stderr),
		level:   level,
	}, nil
}

// Logger returns a logger tagged with subsystem, e.g. "MUTATOR", "ROUTER",
// "SCANNER".
func (b *Backend) Logger(subsystem string) slog.Logger {
	l := b.backend.Logger(subsystem)
	l.SetLevel(b.level)
	return l
}
