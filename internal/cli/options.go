// Package cli implements the interactive terminal frontend for the engine.
package cli

import (
	"log/slog"

	"github.com/aretw0/parley/internal/logging"
)

// RunOptions carries the flags shared by the run commands.
type RunOptions struct {
	// FlowPath is the YAML conversation definition to load.
	FlowPath string

	// SessionID resumes (or names) a persisted session. Empty means an
	// ephemeral in-memory session.
	SessionID string

	// SessionDir is where file-backed sessions live.
	SessionDir string

	// Model provider settings. An empty APIKey disables the fallback.
	APIKey  string
	BaseURL string

	// Fresh discards any persisted session with the same ID.
	Fresh bool

	// Debug enables verbose logging to stderr.
	Debug bool
}

// createLogger configures the application logger. In debug mode it writes
// to Stderr (to separate from Stdout flow UI).
func createLogger(debug bool) *slog.Logger {
	if debug {
		return logging.New(slog.LevelDebug)
	}
	return logging.NewNop()
}
