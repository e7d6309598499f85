// Package logging builds the slog logger used by the command line tool.
package logging

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// ErrInvalidFormat indicates an unknown log format name.
var ErrInvalidFormat = errors.New("invalid log format")

// Options selects the log destination and verbosity.
type Options struct {
	Level  slog.Level
	Format string // "text" (default) or "json"
	File   string // optional JSONL or text file appended to alongside w
}

// LevelFor maps the CLI verbosity flags to a level. Quiet wins over verbose.
func LevelFor(verbose, quiet bool) slog.Level {
	switch {
	case quiet:
		return slog.LevelError
	case verbose:
		return slog.LevelDebug
	default:
		return slog.LevelWarn
	}
}

// New creates a logger writing to w and, when opts.File is set, to that file
// as well. The returned cleanup closes the file and is never nil.
func New(w io.Writer, opts Options) (*slog.Logger, func(), error) {
	cleanup := func() {}

	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o750); err != nil {
			return nil, cleanup, fmt.Errorf("creating log directory: %w", err)
		}
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644) // #nosec G304 -- user-provided log path
		if err != nil {
			return nil, cleanup, fmt.Errorf("opening log file: %w", err)
		}
		w = io.MultiWriter(w, f)
		cleanup = func() { _ = f.Close() }
	}

	hopts := &slog.HandlerOptions{Level: opts.Level}
	var h slog.Handler
	switch strings.ToLower(opts.Format) {
	case "", "text":
		h = slog.NewTextHandler(w, hopts)
	case "json":
		h = slog.NewJSONHandler(w, hopts)
	default:
		cleanup()
		return nil, func() {}, fmt.Errorf("%w: %q (must be text or json)", ErrInvalidFormat, opts.Format)
	}

	return slog.New(h), cleanup, nil
}
