package cli

import (
	"fmt"
	"io"
	"log/slog"
)

// setupLogger installs the process-wide logger. Diagnostics always go to
// w so report output on stdout stays clean.
func setupLogger(w io.Writer, format string, verbose bool) (*slog.Logger, error) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	switch format {
	case "", "text":
		h = slog.NewTextHandler(w, opts)
	case "json":
		h = slog.NewJSONHandler(w, opts)
	default:
		return nil, fmt.Errorf("unsupported log format: %s", format)
	}
	logger := slog.New(h)
	slog.SetDefault(logger)
	return logger, nil
}
