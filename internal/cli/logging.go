package cli

import (
	"io"
	"log/slog"
)

// setupLogging installs the process-wide slog handler. Logs always go to
// w (stderr in practice) so they never mix with replies or JSON output.
func setupLogging(opts *RootOptions, w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if opts.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}
