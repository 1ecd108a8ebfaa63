package config

import (
	"io"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
)

// SetupLogging installs the default slog logger: human-readable text on a
// terminal, JSON lines otherwise (systemd, pipes, files).
func SetupLogging(level slog.Level) *slog.Logger {
	logger := newLogger(os.Stdout, isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()), level)
	slog.SetDefault(logger)
	return logger
}

func newLogger(w io.Writer, terminal bool, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if terminal {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}
