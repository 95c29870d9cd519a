package main

import (
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
)

// newLogger writes human-readable text to a terminal and JSON lines
// everywhere else, e.g. CI logs.
func newLogger(out *os.File, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: debug,
	}

	fd := out.Fd()
	if isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd) {
		return slog.New(slog.NewTextHandler(out, opts))
	}
	return slog.New(slog.NewJSONHandler(out, opts))
}
