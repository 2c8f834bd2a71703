package main

import (
	"log/slog"
	"os"

	"github.com/nihei9/gramminer/internal/config"
)

// newLogger builds the run's slog.Logger at the level named by the
// config document, writing to stderr so stdout stays free for a
// command's own output (e.g. `show`'s pretty-print).
func newLogger(cfg *config.Config) *slog.Logger {
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()})
	return slog.New(h)
}
