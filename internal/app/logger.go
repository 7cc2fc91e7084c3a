package app

import (
	"log/slog"
	"os"
)

// NewLogger builds the process logger. JSON output feeds the aggregated
// production pipeline and keeps source locations; anything else gets the
// readable text handler for local work.
func NewLogger(cfg *Config) *slog.Logger {
	if cfg != nil && cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{AddSource: true}))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}
