package main

import (
	"log/slog"
	"os"

	"github.com/mhenniges/mail-rotator/cmd"
)

func main() {
	// Default logger until the config is loaded; the root command swaps in
	// the configured handler after initialization.
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))

	if err := cmd.Execute(); err != nil {
		slog.Error("Command execution failed", "error", err)
		os.Exit(1)
	}
}
