// Command steward plays the clearing world autonomously.
// It observes world state over HTTP, picks an action by fixed rules,
// and plays it through the admin click endpoint.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/talgya/clearing/internal/config"
	"github.com/talgya/clearing/internal/steward"
)

func main() {
	cfg, err := config.LoadSteward()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: config.Level(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	slog.Info("Clearing steward starting",
		"api_url", cfg.APIURL,
		"interval", cfg.Interval,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s := steward.New(cfg.APIURL, cfg.AdminKey)

	// Process start order does not guarantee the API is listening yet.
	slog.Info("waiting for worldsim API...")
	if err := s.WaitReady(ctx, 5*time.Minute); err != nil {
		slog.Error("worldsim API unavailable", "error", err)
		os.Exit(1)
	}

	s.Run(ctx, cfg.Interval)
	fmt.Println("Steward stopped.")
}
