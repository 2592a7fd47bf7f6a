// Command worldsim runs the clearing world simulation and serves it over HTTP.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/talgya/clearing/internal/api"
	"github.com/talgya/clearing/internal/config"
	"github.com/talgya/clearing/internal/engine"
	"github.com/talgya/clearing/internal/metrics"
	"github.com/talgya/clearing/internal/persistence"
	"github.com/talgya/clearing/internal/world"
)

func main() {
	cfg, err := config.LoadWorldSim()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: config.Level(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	slog.Info("Clearing world simulation starting")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Journal ───────────────────────────────────────────────────────
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		slog.Error("failed to create data directory", "error", err)
		os.Exit(1)
	}
	db, err := persistence.Open(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	runID, err := db.StartRun(ctx)
	if err != nil {
		slog.Error("failed to start run", "error", err)
		os.Exit(1)
	}
	slog.Info("journal opened", "path", cfg.DBPath, "run", runID)

	// ── Simulation ────────────────────────────────────────────────────
	w := world.New()
	sim := engine.NewSimulation(w)
	m := metrics.New(prometheus.DefaultRegisterer)

	sim.OnAction = func(tick uint64, out world.Outcome) {
		m.Action(out)
		if err := db.RecordAction(context.Background(), runID, tick, out); err != nil {
			slog.Error("journal action failed", "error", err)
		}
	}

	eng := engine.NewEngine()
	eng.Interval = cfg.TickInterval

	eng.OnTick = func(tick uint64) {
		sim.Step(tick)
		if tick%cfg.SnapshotTicks == 0 {
			snapshot(db, runID, tick, sim)
		}
	}
	eng.OnSecond = func(tick uint64) {
		m.Observe(tick, sim.World())
	}
	eng.OnMinute = sim.Report

	// ── HTTP API ──────────────────────────────────────────────────────
	if cfg.AdminKey == "" {
		slog.Warn("WORLDSIM_ADMIN_KEY not set, POST endpoints are disabled")
	}

	apiServer := &api.Server{
		Sim:         sim,
		Eng:         eng,
		DB:          db,
		RunID:       runID,
		Port:        cfg.Port,
		AdminKey:    cfg.AdminKey,
		CORSOrigins: cfg.CORSOrigins,
	}
	go func() {
		if err := apiServer.Start(ctx); err != nil {
			slog.Error("HTTP API failed", "error", err)
			stop()
		}
	}()

	fmt.Print(w.Text())
	fmt.Printf("API: http://localhost:%d/api/v1/status\n", cfg.Port)
	fmt.Println("Starting simulation... (Ctrl+C to stop)")

	eng.Run(ctx)

	slog.Info("final snapshot...")
	snapshot(db, runID, eng.Tick, sim)
	fmt.Print(sim.World().Text())
	fmt.Println("Simulation stopped.")
}

// snapshot journals the current world. Journal failures never stop the run.
func snapshot(db *persistence.DB, runID string, tick uint64, sim *engine.Simulation) {
	if err := db.RecordSnapshot(context.Background(), runID, tick, sim.World()); err != nil {
		slog.Error("journal snapshot failed", "tick", tick, "error", err)
	}
}
