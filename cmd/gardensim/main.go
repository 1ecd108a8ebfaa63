// Command gardensim runs a garden simulation as a long-lived service with an
// HTTP control surface and SQLite persistence.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"

	"github.com/talgya/garden-sim/internal/api"
	"github.com/talgya/garden-sim/internal/catalog"
	"github.com/talgya/garden-sim/internal/config"
	"github.com/talgya/garden-sim/internal/engine"
	"github.com/talgya/garden-sim/internal/entropy"
	"github.com/talgya/garden-sim/internal/layout"
	"github.com/talgya/garden-sim/internal/persistence"
)

func main() {
	cfg, err := config.Load()
	config.SetupLogging(cfg.LogLevel)
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("garden simulation starting",
		"size", fmt.Sprintf("%gx%g", cfg.Width, cfg.Height),
		"years", cfg.Params.Years,
		"interval", cfg.Params.Interval,
	)

	// ── Database ──────────────────────────────────────────────────────
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		slog.Error("failed to create data dir", "dir", cfg.DataDir, "error", err)
		os.Exit(1)
	}
	db, err := persistence.Open(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database opened", "path", cfg.DBPath)

	// ── Catalog ───────────────────────────────────────────────────────
	cat := loadCatalog(cfg, db)

	// ── Load or Plant Garden ─────────────────────────────────────────
	sim, err := engine.NewSimulation(cat,
		engine.Garden{Width: cfg.Width, Height: cfg.Height, SoilID: cfg.SoilID},
		cfg.Params, entropy.ForSeed(cfg.Seed))
	if err != nil {
		slog.Error("failed to create simulation", "error", err)
		os.Exit(1)
	}

	if db.HasState() {
		slog.Info("found saved garden, loading...")
		st, err := db.LoadState()
		if err != nil {
			slog.Error("failed to load garden", "error", err)
			os.Exit(1)
		}
		warnings, err := sim.Restore(st)
		if err != nil {
			slog.Error("failed to restore garden", "error", err)
			os.Exit(1)
		}
		for _, w := range warnings {
			slog.Warn("restore", "warning", w)
		}
	} else {
		slog.Info("no saved garden found, planting a new one...")
		plantLayout(sim, cfg)
		if err := db.SaveState(sim.State()); err != nil {
			slog.Error("initial save failed", "error", err)
		}
	}

	// ── Clock and API ────────────────────────────────────────────────
	clock := engine.NewClock(sim)
	server := &api.Server{
		Sim:      sim,
		Clock:    clock,
		DB:       db,
		Port:     cfg.Port,
		AdminKey: cfg.AdminKey,
	}
	if cfg.AdminKey == "" {
		slog.Warn("GARDEN_ADMIN_KEY not set, admin POST endpoints will be disabled")
	}

	clock.OnStep = func(report engine.StepReport) {
		if err := db.SaveStepReport(report); err != nil {
			slog.Error("step log save failed", "month", report.Month, "error", err)
		}
		server.Publish(report)
		// Auto-save yearly.
		if report.Month%engine.MonthsPerYear == 0 {
			if err := db.SaveState(sim.State()); err != nil {
				slog.Error("yearly save failed", "error", err)
			}
		}
	}
	clock.OnStop = func(month int) {
		if err := db.SaveState(sim.State()); err != nil {
			slog.Error("save on stop failed", "month", month, "error", err)
		}
	}

	server.Start()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Printf("\nGarden is growing: %s plants on %s soil, %s.\n",
		humanize.Comma(int64(sim.LiveCount())), sim.Soil().Name, engine.SimTime(sim.Month()))
	fmt.Printf("API: http://localhost:%d/api/v1/status\n", cfg.Port)

	if err := clock.Start(); err != nil {
		switch {
		case errors.Is(err, engine.ErrEmptyGarden):
			slog.Warn("garden is empty, clock waits for plants and a start request")
		case errors.Is(err, engine.ErrRunComplete):
			slog.Info("run already complete, serving final state", "months", sim.Month())
		default:
			slog.Error("clock start failed", "error", err)
		}
	}
	fmt.Println("Simulation running... (Ctrl+C to stop)")

	clock.Run(ctx)
	slog.Info("received signal, shutting down")

	// Final save on shutdown.
	slog.Info("final save...")
	if err := db.SaveState(sim.State()); err != nil {
		slog.Error("final save failed", "error", err)
	}
	fmt.Printf("Simulation stopped at %s. Garden saved.\n", engine.SimTime(sim.Month()))
}

// loadCatalog prefers an explicit catalog file, then the database tables,
// then the built-in catalog. A built-in catalog is written back to the
// database so operators can edit it in place.
func loadCatalog(cfg config.Config, db *persistence.DB) *catalog.Catalog {
	if cfg.CatalogPath != "" {
		return catalog.LoadOrDefault(cfg.CatalogPath)
	}
	cat, err := db.LoadCatalog()
	if err == nil {
		slog.Info("catalog loaded from database",
			"soils", len(cat.Soils), "plants", len(cat.Plants), "rules", len(cat.Rules))
		return cat
	}
	if !errors.Is(err, catalog.ErrEmpty) {
		slog.Warn("catalog tables unreadable, using built-in catalog", "error", err)
		return catalog.Default()
	}
	cat = catalog.Default()
	if err := db.SaveCatalog(cat); err != nil {
		slog.Warn("failed to seed catalog tables", "error", err)
	}
	return cat
}

// plantLayout scatters seedlings over a fresh garden.
func plantLayout(sim *engine.Simulation, cfg config.Config) {
	sc := layout.DefaultScatterConfig(cfg.Width, cfg.Height)
	sc.Density = cfg.Density
	sc.Seed = cfg.Seed

	planted := 0
	for _, pl := range layout.Scatter(sc, sim.Catalog().Plants) {
		if _, err := sim.Place(pl.TypeID, pl.X, pl.Y); err != nil {
			slog.Warn("layout placement rejected", "type_id", pl.TypeID, "error", err)
			continue
		}
		planted++
	}
	slog.Info("garden planted", "plants", planted, "soil", sim.Soil().Name)
}
