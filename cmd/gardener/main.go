// Command gardener runs a garden headless from start to its duration cap as
// fast as possible and writes the final garden to a snapshot file.
//
// The starting garden comes from GARDEN_SNAPSHOT if set, else from the save
// slot GARDEN_SLOT if it exists, else from a fresh scattered layout.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/ncruces/go-strftime"

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

	cat := catalog.LoadOrDefault(cfg.CatalogPath)
	sim, err := engine.NewSimulation(cat,
		engine.Garden{Width: cfg.Width, Height: cfg.Height, SoilID: cfg.SoilID},
		cfg.Params, entropy.ForSeed(cfg.Seed))
	if err != nil {
		slog.Error("failed to create simulation", "error", err)
		os.Exit(1)
	}

	var slots *persistence.Slots
	if cfg.Slot != "" {
		slots = persistence.OpenSlots(cfg.AppName)
	}

	if err := seedGarden(sim, cfg, slots); err != nil {
		slog.Error("failed to prepare garden", "error", err)
		os.Exit(1)
	}

	clock := engine.NewClock(sim)
	if err := clock.Start(); err != nil {
		slog.Error("cannot run garden", "error", err)
		os.Exit(1)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	started := time.Now()
	startMonth := sim.Month()
loop:
	for clock.Running() {
		select {
		case sig := <-sigCh:
			slog.Info("received signal, stopping early", "signal", sig)
			clock.Stop()
			break loop
		default:
		}
		clock.Fire()
	}

	st := sim.State()
	out := filepath.Join(cfg.OutDir, "garden-"+strftime.Format("%Y%m%d-%H%M%S", time.Now())+".yaml")
	if err := os.MkdirAll(cfg.OutDir, 0o755); err != nil {
		slog.Error("failed to create output dir", "dir", cfg.OutDir, "error", err)
		os.Exit(1)
	}
	if err := persistence.SaveFile(out, st); err != nil {
		slog.Error("failed to write snapshot", "error", err)
		os.Exit(1)
	}
	if slots != nil && slots.Available() {
		if err := slots.Save(cfg.Slot, st); err != nil {
			slog.Error("failed to save slot", "slot", cfg.Slot, "error", err)
		}
	}

	stats := sim.Stats()
	fmt.Printf("\nRan %s months in %s, now %s.\n",
		humanize.Comma(int64(sim.Month()-startMonth)), time.Since(started).Round(time.Millisecond), engine.SimTime(sim.Month()))
	fmt.Printf("%s plants alive (tallest %.2f m, average %.2f m), %s destroyed by %s hazards.\n",
		humanize.Comma(int64(stats.Alive)), stats.MaxHeight, stats.AvgHeight,
		humanize.Comma(int64(stats.Destroyed)), humanize.Comma(int64(stats.HazardsSpawned)))
	fmt.Printf("Snapshot: %s (%s)\n", out, fileSize(out))
}

// seedGarden restores the starting garden or plants a new one.
func seedGarden(sim *engine.Simulation, cfg config.Config, slots *persistence.Slots) error {
	var (
		st     engine.State
		source string
		err    error
	)
	switch {
	case cfg.Snapshot != "":
		st, err = persistence.LoadFile(cfg.Snapshot)
		source = cfg.Snapshot
	case slots.Exists(cfg.Slot):
		st, err = slots.Load(cfg.Slot)
		source = "slot " + cfg.Slot
	default:
		sc := layout.DefaultScatterConfig(cfg.Width, cfg.Height)
		sc.Density = cfg.Density
		sc.Seed = cfg.Seed
		for _, pl := range layout.Scatter(sc, sim.Catalog().Plants) {
			if _, err := sim.Place(pl.TypeID, pl.X, pl.Y); err != nil {
				slog.Warn("layout placement rejected", "type_id", pl.TypeID, "error", err)
			}
		}
		slog.Info("fresh garden planted", "plants", sim.LiveCount())
		return nil
	}
	if err != nil {
		return err
	}

	warnings, err := sim.Restore(st)
	if err != nil {
		return fmt.Errorf("restore %s: %w", source, err)
	}
	for _, w := range warnings {
		slog.Warn("restore", "source", source, "warning", w)
	}
	return nil
}

func fileSize(path string) string {
	info, err := os.Stat(path)
	if err != nil {
		return "unknown size"
	}
	return humanize.Bytes(uint64(info.Size()))
}
