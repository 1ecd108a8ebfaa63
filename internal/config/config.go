// Package config reads runtime settings from GARDEN_* environment variables
// with an optional YAML file of simulation parameters layered on top.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/talgya/garden-sim/internal/engine"
)

// Config holds everything the binaries need to start a garden.
type Config struct {
	DataDir     string  // Directory for the database and snapshots
	DBPath      string  // SQLite database file
	CatalogPath string  // Optional catalog YAML; built-in catalog when empty
	ParamsPath  string  // Optional params overlay YAML
	Port        int     // HTTP API port
	AdminKey    string  // Bearer token for admin endpoints; empty disables them
	Width       float64 // Garden width, m
	Height      float64 // Garden height, m
	SoilID      int
	Seed        int64   // Layout and hazard seed (0 = random)
	Density     float64 // Fraction of layout cells planted for a fresh garden
	Slot        string  // Save slot name for the batch runner
	Snapshot    string  // Snapshot file the batch runner starts from
	OutDir      string  // Where the batch runner writes its result
	AppName     string  // gdata application name

	LogLevel slog.Level
	Params   engine.Params
}

// Load reads the environment and applies the params overlay, if any.
func Load() (Config, error) {
	dataDir := envOrDefault("GARDEN_DATA_DIR", "data")
	cfg := Config{
		DataDir:     dataDir,
		DBPath:      envOrDefault("GARDEN_DB", dataDir+"/garden.db"),
		CatalogPath: os.Getenv("GARDEN_CATALOG"),
		ParamsPath:  os.Getenv("GARDEN_PARAMS"),
		Port:        envIntOrDefault("GARDEN_PORT", 8080),
		AdminKey:    os.Getenv("GARDEN_ADMIN_KEY"),
		Width:       envFloatOrDefault("GARDEN_WIDTH", 10),
		Height:      envFloatOrDefault("GARDEN_HEIGHT", 10),
		SoilID:      envIntOrDefault("GARDEN_SOIL", 3),
		Seed:        int64(envIntOrDefault("GARDEN_SEED", 0)),
		Density:     envFloatOrDefault("GARDEN_DENSITY", 0.35),
		Slot:        os.Getenv("GARDEN_SLOT"),
		Snapshot:    os.Getenv("GARDEN_SNAPSHOT"),
		OutDir:      envOrDefault("GARDEN_OUT", dataDir),
		AppName:     envOrDefault("GARDEN_APP", "garden_sim"),
		LogLevel:    parseLevel(envOrDefault("GARDEN_LOG_LEVEL", "info")),
		Params:      engine.DefaultParams(),
	}

	if cfg.ParamsPath != "" {
		p, err := LoadParams(cfg.ParamsPath)
		if err != nil {
			return cfg, err
		}
		cfg.Params = p
	}
	if years := envIntOrDefault("GARDEN_YEARS", 0); years > 0 {
		cfg.Params.Years = years
	}

	if cfg.Width <= 0 || cfg.Height <= 0 {
		return cfg, fmt.Errorf("garden size %vx%v: %w", cfg.Width, cfg.Height, engine.ErrInvalidGarden)
	}
	return cfg, nil
}

// LoadParams reads a YAML params file. Fields absent from the file keep
// their default values.
func LoadParams(path string) (engine.Params, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return engine.Params{}, fmt.Errorf("read params: %w", err)
	}
	p := engine.DefaultParams()
	if err := yaml.Unmarshal(data, &p); err != nil {
		return engine.Params{}, fmt.Errorf("parse params %s: %w", path, err)
	}
	p, err = p.Normalize()
	if err != nil {
		return engine.Params{}, fmt.Errorf("params %s: %w", path, err)
	}
	return p, nil
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envIntOrDefault(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		slog.Warn("ignoring invalid integer", "key", key, "value", v)
	}
	return defaultVal
}

func envFloatOrDefault(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
		slog.Warn("ignoring invalid number", "key", key, "value", v)
	}
	return defaultVal
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
