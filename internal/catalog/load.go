package catalog

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrEmpty is returned when a catalog has no soils or no plants.
var ErrEmpty = errors.New("catalog has no soil or plant types")

// Load reads and validates a YAML catalog file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog YAML: %w", err)
	}
	c.Index()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid catalog %s: %w", path, err)
	}
	return &c, nil
}

// LoadOrDefault loads the catalog at path, falling back to the built-in
// catalog when path is empty or the file cannot be used.
func LoadOrDefault(path string) *Catalog {
	if path == "" {
		return Default()
	}
	c, err := Load(path)
	if err != nil {
		slog.Warn("catalog load failed, using built-in catalog", "path", path, "error", err)
		return Default()
	}
	slog.Info("catalog loaded", "path", path,
		"soils", len(c.Soils), "plants", len(c.Plants), "rules", len(c.Rules))
	return c
}

// Validate checks the invariants the simulation relies on without re-checking
// them every step.
func (c *Catalog) Validate() error {
	if len(c.Soils) == 0 || len(c.Plants) == 0 {
		return ErrEmpty
	}

	soils := make(map[int]bool, len(c.Soils))
	for _, s := range c.Soils {
		if soils[s.ID] {
			return fmt.Errorf("duplicate soil id %d", s.ID)
		}
		soils[s.ID] = true
		if !unit(s.WaterRetention) || !unit(s.NutrientLevel) {
			return fmt.Errorf("soil %d (%s): water retention and nutrient level must be within [0,1]", s.ID, s.Name)
		}
	}

	plants := make(map[int]bool, len(c.Plants))
	for _, p := range c.Plants {
		if plants[p.ID] {
			return fmt.Errorf("duplicate plant id %d", p.ID)
		}
		plants[p.ID] = true
		switch {
		case categoryNames[p.Category] == "":
			return fmt.Errorf("plant %d (%s): unknown category %d", p.ID, p.Name, uint8(p.Category))
		case p.MaxHeight <= 0:
			return fmt.Errorf("plant %d (%s): max height must be positive", p.ID, p.Name)
		case p.MaxWidth <= 0:
			return fmt.Errorf("plant %d (%s): max width must be positive", p.ID, p.Name)
		case p.CanopyRadius < 0 || p.RootDepth < 0 || p.BaseGrowthRate < 0:
			return fmt.Errorf("plant %d (%s): negative dimension or growth rate", p.ID, p.Name)
		case p.SunPreference < 0 || p.SunPreference > 10:
			return fmt.Errorf("plant %d (%s): sun preference must be within [0,10]", p.ID, p.Name)
		}
	}

	for _, r := range c.Rules {
		if r.Multiplier <= 0 {
			return fmt.Errorf("rule (%d,%d): multiplier must be positive", r.PlantTypeID, r.SoilTypeID)
		}
		if !plants[r.PlantTypeID] || !soils[r.SoilTypeID] {
			return fmt.Errorf("rule (%d,%d): references unknown plant or soil", r.PlantTypeID, r.SoilTypeID)
		}
	}
	return nil
}

func unit(v float64) bool {
	return v >= 0 && v <= 1
}

// UnmarshalYAML accepts either a category name ("fern") or its number.
func (c *Category) UnmarshalYAML(value *yaml.Node) error {
	var n uint8
	if err := value.Decode(&n); err == nil {
		*c = Category(n)
		return nil
	}
	var name string
	if err := value.Decode(&name); err != nil {
		return fmt.Errorf("category: %w", err)
	}
	for cat, catName := range categoryNames {
		if catName == strings.ToLower(strings.TrimSpace(name)) {
			*c = cat
			return nil
		}
	}
	return fmt.Errorf("unknown plant category %q", name)
}

// MarshalYAML writes known categories by name.
func (c Category) MarshalYAML() (any, error) {
	if name, ok := categoryNames[c]; ok {
		return name, nil
	}
	return uint8(c), nil
}
