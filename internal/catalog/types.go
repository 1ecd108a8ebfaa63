// Package catalog provides the read-only reference tables for a garden session:
// soil types, plant types, and optional per-pair growth rules.
package catalog

import "fmt"

// Category groups plant types by growth habit. It drives the preferred soil
// water level and whether a hazard can destroy the plant.
type Category uint8

const (
	CategoryFlower Category = iota + 1
	CategoryFern
	CategoryTree
	CategoryShrub
	CategoryHerb
	CategoryGrass
)

// defaultPreferredWater applies to categories outside the known set.
const defaultPreferredWater = 0.5

var categoryNames = map[Category]string{
	CategoryFlower: "flower",
	CategoryFern:   "fern",
	CategoryTree:   "tree",
	CategoryShrub:  "shrub",
	CategoryHerb:   "herb",
	CategoryGrass:  "grass",
}

// String returns the lowercase category name.
func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return fmt.Sprintf("category(%d)", uint8(c))
}

// PreferredWater returns the soil water retention this category grows best in.
func (c Category) PreferredWater() float64 {
	switch c {
	case CategoryFlower:
		return 0.6
	case CategoryFern:
		return 0.8 // Shade and damp
	case CategoryTree, CategoryShrub:
		return 0.5
	case CategoryHerb:
		return 0.4
	case CategoryGrass:
		return 0.45
	default:
		return defaultPreferredWater
	}
}

// Vulnerable reports whether a hazard destroys plants of this category.
// Woody plants survive.
func (c Category) Vulnerable() bool {
	switch c {
	case CategoryFlower, CategoryFern, CategoryHerb, CategoryGrass:
		return true
	default:
		return false
	}
}

// SoilType describes the single soil selected for a garden.
type SoilType struct {
	ID             int     `json:"id" yaml:"id" db:"id"`
	Name           string  `json:"name" yaml:"name" db:"name"`
	WaterRetention float64 `json:"water_retention" yaml:"water_retention" db:"water_retention"` // 0.0 (drains) to 1.0 (waterlogged)
	NutrientLevel  float64 `json:"nutrient_level" yaml:"nutrient_level" db:"nutrient_level"`    // 0.0 (barren) to 1.0 (rich)
}

// PlantType is one species entry in the catalog.
type PlantType struct {
	ID             int      `json:"id" yaml:"id" db:"id"`
	Name           string   `json:"name" yaml:"name" db:"name"`
	Texture        string   `json:"texture,omitempty" yaml:"texture,omitempty" db:"texture"` // Opaque to the simulation
	MaxHeight      float64  `json:"max_height" yaml:"max_height" db:"max_height"`           // m
	MaxWidth       float64  `json:"max_width" yaml:"max_width" db:"max_width"`              // Canopy diameter, m
	RootDepth      float64  `json:"root_depth" yaml:"root_depth" db:"root_depth"`           // m
	CanopyRadius   float64  `json:"canopy_radius" yaml:"canopy_radius" db:"canopy_radius"`  // Catalog canopy radius, m
	SunPreference  float64  `json:"sun_preference" yaml:"sun_preference" db:"sun_preference"` // 0 (shade) to 10 (full sun)
	Category       Category `json:"category" yaml:"category" db:"category"`
	BaseGrowthRate float64  `json:"base_growth_rate" yaml:"base_growth_rate" db:"base_growth_rate"` // m per month
}

// GrowthRule overrides the soil factor for one (plant type, soil type) pair.
type GrowthRule struct {
	PlantTypeID int     `json:"plant_type_id" yaml:"plant_type_id" db:"plant_type_id"`
	SoilTypeID  int     `json:"soil_type_id" yaml:"soil_type_id" db:"soil_type_id"`
	Multiplier  float64 `json:"multiplier" yaml:"multiplier" db:"multiplier"`
}

type ruleKey struct {
	plant, soil int
}

// Catalog holds the loaded tables and their lookup indexes.
// It must not be modified after Index is called.
type Catalog struct {
	Soils  []SoilType   `json:"soils" yaml:"soils"`
	Plants []PlantType  `json:"plants" yaml:"plants"`
	Rules  []GrowthRule `json:"rules,omitempty" yaml:"rules,omitempty"`

	soilIndex  map[int]SoilType
	plantIndex map[int]PlantType
	ruleIndex  map[ruleKey]float64
}

// New builds an indexed catalog from the given tables.
func New(soils []SoilType, plants []PlantType, rules []GrowthRule) *Catalog {
	c := &Catalog{Soils: soils, Plants: plants, Rules: rules}
	c.Index()
	return c
}

// Index (re)builds the lookup maps from the table slices.
func (c *Catalog) Index() {
	c.soilIndex = make(map[int]SoilType, len(c.Soils))
	for _, s := range c.Soils {
		c.soilIndex[s.ID] = s
	}
	c.plantIndex = make(map[int]PlantType, len(c.Plants))
	for _, p := range c.Plants {
		c.plantIndex[p.ID] = p
	}
	c.ruleIndex = make(map[ruleKey]float64, len(c.Rules))
	for _, r := range c.Rules {
		c.ruleIndex[ruleKey{r.PlantTypeID, r.SoilTypeID}] = r.Multiplier
	}
}

// Soil returns the soil type with the given id.
func (c *Catalog) Soil(id int) (SoilType, bool) {
	s, ok := c.soilIndex[id]
	return s, ok
}

// Plant returns the plant type with the given id.
func (c *Catalog) Plant(id int) (PlantType, bool) {
	p, ok := c.plantIndex[id]
	return p, ok
}

// Rule returns the explicit growth multiplier for a pair, if one exists.
func (c *Catalog) Rule(plantTypeID, soilTypeID int) (float64, bool) {
	m, ok := c.ruleIndex[ruleKey{plantTypeID, soilTypeID}]
	return m, ok
}

// HasRules reports whether the rule-table soil mode is available.
func (c *Catalog) HasRules() bool {
	return len(c.Rules) > 0
}
