package engine

import (
	"math"

	"github.com/talgya/garden-sim/internal/catalog"
)

// SoilModel computes the soil growth multiplier for a plant in the active
// soil. Implementations always return a strictly positive value.
type SoilModel interface {
	Factor(plant catalog.PlantType, soil catalog.SoilType) float64
	Mode() SoilMode
}

// FormulaSoil derives the multiplier from soil nutrients and how far the
// soil's water retention is from the plant category's preference.
type FormulaSoil struct{}

// Factor returns (0.5 + nutrient) * (1 - 0.5*|preferredWater - retention|).
func (FormulaSoil) Factor(plant catalog.PlantType, soil catalog.SoilType) float64 {
	nutrientFactor := 0.5 + soil.NutrientLevel
	waterFactor := 1 - 0.5*math.Abs(plant.Category.PreferredWater()-soil.WaterRetention)
	return nutrientFactor * waterFactor
}

// Mode implements SoilModel.
func (FormulaSoil) Mode() SoilMode { return SoilModeFormula }

// RuleTableSoil looks the multiplier up by (plant type, soil type).
// Pairs without a rule grow at 1.0.
type RuleTableSoil struct {
	Catalog *catalog.Catalog
}

// Factor implements SoilModel.
func (r RuleTableSoil) Factor(plant catalog.PlantType, soil catalog.SoilType) float64 {
	if m, ok := r.Catalog.Rule(plant.ID, soil.ID); ok && m > 0 {
		return m
	}
	return 1.0
}

// Mode implements SoilModel.
func (RuleTableSoil) Mode() SoilMode { return SoilModeRules }

// NewSoilModel picks the strategy for a deployment. SoilModeAuto selects the
// rule table when the catalog supplies rules.
func NewSoilModel(mode SoilMode, cat *catalog.Catalog) SoilModel {
	switch mode {
	case SoilModeRules:
		return RuleTableSoil{Catalog: cat}
	case SoilModeFormula:
		return FormulaSoil{}
	default:
		if cat.HasRules() {
			return RuleTableSoil{Catalog: cat}
		}
		return FormulaSoil{}
	}
}
