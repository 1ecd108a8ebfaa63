package engine

import (
	"errors"
	"fmt"
	"time"
)

// Fixed model constants.
const (
	ShadeHeightDivisor = 2.0  // Height difference that yields full shadow impact
	MaxShadowImpact    = 0.8  // Cap on light removed by a single taller neighbor
	SunScale           = 10.0 // Light fraction → sun preference scale
	SunMismatchDivisor = 20.0 // Preference mismatch penalty divisor

	CollisionMaxImpact = 0.75 // Maximum slowdown from crowding
	CollisionDecay     = 0.8  // Per-neighbor decay base
	CollisionFloor     = 0.25

	HazardLifetime = 3 // Months a hazard zone stays active after spawning

	MonthsPerYear = 12
)

// Sentinel errors returned by Simulation and Clock operations.
var (
	ErrEmptyGarden      = errors.New("no living plants in the garden")
	ErrUnknownPlantType = errors.New("unknown plant type")
	ErrUnknownSoil      = errors.New("unknown soil type")
	ErrOutOfBounds      = errors.New("position outside garden bounds")
	ErrInvalidGarden    = errors.New("garden dimensions must be positive")
	ErrRunComplete      = errors.New("simulation reached its duration cap")
)

// SoilMode selects the soil growth factor strategy for a deployment.
type SoilMode string

const (
	SoilModeAuto    SoilMode = "auto"    // Rules when the catalog has any, else formula
	SoilModeFormula SoilMode = "formula" // Nutrient and water formula
	SoilModeRules   SoilMode = "rules"   // Explicit (plant, soil) multiplier table
)

// Params holds simulation tunables. Zero values are replaced by defaults in
// Normalize.
type Params struct {
	HazardChance       float64       `yaml:"hazard_chance" json:"hazard_chance"`
	HazardMinRadius    float64       `yaml:"hazard_min_radius" json:"hazard_min_radius"` // m
	HazardMaxRadius    float64       `yaml:"hazard_max_radius" json:"hazard_max_radius"` // m
	SeedHeight         float64       `yaml:"seed_height" json:"seed_height"`             // m
	SeedRadiusFraction float64       `yaml:"seed_radius_fraction" json:"seed_radius_fraction"`
	MinSun             float64       `yaml:"min_sun" json:"min_sun"` // Ambient light floor
	SoilMode           SoilMode      `yaml:"soil_mode" json:"soil_mode"`
	Years              int           `yaml:"years" json:"years"`       // Clock duration cap
	Interval           time.Duration `yaml:"interval" json:"interval"` // Clock base interval at 1x
}

// DefaultParams returns the standard garden configuration.
func DefaultParams() Params {
	return Params{
		HazardChance:       0.01,
		HazardMinRadius:    0.5,
		HazardMaxRadius:    1.5,
		SeedHeight:         0.1,
		SeedRadiusFraction: 0.01,
		MinSun:             0.2,
		SoilMode:           SoilModeAuto,
		Years:              10,
		Interval:           time.Second,
	}
}

// Normalize fills unset fields from DefaultParams and validates the rest.
func (p Params) Normalize() (Params, error) {
	d := DefaultParams()
	if p.HazardMinRadius == 0 && p.HazardMaxRadius == 0 {
		p.HazardMinRadius, p.HazardMaxRadius = d.HazardMinRadius, d.HazardMaxRadius
	}
	if p.SeedHeight == 0 {
		p.SeedHeight = d.SeedHeight
	}
	if p.SeedRadiusFraction == 0 {
		p.SeedRadiusFraction = d.SeedRadiusFraction
	}
	if p.MinSun == 0 {
		p.MinSun = d.MinSun
	}
	if p.SoilMode == "" {
		p.SoilMode = d.SoilMode
	}
	if p.Years == 0 {
		p.Years = d.Years
	}
	if p.Interval == 0 {
		p.Interval = d.Interval
	}

	switch {
	case p.HazardChance < 0 || p.HazardChance > 1:
		return p, fmt.Errorf("hazard chance %v outside [0,1]", p.HazardChance)
	case p.HazardMinRadius < 0 || p.HazardMaxRadius < p.HazardMinRadius:
		return p, fmt.Errorf("hazard radius range [%v,%v] is invalid", p.HazardMinRadius, p.HazardMaxRadius)
	case p.SeedHeight < 0:
		return p, fmt.Errorf("seed height %v must be positive", p.SeedHeight)
	case p.MinSun <= 0 || p.MinSun > 1:
		return p, fmt.Errorf("min sun %v outside (0,1]", p.MinSun)
	case p.Years < 0:
		return p, fmt.Errorf("years %d must not be negative", p.Years)
	case p.Interval < 0:
		return p, fmt.Errorf("interval %v must not be negative", p.Interval)
	}
	switch p.SoilMode {
	case SoilModeAuto, SoilModeFormula, SoilModeRules:
	default:
		return p, fmt.Errorf("unknown soil mode %q", p.SoilMode)
	}
	return p, nil
}

// CapMonths is the clock duration cap in months.
func (p Params) CapMonths() int {
	return p.Years * MonthsPerYear
}
