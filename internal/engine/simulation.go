// Simulation holds the garden state and advances it one month per step.
package engine

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/talgya/garden-sim/internal/catalog"
	"github.com/talgya/garden-sim/internal/entropy"
)

// Garden describes the plot: its size and the single active soil.
type Garden struct {
	Width  float64 `json:"width" yaml:"width"`   // m
	Height float64 `json:"height" yaml:"height"` // m
	SoilID int     `json:"soil_id" yaml:"soil_id"`
}

// Simulation owns the mutable garden state. All exported methods serialize on
// one mutex, so a step never interleaves with placement or removal.
type Simulation struct {
	mu sync.Mutex

	catalog *catalog.Catalog
	params  Params
	soilMod SoilModel
	rng     entropy.Source

	runID  string
	month  int // Monotonic; sole driver of season and hazard ageing
	soil   catalog.SoilType
	width  float64
	height float64

	plants      map[PlantID]*Plant
	order       []PlantID // Ascending id; the fixed traversal order
	nextPlantID PlantID
	overlaps    *OverlapIndex

	hazards      []*Hazard
	nextHazardID HazardID

	stats Stats
}

// Stats tracks run-level counters and the latest aggregates.
type Stats struct {
	Planted        int     `json:"planted"`
	Removed        int     `json:"removed"`
	Destroyed      int     `json:"destroyed"`
	HazardsSpawned int     `json:"hazards_spawned"`
	Alive          int     `json:"alive"`
	AvgHeight      float64 `json:"avg_height"`
	MaxHeight      float64 `json:"max_height"`
	AvgRadius      float64 `json:"avg_radius"`
}

// PlantSummary is the per-plant log line produced by a step.
type PlantSummary struct {
	ID        PlantID `json:"id" db:"plant_id"`
	TypeID    int     `json:"type_id" db:"type_id"`
	Name      string  `json:"name" db:"name"`
	Age       int     `json:"age" db:"age"`
	Height    float64 `json:"height" db:"height"`
	Radius    float64 `json:"radius" db:"radius"`
	Overlaps  int     `json:"overlaps" db:"overlaps"`
	Collision float64 `json:"collision" db:"collision"`
	Sun       float64 `json:"sun" db:"sun"`
	Soil      float64 `json:"soil" db:"soil"`
	Delta     float64 `json:"delta" db:"delta"`
	Dormant   bool    `json:"dormant" db:"dormant"`
}

// StepReport is everything one step changed. It is consumed by logs and
// renderers, never by the engine.
type StepReport struct {
	Month     int            `json:"month"`
	Season    Season         `json:"season"`
	Spawned   *Hazard        `json:"spawned,omitempty"`
	Destroyed []PlantID      `json:"destroyed,omitempty"`
	Expired   []HazardID     `json:"expired,omitempty"`
	Plants    []PlantSummary `json:"plants"`
}

// NewSimulation creates an empty garden. rng may be nil, in which case a
// crypto-backed source is used.
func NewSimulation(cat *catalog.Catalog, g Garden, params Params, rng entropy.Source) (*Simulation, error) {
	p, err := params.Normalize()
	if err != nil {
		return nil, fmt.Errorf("params: %w", err)
	}
	if g.Width <= 0 || g.Height <= 0 {
		return nil, ErrInvalidGarden
	}
	soil, ok := cat.Soil(g.SoilID)
	if !ok {
		return nil, fmt.Errorf("soil %d: %w", g.SoilID, ErrUnknownSoil)
	}
	if rng == nil {
		rng = entropy.Crypto{}
	}

	return &Simulation{
		catalog:  cat,
		params:   p,
		soilMod:  NewSoilModel(p.SoilMode, cat),
		rng:      rng,
		runID:    uuid.NewString(),
		soil:     soil,
		width:    g.Width,
		height:   g.Height,
		plants:   make(map[PlantID]*Plant),
		overlaps: NewOverlapIndex(),
	}, nil
}

// Month returns the current month counter.
func (s *Simulation) Month() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.month
}

// Season returns the season derived from the current month counter.
func (s *Simulation) Season() Season {
	return SeasonForMonth(s.Month())
}

// RunID returns the identifier of this simulation run.
func (s *Simulation) RunID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runID
}

// Garden returns the plot dimensions and active soil.
func (s *Simulation) Garden() Garden {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Garden{Width: s.width, Height: s.height, SoilID: s.soil.ID}
}

// Soil returns the active soil type.
func (s *Simulation) Soil() catalog.SoilType {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.soil
}

// SoilMode returns the soil strategy in use.
func (s *Simulation) SoilMode() SoilMode {
	return s.soilMod.Mode()
}

// Params returns the normalized parameters.
func (s *Simulation) Params() Params {
	return s.params
}

// Catalog returns the catalog the simulation resolves plant types against.
func (s *Simulation) Catalog() *catalog.Catalog {
	return s.catalog
}

// Stats returns a copy of the run statistics.
func (s *Simulation) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// SetSoil changes the garden's single active soil.
func (s *Simulation) SetSoil(id int) error {
	soil, ok := s.catalog.Soil(id)
	if !ok {
		return fmt.Errorf("soil %d: %w", id, ErrUnknownSoil)
	}
	s.mu.Lock()
	s.soil = soil
	s.mu.Unlock()
	slog.Info("soil changed", "soil", soil.Name, "id", soil.ID)
	return nil
}

// Step advances the garden by one month: season, disturbance, hazard ageing,
// then growth of every living plant.
func (s *Simulation) Step() StepReport {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.month++
	season := SeasonForMonth(s.month)
	report := StepReport{Month: s.month, Season: season}

	spawned := s.disturb(&report)
	report.Expired = s.ageHazards(spawned)

	report.Plants = s.grow(season)
	s.updateStats()

	for _, ps := range report.Plants {
		slog.Debug("plant month",
			"month", s.month,
			"id", ps.ID,
			"type", ps.Name,
			"age", ps.Age,
			"height", fmt.Sprintf("%.2f", ps.Height),
			"radius", fmt.Sprintf("%.2f", ps.Radius),
			"collision", fmt.Sprintf("%.2f", ps.Collision),
			"sun", fmt.Sprintf("%.2f", ps.Sun),
		)
	}
	if s.month%MonthsPerYear == 0 {
		s.logYear()
	}
	return report
}

func (s *Simulation) updateStats() {
	s.stats.Alive = len(s.order)
	s.stats.AvgHeight, s.stats.AvgRadius, s.stats.MaxHeight = 0, 0, 0
	if len(s.order) == 0 {
		return
	}
	for _, id := range s.order {
		p := s.plants[id]
		s.stats.AvgHeight += p.Height
		s.stats.AvgRadius += p.Radius
		s.stats.MaxHeight = max(s.stats.MaxHeight, p.Height)
	}
	n := float64(len(s.order))
	s.stats.AvgHeight /= n
	s.stats.AvgRadius /= n
}

func (s *Simulation) logYear() {
	year := YearOf(s.month)
	slog.Info("yearly report",
		"year", humanize.Ordinal(year),
		"month", s.month,
		"alive", humanize.Comma(int64(s.stats.Alive)),
		"planted", humanize.Comma(int64(s.stats.Planted)),
		"destroyed", humanize.Comma(int64(s.stats.Destroyed)),
		"hazards", len(s.hazards),
		"avg_height", fmt.Sprintf("%.2f", s.stats.AvgHeight),
		"max_height", fmt.Sprintf("%.2f", s.stats.MaxHeight),
	)
}
