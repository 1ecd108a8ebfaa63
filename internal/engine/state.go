package engine

import (
	"fmt"
	"log/slog"
)

// State is the persisted aggregate of a garden: everything needed to resume
// a run. The season is derived from Month and never stored.
type State struct {
	RunID   string
	Month   int
	SoilID  int
	Width   float64
	Height  float64
	Plants  []PlantState
	Hazards []HazardState
}

// PlantState is the persisted form of one plant.
type PlantState struct {
	TypeID int
	X, Y   float64
	Age    int
	Height float64
	Radius float64
}

// HazardState is the persisted form of one hazard zone.
type HazardState struct {
	X, Y       float64
	Radius     float64
	MonthsLeft int
}

// State exports the current mutable state. Plants are listed in id order.
func (s *Simulation) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := State{
		RunID:   s.runID,
		Month:   s.month,
		SoilID:  s.soil.ID,
		Width:   s.width,
		Height:  s.height,
		Plants:  make([]PlantState, 0, len(s.order)),
		Hazards: make([]HazardState, 0, len(s.hazards)),
	}
	for _, id := range s.order {
		p := s.plants[id]
		st.Plants = append(st.Plants, PlantState{
			TypeID: p.Type.ID,
			X:      p.X,
			Y:      p.Y,
			Age:    p.Age,
			Height: p.Height,
			Radius: p.Radius,
		})
	}
	for _, h := range s.hazards {
		st.Hazards = append(st.Hazards, HazardState{
			X:          h.X,
			Y:          h.Y,
			Radius:     h.Radius,
			MonthsLeft: h.MonthsLeft,
		})
	}
	return st
}

// Restore replaces all mutable state with st. Plants whose type id is not in
// the catalog are skipped and reported as warnings. An unknown soil, invalid
// garden size, or negative month fails the restore and leaves the current
// state untouched.
func (s *Simulation) Restore(st State) (warnings []string, err error) {
	if st.Width <= 0 || st.Height <= 0 {
		return nil, ErrInvalidGarden
	}
	if st.Month < 0 {
		return nil, fmt.Errorf("restore: negative month %d", st.Month)
	}
	soil, ok := s.catalog.Soil(st.SoilID)
	if !ok {
		return nil, fmt.Errorf("restore soil %d: %w", st.SoilID, ErrUnknownSoil)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if st.RunID != "" {
		s.runID = st.RunID
	}
	s.month = st.Month
	s.soil = soil
	s.width, s.height = st.Width, st.Height
	s.plants = make(map[PlantID]*Plant, len(st.Plants))
	s.order = s.order[:0]
	s.overlaps = NewOverlapIndex()
	s.hazards = s.hazards[:0]
	s.stats = Stats{}

	for i, ps := range st.Plants {
		pt, ok := s.catalog.Plant(ps.TypeID)
		if !ok {
			msg := fmt.Sprintf("plant %d: unknown plant type %d, skipped", i, ps.TypeID)
			slog.Warn("snapshot reference skipped", "index", i, "type_id", ps.TypeID)
			warnings = append(warnings, msg)
			continue
		}
		if reason := invalidPlantState(ps, pt.MaxHeight); reason != "" {
			msg := fmt.Sprintf("plant %d: %s, skipped", i, reason)
			slog.Warn("snapshot plant skipped", "index", i, "type_id", ps.TypeID, "reason", reason)
			warnings = append(warnings, msg)
			continue
		}
		s.insert(pt, ps.X, ps.Y, ps.Age, ps.Height, ps.Radius)
	}
	for _, hs := range st.Hazards {
		if hs.MonthsLeft <= 0 {
			hs.MonthsLeft = HazardLifetime
		}
		s.nextHazardID++
		s.hazards = append(s.hazards, &Hazard{
			ID:         s.nextHazardID,
			X:          hs.X,
			Y:          hs.Y,
			Radius:     hs.Radius,
			MonthsLeft: hs.MonthsLeft,
		})
	}
	s.updateStats()

	slog.Info("garden restored",
		"run_id", s.runID,
		"month", s.month,
		"time", SimTime(s.month),
		"plants", len(s.order),
		"hazards", len(s.hazards),
		"skipped", len(warnings),
	)
	return warnings, nil
}

// invalidPlantState reports why a stored plant cannot be placed, or "" if it
// is usable.
func invalidPlantState(ps PlantState, maxHeight float64) string {
	switch {
	case ps.Height <= 0:
		return fmt.Sprintf("height %g must be positive", ps.Height)
	case ps.Height > maxHeight:
		return fmt.Sprintf("height %g exceeds max height %g", ps.Height, maxHeight)
	case ps.Radius < 0:
		return fmt.Sprintf("negative radius %g", ps.Radius)
	case ps.Age < 0:
		return fmt.Sprintf("negative age %d", ps.Age)
	}
	return ""
}
