// Disturbance events: transient hazard zones that destroy vulnerable plants.
package engine

import (
	"log/slog"
	"math"
)

// HazardID identifies a hazard zone within a Simulation.
type HazardID uint64

// Hazard is a circular disturbance zone. It destroys vulnerable plants once,
// when it spawns, and then fades over MonthsLeft steps.
type Hazard struct {
	ID         HazardID `json:"id"`
	X          float64  `json:"x"`
	Y          float64  `json:"y"`
	Radius     float64  `json:"radius"`
	MonthsLeft int      `json:"months_left"`
}

// Covers reports whether a point lies strictly inside the hazard.
func (h *Hazard) Covers(x, y float64) bool {
	return math.Hypot(x-h.X, y-h.Y) < h.Radius
}

// Hazards returns copies of the active hazard zones.
func (s *Simulation) Hazards() []Hazard {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Hazard, 0, len(s.hazards))
	for _, h := range s.hazards {
		out = append(out, *h)
	}
	return out
}

// disturb rolls for a new hazard. On a hit it spawns one at a uniform random
// position with a uniform random radius and destroys every vulnerable plant
// inside it. Draw order is fixed: roll, x, y, radius.
func (s *Simulation) disturb(report *StepReport) *Hazard {
	if s.rng.Float64() >= s.params.HazardChance {
		return nil
	}

	s.nextHazardID++
	h := &Hazard{
		ID:         s.nextHazardID,
		X:          s.rng.Float64() * s.width,
		Y:          s.rng.Float64() * s.height,
		MonthsLeft: HazardLifetime,
	}
	h.Radius = s.params.HazardMinRadius + s.rng.Float64()*(s.params.HazardMaxRadius-s.params.HazardMinRadius)
	s.hazards = append(s.hazards, h)
	s.stats.HazardsSpawned++

	var destroyed []PlantID
	for _, p := range s.live() {
		if p.Type.Category.Vulnerable() && h.Covers(p.X, p.Y) {
			destroyed = append(destroyed, p.ID)
		}
	}
	for _, id := range destroyed {
		s.remove(id)
	}
	s.stats.Destroyed += len(destroyed)

	// Reports outlive the step; the live hazard keeps aging under mu.
	spawned := *h
	report.Spawned = &spawned
	report.Destroyed = destroyed

	slog.Info("hazard spawned",
		"month", s.month,
		"x", h.X, "y", h.Y, "radius", h.Radius,
		"destroyed", len(destroyed),
	)
	return h
}

// ageHazards decrements every hazard except the one spawned this step and
// prunes the ones that have run out.
func (s *Simulation) ageHazards(spawned *Hazard) []HazardID {
	var expired []HazardID
	kept := s.hazards[:0]
	for _, h := range s.hazards {
		if h != spawned {
			h.MonthsLeft--
		}
		if h.MonthsLeft <= 0 {
			expired = append(expired, h.ID)
			continue
		}
		kept = append(kept, h)
	}
	clear(s.hazards[len(kept):])
	s.hazards = kept
	return expired
}
