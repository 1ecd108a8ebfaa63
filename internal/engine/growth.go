package engine

import "log/slog"

type growthPlan struct {
	plant     *Plant
	overlaps  int
	collision float64
	soil      float64
	sun       float64
	delta     float64
}

// grow applies one month of growth. Every factor is computed from the state
// at the start of the pass, so the result does not depend on plant order.
// In a dormant season plants only age. Caller holds mu.
func (s *Simulation) grow(season Season) []PlantSummary {
	plants := s.live()
	if len(plants) == 0 {
		return nil
	}

	dormant := season.Dormant()
	if !dormant {
		for _, ev := range s.overlaps.Refresh(plants) {
			slog.Debug("canopy overlap", "a", ev.A, "b", ev.B, "entered", ev.Entered)
		}
	}

	modifier := season.Modifier()
	plans := make([]growthPlan, len(plants))
	for i, p := range plants {
		n := s.overlaps.Count(p.ID)
		plan := growthPlan{
			plant:     p,
			overlaps:  n,
			collision: CollisionFactor(n),
			soil:      s.soilMod.Factor(p.Type, s.soil),
			sun:       SunLevel(p, plants, s.params.MinSun),
		}
		if !dormant {
			plan.delta = p.Type.BaseGrowthRate * plan.soil * plan.collision * plan.sun * modifier
		}
		plans[i] = plan
	}

	out := make([]PlantSummary, 0, len(plants))
	for _, plan := range plans {
		if dormant {
			plan.plant.Age++
		} else {
			applyGrowth(plan.plant, plan.delta)
		}
		out = append(out, summarize(plan.plant, plan, dormant))
	}
	return out
}

// applyGrowth advances one plant by delta. Height is capped at MaxHeight and
// the canopy radius grows toward the target radius for the new height. Both
// are non-decreasing.
func applyGrowth(p *Plant, delta float64) {
	p.Height = min(p.Height+delta, p.Type.MaxHeight)
	if r := min(p.Radius+delta, p.TargetRadius()); r > p.Radius {
		p.Radius = r
	}
	p.Age++
}

func summarize(p *Plant, plan growthPlan, dormant bool) PlantSummary {
	return PlantSummary{
		ID:        p.ID,
		TypeID:    p.Type.ID,
		Name:      p.Type.Name,
		Age:       p.Age,
		Height:    p.Height,
		Radius:    p.Radius,
		Overlaps:  plan.overlaps,
		Collision: plan.collision,
		Sun:       plan.sun,
		Soil:      plan.soil,
		Delta:     plan.delta,
		Dormant:   dormant,
	}
}
