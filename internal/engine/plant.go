package engine

import (
	"fmt"
	"log/slog"

	"github.com/talgya/garden-sim/internal/catalog"
)

// PlantID is a stable identifier for a planted instance. Ids are never reused
// within a Simulation.
type PlantID uint64

// Plant is one planted instance with live growth state.
type Plant struct {
	ID     PlantID           `json:"id"`
	Type   catalog.PlantType `json:"-"`
	X      float64           `json:"x"` // m
	Y      float64           `json:"y"` // m
	Age    int               `json:"age"`    // months
	Height float64           `json:"height"` // m, 0 < Height <= MaxHeight
	Radius float64           `json:"radius"` // Current canopy radius, m
}

// TargetRadius is the canopy radius a plant of this height grows toward.
func (p *Plant) TargetRadius() float64 {
	return targetRadius(p.Type, p.Height)
}

func targetRadius(t catalog.PlantType, height float64) float64 {
	return height / t.MaxHeight * (t.MaxWidth / 2)
}

// PlantView is a read-only copy of a plant returned to callers outside the
// step.
type PlantView struct {
	Plant
	TypeID    int       `json:"type_id"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Neighbors []PlantID `json:"neighbors"`
}

// Place plants a seedling of the given type. The seedling starts at age 0
// with the configured seed height and a small fraction of the catalog canopy
// radius, never above the target radius for its height.
func (s *Simulation) Place(typeID int, x, y float64) (PlantID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pt, ok := s.catalog.Plant(typeID)
	if !ok {
		return 0, fmt.Errorf("place %d: %w", typeID, ErrUnknownPlantType)
	}
	if !s.inBounds(x, y) {
		return 0, fmt.Errorf("place at (%.2f, %.2f): %w", x, y, ErrOutOfBounds)
	}

	height := min(s.params.SeedHeight, pt.MaxHeight)
	radius := min(pt.CanopyRadius*s.params.SeedRadiusFraction, targetRadius(pt, height))
	p := s.insert(pt, x, y, 0, height, radius)
	s.stats.Planted++

	slog.Debug("plant placed", "id", p.ID, "type", pt.Name, "x", x, "y", y)
	return p.ID, nil
}

// Remove deletes a plant. It reports false if the id is not living.
func (s *Simulation) Remove(id PlantID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.plants[id]; !ok {
		return false
	}
	s.remove(id)
	s.stats.Removed++
	return true
}

// Plant returns a copy of a living plant.
func (s *Simulation) Plant(id PlantID) (PlantView, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.plants[id]
	if !ok {
		return PlantView{}, false
	}
	return s.view(p), true
}

// Plants returns copies of all living plants in id order.
func (s *Simulation) Plants() []PlantView {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]PlantView, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.view(s.plants[id]))
	}
	return out
}

// LiveCount returns the number of living plants.
func (s *Simulation) LiveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order)
}

func (s *Simulation) view(p *Plant) PlantView {
	return PlantView{
		Plant:     *p,
		TypeID:    p.Type.ID,
		Name:      p.Type.Name,
		Category:  p.Type.Category.String(),
		Neighbors: s.overlaps.Neighbors(p.ID),
	}
}

// insert adds a plant to the arena and links its overlaps. Caller holds mu.
func (s *Simulation) insert(pt catalog.PlantType, x, y float64, age int, height, radius float64) *Plant {
	s.nextPlantID++
	p := &Plant{
		ID:     s.nextPlantID,
		Type:   pt,
		X:      x,
		Y:      y,
		Age:    age,
		Height: height,
		Radius: radius,
	}
	s.overlaps.Add(p, s.live())
	s.plants[p.ID] = p
	s.order = append(s.order, p.ID)
	return p
}

// remove drops a plant from the arena and the overlap index. Caller holds mu.
func (s *Simulation) remove(id PlantID) {
	delete(s.plants, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.overlaps.Drop(id)
}

// live returns the living plants in id order. Caller holds mu.
func (s *Simulation) live() []*Plant {
	out := make([]*Plant, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.plants[id])
	}
	return out
}

func (s *Simulation) inBounds(x, y float64) bool {
	return x >= 0 && y >= 0 && x <= s.width && y <= s.height
}
