package engine

import (
	"math"
	"slices"
)

// CollisionFactor returns the growth damping for a plant whose canopy
// overlaps n other canopies: 1 - 0.75*(1 - 0.8^n), floored at 0.25.
func CollisionFactor(n int) float64 {
	if n <= 0 {
		return 1.0
	}
	factor := 1 - CollisionMaxImpact*(1-math.Pow(CollisionDecay, float64(n)))
	return math.Max(CollisionFloor, factor)
}

// Overlapping reports whether two canopy circles intersect.
func Overlapping(a, b *Plant) bool {
	return distance(a, b) < a.Radius+b.Radius
}

// OverlapEvent records a pair of canopies starting or ceasing to touch.
type OverlapEvent struct {
	A, B    PlantID
	Entered bool
}

// OverlapIndex keeps an adjacency set of overlapping canopies per plant.
type OverlapIndex struct {
	adj map[PlantID]map[PlantID]struct{}
}

// NewOverlapIndex creates an empty index.
func NewOverlapIndex() *OverlapIndex {
	return &OverlapIndex{adj: make(map[PlantID]map[PlantID]struct{})}
}

// Count returns the number of canopies overlapping id.
func (ix *OverlapIndex) Count(id PlantID) int {
	return len(ix.adj[id])
}

// Neighbors returns the overlapping plant ids in ascending order.
func (ix *OverlapIndex) Neighbors(id PlantID) []PlantID {
	out := make([]PlantID, 0, len(ix.adj[id]))
	for n := range ix.adj[id] {
		out = append(out, n)
	}
	slices.Sort(out)
	return out
}

// Add inserts p and links it against the existing plants.
func (ix *OverlapIndex) Add(p *Plant, others []*Plant) []OverlapEvent {
	var events []OverlapEvent
	if _, ok := ix.adj[p.ID]; !ok {
		ix.adj[p.ID] = make(map[PlantID]struct{})
	}
	for _, o := range others {
		if o.ID == p.ID || !Overlapping(p, o) {
			continue
		}
		if ix.link(p.ID, o.ID) {
			events = append(events, OverlapEvent{A: p.ID, B: o.ID, Entered: true})
		}
	}
	return events
}

// Drop removes id and every edge touching it.
func (ix *OverlapIndex) Drop(id PlantID) []OverlapEvent {
	var events []OverlapEvent
	for _, n := range ix.Neighbors(id) {
		delete(ix.adj[n], id)
		events = append(events, OverlapEvent{A: id, B: n, Entered: false})
	}
	delete(ix.adj, id)
	return events
}

// Refresh recomputes overlaps for the live set with an O(n²) pass and
// returns the enter/exit events relative to the previous state.
func (ix *OverlapIndex) Refresh(plants []*Plant) []OverlapEvent {
	var events []OverlapEvent
	live := make(map[PlantID]bool, len(plants))
	for _, p := range plants {
		live[p.ID] = true
		if _, ok := ix.adj[p.ID]; !ok {
			ix.adj[p.ID] = make(map[PlantID]struct{})
		}
	}
	for id := range ix.adj {
		if !live[id] {
			events = append(events, ix.Drop(id)...)
		}
	}

	for i, a := range plants {
		for _, b := range plants[i+1:] {
			_, linked := ix.adj[a.ID][b.ID]
			switch over := Overlapping(a, b); {
			case over && !linked:
				ix.link(a.ID, b.ID)
				events = append(events, OverlapEvent{A: a.ID, B: b.ID, Entered: true})
			case !over && linked:
				delete(ix.adj[a.ID], b.ID)
				delete(ix.adj[b.ID], a.ID)
				events = append(events, OverlapEvent{A: a.ID, B: b.ID, Entered: false})
			}
		}
	}
	return events
}

func (ix *OverlapIndex) link(a, b PlantID) bool {
	if _, ok := ix.adj[a][b]; ok {
		return false
	}
	if ix.adj[a] == nil {
		ix.adj[a] = make(map[PlantID]struct{})
	}
	if ix.adj[b] == nil {
		ix.adj[b] = make(map[PlantID]struct{})
	}
	ix.adj[a][b] = struct{}{}
	ix.adj[b][a] = struct{}{}
	return true
}
