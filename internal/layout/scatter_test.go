package layout

import (
	"reflect"
	"testing"

	"github.com/talgya/garden-sim/internal/catalog"
)

func TestScatterDeterministic(t *testing.T) {
	cfg := DefaultScatterConfig(12, 8)
	cfg.Seed = 42
	plants := catalog.Default().Plants

	a := Scatter(cfg, plants)
	b := Scatter(cfg, plants)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("expected identical layouts for the same seed")
	}
}

func TestScatterStaysInBounds(t *testing.T) {
	plants := catalog.Default().Plants
	known := map[int]bool{}
	for _, p := range plants {
		known[p.ID] = true
	}
	for seed := int64(1); seed <= 20; seed++ {
		cfg := ScatterConfig{Width: 7, Height: 5, Spacing: 0.8, Density: 0.6, Seed: seed}
		for _, pl := range Scatter(cfg, plants) {
			if pl.X < 0 || pl.X > cfg.Width || pl.Y < 0 || pl.Y > cfg.Height {
				t.Fatalf("seed %d: placement (%v,%v) outside garden", seed, pl.X, pl.Y)
			}
			if !known[pl.TypeID] {
				t.Fatalf("seed %d: unknown type %d", seed, pl.TypeID)
			}
		}
	}
}

func TestScatterDensityBounds(t *testing.T) {
	plants := catalog.Default().Plants
	cfg := ScatterConfig{Width: 10, Height: 10, Spacing: 1, Seed: 3}

	cfg.Density = 0
	if got := Scatter(cfg, plants); len(got) != 0 {
		t.Fatalf("expected zero density to plant nothing, got %d", len(got))
	}
	cfg.Density = 1
	if got := Scatter(cfg, plants); len(got) != 100 {
		t.Fatalf("expected full density to fill all 100 cells, got %d", len(got))
	}
	if got := Scatter(cfg, nil); got != nil {
		t.Fatalf("expected no placements without plant types")
	}
}
