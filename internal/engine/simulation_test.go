package engine

import (
	"errors"
	"testing"

	"github.com/talgya/garden-sim/internal/catalog"
	"github.com/talgya/garden-sim/internal/entropy"
)

const (
	roseID = 1
	oakID  = 2
	fernID = 3
	loamID = 3
)

func newTestSim(t *testing.T, params Params, rng entropy.Source) *Simulation {
	t.Helper()
	sim, err := NewSimulation(catalog.Default(), Garden{Width: 10, Height: 10, SoilID: loamID}, params, rng)
	if err != nil {
		t.Fatalf("new simulation: %v", err)
	}
	return sim
}

func calmParams() Params {
	p := DefaultParams()
	p.HazardChance = 0
	return p
}

func mustPlace(t *testing.T, sim *Simulation, typeID int, x, y float64) PlantID {
	t.Helper()
	id, err := sim.Place(typeID, x, y)
	if err != nil {
		t.Fatalf("place %d at (%v,%v): %v", typeID, x, y, err)
	}
	return id
}

func TestPlaceSeedsSeedling(t *testing.T) {
	sim := newTestSim(t, calmParams(), nil)
	id := mustPlace(t, sim, oakID, 5, 5)

	p, ok := sim.Plant(id)
	if !ok {
		t.Fatalf("expected placed plant to be living")
	}
	if p.Age != 0 || p.Height != 0.1 {
		t.Fatalf("expected age 0 and seed height 0.1, got age=%d height=%v", p.Age, p.Height)
	}
	if p.Radius > p.TargetRadius() || p.Radius <= 0 {
		t.Fatalf("expected seed radius in (0, target], got %v target %v", p.Radius, p.TargetRadius())
	}
}

func TestPlaceRejectsInvalid(t *testing.T) {
	sim := newTestSim(t, calmParams(), nil)
	if _, err := sim.Place(99, 1, 1); !errors.Is(err, ErrUnknownPlantType) {
		t.Fatalf("expected ErrUnknownPlantType, got %v", err)
	}
	if _, err := sim.Place(roseID, 11, 1); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("expected ErrOutOfBounds, got %v", err)
	}
	if sim.LiveCount() != 0 {
		t.Fatalf("expected no plants after rejected placements")
	}
}

func TestStepWithNoPlants(t *testing.T) {
	sim := newTestSim(t, calmParams(), nil)
	report := sim.Step()
	if report.Month != 1 || len(report.Plants) != 0 {
		t.Fatalf("expected empty month-1 report, got %+v", report)
	}
}

func TestGrowthIsMonotonicAndCapped(t *testing.T) {
	params := DefaultParams()
	params.HazardChance = 0.2
	sim := newTestSim(t, params, entropy.NewSeeded(42))
	for i := 0; i < 8; i++ {
		mustPlace(t, sim, 1+i%3, 2+float64(i%3), 2+float64(i/3))
	}

	prev := map[PlantID]PlantView{}
	for _, p := range sim.Plants() {
		prev[p.ID] = p
	}
	for month := 0; month < 240; month++ {
		sim.Step()
		for _, p := range sim.Plants() {
			before, ok := prev[p.ID]
			if !ok {
				t.Fatalf("plant %d appeared without placement", p.ID)
			}
			if p.Height < before.Height || p.Radius < before.Radius {
				t.Fatalf("month %d plant %d shrank: h %v→%v r %v→%v",
					month, p.ID, before.Height, p.Height, before.Radius, p.Radius)
			}
			if p.Height > p.Type.MaxHeight {
				t.Fatalf("plant %d height %v above max %v", p.ID, p.Height, p.Type.MaxHeight)
			}
			if p.Radius > p.TargetRadius()+1e-12 {
				t.Fatalf("plant %d radius %v above target %v", p.ID, p.Radius, p.TargetRadius())
			}
			if p.Age != before.Age+1 {
				t.Fatalf("plant %d age %d, expected %d", p.ID, p.Age, before.Age+1)
			}
			prev[p.ID] = p
		}
	}
}

func TestFullyGrownPlantKeepsStepping(t *testing.T) {
	sim := newTestSim(t, calmParams(), nil)
	_, err := sim.Restore(State{
		Month: 2, SoilID: loamID, Width: 10, Height: 10,
		Plants: []PlantState{{TypeID: fernID, X: 1, Y: 1, Age: 100, Height: 0.7, Radius: 0.4}},
	})
	if err != nil {
		t.Fatal(err)
	}
	report := sim.Step()
	if len(report.Plants) != 1 || report.Plants[0].Height != 0.7 || report.Plants[0].Radius != 0.4 {
		t.Fatalf("expected fully grown fern to stay at cap, got %+v", report.Plants)
	}
	if report.Plants[0].Delta <= 0 {
		t.Fatalf("expected delta to be computed even at cap")
	}
}

func TestWinterIsDormant(t *testing.T) {
	sim := newTestSim(t, calmParams(), nil)
	mustPlace(t, sim, roseID, 3, 3)
	mustPlace(t, sim, oakID, 3.05, 3)

	for sim.Month() < 11 {
		sim.Step()
	}
	before := sim.Plants()
	report := sim.Step()
	if report.Season != SeasonWinter {
		t.Fatalf("expected month 12 to be winter, got %s", report.Season)
	}
	after := sim.Plants()
	for i := range before {
		if after[i].Height != before[i].Height || after[i].Radius != before[i].Radius {
			t.Fatalf("expected no winter growth for plant %d", before[i].ID)
		}
		if after[i].Age != before[i].Age+1 {
			t.Fatalf("expected age to advance in winter")
		}
	}
	for _, ps := range report.Plants {
		if !ps.Dormant || ps.Delta != 0 {
			t.Fatalf("expected dormant zero-delta summary, got %+v", ps)
		}
		if ps.Collision < CollisionFloor || ps.Collision > 1 {
			t.Fatalf("expected winter collision factor in [%v,1], got %+v", CollisionFloor, ps)
		}
		if ps.Sun < calmParams().MinSun || ps.Sun > 1 {
			t.Fatalf("expected winter sun level in [%v,1], got %+v", calmParams().MinSun, ps)
		}
		if ps.Soil <= 0 {
			t.Fatalf("expected positive winter soil factor, got %+v", ps)
		}
	}
	// The rose and oak canopies overlap, so the winter summary still reports it.
	if report.Plants[0].Overlaps == 0 || report.Plants[0].Collision >= 1 {
		t.Fatalf("expected overlap reflected in dormant summary, got %+v", report.Plants[0])
	}
}

func TestGrowthDeltaMatchesFormula(t *testing.T) {
	sim := newTestSim(t, calmParams(), nil)
	id := mustPlace(t, sim, roseID, 5, 5)
	for sim.Month() < 5 { // into May, spring
		sim.Step()
	}
	before, _ := sim.Plant(id)
	report := sim.Step() // June, summer modifier 1.0
	ps := report.Plants[0]

	rose, _ := catalog.Default().Plant(roseID)
	// Rose has no loam rule, so the rule table yields 1.0. Alone it is unshaded.
	wantSun := SunFactor(1.0, rose.SunPreference, 0.2)
	wantDelta := rose.BaseGrowthRate * 1.0 * 1.0 * wantSun * 1.0
	if ps.Delta != wantDelta {
		t.Fatalf("expected delta %v, got %v", wantDelta, ps.Delta)
	}
	if ps.Height != min(before.Height+wantDelta, rose.MaxHeight) {
		t.Fatalf("expected height %v, got %v", before.Height+wantDelta, ps.Height)
	}
}

func TestHazardDestroysVulnerableOnly(t *testing.T) {
	// Roll 0 spawns; x, y at the middle of the plot; radius halfway in range.
	rng := &entropy.Sequence{Values: []float64{0, 0.5, 0.5, 0.5, 0.99}}
	params := DefaultParams()
	sim := newTestSim(t, params, rng)

	rose := mustPlace(t, sim, roseID, 5, 5)
	oak := mustPlace(t, sim, oakID, 5, 5)
	fern := mustPlace(t, sim, fernID, 9, 9) // outside the zone

	report := sim.Step()
	if report.Spawned == nil {
		t.Fatalf("expected a hazard to spawn")
	}
	if report.Spawned.X != 5 || report.Spawned.Y != 5 || report.Spawned.Radius != 1.0 {
		t.Fatalf("unexpected hazard geometry %+v", report.Spawned)
	}
	if len(report.Destroyed) != 1 || report.Destroyed[0] != rose {
		t.Fatalf("expected only the rose destroyed, got %v", report.Destroyed)
	}
	if _, ok := sim.Plant(rose); ok {
		t.Fatalf("expected rose removed in the same step")
	}
	if _, ok := sim.Plant(oak); !ok {
		t.Fatalf("expected oak to survive")
	}
	if _, ok := sim.Plant(fern); !ok {
		t.Fatalf("expected fern outside the zone to survive")
	}
	if hs := sim.Hazards(); len(hs) != 1 || hs[0].MonthsLeft != HazardLifetime {
		t.Fatalf("expected one fresh hazard, got %+v", hs)
	}

	// A plant placed inside an existing hazard is not affected by it.
	late := mustPlace(t, sim, roseID, 5, 5)
	for i := 1; i <= HazardLifetime; i++ {
		r := sim.Step()
		left := len(sim.Hazards())
		if i < HazardLifetime && (left != 1 || sim.Hazards()[0].MonthsLeft != HazardLifetime-i) {
			t.Fatalf("step %d: expected hazard with %d months left, got %+v", i, HazardLifetime-i, sim.Hazards())
		}
		if i == HazardLifetime && (left != 0 || len(r.Expired) != 1) {
			t.Fatalf("expected hazard pruned after %d months, got %+v", HazardLifetime, sim.Hazards())
		}
	}
	if _, ok := sim.Plant(late); !ok {
		t.Fatalf("expected plant placed after the hazard to survive")
	}
	// The first report keeps the hazard as it was when it spawned.
	if report.Spawned.MonthsLeft != HazardLifetime {
		t.Fatalf("expected past report to keep %d months left, got %d", HazardLifetime, report.Spawned.MonthsLeft)
	}
}

func TestSeededRunsAreDeterministic(t *testing.T) {
	run := func() State {
		params := DefaultParams()
		params.HazardChance = 0.1
		sim := newTestSim(t, params, entropy.NewSeeded(2024))
		for i := 0; i < 12; i++ {
			mustPlace(t, sim, 1+i%3, float64(i%4)*2.5, float64(i/4)*2.5)
		}
		for i := 0; i < 120; i++ {
			sim.Step()
		}
		return sim.State()
	}
	a, b := run(), run()
	if len(a.Plants) != len(b.Plants) || len(a.Hazards) != len(b.Hazards) {
		t.Fatalf("expected identical populations, got %d/%d plants", len(a.Plants), len(b.Plants))
	}
	for i := range a.Plants {
		if a.Plants[i] != b.Plants[i] {
			t.Fatalf("plant %d diverged: %+v vs %+v", i, a.Plants[i], b.Plants[i])
		}
	}
}

func TestRemove(t *testing.T) {
	sim := newTestSim(t, calmParams(), nil)
	a := mustPlace(t, sim, roseID, 1, 1)
	b := mustPlace(t, sim, roseID, 1, 1)
	if p, _ := sim.Plant(a); len(p.Neighbors) != 1 {
		t.Fatalf("expected co-located seedlings to overlap, got %v", p.Neighbors)
	}
	if !sim.Remove(b) {
		t.Fatalf("expected remove to succeed")
	}
	if sim.Remove(b) {
		t.Fatalf("expected second remove to report false")
	}
	if p, _ := sim.Plant(a); len(p.Neighbors) != 0 {
		t.Fatalf("expected neighbor set cleared, got %v", p.Neighbors)
	}
}

func TestRestoreSkipsUnknownTypes(t *testing.T) {
	sim := newTestSim(t, calmParams(), nil)
	warnings, err := sim.Restore(State{
		Month: 30, SoilID: loamID, Width: 8, Height: 6,
		Plants: []PlantState{
			{TypeID: roseID, X: 1, Y: 1, Age: 3, Height: 0.4, Radius: 0.1},
			{TypeID: 404, X: 2, Y: 2, Age: 3, Height: 0.4, Radius: 0.1},
		},
		Hazards: []HazardState{{X: 3, Y: 3, Radius: 1, MonthsLeft: 2}},
	})
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if len(warnings) != 1 {
		t.Fatalf("expected one warning, got %v", warnings)
	}
	if sim.LiveCount() != 1 || sim.Month() != 30 || len(sim.Hazards()) != 1 {
		t.Fatalf("unexpected restored state: plants=%d month=%d", sim.LiveCount(), sim.Month())
	}
	if g := sim.Garden(); g.Width != 8 || g.Height != 6 {
		t.Fatalf("expected restored garden size, got %+v", g)
	}
}

func TestRestoreSkipsInvalidPlants(t *testing.T) {
	sim := newTestSim(t, calmParams(), nil)
	rose, _ := catalog.Default().Plant(roseID)
	warnings, err := sim.Restore(State{
		Month: 4, SoilID: loamID, Width: 10, Height: 10,
		Plants: []PlantState{
			{TypeID: roseID, X: 1, Y: 1, Age: 3, Height: 0.4, Radius: 0.1},
			{TypeID: roseID, X: 2, Y: 2, Age: 3, Height: 0, Radius: 0.1},
			{TypeID: roseID, X: 3, Y: 3, Age: 3, Height: -1, Radius: 0.1},
			{TypeID: roseID, X: 4, Y: 4, Age: 3, Height: rose.MaxHeight * 2, Radius: 0.1},
			{TypeID: roseID, X: 5, Y: 5, Age: 3, Height: 0.4, Radius: -0.5},
			{TypeID: roseID, X: 6, Y: 6, Age: -2, Height: 0.4, Radius: 0.1},
		},
	})
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if len(warnings) != 5 {
		t.Fatalf("expected five warnings, got %v", warnings)
	}
	if sim.LiveCount() != 1 {
		t.Fatalf("expected only the valid plant restored, got %d", sim.LiveCount())
	}
	if p := sim.Plants()[0]; p.X != 1 || p.Height != 0.4 {
		t.Fatalf("expected the valid plant kept, got %+v", p)
	}
}

func TestRestoreDefaultsHazardLifetime(t *testing.T) {
	sim := newTestSim(t, calmParams(), nil)
	_, err := sim.Restore(State{
		Month: 4, SoilID: loamID, Width: 10, Height: 10,
		Plants:  []PlantState{{TypeID: oakID, X: 1, Y: 1, Age: 3, Height: 1, Radius: 0.2}},
		Hazards: []HazardState{{X: 3, Y: 3, Radius: 1, MonthsLeft: 0}, {X: 4, Y: 4, Radius: 1, MonthsLeft: -3}},
	})
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	hs := sim.Hazards()
	if len(hs) != 2 {
		t.Fatalf("expected both hazards restored, got %+v", hs)
	}
	for _, h := range hs {
		if h.MonthsLeft != HazardLifetime {
			t.Fatalf("expected missing lifetime to default to %d, got %+v", HazardLifetime, h)
		}
	}
	sim.Step()
	if hs := sim.Hazards(); len(hs) != 2 || hs[0].MonthsLeft != HazardLifetime-1 {
		t.Fatalf("expected restored hazards to age normally, got %+v", hs)
	}
}

func TestRestoreFailureLeavesStateUnchanged(t *testing.T) {
	sim := newTestSim(t, calmParams(), nil)
	mustPlace(t, sim, roseID, 1, 1)
	sim.Step()
	before := sim.State()

	if _, err := sim.Restore(State{SoilID: 77, Width: 5, Height: 5}); !errors.Is(err, ErrUnknownSoil) {
		t.Fatalf("expected ErrUnknownSoil, got %v", err)
	}
	if _, err := sim.Restore(State{SoilID: loamID}); !errors.Is(err, ErrInvalidGarden) {
		t.Fatalf("expected ErrInvalidGarden, got %v", err)
	}
	after := sim.State()
	if after.Month != before.Month || len(after.Plants) != len(before.Plants) || after.Plants[0] != before.Plants[0] {
		t.Fatalf("expected state unchanged after failed restore")
	}
}

func TestSetSoil(t *testing.T) {
	sim := newTestSim(t, calmParams(), nil)
	if err := sim.SetSoil(1); err != nil {
		t.Fatal(err)
	}
	if sim.Soil().ID != 1 {
		t.Fatalf("expected clay soil active")
	}
	if err := sim.SetSoil(42); !errors.Is(err, ErrUnknownSoil) {
		t.Fatalf("expected ErrUnknownSoil, got %v", err)
	}
}
