package engine

import "testing"

func TestSeasonForMonth(t *testing.T) {
	want := map[int]Season{
		1: SeasonWinter, 2: SeasonWinter, 3: SeasonSpring, 5: SeasonSpring,
		6: SeasonSummer, 8: SeasonSummer, 9: SeasonAutumn, 11: SeasonAutumn,
		12: SeasonWinter, 13: SeasonWinter, 15: SeasonSpring, 24: SeasonWinter,
		0: SeasonWinter,
	}
	for month, season := range want {
		if got := SeasonForMonth(month); got != season {
			t.Fatalf("month %d: expected %s, got %s", month, season, got)
		}
	}
}

func TestSeasonModifiers(t *testing.T) {
	cases := map[Season]float64{
		SeasonSpring: 1.2,
		SeasonSummer: 1.0,
		SeasonAutumn: 0.5,
		SeasonWinter: 0.0,
	}
	for s, m := range cases {
		if s.Modifier() != m {
			t.Fatalf("%s: expected modifier %v, got %v", s, m, s.Modifier())
		}
	}
	if !SeasonWinter.Dormant() || SeasonAutumn.Dormant() {
		t.Fatalf("expected only winter to be dormant")
	}
}

func TestSimTime(t *testing.T) {
	if got := SimTime(14); got != "Winter, month 2 of year 2" {
		t.Fatalf("unexpected label %q", got)
	}
	if YearOf(12) != 1 || YearOf(13) != 2 {
		t.Fatalf("expected month 12 in year 1 and 13 in year 2")
	}
}
