// Seasonal growth modifiers derived from the month counter.
package engine

import "fmt"

// Season is derived from the month counter and never stored.
type Season uint8

const (
	SeasonSpring Season = iota
	SeasonSummer
	SeasonAutumn
	SeasonWinter
)

// MonthOfYear maps a month counter (1-based) to 1..12.
// Month 0, the state before the first step, maps to 12.
func MonthOfYear(month int) int {
	return ((month-1)%MonthsPerYear+MonthsPerYear)%MonthsPerYear + 1
}

// SeasonForMonth returns the season for a month counter.
// 3–5 Spring, 6–8 Summer, 9–11 Autumn, 12–2 Winter.
func SeasonForMonth(month int) Season {
	switch m := MonthOfYear(month); {
	case m >= 3 && m <= 5:
		return SeasonSpring
	case m >= 6 && m <= 8:
		return SeasonSummer
	case m >= 9 && m <= 11:
		return SeasonAutumn
	default:
		return SeasonWinter
	}
}

// Modifier returns the growth multiplier for the season.
func (s Season) Modifier() float64 {
	switch s {
	case SeasonSpring:
		return 1.2
	case SeasonSummer:
		return 1.0
	case SeasonAutumn:
		return 0.5
	default:
		return 0
	}
}

// Dormant reports whether growth is suspended this season.
func (s Season) Dormant() bool {
	return s.Modifier() == 0
}

// String returns a human-readable season name.
func (s Season) String() string {
	switch s {
	case SeasonSpring:
		return "Spring"
	case SeasonSummer:
		return "Summer"
	case SeasonAutumn:
		return "Autumn"
	case SeasonWinter:
		return "Winter"
	default:
		return "Unknown"
	}
}

// MarshalText encodes the season by name.
func (s Season) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// YearOf returns the 1-based year a month counter falls in.
func YearOf(month int) int {
	if month < 1 {
		return 1
	}
	return (month-1)/MonthsPerYear + 1
}

// SimTime returns a human-readable label for a month counter.
func SimTime(month int) string {
	return fmt.Sprintf("%s, month %d of year %d",
		SeasonForMonth(month), MonthOfYear(month), YearOf(month))
}
