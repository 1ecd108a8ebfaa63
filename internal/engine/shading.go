package engine

import "math"

// LightLevel returns the fraction of full sunlight reaching target, clamped
// to [minSun, 1]. Every living plant strictly taller than target whose trunk
// lies within its own canopy radius of target removes up to MaxShadowImpact.
// plants must be in stable id order so the subtraction sequence, and with it
// the last floating-point bit, is identical across runs.
func LightLevel(target *Plant, plants []*Plant, minSun float64) float64 {
	light := 1.0
	for _, other := range plants {
		if other == target || other.ID == target.ID {
			continue
		}
		if other.Height <= target.Height {
			continue
		}
		if distance(other, target) >= other.Radius {
			continue
		}
		impact := math.Min((other.Height-target.Height)/ShadeHeightDivisor, MaxShadowImpact)
		light -= impact
	}
	return clamp(light, minSun, 1)
}

// SunLevel returns the sunlight growth multiplier for target: the light it
// receives, scaled to 0–10 and compared with its sun preference.
func SunLevel(target *Plant, plants []*Plant, minSun float64) float64 {
	return SunFactor(LightLevel(target, plants, minSun), target.Type.SunPreference, minSun)
}

// SunFactor penalizes the mismatch between received light and preference.
func SunFactor(light, preference, minSun float64) float64 {
	mismatch := math.Abs(light*SunScale - preference)
	return clamp(1-mismatch/SunMismatchDivisor, minSun, 1)
}

func distance(a, b *Plant) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}
