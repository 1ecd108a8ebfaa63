// Starting layouts from layered simplex noise. A density layer decides where
// seedlings go, a second layer picks the species so that like plants clump.
package layout

import (
	"math"
	"math/rand/v2"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/talgya/garden-sim/internal/catalog"
	"github.com/talgya/garden-sim/internal/entropy"
)

// ScatterConfig holds layout parameters.
type ScatterConfig struct {
	Width   float64 // Garden width, m
	Height  float64 // Garden height, m
	Spacing float64 // Grid cell size, m
	Density float64 // Fraction of cells planted (0.0–1.0)
	Seed    int64   // Random seed (0 = random)
}

// DefaultScatterConfig returns a sparse layout for a garden of the given size.
func DefaultScatterConfig(width, height float64) ScatterConfig {
	return ScatterConfig{
		Width:   width,
		Height:  height,
		Spacing: 1.5,
		Density: 0.35,
	}
}

// Placement is one seedling of a generated layout.
type Placement struct {
	TypeID int
	X, Y   float64
}

// Scatter generates seedling positions on a jittered grid. The same config
// and plant list always produce the same layout. Every placement lies within
// [0, Width] x [0, Height].
func Scatter(cfg ScatterConfig, plants []catalog.PlantType) []Placement {
	if len(plants) == 0 || cfg.Width <= 0 || cfg.Height <= 0 || cfg.Density <= 0 {
		return nil
	}
	spacing := cfg.Spacing
	if spacing <= 0 {
		spacing = 1
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Int64()
	}

	densityNoise := opensimplex.NewNormalized(seed)
	speciesNoise := opensimplex.NewNormalized(seed + 1)
	jitter := entropy.NewSeeded(seed + 2)

	cols := int(math.Max(1, math.Floor(cfg.Width/spacing)))
	rows := int(math.Max(1, math.Floor(cfg.Height/spacing)))
	cellW := cfg.Width / float64(cols)
	cellH := cfg.Height / float64(rows)

	var out []Placement
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			// Jitter is drawn for every cell so that density changes do not
			// shift the positions of surviving cells.
			jx, jy := jitter.Float64(), jitter.Float64()

			cx := (float64(col) + 0.5) * cellW
			cy := (float64(row) + 0.5) * cellH
			if octaveNoise(densityNoise, cx, cy, 3, 0.15, 0.5) > cfg.Density {
				continue
			}

			x := clamp(cx+(jx-0.5)*cellW*0.6, 0, cfg.Width)
			y := clamp(cy+(jy-0.5)*cellH*0.6, 0, cfg.Height)

			pick := octaveNoise(speciesNoise, cx, cy, 2, 0.1, 0.5)
			idx := int(pick * float64(len(plants)))
			if idx >= len(plants) {
				idx = len(plants) - 1
			}
			out = append(out, Placement{TypeID: plants[idx].ID, X: x, Y: y})
		}
	}
	return out
}

// octaveNoise generates fractal noise by layering multiple frequencies.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
