package catalog

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// FindPlant resolves an operator-typed name to a plant type. Exact matches
// win over prefix matches, which win over the closest fuzzy match within an
// edit-distance limit scaled to the name length.
func (c *Catalog) FindPlant(name string) (PlantType, bool) {
	in := strings.ToLower(strings.TrimSpace(name))
	if in == "" {
		return PlantType{}, false
	}

	for _, p := range c.Plants {
		if strings.ToLower(p.Name) == in {
			return p, true
		}
	}
	for _, p := range c.Plants {
		if strings.HasPrefix(strings.ToLower(p.Name), in) {
			return p, true
		}
	}

	if len(in) < 3 {
		return PlantType{}, false
	}
	best, bestDist := -1, 0
	for i, p := range c.Plants {
		cand := strings.ToLower(p.Name)
		dist := levenshtein.ComputeDistance(in, cand)
		if dist > distanceLimit(len(cand)) {
			continue
		}
		if best < 0 || dist < bestDist {
			best, bestDist = i, dist
		}
	}
	if best < 0 {
		return PlantType{}, false
	}
	return c.Plants[best], true
}

func distanceLimit(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}
