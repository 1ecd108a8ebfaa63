package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultCatalogValidates(t *testing.T) {
	c := Default()
	if err := c.Validate(); err != nil {
		t.Fatalf("expected built-in catalog to validate, got %v", err)
	}
	if !c.HasRules() {
		t.Fatalf("expected built-in catalog to carry growth rules")
	}
	if m, ok := c.Rule(2, 3); !ok || m != 1.25 {
		t.Fatalf("expected oak/loam rule 1.25, got %v ok=%v", m, ok)
	}
	if _, ok := c.Rule(2, 1); ok {
		t.Fatalf("expected no oak/clay rule")
	}
}

func TestCategoryVulnerability(t *testing.T) {
	for _, c := range []Category{CategoryFlower, CategoryFern, CategoryHerb, CategoryGrass} {
		if !c.Vulnerable() {
			t.Fatalf("expected %s to be vulnerable", c)
		}
	}
	for _, c := range []Category{CategoryTree, CategoryShrub} {
		if c.Vulnerable() {
			t.Fatalf("expected %s to survive hazards", c)
		}
	}
}

func TestValidateRejectsDegeneratePlant(t *testing.T) {
	c := Default()
	c.Plants[0].MaxHeight = 0
	c.Index()
	if err := c.Validate(); err == nil {
		t.Fatalf("expected zero max height to be rejected")
	}

	empty := New(nil, nil, nil)
	if err := empty.Validate(); !errors.Is(err, ErrEmpty) {
		t.Fatalf("expected ErrEmpty, got %v", err)
	}
}

func TestValidateRejectsUnknownCategory(t *testing.T) {
	for _, cat := range []Category{0, 9} {
		c := Default()
		c.Plants[0].Category = cat
		c.Index()
		if err := c.Validate(); err == nil {
			t.Fatalf("expected category %d to be rejected", cat)
		}
	}
	if err := Default().Validate(); err != nil {
		t.Fatalf("expected default catalog to validate, got %v", err)
	}
}

func TestValidateRejectsDanglingRule(t *testing.T) {
	c := Default()
	c.Rules = append(c.Rules, GrowthRule{PlantTypeID: 99, SoilTypeID: 1, Multiplier: 1})
	c.Index()
	if err := c.Validate(); err == nil {
		t.Fatalf("expected rule with unknown plant to be rejected")
	}
}

func TestLoadYAMLCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	doc := `
soils:
  - {id: 7, name: Peat, water_retention: 0.9, nutrient_level: 0.4}
plants:
  - id: 11
    name: Thyme
    max_height: 0.3
    max_width: 0.4
    root_depth: 0.2
    canopy_radius: 0.2
    sun_preference: 9
    category: herb
    base_growth_rate: 0.02
  - id: 12
    name: Birch
    max_height: 18
    max_width: 8
    root_depth: 2
    canopy_radius: 4
    sun_preference: 7
    category: 3
    base_growth_rate: 0.12
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	thyme, ok := c.Plant(11)
	if !ok || thyme.Category != CategoryHerb {
		t.Fatalf("expected thyme to be an herb, got %+v ok=%v", thyme, ok)
	}
	birch, _ := c.Plant(12)
	if birch.Category != CategoryTree {
		t.Fatalf("expected numeric category 3 to be tree, got %s", birch.Category)
	}
	if c.HasRules() {
		t.Fatalf("expected no rules in formula-only catalog")
	}
}

func TestLoadOrDefaultFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	if err := os.WriteFile(path, []byte("soils: []\nplants: []\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	c := LoadOrDefault(path)
	if len(c.Plants) != len(Default().Plants) {
		t.Fatalf("expected fallback to built-in catalog, got %d plants", len(c.Plants))
	}
	if c := LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml")); len(c.Soils) == 0 {
		t.Fatalf("expected fallback catalog for missing file")
	}
}

func TestFindPlant(t *testing.T) {
	c := Default()
	cases := map[string]int{
		"Oak":  2,
		"rose": 1,
		"fe":   3,  // prefix
		"ferm": 3,  // one substitution within limit
		"Rsoe": -1, // two edits on a short name
		"":     -1,
	}
	for in, want := range cases {
		p, ok := c.FindPlant(in)
		if want < 0 {
			if ok {
				t.Fatalf("expected no match for %q, got %s", in, p.Name)
			}
			continue
		}
		if !ok || p.ID != want {
			t.Fatalf("expected %q to resolve to %d, got %+v ok=%v", in, want, p, ok)
		}
	}
}
