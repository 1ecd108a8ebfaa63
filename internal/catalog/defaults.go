package catalog

// Default returns the built-in catalog used when no external tables load.
func Default() *Catalog {
	return New(
		[]SoilType{
			{ID: 1, Name: "Clay", WaterRetention: 0.85, NutrientLevel: 0.70},
			{ID: 2, Name: "Sandy", WaterRetention: 0.20, NutrientLevel: 0.30},
			{ID: 3, Name: "Loam", WaterRetention: 0.60, NutrientLevel: 0.95},
		},
		[]PlantType{
			{
				ID: 1, Name: "Rose", Texture: "textures/plants/rose.jpg",
				MaxHeight: 1.5, MaxWidth: 1.0, RootDepth: 0.5, CanopyRadius: 0.5,
				SunPreference: 8, Category: CategoryFlower, BaseGrowthRate: 0.05,
			},
			{
				ID: 2, Name: "Oak", Texture: "textures/plants/oak.jpg",
				MaxHeight: 25, MaxWidth: 15, RootDepth: 3, CanopyRadius: 7.5,
				SunPreference: 6, Category: CategoryTree, BaseGrowthRate: 0.15,
			},
			{
				ID: 3, Name: "Fern", Texture: "textures/plants/fern.jpg",
				MaxHeight: 0.7, MaxWidth: 0.8, RootDepth: 0.3, CanopyRadius: 0.4,
				SunPreference: 2, Category: CategoryFern, BaseGrowthRate: 0.04,
			},
		},
		[]GrowthRule{
			{PlantTypeID: 1, SoilTypeID: 1, Multiplier: 1.10},
			{PlantTypeID: 1, SoilTypeID: 2, Multiplier: 0.70},
			{PlantTypeID: 2, SoilTypeID: 3, Multiplier: 1.25},
			{PlantTypeID: 3, SoilTypeID: 3, Multiplier: 1.05},
		},
	)
}
