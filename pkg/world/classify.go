package world

// TerrainKind is a tag from the closed enumeration of biome/terrain types a
// tile can carry. The zero value, TerrainOcean, is also the codec's decode
// sentinel for unknown ordinals.
type TerrainKind uint8

const (
	TerrainOcean TerrainKind = iota
	TerrainDeepOcean
	TerrainCoast
	TerrainRiver
	TerrainSnowMountain
	TerrainMountain
	TerrainHills
	TerrainWoodland
	TerrainShrubland
	TerrainTundra
	TerrainTaiga
	TerrainGrassland
	TerrainTemperateForest
	TerrainSwamp
	TerrainSteppe
	TerrainRainforest
	TerrainDesert
	TerrainSavanna
	TerrainTropical

	terrainKindCount
)

var terrainNames = [terrainKindCount]string{
	TerrainOcean:           "ocean",
	TerrainDeepOcean:       "deep_ocean",
	TerrainCoast:           "coast",
	TerrainRiver:           "river",
	TerrainSnowMountain:    "snow_mountain",
	TerrainMountain:        "mountain",
	TerrainHills:           "hills",
	TerrainWoodland:        "woodland",
	TerrainShrubland:       "shrubland",
	TerrainTundra:          "tundra",
	TerrainTaiga:           "taiga",
	TerrainGrassland:       "grassland",
	TerrainTemperateForest: "temperate_forest",
	TerrainSwamp:           "swamp",
	TerrainSteppe:          "steppe",
	TerrainRainforest:      "rainforest",
	TerrainDesert:          "desert",
	TerrainSavanna:         "savanna",
	TerrainTropical:        "tropical",
}

// Valid reports whether k is a known terrain ordinal.
func (k TerrainKind) Valid() bool { return k < terrainKindCount }

func (k TerrainKind) String() string {
	if !k.Valid() {
		return "ocean"
	}
	return terrainNames[k]
}

// Classify maps (height, temperature, moisture, isRiver) to a terrain tag.
// Rules are evaluated in priority order; the first match wins and later
// rules must not be reordered (some conditions would otherwise re-match
// cases an earlier rule already claimed).
func Classify(height, temperature, moisture float64, isRiver bool) TerrainKind {
	switch {
	case isRiver && height > 0.4 && height < 0.92:
		return TerrainRiver
	case height < 0.3:
		return TerrainDeepOcean
	case height < 0.38:
		return TerrainOcean
	case height < 0.42:
		return TerrainCoast
	case height > 0.92:
		return TerrainSnowMountain
	case height > 0.85:
		if temperature < 0.25 {
			return TerrainSnowMountain
		}
		return TerrainMountain
	case height > 0.75:
		if temperature < 0.3 {
			return TerrainMountain
		}
		if moisture > 0.3 {
			return TerrainWoodland
		}
		return TerrainShrubland
	case height > 0.65:
		return TerrainHills
	case height > 0.55:
		if moisture > 0.35 {
			return TerrainWoodland
		}
		return TerrainShrubland
	}

	// height <= 0.55 from here: climate bands, with swamp/steppe/rainforest
	// special cases interleaved ahead of their height-overlapping generic
	// climate bucket.
	switch {
	case height > 0.4 && height < 0.5 && moisture > 0.7:
		return TerrainSwamp
	case height >= 0.5 && height < 0.6 && moisture < 0.3 && temperature > 0.4:
		return TerrainSteppe
	case temperature < 0.15 && height > 0.5:
		return TerrainTundra
	case temperature < 0.3:
		if moisture > 0.4 {
			return TerrainTaiga
		}
		return TerrainGrassland
	case temperature < 0.6:
		if moisture < 0.3 {
			return TerrainGrassland
		}
		return TerrainTemperateForest
	case temperature > 0.7 && moisture > 0.7:
		return TerrainRainforest
	case moisture < 0.3:
		return TerrainDesert
	case moisture < 0.6:
		return TerrainSavanna
	default:
		return TerrainTropical
	}
}
