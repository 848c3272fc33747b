package world

import "math"

// SeaLevel is the continental-value threshold separating ocean from land.
const SeaLevel = 0.42

const (
	continentalScale  = 0.0004
	macroClimateScale = 0.00008
	riverScale        = 0.001
)

// Generator produces deterministic per-tile terrain from a seed using
// several independently-seeded noise fields. It is stateless beyond those
// fields: generating a chunk never consults neighboring chunks.
type Generator struct {
	Seed int64

	continentalField *Perlin // seed+0
	mountainNoise    *Perlin // seed+1
	localHeight      *Perlin // seed+2
	riverNoise       *Perlin // seed+5
	mountainControl  *Perlin // seed+7
	macroTemperature *Perlin // seed+10
	macroMoisture    *Perlin // seed+20
	localTemperature *Perlin // seed+40
	localMoisture    *Perlin // seed+50

	standard HeightStrategy
	desert   HeightStrategy
}

// NewGenerator creates a terrain generator from a seed. Each noise field is
// seeded from a fixed offset of seed so that independent fields never
// correlate with each other.
func NewGenerator(seed int64) *Generator {
	return &Generator{
		Seed:             seed,
		continentalField: NewPerlin(seed + 0),
		mountainNoise:    NewPerlin(seed + 1),
		localHeight:      NewPerlin(seed + 2),
		riverNoise:       NewPerlin(seed + 5),
		mountainControl:  NewPerlin(seed + 7),
		macroTemperature: NewPerlin(seed + 10),
		macroMoisture:    NewPerlin(seed + 20),
		localTemperature: NewPerlin(seed + 40),
		localMoisture:    NewPerlin(seed + 50),
		standard:         Standard{},
		desert:           Desert{},
	}
}

// continental computes the domain-warped continental value in [0,1] for a
// world position. The continent field is sampled twice: once to warp the
// sample position, once to shape the warped result.
func (g *Generator) continental(wx, wy float64) float64 {
	warpX := g.continentalField.Noise2D(wx*1e-4, wy*1e-4) * 200
	warpY := g.continentalField.Noise2D(wx*1e-4+5000, wy*1e-4+5000) * 200
	return g.continentalField.OctaveNoise2D(wx+warpX, wy+warpY, 4, 0.5, continentalScale)
}

// Sample computes height, temperature, moisture and classification for a
// single world tile (wx, wy). It is a pure function of (seed, wx, wy).
func (g *Generator) Sample(wx, wy int) (height, temperature, moisture float64, terrain TerrainKind, isRiver bool) {
	fwx, fwy := float64(wx), float64(wy)

	cont := g.continental(fwx, fwy)
	macroTemp := g.macroTemperature.OctaveNoise2D(fwx, fwy, 2, 0.5, macroClimateScale)
	macroMoist := g.macroMoisture.OctaveNoise2D(fwx, fwy, 2, 0.5, macroClimateScale)

	isLand := cont > SeaLevel

	riverAllow := 1.0
	if isLand {
		var desertScore float64
		height, desertScore = g.landHeight(wx, wy, cont, macroTemp, macroMoist)
		riverAllow = g.riverAllowance(desertScore)
	} else {
		factor := cont / SeaLevel
		base := 0.1 + 0.28*factor
		ripple := 0.02 * g.localHeight.OctaveNoise2D(fwx, fwy, 2, 0.5, 0.02)
		height = math.Min(0.39, base+ripple)
	}

	temperature = g.temperatureAt(fwx, fwy, macroTemp, height)
	moisture = g.moistureAt(fwx, fwy, macroMoist)

	height, isRiver = g.carveRiver(fwx, fwy, height, macroMoist, riverAllow)

	terrain = Classify(height, temperature, moisture, isRiver)
	return
}

// riverAllowance blends Standard's and Desert's AllowsRivers capability by
// the same desertScore weight landHeight uses to blend their terrain
// heights, so Desert's "no rivers" rule actually gates carveRiver instead
// of going unconsulted.
func (g *Generator) riverAllowance(desertScore float64) float64 {
	allow := 0.0
	if g.standard.AllowsRivers() {
		allow += 1 - desertScore
	}
	if g.desert.AllowsRivers() {
		allow += desertScore
	}
	return allow
}

func (g *Generator) landHeight(wx, wy int, cont, macroTemp, macroMoist float64) (height, desertScore float64) {
	fwx, fwy := float64(wx), float64(wy)

	landFactor := (cont - SeaLevel) / (1 - SeaLevel)

	if macroTemp > 0.55 && macroMoist < 0.45 {
		desertScore = math.Min(1, 1.5*(((0.45-macroMoist)/0.45)+((macroTemp-0.55)/0.45))/2)
	}

	ctrl := g.mountainControl.OctaveNoise2D(fwx, fwy, 2, 0.5, 0.0003)
	mask := math.Max(0, (ctrl-0.20)/0.80)
	mask = math.Min(mask, landFactor*5)

	baseLand := SeaLevel + 0.02 + 0.1*landFactor

	standardHeight := g.standard.Height(wx, wy, baseLand, mask, g.localHeight, g.mountainNoise)
	desertHeight := g.desert.Height(wx, wy, baseLand, mask, g.localHeight, g.mountainNoise)

	return standardHeight*(1-desertScore) + desertHeight*desertScore, desertScore
}

func (g *Generator) temperatureAt(wx, wy, macroTemp, height float64) float64 {
	local := g.localTemperature.Noise2D(wx*0.01, wy*0.01)
	t := macroTemp + 0.05*local - 0.4*math.Max(0, height-0.5)
	return clamp01(t)
}

func (g *Generator) moistureAt(wx, wy, macroMoist float64) float64 {
	local := g.localMoisture.Noise2D(wx*0.01, wy*0.01)
	m := macroMoist + 0.05*local
	if macroMoist < 0.3 {
		m = math.Min(m, 0.42)
	}
	return clamp01(m)
}

// carveRiver lowers height into a river channel when the ridge noise
// crosses a moisture-adjusted threshold, returning the adjusted height
// and whether this tile is a river tile. riverAllow in [0,1] is the
// biome blend's combined AllowsRivers weight (0 forbids carving
// entirely, as Desert requires).
func (g *Generator) carveRiver(wx, wy, height, macroMoist, riverAllow float64) (float64, bool) {
	if riverAllow <= 0 {
		return height, false
	}

	threshold := 0.985
	if macroMoist < 0.35 {
		threshold += 0.1 * (0.35 - macroMoist) / 0.15
	}
	if threshold >= 1 {
		return height, false
	}

	ridge := 1 - math.Abs(g.riverNoise.OctaveNoise2D(wx, wy, 4, 0.5, riverScale)-0.5)*2
	if ridge < threshold || height < SeaLevel-0.02 {
		return height, false
	}

	strength := (ridge - threshold) / (1 - threshold) * riverAllow
	depth := 0.06 * strength
	height -= depth
	if height < 0.2 {
		height = 0.2
	}
	return height, true
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// GenerateChunk fills every tile of a fresh chunk at (cx, cy) via Sample.
// Generation consults no cross-chunk state.
func (g *Generator) GenerateChunk(cx, cy int32) *Chunk {
	c := NewChunk(cx, cy)
	for lx := 0; lx < ChunkSize; lx++ {
		for ly := 0; ly < ChunkSize; ly++ {
			wx, wy := int(cx)*ChunkSize+lx, int(cy)*ChunkSize+ly
			height, temp, moist, terrain, _ := g.Sample(wx, wy)
			c.Tiles[lx][ly] = Tile{
				Terrain:     terrain,
				Height:      height,
				Temperature: temp,
				Moisture:    moist,
				OwnerID:     -1,
			}
		}
	}
	c.Generated = true
	c.Modified = false
	return c
}
