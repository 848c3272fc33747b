package world

import "math"

// mountainRidge samples a sharpened ridge value in [0,1] from field, the
// shape shared by every biome's mountain uplift term.
func mountainRidge(field *Perlin, wx, wy int) float64 {
	ridge := 1 - math.Abs(field.OctaveNoise2D(float64(wx), float64(wy), 5, 0.5, 0.002)-0.5)*2
	return ridge * ridge * ridge
}

// HeightStrategy shapes land height for one broad biome family and
// declares whether the terrain pipeline is allowed to carve rivers
// through it. hillField and mountainField are the noise sources the
// pipeline seeded for this purpose; each strategy samples them at its
// own scale and octave count.
type HeightStrategy interface {
	Height(wx, wy int, baseLand, mountainMask float64, hillField, mountainField *Perlin) float64
	AllowsRivers() bool
}

// Standard shapes rolling hills with sharpened mountain ridges.
type Standard struct{}

func (Standard) Height(wx, wy int, baseLand, mountainMask float64, hillField, mountainField *Perlin) float64 {
	hills := (hillField.OctaveNoise2D(float64(wx), float64(wy), 4, 0.5, 0.01) - 0.5) * 2
	sharpened := mountainRidge(mountainField, wx, wy)
	return baseLand + 0.05*hills + 0.48*sharpened*mountainMask
}

func (Standard) AllowsRivers() bool { return true }

// Desert shapes low dunes and forbids river carving.
type Desert struct{}

func (Desert) Height(wx, wy int, baseLand, mountainMask float64, hillField, mountainField *Perlin) float64 {
	dunes := (hillField.OctaveNoise2D(float64(wx), float64(wy), 2, 0.5, 0.02) - 0.5) * 0.02
	sharpened := mountainRidge(mountainField, wx, wy)
	return baseLand + dunes + 0.48*sharpened*mountainMask
}

func (Desert) AllowsRivers() bool { return false }
