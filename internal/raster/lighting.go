package raster

import (
	"math"

	"camsphere/internal/mathutil"
)

// LightConfig holds precomputed lighting parameters for the probe shader.
type LightConfig struct {
	LightDir mathutil.Vec3
	RimDir   mathutil.Vec3
	Ambient  float64
	Hemi     float64
	Direct   float64
	Rim      float64
	Exposure float64
	InvGamma float64
}

// DefaultLightConfig returns a fixed key/rim/hemisphere setup so frames
// are reproducible across runs.
func DefaultLightConfig() LightConfig {
	return LightConfig{
		LightDir: mathutil.Vec3{0.45, 0.65, 0.35}.Normalize(),
		RimDir:   mathutil.Vec3{-0.4, 0.33, -0.53}.Normalize(),
		Ambient:  0.35,
		Hemi:     0.30,
		Direct:   1.10,
		Rim:      0.25,
		Exposure: 1.05,
		InvGamma: 1.0 / 2.2,
	}
}

// ComputeShade returns the combined lighting scalar for a surface normal.
func (lc *LightConfig) ComputeShade(normal mathutil.Vec3) float64 {
	ndl := normal.Dot(lc.LightDir)
	if ndl < 0 {
		ndl = 0
	}
	ndr := normal.Dot(lc.RimDir)
	if ndr < 0 {
		ndr = 0
	}

	// hemisphere fill keyed off world up
	hemi := (normal[2]*0.5 + 0.5) * lc.Hemi

	return lc.Ambient + hemi + ndl*lc.Direct + ndr*lc.Rim
}

// ACESTonemap applies ACES Filmic tone mapping to a linear value.
func ACESTonemap(x float64) float64 {
	return (x * (2.51*x + 0.03)) / (x*(2.43*x+0.59) + 0.14)
}

// shadeTo8 tonemaps and gamma-encodes one linear channel.
func (lc *LightConfig) shadeTo8(linear float64) uint8 {
	v := ACESTonemap(linear * lc.Exposure)
	v = math.Pow(clamp01(v), lc.InvGamma)
	return uint8(v*255 + 0.5)
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
