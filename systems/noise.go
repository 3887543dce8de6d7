package systems

import (
	"github.com/ojrac/opensimplex-go"
)

// FBM sums octaves of normalized OpenSimplex noise. Values lie in [0, 1).
type FBM struct {
	noise      opensimplex.Noise
	Octaves    int
	Lacunarity float64
	Gain       float64
}

// NewFBM creates a fractal noise generator.
func NewFBM(seed int64, octaves int, lacunarity, gain float64) *FBM {
	if octaves < 1 {
		octaves = 1
	}
	return &FBM{
		noise:      opensimplex.NewNormalized(seed),
		Octaves:    octaves,
		Lacunarity: lacunarity,
		Gain:       gain,
	}
}

// Eval2 returns the fractal noise value at (x, y).
func (n *FBM) Eval2(x, y float64) float64 {
	sum, norm := 0.0, 0.0
	amp, freq := 1.0, 1.0
	for o := 0; o < n.Octaves; o++ {
		sum += amp * n.noise.Eval2(x*freq, y*freq)
		norm += amp
		freq *= n.Lacunarity
		amp *= n.Gain
	}
	if norm == 0 {
		return 0
	}
	return sum / norm
}

// fillNoise raises every cell of f by Amplitude times the FBM value at that
// cell, then rescans the minimum height.
func fillNoise(f *Field, base float64, ts TerrainSettings, seed int64) {
	fbm := NewFBM(seed, ts.Octaves, ts.Lacunarity, ts.Gain)
	scale := ts.Scale / float64(f.dim)

	hs := f.height.RawMatrix().Data
	for y := 0; y < f.dim; y++ {
		for x := 0; x < f.dim; x++ {
			hs[y*f.dim+x] = base + ts.Amplitude*fbm.Eval2(float64(x)*scale, float64(y)*scale)
		}
	}
	f.recomputeMinHeight()
}
