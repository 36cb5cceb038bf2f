// Package heightsource produces row-major height data for a terrain.
package heightsource

import (
	"github.com/aquilax/go-perlin"
)

// PerlinConfig controls the noise generator.
type PerlinConfig struct {
	Seed      int64
	Alpha     float64 // Weight falloff between octaves
	Beta      float64 // Frequency growth between octaves
	Octaves   int32
	Frequency float64 // Noise periods across the whole grid
}

// Perlin generates dim*dim row-major samples normalized to [0, 1].
// The output depends only on dim and cfg.
func Perlin(dim int, cfg PerlinConfig) []float32 {
	noise := perlin.NewPerlin(cfg.Alpha, cfg.Beta, cfg.Octaves, cfg.Seed)

	out := make([]float32, dim*dim)
	step := cfg.Frequency / float64(dim)
	for y := 0; y < dim; y++ {
		for x := 0; x < dim; x++ {
			out[y*dim+x] = float32(noise.Noise2D(float64(x)*step, float64(y)*step))
		}
	}
	return Normalize(out)
}
