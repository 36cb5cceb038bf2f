package terrain

import (
	"github.com/Faultbox/heightray/pkg/math"
)

// sample blends the four level nodes around the level-local position (u, v).
// Neighbours past the edge of the grid read as 0, so heights fall off over
// the last cell of each border.
func (t *Terrain) sample(level int, u, v float32) float32 {
	side := float32(t.pyr.Dimension() >> level)
	// Also rejects NaN.
	if !(u > -1 && u < side && v > -1 && v < side) {
		return 0
	}

	x0, y0, fx, fy := math.Vec2{X: u, Y: v}.Floor()

	h00 := t.node(level, x0, y0)
	h10 := t.node(level, x0+1, y0)
	h01 := t.node(level, x0, y0+1)
	h11 := t.node(level, x0+1, y0+1)

	top := math.Lerp(h00, h10, fx)
	bottom := math.Lerp(h01, h11, fx)
	return math.Lerp(top, bottom, fy)
}
