package terrain

import (
	"go.uber.org/zap"

	"github.com/Faultbox/heightray/pkg/math"
)

// MarchResult describes one ray march.
type MarchResult struct {
	// T is the ray parameter of the hit, or the parameter reached when the
	// travel budget ran out.
	T   float32
	Hit bool
	// Degenerate is set for rays with no usable horizontal component.
	Degenerate bool
	// Steps counts loop iterations; Descents counts mip refinements.
	Steps    int
	Descents int
	MaxMip   int
}

// CastRay marches origin + direction*t over the terrain and returns the t
// of the first hit, or the t reached when the travel budget ran out.
// direction is used as given, so t counts multiples of it and the world
// distance to a hit is t*|direction|. The budget (MaxDistance) and the
// one-unit minimum stride are world distances, so the number of steps does
// not depend on |direction|.
func (t *Terrain) CastRay(origin, direction math.Vec3) float32 {
	return t.March(origin, direction).T
}

// March is CastRay with the full result.
func (t *Terrain) March(origin, direction math.Vec3) MarchResult {
	res := t.march(origin, direction, t.maxDistance)
	t.observer.ObserveMarch(res)
	return res
}

// march walks the pyramid coarse-to-fine along the ray.
//
// While the point is above the bound of its current level the march steps
// to the end of the cell it just tested and moves one level coarser; when
// the bound is reached it refines in place, and a bound reached at level 0
// is a hit. The stride is sized by the cell just proven clear, not by the
// coarser level entered next, which would step over single-cell spikes.
// budget is a world distance.
func (t *Terrain) march(origin, dir math.Vec3, budget float32) MarchResult {
	var res MarchResult

	horizontal := dir.XZ().Length()
	if horizontal == 0 || !math.IsFinite(horizontal) || !dir.IsFinite() || !origin.IsFinite() {
		res.Degenerate = true
		t.log.Debug("Degenerate ray",
			zap.Float32("dx", dir.X),
			zap.Float32("dy", dir.Y),
			zap.Float32("dz", dir.Z))
		return res
	}
	length := dir.Length()
	baseStep := horizontal / length
	// The march ends once the world distance dist*length passes budget.
	limit := budget / length

	top := t.pyr.Levels() - 1
	mip := 0
	var dist float32

	for dist <= limit {
		res.Steps++
		p := origin.PointAt(dir, dist)
		pos := p.XZ()

		if t.bound(mip, pos) >= p.Y {
			if mip > 0 {
				mip--
				res.Descents++
				continue
			}
			res.Hit = true
			res.T = dist
			return res
		}

		cell := float32(int(1) << mip)
		mip = min(mip+1, top)
		res.MaxMip = max(res.MaxMip, mip)

		next := dist + stepLength(pos, baseStep, cell)/length
		if !(next > dist) {
			// The stride vanished at this magnitude; nothing further is reachable.
			dist = limit
			break
		}
		dist = next
	}

	res.T = dist
	return res
}

// bound returns the scaled height bound at ground position pos for a level.
// Level 0 is interpolated; coarser levels return the max of the covering node.
func (t *Terrain) bound(level int, pos math.Vec2) float32 {
	if level == 0 {
		return t.sample(0, pos.X, pos.Y)
	}
	side := float32(t.pyr.Dimension())
	if !(pos.X >= 0 && pos.X < side && pos.Y >= 0 && pos.Y < side) {
		return 0
	}
	return t.node(level, int(pos.X)>>level, int(pos.Y)>>level)
}

// stepLength is the tentative stride base*cell, clamped to the nearest
// cell boundary on either axis and floored at one unit.
func stepLength(pos math.Vec2, base, cell float32) float32 {
	step := base * cell
	toX := cell - math.Mod(pos.X, cell)
	toY := cell - math.Mod(pos.Y, cell)
	step = min(step, toX, toY)
	if !(step >= 1) {
		step = 1
	}
	return step
}
