package terrain

import (
	"github.com/Faultbox/heightray/pkg/math"
	"github.com/Faultbox/heightray/pkg/picking"
)

// Hit is a picked terrain point.
type Hit struct {
	// Distance from the ray origin, in world units.
	Distance float32
	Point    math.Vec3
}

// Bounds returns the volume occupied by the grid: [0, D] on X and Z, and
// from 0 to the tallest scaled sample on Y.
func (t *Terrain) Bounds() picking.AABB {
	side := float32(t.pyr.Dimension())
	return picking.NewAABB(0, 0, 0, side, t.MaxHeight(), side)
}

// Pick intersects a world-space ray with the terrain. Rays that never
// enter Bounds are rejected without marching; otherwise the march starts
// at the entry point and is limited to the span inside the volume.
func (t *Terrain) Pick(ray picking.Ray) (Hit, bool) {
	enter, exit, ok := ray.Clip(t.Bounds())
	if !ok {
		return Hit{}, false
	}

	if ray.Direction.X == 0 && ray.Direction.Z == 0 {
		return t.pickVertical(ray, enter, exit)
	}

	budget := min(exit-enter, t.maxDistance)
	res := t.march(ray.At(enter), ray.Direction, budget)
	t.observer.ObserveMarch(res)
	if !res.Hit {
		return Hit{}, false
	}

	dist := enter + res.T
	return Hit{Distance: dist, Point: ray.At(dist)}, true
}

// pickVertical resolves straight up or down rays, which the march treats as
// degenerate, against the interpolated height of their column.
func (t *Terrain) pickVertical(ray picking.Ray, enter, exit float32) (Hit, bool) {
	start := ray.At(enter)
	h := t.sample(0, start.X, start.Z)
	if start.Y <= h {
		return Hit{Distance: enter, Point: start}, true
	}
	if ray.Direction.Y >= 0 {
		return Hit{}, false
	}

	dist := enter + (start.Y-h)/-ray.Direction.Y
	if dist > exit {
		return Hit{}, false
	}
	return Hit{Distance: dist, Point: ray.At(dist)}, true
}
