// Package math provides the small float32 vector toolkit used by terrain queries.
package math

import "math"

// Vec3 is a 3D vector. Y is up; the height field lies in the XZ plane.
type Vec3 struct {
	X, Y, Z float32
}

// Length returns the magnitude.
func (v Vec3) Length() float32 {
	return float32(math.Sqrt(float64(v.X*v.X + v.Y*v.Y + v.Z*v.Z)))
}

// Normalize returns a unit vector, or the zero vector if v has no length.
func (v Vec3) Normalize() Vec3 {
	l := v.Length()
	if l == 0 {
		return Vec3{}
	}
	return Vec3{v.X / l, v.Y / l, v.Z / l}
}

// PointAt returns v + dir*t, the point reached after t units of dir.
func (v Vec3) PointAt(dir Vec3, t float32) Vec3 {
	return Vec3{v.X + dir.X*t, v.Y + dir.Y*t, v.Z + dir.Z*t}
}

// XZ projects v onto the ground plane.
func (v Vec3) XZ() Vec2 {
	return Vec2{v.X, v.Z}
}

// IsFinite reports whether no component is NaN or infinite.
func (v Vec3) IsFinite() bool {
	return IsFinite(v.X) && IsFinite(v.Y) && IsFinite(v.Z)
}

// Array returns the components as [x, y, z].
func (v Vec3) Array() [3]float32 {
	return [3]float32{v.X, v.Y, v.Z}
}
