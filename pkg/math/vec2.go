package math

import "math"

// Vec2 is a 2D vector on the ground plane (X, Z of the world).
type Vec2 struct {
	X, Y float32
}

// Length returns the magnitude.
func (v Vec2) Length() float32 {
	return float32(math.Sqrt(float64(v.X*v.X + v.Y*v.Y)))
}

// Floor returns the integer cell containing v and the fractional offset inside it.
func (v Vec2) Floor() (x, y int, fx, fy float32) {
	flx := math.Floor(float64(v.X))
	fly := math.Floor(float64(v.Y))
	return int(flx), int(fly), v.X - float32(flx), v.Y - float32(fly)
}
