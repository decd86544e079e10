package combat

import "math"

// Vec3 is a float64 3D vector. Y is up; the playfield is the XZ plane.
type Vec3 struct {
	X, Y, Z float64
}

func (a Vec3) Add(b Vec3) Vec3 {
	return Vec3{a.X + b.X, a.Y + b.Y, a.Z + b.Z}
}

func (a Vec3) Sub(b Vec3) Vec3 {
	return Vec3{a.X - b.X, a.Y - b.Y, a.Z - b.Z}
}

func (a Vec3) Scale(s float64) Vec3 {
	return Vec3{a.X * s, a.Y * s, a.Z * s}
}

func (a Vec3) Len() float64 {
	return math.Sqrt(a.X*a.X + a.Y*a.Y + a.Z*a.Z)
}

func (a Vec3) Dist(b Vec3) float64 {
	return a.Sub(b).Len()
}

// Normalize returns the unit vector of a, or the zero vector when a has no
// length.
func (a Vec3) Normalize() Vec3 {
	l := a.Len()
	if l == 0 {
		return Vec3{}
	}
	return a.Scale(1 / l)
}

// Lerp moves a toward b by t, with t clamped to [0, 1].
func (a Vec3) Lerp(b Vec3, t float64) Vec3 {
	t = math.Max(0, math.Min(1, t))
	return a.Add(b.Sub(a).Scale(t))
}

// RotateY rotates a around the vertical axis by angle radians, matching a
// right-handed rotation with -Z as forward.
func (a Vec3) RotateY(angle float64) Vec3 {
	sin, cos := math.Sincos(angle)
	return Vec3{
		X: a.X*cos + a.Z*sin,
		Y: a.Y,
		Z: -a.X*sin + a.Z*cos,
	}
}
