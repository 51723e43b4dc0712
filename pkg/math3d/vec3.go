package math3d

import "math"

// Vec3 is a point or direction in model, world, or camera space.
type Vec3 struct {
	X, Y, Z float64
}

// V3 is shorthand for Vec3{x, y, z}.
func V3(x, y, z float64) Vec3 { return Vec3{x, y, z} }

// Zero3 is the origin.
func Zero3() Vec3 { return Vec3{} }

// Up is world +Y, the default camera up direction.
func Up() Vec3 { return Vec3{Y: 1} }

func (a Vec3) Add(b Vec3) Vec3 { return Vec3{a.X + b.X, a.Y + b.Y, a.Z + b.Z} }
func (a Vec3) Sub(b Vec3) Vec3 { return Vec3{a.X - b.X, a.Y - b.Y, a.Z - b.Z} }
func (a Vec3) Negate() Vec3 { return Vec3{-a.X, -a.Y, -a.Z} }

// Mul multiplies component by component.
func (a Vec3) Mul(b Vec3) Vec3 { return Vec3{a.X * b.X, a.Y * b.Y, a.Z * b.Z} }

func (a Vec3) Scale(s float64) Vec3 { return Vec3{a.X * s, a.Y * s, a.Z * s} }
func (a Vec3) Dot(b Vec3) float64 { return a.X*b.X + a.Y*b.Y + a.Z*b.Z }

// Cross follows the right-hand rule: X.Cross(Y) is Z.
func (a Vec3) Cross(b Vec3) Vec3 {
	return Vec3{
		X: a.Y*b.Z - a.Z*b.Y,
		Y: a.Z*b.X - a.X*b.Z,
		Z: a.X*b.Y - a.Y*b.X,
	}
}

func (a Vec3) LenSq() float64 { return a.Dot(a) }
func (a Vec3) Len() float64 { return math.Sqrt(a.Dot(a)) }

// Normalize scales a to unit length. Zero stays zero so degenerate face
// normals never turn into NaN.
func (a Vec3) Normalize() Vec3 {
	if l := a.Len(); l != 0 {
		return a.Scale(1 / l)
	}
	return a
}

// Min and Max grow bounding boxes one point at a time.
func (a Vec3) Min(b Vec3) Vec3 { return Vec3{min(a.X, b.X), min(a.Y, b.Y), min(a.Z, b.Z)} }
func (a Vec3) Max(b Vec3) Vec3 { return Vec3{max(a.X, b.X), max(a.Y, b.Y), max(a.Z, b.Z)} }

// Transform maps the point a through m, translation included.
func (a Vec3) Transform(m Mat4) Vec3 { return m.MulVec3(a) }

// TransformDir maps the direction a through the linear part of m only.
func (a Vec3) TransformDir(m Mat4) Vec3 { return m.MulVec3Dir(a) }

// ApproxEqual compares per component, not by distance.
func (a Vec3) ApproxEqual(b Vec3, eps float64) bool {
	d := a.Sub(b)
	return math.Abs(d.X) <= eps && math.Abs(d.Y) <= eps && math.Abs(d.Z) <= eps
}
