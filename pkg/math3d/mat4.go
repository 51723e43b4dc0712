package math3d

import (
	"errors"
	"math"
)

// ErrSingular is returned by Inverse when the matrix has no inverse.
var ErrSingular = errors.New("math3d: singular matrix")

// singularEpsilon is the determinant magnitude below which a matrix is treated as singular.
const singularEpsilon = 1e-12

// Mat4 is an affine transform stored row by row.
//
//	| M00 M01 M02 M03 |   3x3 linear part (rotation/scale)
//	| M10 M11 M12 M13 |   M03, M13, M23 = translation
//	| M20 M21 M22 M23 |
//	|  0   0   0   1  |   implicit
//
// Points are column vectors: p' = M·p.
type Mat4 struct {
	M00, M01, M02, M03 float64
	M10, M11, M12, M13 float64
	M20, M21, M22, M23 float64
}

// Identity returns the identity matrix.
func Identity() Mat4 {
	return Mat4{
		M00: 1,
		M11: 1,
		M22: 1,
	}
}

// Translate creates a translation matrix.
func Translate(v Vec3) Mat4 {
	m := Identity()
	m.M03, m.M13, m.M23 = v.X, v.Y, v.Z
	return m
}

// Scale creates a scale matrix.
func Scale(v Vec3) Mat4 {
	return Mat4{
		M00: v.X,
		M11: v.Y,
		M22: v.Z,
	}
}

// ScaleUniform creates a uniform scale matrix.
func ScaleUniform(s float64) Mat4 {
	return Scale(Vec3{s, s, s})
}

// RotateX creates a rotation matrix around the X axis (radians).
func RotateX(angle float64) Mat4 {
	c, s := math.Cos(angle), math.Sin(angle)
	return Mat4{
		M00: 1,
		M11: c, M12: -s,
		M21: s, M22: c,
	}
}

// RotateY creates a rotation matrix around the Y axis (radians).
func RotateY(angle float64) Mat4 {
	c, s := math.Cos(angle), math.Sin(angle)
	return Mat4{
		M00: c, M02: s,
		M11: 1,
		M20: -s, M22: c,
	}
}

// RotateZ creates a rotation matrix around the Z axis (radians).
func RotateZ(angle float64) Mat4 {
	c, s := math.Cos(angle), math.Sin(angle)
	return Mat4{
		M00: c, M01: -s,
		M10: s, M11: c,
		M22: 1,
	}
}

// Rotate composes X, then Y, then Z rotations by left multiplication,
// so the result is RotateZ(rz)·RotateY(ry)·RotateX(rx).
func Rotate(rx, ry, rz float64) Mat4 {
	return Identity().
		Transform(RotateX(rx)).
		Transform(RotateY(ry)).
		Transform(RotateZ(rz))
}

// Mul returns the matrix product m·n (n is applied first).
func (m Mat4) Mul(n Mat4) Mat4 {
	return Mat4{
		M00: m.M00*n.M00 + m.M01*n.M10 + m.M02*n.M20,
		M01: m.M00*n.M01 + m.M01*n.M11 + m.M02*n.M21,
		M02: m.M00*n.M02 + m.M01*n.M12 + m.M02*n.M22,
		M03: m.M00*n.M03 + m.M01*n.M13 + m.M02*n.M23 + m.M03,

		M10: m.M10*n.M00 + m.M11*n.M10 + m.M12*n.M20,
		M11: m.M10*n.M01 + m.M11*n.M11 + m.M12*n.M21,
		M12: m.M10*n.M02 + m.M11*n.M12 + m.M12*n.M22,
		M13: m.M10*n.M03 + m.M11*n.M13 + m.M12*n.M23 + m.M13,

		M20: m.M20*n.M00 + m.M21*n.M10 + m.M22*n.M20,
		M21: m.M20*n.M01 + m.M21*n.M11 + m.M22*n.M21,
		M22: m.M20*n.M02 + m.M21*n.M12 + m.M22*n.M22,
		M23: m.M20*n.M03 + m.M21*n.M13 + m.M22*n.M23 + m.M23,
	}
}

// Transform premultiplies m by n and returns n·m: the result applies m first, then n.
func (m Mat4) Transform(n Mat4) Mat4 {
	return n.Mul(m)
}

// MulVec3 transforms a point.
func (m Mat4) MulVec3(v Vec3) Vec3 {
	return Vec3{
		m.M00*v.X + m.M01*v.Y + m.M02*v.Z + m.M03,
		m.M10*v.X + m.M11*v.Y + m.M12*v.Z + m.M13,
		m.M20*v.X + m.M21*v.Y + m.M22*v.Z + m.M23,
	}
}

// MulVec3Dir transforms a direction, ignoring translation.
func (m Mat4) MulVec3Dir(v Vec3) Vec3 {
	return Vec3{
		m.M00*v.X + m.M01*v.Y + m.M02*v.Z,
		m.M10*v.X + m.M11*v.Y + m.M12*v.Z,
		m.M20*v.X + m.M21*v.Y + m.M22*v.Z,
	}
}

// Linear returns m with the translation removed. It is the matrix used for normals.
func (m Mat4) Linear() Mat4 {
	m.M03, m.M13, m.M23 = 0, 0, 0
	return m
}

// Translation returns the translation component.
func (m Mat4) Translation() Vec3 {
	return Vec3{m.M03, m.M13, m.M23}
}

// SetTranslation returns m with the translation replaced.
func (m Mat4) SetTranslation(v Vec3) Mat4 {
	m.M03, m.M13, m.M23 = v.X, v.Y, v.Z
	return m
}

// Determinant returns the determinant of the linear part, which equals
// the determinant of the full affine matrix.
func (m Mat4) Determinant() float64 {
	return m.M00*(m.M11*m.M22-m.M12*m.M21) -
		m.M01*(m.M10*m.M22-m.M12*m.M20) +
		m.M02*(m.M10*m.M21-m.M11*m.M20)
}

// Inverse returns the inverse of m using cofactor expansion.
// It returns ErrSingular when the determinant is too close to zero.
func (m Mat4) Inverse() (Mat4, error) {
	det := m.Determinant()
	if math.Abs(det) < singularEpsilon {
		return Mat4{}, ErrSingular
	}
	inv := 1 / det

	var r Mat4
	r.M00 = (m.M11*m.M22 - m.M12*m.M21) * inv
	r.M01 = (m.M02*m.M21 - m.M01*m.M22) * inv
	r.M02 = (m.M01*m.M12 - m.M02*m.M11) * inv
	r.M10 = (m.M12*m.M20 - m.M10*m.M22) * inv
	r.M11 = (m.M00*m.M22 - m.M02*m.M20) * inv
	r.M12 = (m.M02*m.M10 - m.M00*m.M12) * inv
	r.M20 = (m.M10*m.M21 - m.M11*m.M20) * inv
	r.M21 = (m.M01*m.M20 - m.M00*m.M21) * inv
	r.M22 = (m.M00*m.M11 - m.M01*m.M10) * inv

	// t' = -R⁻¹·t
	t := r.MulVec3Dir(m.Translation())
	r.M03, r.M13, r.M23 = -t.X, -t.Y, -t.Z
	return r, nil
}

// Get returns the element at the given row and column. Row 3 is the implicit [0 0 0 1].
func (m Mat4) Get(row, col int) float64 {
	switch row {
	case 0:
		return [4]float64{m.M00, m.M01, m.M02, m.M03}[col]
	case 1:
		return [4]float64{m.M10, m.M11, m.M12, m.M13}[col]
	case 2:
		return [4]float64{m.M20, m.M21, m.M22, m.M23}[col]
	}
	if col == 3 {
		return 1
	}
	return 0
}

// ApproxEqual reports whether every element of m and n differs by at most eps.
func (m Mat4) ApproxEqual(n Mat4, eps float64) bool {
	for row := range 3 {
		for col := range 4 {
			if math.Abs(m.Get(row, col)-n.Get(row, col)) > eps {
				return false
			}
		}
	}
	return true
}

// LookAt creates a view matrix for an eye at eye looking at target.
// Camera space is right-handed: X right, Y up, the camera looks down -Z.
// When up is parallel to the view direction a fallback up vector is used.
func LookAt(eye, target, up Vec3) Mat4 {
	f := target.Sub(eye).Normalize()
	s := f.Cross(up)
	if s.LenSq() < 1e-12 {
		s = f.Cross(Vec3{0, 0, -1})
		if s.LenSq() < 1e-12 {
			s = f.Cross(Vec3{1, 0, 0})
		}
	}
	s = s.Normalize()
	u := s.Cross(f)

	return Mat4{
		M00: s.X, M01: s.Y, M02: s.Z, M03: -s.Dot(eye),
		M10: u.X, M11: u.Y, M12: u.Z, M13: -u.Dot(eye),
		M20: -f.X, M21: -f.Y, M22: -f.Z, M23: f.Dot(eye),
	}
}
