package models

import (
	"math"

	"github.com/taigrr/facet/pkg/math3d"
)

// Vertex is an immutable mesh vertex in local space.
type Vertex struct {
	Pos    math3d.Vec3
	Normal math3d.Vec3
	U, V   float64 // Texture coordinates in [0,1]
}

// NewVertex creates a vertex at the given position.
func NewVertex(x, y, z float64) Vertex {
	return Vertex{Pos: math3d.V3(x, y, z)}
}

// Equal reports whether v and o match within tol on position, normal and UV.
func (v Vertex) Equal(o Vertex, tol float64) bool {
	return v.Pos.ApproxEqual(o.Pos, tol) &&
		v.Normal.ApproxEqual(o.Normal, tol) &&
		math.Abs(v.U-o.U) <= tol &&
		math.Abs(v.V-o.V) <= tol
}
