package models

import "github.com/taigrr/facet/pkg/math3d"

// Triangle references three vertices of its mesh by index.
type Triangle struct {
	V      [3]int      // Indices into the mesh vertex list
	Normal math3d.Vec3 // Face normal, set by Mesh.Rebuild
	ID     int         // Mesh-local id, set by Mesh.Rebuild
}

// SameVertices reports whether t and o reference the same vertices in the
// same cyclic order, so both describe the same face with the same winding.
func (t Triangle) SameVertices(o Triangle) bool {
	for shift := range 3 {
		if t.V[0] == o.V[shift] && t.V[1] == o.V[(shift+1)%3] && t.V[2] == o.V[(shift+2)%3] {
			return true
		}
	}
	return false
}

// faceNormal returns the unit normal of the triangle a, b, c (counter-clockwise front).
func faceNormal(a, b, c math3d.Vec3) math3d.Vec3 {
	return b.Sub(a).Cross(c.Sub(a)).Normalize()
}
