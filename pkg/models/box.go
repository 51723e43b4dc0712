package models

import "github.com/taigrr/facet/pkg/math3d"

// boxFaces lists each box side as outward normal plus the u and v axes
// spanning it, with u × v = normal so corners wind counter-clockwise.
var boxFaces = [6][3]math3d.Vec3{
	{{X: 1}, {Z: -1}, {Y: 1}},  // +X
	{{X: -1}, {Z: 1}, {Y: 1}},  // -X
	{{Y: 1}, {X: 1}, {Z: -1}},  // +Y
	{{Y: -1}, {X: 1}, {Z: 1}},  // -Y
	{{Z: 1}, {X: 1}, {Y: 1}},   // +Z
	{{Z: -1}, {X: -1}, {Y: 1}}, // -Z
}

// NewBox creates an axis-aligned cube of the given side length centered on
// the origin. Each side has its own four vertices so normals stay flat.
func NewBox(name string, size float64) *Mesh {
	m := NewMesh(name)
	h := size / 2
	corners := [4][2]float64{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}

	for _, f := range boxFaces {
		n, u, v := f[0], f[1], f[2]
		base := m.VertexCount()
		for _, c := range corners {
			p := n.Add(u.Scale(c[0])).Add(v.Scale(c[1])).Scale(h)
			m.AddVertex(Vertex{
				Pos:    p,
				Normal: n,
				U:      (c[0] + 1) / 2,
				V:      (1 - c[1]) / 2,
			})
		}
		m.AddTriangle(base, base+1, base+2)
		m.AddTriangle(base, base+2, base+3)
	}
	return m
}
