// Package models provides triangle meshes, materials and model loading for facet.
package models

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/taigrr/facet/pkg/math3d"
)

// ErrIndexOutOfRange is returned by Rebuild when a triangle references a
// vertex outside its mesh.
var ErrIndexOutOfRange = errors.New("models: vertex index out of range")

// Mesh owns a vertex list, a triangle list indexing into it, a local
// transform and a material.
type Mesh struct {
	Name     string
	Material *Material
	Matrix   math3d.Mat4 // Local to scene transform
	Visible  bool

	// PreserveNormals keeps the vertex normals supplied by the caller or an
	// asset instead of regenerating them on Rebuild.
	PreserveNormals bool

	vertices  []Vertex
	triangles []Triangle

	// Vertex to triangle adjacency: triangles around vertex v are
	// adjTris[adjStart[v]:adjStart[v+1]].
	adjStart []int
	adjTris  []int

	boundsMin math3d.Vec3
	boundsMax math3d.Vec3

	dirty bool
}

// NewMesh creates an empty, visible mesh with an identity transform.
func NewMesh(name string) *Mesh {
	return &Mesh{
		Name:    name,
		Matrix:  math3d.Identity(),
		Visible: true,
	}
}

// AddVertex appends a vertex and returns its index.
func (m *Mesh) AddVertex(v Vertex) int {
	m.vertices = append(m.vertices, v)
	m.dirty = true
	return len(m.vertices) - 1
}

// AddTriangle appends a triangle over three vertex indices and returns its index.
// Indices are validated by Rebuild.
func (m *Mesh) AddTriangle(a, b, c int) int {
	m.triangles = append(m.triangles, Triangle{V: [3]int{a, b, c}})
	m.dirty = true
	return len(m.triangles) - 1
}

// Dirty reports whether the mesh changed since the last Rebuild.
func (m *Mesh) Dirty() bool {
	return m.dirty
}

// Rebuild fixes the vertex and triangle lists, assigns local triangle ids,
// rebuilds adjacency and regenerates normals. It is a no-op when the mesh
// has not changed.
func (m *Mesh) Rebuild() error {
	if !m.dirty {
		return nil
	}

	m.vertices = slices.Clip(m.vertices)
	m.triangles = slices.Clip(m.triangles)

	n := len(m.vertices)
	for i := range m.triangles {
		t := &m.triangles[i]
		for _, idx := range t.V {
			if idx < 0 || idx >= n {
				return fmt.Errorf("%w: mesh %q triangle %d references vertex %d of %d",
					ErrIndexOutOfRange, m.Name, i, idx, n)
			}
		}
		t.ID = i
	}

	m.buildAdjacency()
	m.calculateFaceNormals()
	if !m.PreserveNormals {
		m.calculateVertexNormals()
	}
	m.calculateBounds()

	m.dirty = false
	return nil
}

// buildAdjacency rebuilds the flattened vertex to triangle index.
func (m *Mesh) buildAdjacency() {
	n := len(m.vertices)
	m.adjStart = make([]int, n+1)
	for _, t := range m.triangles {
		for _, idx := range t.V {
			m.adjStart[idx+1]++
		}
	}
	for i := range n {
		m.adjStart[i+1] += m.adjStart[i]
	}

	m.adjTris = make([]int, m.adjStart[n])
	fill := slices.Clone(m.adjStart[:n])
	for ti, t := range m.triangles {
		for _, idx := range t.V {
			m.adjTris[fill[idx]] = ti
			fill[idx]++
		}
	}
}

func (m *Mesh) calculateFaceNormals() {
	for i := range m.triangles {
		t := &m.triangles[i]
		t.Normal = faceNormal(m.vertices[t.V[0]].Pos, m.vertices[t.V[1]].Pos, m.vertices[t.V[2]].Pos)
	}
}

// calculateVertexNormals sets each vertex normal to the normalized plain sum
// of the unit normals of its incident faces.
func (m *Mesh) calculateVertexNormals() {
	for v := range m.vertices {
		var sum math3d.Vec3
		for _, ti := range m.Neighbors(v) {
			sum = sum.Add(m.triangles[ti].Normal)
		}
		m.vertices[v].Normal = sum.Normalize()
	}
}

func (m *Mesh) calculateBounds() {
	if len(m.vertices) == 0 {
		m.boundsMin, m.boundsMax = math3d.Zero3(), math3d.Zero3()
		return
	}

	m.boundsMin = m.vertices[0].Pos
	m.boundsMax = m.vertices[0].Pos
	for _, v := range m.vertices[1:] {
		m.boundsMin = m.boundsMin.Min(v.Pos)
		m.boundsMax = m.boundsMax.Max(v.Pos)
	}
}

// Neighbors returns the indices of the triangles using vertex v.
// The slice is valid until the next Rebuild.
func (m *Mesh) Neighbors(v int) []int {
	if v < 0 || v+1 >= len(m.adjStart) {
		return nil
	}
	return m.adjTris[m.adjStart[v]:m.adjStart[v+1]]
}

// Vertices returns the vertex list. Callers must not modify it.
func (m *Mesh) Vertices() []Vertex {
	return m.vertices
}

// Triangles returns the triangle list. Callers must not modify it.
func (m *Mesh) Triangles() []Triangle {
	return m.triangles
}

// Vertex returns vertex i.
func (m *Mesh) Vertex(i int) Vertex {
	return m.vertices[i]
}

// Triangle returns triangle i.
func (m *Mesh) Triangle(i int) Triangle {
	return m.triangles[i]
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.vertices)
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.triangles)
}

// Bounds returns the local axis-aligned bounding box as of the last Rebuild.
func (m *Mesh) Bounds() (min, max math3d.Vec3) {
	return m.boundsMin, m.boundsMax
}

// Center returns the center of the bounding box.
func (m *Mesh) Center() math3d.Vec3 {
	return m.boundsMin.Add(m.boundsMax).Scale(0.5)
}

// Size returns the dimensions of the bounding box.
func (m *Mesh) Size() math3d.Vec3 {
	return m.boundsMax.Sub(m.boundsMin)
}

// Rotate applies a rotation after the current transform.
func (m *Mesh) Rotate(rx, ry, rz float64) {
	m.Matrix = m.Matrix.Transform(math3d.Rotate(rx, ry, rz))
}

// Shift applies a translation after the current transform.
func (m *Mesh) Shift(v math3d.Vec3) {
	m.Matrix = m.Matrix.Transform(math3d.Translate(v))
}

// ScaleBy applies a scale after the current transform.
func (m *Mesh) ScaleBy(v math3d.Vec3) {
	m.Matrix = m.Matrix.Transform(math3d.Scale(v))
}

// ApplyTransform bakes mat into the vertex positions and normals.
func (m *Mesh) ApplyTransform(mat math3d.Mat4) {
	for i := range m.vertices {
		m.vertices[i].Pos = mat.MulVec3(m.vertices[i].Pos)
		m.vertices[i].Normal = mat.MulVec3Dir(m.vertices[i].Normal).Normalize()
	}
	m.dirty = true
}

// FitToUnit recenters the mesh on the origin and scales it so the largest
// side measures 2.
func (m *Mesh) FitToUnit() error {
	if err := m.Rebuild(); err != nil {
		return err
	}
	size := m.Size()
	maxDim := math.Max(size.X, math.Max(size.Y, size.Z))
	if maxDim <= 0 {
		return nil
	}
	s := 2 / maxDim
	m.ApplyTransform(math3d.Translate(m.Center().Negate()).Transform(math3d.ScaleUniform(s)))
	return m.Rebuild()
}

// Clone creates a deep copy of the mesh sharing the material.
func (m *Mesh) Clone() *Mesh {
	return &Mesh{
		Name:            m.Name,
		Material:        m.Material,
		Matrix:          m.Matrix,
		Visible:         m.Visible,
		PreserveNormals: m.PreserveNormals,
		vertices:        slices.Clone(m.vertices),
		triangles:       slices.Clone(m.triangles),
		adjStart:        slices.Clone(m.adjStart),
		adjTris:         slices.Clone(m.adjTris),
		boundsMin:       m.boundsMin,
		boundsMax:       m.boundsMax,
		dirty:           m.dirty,
	}
}
