// Package scene groups meshes, lights and a camera into a renderable scene.
package scene

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/taigrr/facet/pkg/math3d"
	"github.com/taigrr/facet/pkg/models"
	"github.com/taigrr/facet/pkg/pixel"
)

// NoID marks an empty id-buffer slot.
const NoID uint32 = 0xFFFFFFFF

// maxID bounds both mesh ids and mesh-local triangle ids.
const maxID = 0xFFFF

var (
	// ErrTooManyMeshes is returned by Rebuild when mesh ids no longer fit in 16 bits.
	ErrTooManyMeshes = errors.New("scene: too many meshes")
	// ErrTooManyTriangles is returned by Rebuild when a mesh's triangle ids no longer fit in 16 bits.
	ErrTooManyTriangles = errors.New("scene: too many triangles in mesh")
)

// PackID packs a mesh id and a mesh-local triangle id into one id-buffer value.
func PackID(meshID, triID int) uint32 {
	return uint32(meshID)<<16 | uint32(triID)&0xFFFF
}

// UnpackID splits a packed id into mesh and triangle ids.
func UnpackID(id uint32) (meshID, triID int) {
	return int(id >> 16), int(id & 0xFFFF)
}

// Scene owns named meshes and lights, the ambient and background colors, a
// scene-wide transform and a default camera.
type Scene struct {
	Background        pixel.Color
	BackgroundTexture *pixel.Texture // Drawn instead of Background when set
	Matrix            math3d.Mat4    // Applied to every mesh before the camera
	Camera            *Camera

	meshes   map[string]*models.Mesh
	lights   map[string]Light
	ambient  pixel.Color
	dirty    bool
	lightRev uint64

	// Valid after Rebuild: meshes ordered by id.
	ordered []*models.Mesh
	ids     map[*models.Mesh]int
}

// New creates an empty scene with a black background and a default camera.
func New() *Scene {
	return &Scene{
		Background: pixel.Black,
		Matrix:     math3d.Identity(),
		Camera:     NewCamera(),
		meshes:     make(map[string]*models.Mesh),
		lights:     make(map[string]Light),
		ambient:    pixel.Black,
		dirty:      true,
		lightRev:   1,
	}
}

// AddMesh adds or replaces the mesh stored under name.
func (s *Scene) AddMesh(name string, m *models.Mesh) {
	s.meshes[name] = m
	s.dirty = true
}

// RemoveMesh removes a mesh and reports whether it existed.
func (s *Scene) RemoveMesh(name string) bool {
	if _, ok := s.meshes[name]; !ok {
		return false
	}
	delete(s.meshes, name)
	s.dirty = true
	return true
}

// Mesh returns the mesh stored under name.
func (s *Scene) Mesh(name string) (*models.Mesh, bool) {
	m, ok := s.meshes[name]
	return m, ok
}

// MeshCount returns the number of meshes.
func (s *Scene) MeshCount() int {
	return len(s.meshes)
}

// AddLight adds or replaces the light stored under name.
func (s *Scene) AddLight(name string, l Light) {
	s.lights[name] = l
	s.lightChanged()
}

// RemoveLight removes a light and reports whether it existed.
func (s *Scene) RemoveLight(name string) bool {
	if _, ok := s.lights[name]; !ok {
		return false
	}
	delete(s.lights, name)
	s.lightChanged()
	return true
}

// Light returns the light stored under name.
func (s *Scene) Light(name string) (Light, bool) {
	l, ok := s.lights[name]
	return l, ok
}

// Lights returns all lights ordered by name.
func (s *Scene) Lights() []Light {
	names := slices.Sorted(maps.Keys(s.lights))
	out := make([]Light, len(names))
	for i, n := range names {
		out[i] = s.lights[n]
	}
	return out
}

// Ambient returns the ambient color.
func (s *Scene) Ambient() pixel.Color {
	return s.ambient
}

// SetAmbient sets the ambient color.
func (s *Scene) SetAmbient(c pixel.Color) {
	if c == s.ambient {
		return
	}
	s.ambient = c
	s.lightChanged()
}

// LightRevision changes every time the light set or the ambient color changes.
// Consumers holding a lightmap compare it to decide when to rebuild.
func (s *Scene) LightRevision() uint64 {
	return s.lightRev
}

func (s *Scene) lightChanged() {
	s.lightRev++
	s.dirty = true
}

// Dirty reports whether meshes or lights changed since the last Rebuild.
func (s *Scene) Dirty() bool {
	return s.dirty
}

// Rebuild assigns mesh ids in name order and rebuilds every mesh. Meshes are
// rebuilt even when the scene itself is clean; each is a no-op unless dirty.
func (s *Scene) Rebuild() error {
	if s.dirty {
		if len(s.meshes) > maxID {
			return fmt.Errorf("%w: %d", ErrTooManyMeshes, len(s.meshes))
		}
		names := slices.Sorted(maps.Keys(s.meshes))
		s.ordered = make([]*models.Mesh, len(names))
		s.ids = make(map[*models.Mesh]int, len(names))
		for i, n := range names {
			s.ordered[i] = s.meshes[n]
			s.ids[s.meshes[n]] = i
		}
	}

	for _, m := range s.ordered {
		if err := m.Rebuild(); err != nil {
			return fmt.Errorf("rebuild mesh %q: %w", m.Name, err)
		}
		if m.TriangleCount() > maxID {
			return fmt.Errorf("%w: %q has %d", ErrTooManyTriangles, m.Name, m.TriangleCount())
		}
	}
	s.dirty = false
	return nil
}

// Meshes returns the meshes in id order as of the last Rebuild.
func (s *Scene) Meshes() []*models.Mesh {
	return s.ordered
}

// MeshByID returns the mesh with the given id as of the last Rebuild.
func (s *Scene) MeshByID(id int) (*models.Mesh, bool) {
	if id < 0 || id >= len(s.ordered) {
		return nil, false
	}
	return s.ordered[id], true
}

// MeshID returns the id assigned to m by the last Rebuild.
func (s *Scene) MeshID(m *models.Mesh) (int, bool) {
	id, ok := s.ids[m]
	return id, ok
}

// Resolve validates a packed id against the scene. ok is false for NoID,
// unknown meshes and out-of-range triangles.
func (s *Scene) Resolve(packed uint32) (meshID, triID int, ok bool) {
	if packed == NoID {
		return 0, 0, false
	}
	meshID, triID = UnpackID(packed)
	m, found := s.MeshByID(meshID)
	if !found || triID >= m.TriangleCount() {
		return 0, 0, false
	}
	return meshID, triID, true
}
