package config

import (
	"fmt"
	"io"
	"maps"
	"math"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/taigrr/facet/pkg/math3d"
	"github.com/taigrr/facet/pkg/models"
	"github.com/taigrr/facet/pkg/pixel"
	"github.com/taigrr/facet/pkg/scene"
)

func (v Vec3) vec() math3d.Vec3 {
	return math3d.V3(v[0], v[1], v[2])
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// Build turns the description into a scene with a configured Camera.
// Relative asset paths resolve against baseDir. A nil logger discards output.
func (f *File) Build(baseDir string, logger *log.Logger) (*scene.Scene, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	s := scene.New()

	if f.Background != "" {
		c, err := pixel.ParseHex(f.Background)
		if err != nil {
			return nil, fmt.Errorf("background: %w", err)
		}
		s.Background = c
	}
	if f.BackgroundTexture != "" {
		tex, err := pixel.Load(resolve(baseDir, f.BackgroundTexture))
		if err != nil {
			return nil, fmt.Errorf("background texture: %w", err)
		}
		s.BackgroundTexture = tex
	}
	if f.Ambient != "" {
		c, err := pixel.ParseHex(f.Ambient)
		if err != nil {
			return nil, fmt.Errorf("ambient: %w", err)
		}
		s.SetAmbient(c)
	}

	s.Camera = f.Camera.build()
	s.Camera.SetScreenSize(f.Width, f.Height)

	for _, name := range slices.Sorted(maps.Keys(f.Lights)) {
		l, err := f.Lights[name].build()
		if err != nil {
			return nil, fmt.Errorf("light %q: %w", name, err)
		}
		s.AddLight(name, l)
	}

	for _, name := range slices.Sorted(maps.Keys(f.Meshes)) {
		desc := f.Meshes[name]
		meshes, err := desc.build(name, baseDir)
		if err != nil {
			return nil, fmt.Errorf("mesh %q: %w", name, err)
		}
		for _, m := range meshes {
			key := name
			if len(meshes) > 1 {
				key = name + "/" + m.Name
			}
			s.AddMesh(key, m)
			logger.Debug("mesh loaded", "name", key, "source", desc.Source,
				"vertices", m.VertexCount(), "triangles", m.TriangleCount())
		}
	}
	return s, nil
}

func (c Camera) build() *scene.Camera {
	cam := scene.NewCamera()
	if c.Position != nil {
		cam.SetPosition(c.Position.vec())
	}
	cam.LookAt(c.Target.vec())
	cam.SetFOV(c.FOV)
	cam.SetRoll(radians(c.Roll))
	if c.Near > 0 {
		cam.SetNear(c.Near)
	}
	return cam
}

func (l Light) build() (scene.Light, error) {
	out := scene.NewLight(l.Direction.vec())
	var err error
	if l.Diffuse != "" {
		if out.Diffuse, err = pixel.ParseHex(l.Diffuse); err != nil {
			return out, fmt.Errorf("diffuse: %w", err)
		}
	}
	if l.Specular != "" {
		if out.Specular, err = pixel.ParseHex(l.Specular); err != nil {
			return out, fmt.Errorf("specular: %w", err)
		}
	}
	if l.Sheen != nil {
		out.Sheen = *l.Sheen
	}
	if l.Spread != nil {
		out.Spread = *l.Spread
	}
	return out, nil
}

// build loads the geometry and applies material and transform. A glTF file
// may yield several meshes; they share the transform.
func (m Mesh) build(name, baseDir string) ([]*models.Mesh, error) {
	var meshes []*models.Mesh
	if m.Source == SourceBox {
		meshes = []*models.Mesh{models.NewBox(name, m.Size)}
	} else {
		loaded, err := models.LoadGLTF(resolve(baseDir, m.Source))
		if err != nil {
			return nil, err
		}
		meshes = loaded
	}

	if m.Fit {
		if err := fitGroup(meshes); err != nil {
			return nil, err
		}
	}

	if m.Material != nil {
		mat, err := m.Material.build(baseDir)
		if err != nil {
			return nil, err
		}
		mat.Name = name
		for _, mesh := range meshes {
			mesh.Material = mat
		}
	}

	matrix := math3d.ScaleUniform(m.Scale).
		Transform(math3d.Rotate(radians(m.Rotate[0]), radians(m.Rotate[1]), radians(m.Rotate[2]))).
		Transform(math3d.Translate(m.Translate.vec()))
	for _, mesh := range meshes {
		mesh.Matrix = matrix
		mesh.Visible = !m.Hidden
	}
	return meshes, nil
}

// fitGroup recenters the meshes on the origin and scales them together so
// the largest side of their combined bounds measures 2.
func fitGroup(meshes []*models.Mesh) error {
	var lo, hi math3d.Vec3
	for i, mesh := range meshes {
		if err := mesh.Rebuild(); err != nil {
			return err
		}
		mn, mx := mesh.Bounds()
		if i == 0 {
			lo, hi = mn, mx
			continue
		}
		lo, hi = lo.Min(mn), hi.Max(mx)
	}
	size := hi.Sub(lo)
	longest := max(size.X, size.Y, size.Z)
	if longest <= 0 {
		return nil
	}
	center := lo.Add(hi).Scale(0.5)
	fit := math3d.Translate(center.Negate()).Transform(math3d.ScaleUniform(2 / longest))
	for _, mesh := range meshes {
		mesh.ApplyTransform(fit)
	}
	return nil
}

func (m *Material) build(baseDir string) (*models.Material, error) {
	c := pixel.White
	if m.Color != "" {
		var err error
		if c, err = pixel.ParseHex(m.Color); err != nil {
			return nil, fmt.Errorf("material color: %w", err)
		}
	}
	mat := models.NewMaterial(c)
	mat.Transparency = m.Transparency
	mat.Reflectivity = m.Reflectivity
	mat.Flat = m.Flat
	mat.Wireframe = m.Wireframe

	if m.Texture != "" {
		tex, err := pixel.Load(resolve(baseDir, m.Texture))
		if err != nil {
			return nil, fmt.Errorf("material texture: %w", err)
		}
		mat.Texture = tex
	}
	if m.EnvMap != "" {
		tex, err := pixel.Load(resolve(baseDir, m.EnvMap))
		if err != nil {
			return nil, fmt.Errorf("material env map: %w", err)
		}
		mat.EnvMap = tex
	}
	return mat, nil
}
