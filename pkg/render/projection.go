package render

import (
	"math"

	"github.com/taigrr/facet/pkg/math3d"
	"github.com/taigrr/facet/pkg/models"
)

// Clip code bits recording which frustum side a projected vertex violates.
const (
	ClipLeft   uint8 = 1
	ClipRight  uint8 = 2
	ClipTop    uint8 = 4
	ClipBottom uint8 = 8
	ClipNear   uint8 = 16
)

// projector maps camera space onto a width×height screen.
type projector struct {
	width, height int
	hw, hh        float64
	focal         float64
	near          float64
}

func newProjector(width, height int, focal, near float64) projector {
	return projector{
		width:  width,
		height: height,
		hw:     float64(width) / 2,
		hh:     float64(height) / 2,
		focal:  focal,
		near:   near,
	}
}

// project converts a camera-space point and view-space normal into a screen
// vertex and its clip code. Points in front of the near plane only get the
// near bit; their screen fields are left zero.
func (p projector) project(c, n math3d.Vec3) (ScreenVertex, uint8) {
	var sv ScreenVertex
	sv.NX, sv.NY = BiasNormal(n)

	depth := -c.Z
	if depth < p.near {
		return sv, ClipNear
	}

	sv.X = c.X*p.focal/depth + p.hw
	sv.Y = -c.Y*p.focal/depth + p.hh
	sv.Z = int32(min(depth*fixOne, float64(ZFar-1)))

	var code uint8
	switch {
	case sv.X < 0:
		code |= ClipLeft
	case sv.X >= float64(p.width):
		code |= ClipRight
	}
	switch {
	case sv.Y < 0:
		code |= ClipTop
	case sv.Y >= float64(p.height):
		code |= ClipBottom
	}
	return sv, code
}

// projection is the per-frame vertex cache. Entries for one mesh are
// contiguous; triangle indices are offset by the mesh's base.
type projection struct {
	screen []ScreenVertex
	cam    []math3d.Vec3
	clip   []uint8
}

func (p *projection) reset() {
	p.screen = p.screen[:0]
	p.cam = p.cam[:0]
	p.clip = p.clip[:0]
}

// addMesh projects every vertex of m and returns the index of the first one.
func (p *projection) addMesh(m *models.Mesh, modelView, normalMat math3d.Mat4, pr projector) int {
	base := len(p.screen)

	var texW, texH float64
	if tex := m.Material.Texture; tex != nil {
		texW, texH = float64(tex.Width)*fixOne, float64(tex.Height)*fixOne
	}

	for _, v := range m.Vertices() {
		c := modelView.MulVec3(v.Pos)
		n := normalMat.MulVec3Dir(v.Normal).Normalize()
		sv, code := pr.project(c, n)
		sv.TX = int64(math.Floor(v.U * texW))
		sv.TY = int64(math.Floor(v.V * texH))

		p.screen = append(p.screen, sv)
		p.cam = append(p.cam, c)
		p.clip = append(p.clip, code)
	}
	return base
}
