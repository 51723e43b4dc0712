package render

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/taigrr/facet/pkg/math3d"
	"github.com/taigrr/facet/pkg/models"
	"github.com/taigrr/facet/pkg/scene"
)

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithIDBuffer enables the id-buffer required by IdentifyTriangleAt.
func WithIDBuffer() Option {
	return func(p *Pipeline) {
		p.ids = true
	}
}

// WithAntialias renders at twice the resolution and box-filters the result.
func WithAntialias(on bool) Option {
	return func(p *Pipeline) {
		p.antialias = on
	}
}

// WithDisplay hands every finished frame to d.
func WithDisplay(d Display) Option {
	return func(p *Pipeline) {
		p.display = d
	}
}

// WithLogger sets the logger used for per-frame debug output.
func WithLogger(l *log.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// Pipeline renders one scene into its own buffers. A Pipeline must not be
// used by two goroutines at once; separate pipelines are independent.
type Pipeline struct {
	scene     *scene.Scene
	width     int
	height    int
	antialias bool
	ids       bool

	// Requests applied at the start of the next Render.
	resizePending bool
	pendingW      int
	pendingH      int
	aaPending     bool
	pendingAA     bool

	output   *Framebuffer // Final frame
	work     *Framebuffer // Render target; output unless antialiasing
	raster   *Rasterizer
	lightmap *Lightmap
	lightRev uint64

	display Display
	logger  *log.Logger

	proj        projection
	opaque      []queued
	transparent []queued
	stats       Stats
	rendered    bool
}

// NewPipeline creates a pipeline rendering s into a width×height frame.
func NewPipeline(s *scene.Scene, width, height int, opts ...Option) *Pipeline {
	p := &Pipeline{
		scene:    s,
		width:    max(width, 1),
		height:   max(height, 1),
		lightmap: NewLightmap(),
		logger:   log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.allocate()
	return p
}

func (p *Pipeline) allocate() {
	p.output = NewFramebuffer(p.width, p.height)
	p.work = p.output
	if p.antialias {
		p.work = NewFramebuffer(2*p.width, 2*p.height)
	}
	if p.raster == nil {
		p.raster = NewRasterizer(p.work, p.lightmap, p.ids)
	} else {
		p.raster.Bind(p.work, p.ids)
	}
	p.rendered = false
}

// RequestResize changes the output size starting with the next Render.
func (p *Pipeline) RequestResize(width, height int) {
	p.pendingW, p.pendingH = max(width, 1), max(height, 1)
	p.resizePending = true
}

// SetAntialias toggles 2x supersampling starting with the next Render.
func (p *Pipeline) SetAntialias(on bool) {
	p.pendingAA = on
	p.aaPending = true
}

func (p *Pipeline) applyPending() {
	changed := false
	if p.resizePending && (p.pendingW != p.width || p.pendingH != p.height) {
		p.width, p.height = p.pendingW, p.pendingH
		changed = true
	}
	if p.aaPending && p.pendingAA != p.antialias {
		p.antialias = p.pendingAA
		changed = true
	}
	p.resizePending, p.aaPending = false, false
	if changed {
		p.logger.Debug("resizing buffers", "width", p.width, "height", p.height, "antialias", p.antialias)
		p.allocate()
	}
}

// Render draws one frame as seen by cam, or by the scene's camera when cam is
// nil. The camera's screen size is set to the render target size.
func (p *Pipeline) Render(cam *scene.Camera) error {
	if cam == nil {
		cam = p.scene.Camera
	}
	p.applyPending()

	if err := p.scene.Rebuild(); err != nil {
		return err
	}
	if rev := p.scene.LightRevision(); rev != p.lightRev {
		p.lightmap.Rebuild(p.scene.Ambient(), p.scene.Lights())
		p.lightRev = rev
	}
	cam.SetScreenSize(p.work.Width, p.work.Height)

	p.stats = Stats{}
	p.clear()

	view := p.scene.Matrix.Transform(cam.ViewMatrix())
	normal := p.scene.Matrix.Linear().Transform(cam.NormalMatrix())
	focal := cam.FocalLength()
	pr := newProjector(p.work.Width, p.work.Height, focal, cam.Near())
	frustum := NewFrustum(p.work.Width, p.work.Height, focal, cam.Near())

	p.proj.reset()
	p.opaque = p.opaque[:0]
	p.transparent = p.transparent[:0]

	for id, m := range p.scene.Meshes() {
		if !m.Visible || m.Material == nil || m.TriangleCount() == 0 {
			continue
		}
		p.stats.MeshesTested++

		modelView := m.Matrix.Transform(view)
		lo, hi := m.Bounds()
		if frustum.Classify(Bounds{Min: lo, Max: hi}.Transform(modelView)) == Outside {
			p.stats.MeshesCulled++
			continue
		}
		normalMat := m.Matrix.Linear().Transform(normal)
		base := p.proj.addMesh(m, modelView, normalMat, pr)
		p.stats.Vertices += m.VertexCount()
		p.enqueue(id, m, base, normalMat)
	}

	depthSort(p.opaque)
	depthSort(p.transparent)
	p.rasterize()

	if p.antialias {
		p.output.Downsample(p.work)
	}
	p.stats.Pixels = p.raster.Written()
	p.rendered = true

	p.logger.Debug("frame",
		"width", p.output.Width,
		"height", p.output.Height,
		"meshes", p.stats.MeshesTested-p.stats.MeshesCulled,
		"triangles", p.stats.Triangles,
		"drawn", p.stats.Drawn(),
		"pixels", p.stats.Pixels,
	)

	if p.display != nil {
		if err := p.display.Present(p.output); err != nil {
			return fmt.Errorf("present frame: %w", err)
		}
	}
	return nil
}

// clear resets depth and ids and paints the background.
func (p *Pipeline) clear() {
	p.raster.Clear()
	if tex := p.scene.BackgroundTexture; tex != nil {
		p.work.Blit(tex)
		return
	}
	p.work.Clear(p.scene.Background)
}

// enqueue clips and culls the triangles of one projected mesh and queues the
// survivors.
func (p *Pipeline) enqueue(meshID int, m *models.Mesh, base int, normalMat math3d.Mat4) {
	mat := m.Material
	for _, t := range m.Triangles() {
		p.stats.Triangles++

		ia, ib, ic := base+t.V[0], base+t.V[1], base+t.V[2]
		ca, cb, cc := p.proj.clip[ia], p.proj.clip[ib], p.proj.clip[ic]
		if ca&cb&cc != 0 {
			p.stats.Clipped++
			continue
		}
		if (ca|cb|cc)&ClipNear != 0 {
			p.stats.NearCrossing++
			continue
		}

		n := normalMat.MulVec3Dir(t.Normal).Normalize()
		if n.Z <= 0.5 {
			// Sum of the corners points the same way as their center.
			center := p.proj.cam[ia].Add(p.proj.cam[ib]).Add(p.proj.cam[ic])
			if center.Negate().Dot(n) <= 0 {
				p.stats.BackFacing++
				continue
			}
		}

		if mat.Invisible() {
			p.stats.Invisible++
			continue
		}

		s := p.proj.screen
		nx, ny := BiasNormal(n)
		q := queued{
			key: int64(s[ia].Z) + int64(s[ib].Z) + int64(s[ic].Z),
			id:  scene.PackID(meshID, t.ID),
			mat: mat,
			v:   [3]int32{int32(ia), int32(ib), int32(ic)},
			nx:  nx,
			ny:  ny,
		}
		if mat.Transparent() {
			p.transparent = append(p.transparent, q)
			p.stats.Transparent++
		} else {
			p.opaque = append(p.opaque, q)
			p.stats.Opaque++
		}
	}
}

// rasterize draws the opaque queue, then the transparent one.
func (p *Pipeline) rasterize() {
	var loaded *models.Material
	s := p.proj.screen
	for _, queue := range [2][]queued{p.opaque, p.transparent} {
		for i := range queue {
			q := &queue[i]
			if q.mat != loaded {
				p.raster.LoadMaterial(q.mat)
				loaded = q.mat
			}
			p.raster.DrawTriangle(&s[q.v[0]], &s[q.v[1]], &s[q.v[2]], q.nx, q.ny, q.id)
		}
	}
}

// IdentifyTriangleAt returns the mesh and triangle visible at output pixel
// (x, y). ok is false without an id-buffer, before the first Render, out of
// bounds and over the background.
func (p *Pipeline) IdentifyTriangleAt(x, y int) (meshID, triID int, ok bool) {
	if !p.ids || !p.rendered {
		return 0, 0, false
	}
	if x < 0 || x >= p.output.Width || y < 0 || y >= p.output.Height {
		return 0, 0, false
	}
	if p.antialias {
		x, y = 2*x, 2*y
	}
	return p.scene.Resolve(p.raster.ID(x, y))
}

// Depth returns the stored device z under output pixel (x, y).
func (p *Pipeline) Depth(x, y int) int32 {
	if p.antialias {
		x, y = 2*x, 2*y
	}
	return p.raster.Depth(x, y)
}

// Framebuffer returns the output frame. It is replaced when a pending resize
// or antialias change is applied.
func (p *Pipeline) Framebuffer() *Framebuffer {
	return p.output
}

// Size returns the current output size.
func (p *Pipeline) Size() (width, height int) {
	return p.width, p.height
}

// Antialias reports whether supersampling is active.
func (p *Pipeline) Antialias() bool {
	return p.antialias
}

// Stats returns the counters of the last frame.
func (p *Pipeline) Stats() Stats {
	return p.stats
}

// Lightmap returns the lightmap built from the scene's lights.
func (p *Pipeline) Lightmap() *Lightmap {
	return p.lightmap
}
