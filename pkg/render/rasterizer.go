package render

import (
	"math"
	"strings"

	"github.com/taigrr/facet/pkg/models"
	"github.com/taigrr/facet/pkg/pixel"
	"github.com/taigrr/facet/pkg/scene"
)

// ShadeMode is the set of shading capabilities a loaded material activates.
type ShadeMode uint8

const (
	ShadeFlat      ShadeMode = 0
	ShadeWireframe ShadeMode = 1
	ShadePhong     ShadeMode = 2 // Per-pixel normal lookup
	ShadeEnvMap    ShadeMode = 4
	ShadeTextured  ShadeMode = 8
)

// String lists the active capabilities, e.g. "phong+textured".
func (m ShadeMode) String() string {
	var parts []string
	if m&ShadePhong != 0 {
		parts = append(parts, "phong")
	} else {
		parts = append(parts, "flat")
	}
	if m&ShadeEnvMap != 0 {
		parts = append(parts, "envmap")
	}
	if m&ShadeTextured != 0 {
		parts = append(parts, "textured")
	}
	if m&ShadeWireframe != 0 {
		parts = append(parts, "wireframe")
	}
	return strings.Join(parts, "+")
}

// MaterialMode returns the shade mode the rasterizer uses for m.
func MaterialMode(m *models.Material) ShadeMode {
	mode := ShadeFlat
	if !m.Flat {
		mode |= ShadePhong
	}
	if m.EnvMap != nil {
		mode |= ShadeEnvMap
	}
	if m.Texture != nil {
		mode |= ShadeTextured
	}
	if m.Wireframe {
		mode |= ShadeWireframe
	}
	return mode
}

// Fixed-point format used for edge and attribute interpolation.
const (
	fixShift = 16
	fixOne   = 1 << fixShift
	fixHalf  = fixOne >> 1
)

// ZFar is the cleared z-buffer value. Any device z is nearer.
const ZFar int32 = math.MaxInt32

// ScreenVertex is a projected vertex ready for rasterization.
type ScreenVertex struct {
	X, Y   float64 // Screen position in pixels
	Z      int32   // Device z: camera distance in 16.16
	NX, NY int32   // Biased view-space normal, 0..255
	TX, TY int64   // Unwrapped texel coordinates in 16.16
}

// shadeFunc computes one pixel from the color underneath it, the integer
// biased normal and the integer texel coordinates.
type shadeFunc func(r *Rasterizer, bg pixel.Color, nx, ny, tx, ty int) pixel.Color

// shaders is indexed by (mode>>1)&7. Flat and Phong variants share a function:
// flat triangles feed the face normal as a constant attribute.
var shaders = [8]shadeFunc{
	shadeSolid,       // flat
	shadeSolid,       // phong
	shadeEnv,         // flat+envmap
	shadeEnv,         // phong+envmap
	shadeTextured,    // flat+textured
	shadeTextured,    // phong+textured
	shadeEnvTextured, // flat+envmap+textured
	shadeEnvTextured, // phong+envmap+textured
}

// Rasterizer scanline-fills triangles into a color buffer, a z-buffer and an
// optional id-buffer.
type Rasterizer struct {
	width  int
	height int
	color  []pixel.Color
	zbuf   []int32
	idbuf  []uint32 // nil when id buffering is disabled

	lightmap *Lightmap

	// Loaded material state
	mode         ShadeMode
	shade        shadeFunc
	base         pixel.Color
	transparency int
	reflectivity int
	tex          *pixel.Texture
	env          *pixel.Texture

	written int // Pixels that passed the z-test since the last Clear
}

// NewRasterizer creates a rasterizer drawing into fb and shading with lm.
func NewRasterizer(fb *Framebuffer, lm *Lightmap, ids bool) *Rasterizer {
	r := &Rasterizer{lightmap: lm}
	r.Bind(fb, ids)
	return r
}

// Bind targets fb, reallocating the depth and id buffers when the size changes.
func (r *Rasterizer) Bind(fb *Framebuffer, ids bool) {
	n := fb.Width * fb.Height
	r.width, r.height = fb.Width, fb.Height
	r.color = fb.Pixels
	if len(r.zbuf) != n {
		r.zbuf = make([]int32, n)
	}
	switch {
	case !ids:
		r.idbuf = nil
	case len(r.idbuf) != n:
		r.idbuf = make([]uint32, n)
	}
	r.Clear()
}

// Width returns the target width.
func (r *Rasterizer) Width() int {
	return r.width
}

// Height returns the target height.
func (r *Rasterizer) Height() int {
	return r.height
}

// SetLightmap replaces the lightmap used for shading.
func (r *Rasterizer) SetLightmap(lm *Lightmap) {
	r.lightmap = lm
}

// Clear resets the z-buffer to ZFar and the id-buffer to NoID.
func (r *Rasterizer) Clear() {
	fillSlice(r.zbuf, ZFar)
	fillSlice(r.idbuf, scene.NoID)
	r.written = 0
}

// fillSlice sets every element of s to v using copy-doubling.
func fillSlice[T any](s []T, v T) {
	if len(s) == 0 {
		return
	}
	s[0] = v
	for i := 1; i < len(s); i *= 2 {
		copy(s[i:], s[:i])
	}
}

// Depth returns the stored device z at (x, y), or ZFar out of bounds.
func (r *Rasterizer) Depth(x, y int) int32 {
	if x < 0 || x >= r.width || y < 0 || y >= r.height {
		return ZFar
	}
	return r.zbuf[y*r.width+x]
}

// ID returns the packed triangle id at (x, y), or NoID when nothing was drawn
// there or id buffering is off.
func (r *Rasterizer) ID(x, y int) uint32 {
	if r.idbuf == nil || x < 0 || x >= r.width || y < 0 || y >= r.height {
		return scene.NoID
	}
	return r.idbuf[y*r.width+x]
}

// Written returns the number of pixels written since the last Clear.
func (r *Rasterizer) Written() int {
	return r.written
}

// Mode returns the shade mode of the loaded material.
func (r *Rasterizer) Mode() ShadeMode {
	return r.mode
}

// LoadMaterial selects the shade variant for m. A nil material disables
// drawing until the next load.
func (r *Rasterizer) LoadMaterial(m *models.Material) {
	if m == nil {
		r.shade = nil
		return
	}
	r.mode = MaterialMode(m)
	r.shade = shaders[(r.mode>>1)&7]
	r.base = m.Color | pixel.Alpha
	r.transparency = int(m.Transparency)
	r.reflectivity = int(m.Reflectivity)
	r.tex = m.Texture
	r.env = m.EnvMap
}

// DrawTriangle rasterizes one triangle with the loaded material. fnx and fny
// are the biased face normal used by flat and wireframe shading; id is written
// to the id-buffer for every pixel that passes the z-test.
func (r *Rasterizer) DrawTriangle(a, b, c *ScreenVertex, fnx, fny int32, id uint32) {
	if r.shade == nil || r.lightmap == nil {
		return
	}
	lut := LUTIndex(int(fnx), int(fny))
	if r.mode == ShadeWireframe {
		r.wire(a, b, c, lut, id, 0)
		return
	}
	r.fill(a, b, c, fnx, fny, id)
	if r.mode&ShadeWireframe != 0 {
		r.wire(a, b, c, lut, id, wireBias)
	}
}

// gradient is an attribute plane in fixed point: the value at the center of
// pixel (x, y) is c + dx*x + dy*y.
type gradient struct {
	c, dx, dy int64
}

func (g gradient) at(x, y int) int64 {
	return g.c + g.dx*int64(x) + g.dy*int64(y)
}

func constGradient(v int64) gradient {
	return gradient{c: v << fixShift}
}

// setup holds the triangle geometry shared by all attribute planes.
type setup struct {
	x0, y0   float64
	e1x, e1y float64
	e2x, e2y float64
	inv      float64
}

func (s *setup) gradient(a0, a1, a2 float64) gradient {
	d1, d2 := a1-a0, a2-a0
	dx := (d1*s.e2y - d2*s.e1y) * s.inv
	dy := (d2*s.e1x - d1*s.e2x) * s.inv
	c := a0 + dx*(0.5-s.x0) + dy*(0.5-s.y0)
	return gradient{c: toFixed(c), dx: toFixed(dx), dy: toFixed(dy)}
}

func toFixed(v float64) int64 {
	return int64(math.Round(v * fixOne))
}

// spanState carries the per-triangle attribute planes into the span loop.
type spanState struct {
	z, nx, ny, tx, ty gradient
	id                uint32
}

// edge is a triangle side walked top to bottom.
type edge struct {
	x0, y0, slope float64
}

func newEdge(a, b *ScreenVertex) edge {
	return edge{x0: a.X, y0: a.Y, slope: (b.X - a.X) / (b.Y - a.Y)}
}

// start returns the fixed-point x at the center of row y and the per-row step.
func (e edge) start(y int) (x, step int64) {
	return toFixed(e.x0 + (float64(y)+0.5-e.y0)*e.slope), toFixed(e.slope)
}

// firstRow returns the first row whose center lies at or below y.
func firstRow(y float64) int {
	return int(math.Ceil(y - 0.5))
}

// firstPixel converts a fixed-point x to the first pixel whose center lies at
// or right of it.
func firstPixel(x int64) int {
	return int((x - fixHalf + fixOne - 1) >> fixShift)
}

func (r *Rasterizer) fill(a, b, c *ScreenVertex, fnx, fny int32, id uint32) {
	if b.Y < a.Y {
		a, b = b, a
	}
	if c.Y < b.Y {
		b, c = c, b
	}
	if b.Y < a.Y {
		a, b = b, a
	}
	if a.Y == c.Y {
		return
	}

	s := setup{
		x0: a.X, y0: a.Y,
		e1x: b.X - a.X, e1y: b.Y - a.Y,
		e2x: c.X - a.X, e2y: c.Y - a.Y,
	}
	den := s.e1x*s.e2y - s.e2x*s.e1y
	if math.Abs(den) < 1e-9 {
		return
	}
	s.inv = 1 / den

	st := spanState{
		z:  s.gradient(float64(a.Z), float64(b.Z), float64(c.Z)),
		tx: s.gradient(float64(a.TX)/fixOne, float64(b.TX)/fixOne, float64(c.TX)/fixOne),
		ty: s.gradient(float64(a.TY)/fixOne, float64(b.TY)/fixOne, float64(c.TY)/fixOne),
		id: id,
	}
	if r.mode&ShadePhong != 0 {
		st.nx = s.gradient(float64(a.NX), float64(b.NX), float64(c.NX))
		st.ny = s.gradient(float64(a.NY), float64(b.NY), float64(c.NY))
	} else {
		st.nx = constGradient(int64(fnx))
		st.ny = constGradient(int64(fny))
	}

	// The middle vertex is right of the long edge when den > 0.
	longLeft := den > 0
	r.scanHalf(a.Y, b.Y, a, c, a, b, longLeft, &st)
	r.scanHalf(b.Y, c.Y, a, c, b, c, longLeft, &st)
}

// scanHalf fills rows whose centers lie in [yTop, yBot) between the long edge
// la→lb and the short edge sa→sb.
func (r *Rasterizer) scanHalf(yTop, yBot float64, la, lb, sa, sb *ScreenVertex, longLeft bool, st *spanState) {
	y0 := max(firstRow(yTop), 0)
	y1 := min(firstRow(yBot), r.height)
	if y0 >= y1 {
		return
	}

	lx, ldx := newEdge(la, lb).start(y0)
	rx, rdx := newEdge(sa, sb).start(y0)
	if !longLeft {
		lx, ldx, rx, rdx = rx, rdx, lx, ldx
	}

	for y := y0; y < y1; y++ {
		xs := max(firstPixel(lx), 0)
		xe := min(firstPixel(rx), r.width)
		if xs < xe {
			r.span(y, xs, xe, st)
		}
		lx += ldx
		rx += rdx
	}
}

// span shades pixels [xs, xe) of row y.
func (r *Rasterizer) span(y, xs, xe int, st *spanState) {
	z := st.z.at(xs, y)
	nx := st.nx.at(xs, y)
	ny := st.ny.at(xs, y)
	tx := st.tx.at(xs, y)
	ty := st.ty.at(xs, y)

	off := y*r.width + xs
	for range xe - xs {
		if d := int32(z >> fixShift); d < r.zbuf[off] {
			r.zbuf[off] = d
			r.color[off] = r.shade(r, r.color[off], int(nx>>fixShift), int(ny>>fixShift), int(tx>>fixShift), int(ty>>fixShift))
			if r.idbuf != nil {
				r.idbuf[off] = st.id
			}
			r.written++
		}
		z += st.z.dx
		nx += st.nx.dx
		ny += st.ny.dx
		tx += st.tx.dx
		ty += st.ty.dx
		off++
	}
}

func clampByte(v int) int {
	return min(max(v, 0), 255)
}

func lutIndex(nx, ny int) int {
	return clampByte(ny)<<8 | clampByte(nx)
}

// compose applies final = (bg blended with base⊗diffuse) + specular.
func (r *Rasterizer) compose(bg, base, spec pixel.Color, lut int) pixel.Color {
	diffuse := pixel.Multiply(base, r.lightmap.Diffuse[lut])
	return pixel.Add(pixel.Transparency(bg, diffuse, r.transparency), pixel.Scale(spec, r.reflectivity))
}

func (r *Rasterizer) envSample(nx, ny int) pixel.Color {
	return r.env.At((clampByte(nx)<<r.env.BitWidth)>>8, (clampByte(ny)<<r.env.BitHeight)>>8)
}

func shadeSolid(r *Rasterizer, bg pixel.Color, nx, ny, _, _ int) pixel.Color {
	lut := lutIndex(nx, ny)
	return r.compose(bg, r.base, r.lightmap.Specular[lut], lut)
}

func shadeEnv(r *Rasterizer, bg pixel.Color, nx, ny, _, _ int) pixel.Color {
	lut := lutIndex(nx, ny)
	spec := pixel.Add(r.lightmap.Specular[lut], r.envSample(nx, ny))
	return r.compose(bg, r.base, spec, lut)
}

func shadeTextured(r *Rasterizer, bg pixel.Color, nx, ny, tx, ty int) pixel.Color {
	lut := lutIndex(nx, ny)
	return r.compose(bg, r.tex.At(tx, ty), r.lightmap.Specular[lut], lut)
}

func shadeEnvTextured(r *Rasterizer, bg pixel.Color, nx, ny, tx, ty int) pixel.Color {
	lut := lutIndex(nx, ny)
	spec := pixel.Add(r.lightmap.Specular[lut], r.envSample(nx, ny))
	return r.compose(bg, r.tex.At(tx, ty), spec, lut)
}
