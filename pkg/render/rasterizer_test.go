package render

import (
	"testing"

	"github.com/taigrr/facet/pkg/math3d"
	"github.com/taigrr/facet/pkg/models"
	"github.com/taigrr/facet/pkg/pixel"
	"github.com/taigrr/facet/pkg/scene"
)

// createTestRasterizer returns a rasterizer whose lightmap is plain white
// ambient light with no specular term.
func createTestRasterizer(width, height int, ids bool) (*Rasterizer, *Framebuffer) {
	fb := NewFramebuffer(width, height)
	lm := NewLightmap()
	lm.Rebuild(pixel.White, nil)
	return NewRasterizer(fb, lm, ids), fb
}

// sv builds a screen vertex facing the viewer.
func sv(x, y float64, depth float64) ScreenVertex {
	return ScreenVertex{X: x, Y: y, Z: int32(depth * fixOne), NX: 128, NY: 128}
}

// fullScreen returns a triangle covering every pixel center of an 8x8 buffer.
func fullScreen(depth float64) (a, b, c ScreenVertex) {
	return sv(-1, -1, depth), sv(20, -1, depth), sv(-1, 20, depth)
}

func countColor(fb *Framebuffer, c pixel.Color) int {
	n := 0
	for _, p := range fb.Pixels {
		if p == c {
			n++
		}
	}
	return n
}

func TestMaterialMode(t *testing.T) {
	tex, _ := pixel.NewTexture(2, 2)
	tests := []struct {
		name string
		mat  models.Material
		want ShadeMode
	}{
		{"flat", models.Material{Flat: true}, ShadeFlat},
		{"phong", models.Material{}, ShadePhong},
		{"phong envmap", models.Material{EnvMap: tex}, ShadePhong | ShadeEnvMap},
		{"flat textured", models.Material{Flat: true, Texture: tex}, ShadeTextured},
		{"all", models.Material{EnvMap: tex, Texture: tex, Wireframe: true},
			ShadePhong | ShadeEnvMap | ShadeTextured | ShadeWireframe},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := MaterialMode(&tc.mat); got != tc.want {
				t.Errorf("MaterialMode = %v, want %v", got, tc.want)
			}
		})
	}

	if s := (ShadePhong | ShadeTextured).String(); s != "phong+textured" {
		t.Errorf("String = %q, want phong+textured", s)
	}
}

func TestFillCoverage(t *testing.T) {
	r, fb := createTestRasterizer(10, 10, false)
	r.LoadMaterial(models.NewMaterial(pixel.Red))

	// Right triangle with legs of 8: rows 1..7 cover 7, 6, ..., 1 pixel centers.
	a, b, c := sv(1, 1, 1), sv(9, 1, 1), sv(1, 9, 1)
	r.DrawTriangle(&a, &b, &c, 128, 128, 0)

	if got := r.Written(); got != 28 {
		t.Errorf("pixels written = %d, want 28", got)
	}
	if fb.GetPixel(1, 1) != pixel.Red || fb.GetPixel(7, 1) != pixel.Red {
		t.Error("top row not filled")
	}
	if fb.GetPixel(8, 1) != pixel.Black || fb.GetPixel(0, 5) != pixel.Black {
		t.Error("pixel outside the triangle was filled")
	}
}

func TestSharedEdgeNoOverdraw(t *testing.T) {
	r, _ := createTestRasterizer(8, 8, false)
	r.LoadMaterial(models.NewMaterial(pixel.White))

	// The second triangle is nearer, so a pixel covered by both would be
	// written twice.
	a, b, c := sv(0, 0, 1), sv(8, 0, 1), sv(8, 8, 1)
	r.DrawTriangle(&a, &b, &c, 128, 128, 0)
	d, e, f := sv(0, 0, 0.5), sv(8, 8, 0.5), sv(0, 8, 0.5)
	r.DrawTriangle(&d, &e, &f, 128, 128, 0)

	if got := r.Written(); got != 64 {
		t.Errorf("pixels written = %d, want 64", got)
	}
}

func TestDegenerateTriangles(t *testing.T) {
	tests := []struct {
		name    string
		a, b, c ScreenVertex
	}{
		{"zero height", sv(0, 3, 1), sv(5, 3, 1), sv(7, 3, 1)},
		{"collinear", sv(0, 0, 1), sv(2, 2, 1), sv(4, 4, 1)},
		{"single point", sv(2, 2, 1), sv(2, 2, 1), sv(2, 2, 1)},
		{"between row centers", sv(0, 2.6, 1), sv(6, 2.6, 1), sv(3, 3.4, 1)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r, _ := createTestRasterizer(8, 8, false)
			r.LoadMaterial(models.NewMaterial(pixel.White))
			r.DrawTriangle(&tc.a, &tc.b, &tc.c, 128, 128, 0)
			if r.Written() != 0 {
				t.Errorf("degenerate triangle wrote %d pixels", r.Written())
			}
		})
	}
}

func TestClampsToBuffer(t *testing.T) {
	r, fb := createTestRasterizer(8, 8, false)
	r.LoadMaterial(models.NewMaterial(pixel.Green))
	a, b, c := sv(-500, -500, 1), sv(900, -400, 1), sv(-300, 900, 1)
	r.DrawTriangle(&a, &b, &c, 128, 128, 0)
	if got := countColor(fb, pixel.Green); got != 64 {
		t.Errorf("covered %d pixels, want all 64", got)
	}
}

func TestZTestNearestWins(t *testing.T) {
	near := models.NewMaterial(pixel.Red)
	far := models.NewMaterial(pixel.Blue)

	for _, order := range []string{"far first", "near first"} {
		t.Run(order, func(t *testing.T) {
			r, fb := createTestRasterizer(8, 8, false)
			na, nb, nc := fullScreen(2)
			fa, fb2, fc := fullScreen(5)

			draws := []func(){
				func() { r.LoadMaterial(far); r.DrawTriangle(&fa, &fb2, &fc, 128, 128, 0) },
				func() { r.LoadMaterial(near); r.DrawTriangle(&na, &nb, &nc, 128, 128, 0) },
			}
			if order == "near first" {
				draws[0], draws[1] = draws[1], draws[0]
			}
			for _, d := range draws {
				d()
			}

			if got := countColor(fb, pixel.Red); got != 64 {
				t.Errorf("near color covers %d pixels, want 64", got)
			}
			if z := r.Depth(4, 4); z != int32(2*fixOne) {
				t.Errorf("stored z = %d, want %d", z, 2*fixOne)
			}
		})
	}
}

func TestEqualDepthKeepsFirst(t *testing.T) {
	r, fb := createTestRasterizer(8, 8, false)
	a, b, c := fullScreen(3)
	r.LoadMaterial(models.NewMaterial(pixel.Red))
	r.DrawTriangle(&a, &b, &c, 128, 128, 0)
	r.LoadMaterial(models.NewMaterial(pixel.Blue))
	r.DrawTriangle(&a, &b, &c, 128, 128, 0)
	if fb.GetPixel(3, 3) != pixel.Red {
		t.Error("equal depth overwrote the first triangle; the test is strictly less")
	}
}

func TestIDBuffer(t *testing.T) {
	r, _ := createTestRasterizer(8, 8, true)
	r.LoadMaterial(models.NewMaterial(pixel.White))
	a, b, c := sv(0, 0, 1), sv(8, 0, 1), sv(0, 8, 1)
	id := scene.PackID(3, 7)
	r.DrawTriangle(&a, &b, &c, 128, 128, id)

	if got := r.ID(1, 1); got != id {
		t.Errorf("ID(1,1) = %#x, want %#x", got, id)
	}
	if got := r.ID(7, 7); got != scene.NoID {
		t.Errorf("ID(7,7) = %#x, want NoID", got)
	}

	r.Clear()
	if got := r.ID(1, 1); got != scene.NoID {
		t.Errorf("ID after Clear = %#x, want NoID", got)
	}
	if got := r.Depth(1, 1); got != ZFar {
		t.Errorf("Depth after Clear = %d, want ZFar", got)
	}
}

func TestIDBufferDisabled(t *testing.T) {
	r, _ := createTestRasterizer(8, 8, false)
	r.LoadMaterial(models.NewMaterial(pixel.White))
	a, b, c := fullScreen(1)
	r.DrawTriangle(&a, &b, &c, 128, 128, 42)
	if got := r.ID(2, 2); got != scene.NoID {
		t.Errorf("ID without id-buffer = %#x, want NoID", got)
	}
}

func TestNilMaterialSkipped(t *testing.T) {
	r, _ := createTestRasterizer(8, 8, false)
	r.LoadMaterial(nil)
	a, b, c := fullScreen(1)
	r.DrawTriangle(&a, &b, &c, 128, 128, 0)
	if r.Written() != 0 {
		t.Errorf("nil material wrote %d pixels", r.Written())
	}
}

// litRasterizer shades with one white light travelling along -Z and no ambient.
func litRasterizer(width, height int) (*Rasterizer, *Framebuffer) {
	fb := NewFramebuffer(width, height)
	lm := NewLightmap()
	lm.Rebuild(pixel.Black, []scene.Light{{Direction: math3d.V3(0, 0, -1), Diffuse: pixel.White}})
	return NewRasterizer(fb, lm, false), fb
}

func TestFlatUsesFaceNormal(t *testing.T) {
	// Vertex normals point sideways (unlit); the face normal faces the light.
	tilted := func(x, y float64) ScreenVertex {
		v := sv(x, y, 1)
		v.NX = 255
		return v
	}
	a, b, c := tilted(-1, -1), tilted(20, -1), tilted(-1, 20)

	flat := models.NewMaterial(pixel.White)
	flat.Flat = true
	r, fb := litRasterizer(8, 8)
	r.LoadMaterial(flat)
	r.DrawTriangle(&a, &b, &c, 128, 128, 0)
	if got := fb.GetPixel(4, 4); got != pixel.White {
		t.Errorf("flat pixel = %v, want white", got)
	}

	r, fb = litRasterizer(8, 8)
	r.LoadMaterial(models.NewMaterial(pixel.White))
	r.DrawTriangle(&a, &b, &c, 128, 128, 0)
	if got := fb.GetPixel(4, 4); got.R() > 10 {
		t.Errorf("phong pixel = %v, want nearly black", got)
	}
}

func TestPhongInterpolatesNormals(t *testing.T) {
	r, fb := litRasterizer(16, 1)
	r.LoadMaterial(models.NewMaterial(pixel.White))

	// Normals sweep from facing the light (left) to sideways (right).
	a, b, c := sv(0, -1, 1), sv(16, -1, 1), sv(0, 3, 1)
	b.NX = 255
	r.DrawTriangle(&a, &b, &c, 128, 128, 0)

	left, right := fb.GetPixel(0, 0).R(), fb.GetPixel(8, 0).R()
	if left <= right {
		t.Errorf("left %d should be brighter than right %d", left, right)
	}
}

func TestTexturedSamplesTexels(t *testing.T) {
	tex, _ := pixel.NewTexture(2, 1)
	tex.Set(0, 0, pixel.Red)
	tex.Set(1, 0, pixel.Blue)

	mat := models.NewMaterial(pixel.White)
	mat.Texture = tex

	r, fb := createTestRasterizer(8, 1, false)
	r.LoadMaterial(mat)
	// TX advances a quarter texel per pixel.
	a, b, c := sv(0, -1, 1), sv(16, -1, 1), sv(0, 3, 1)
	b.TX = 4 * fixOne
	r.DrawTriangle(&a, &b, &c, 128, 128, 0)

	if got := fb.GetPixel(1, 0); got != pixel.Red {
		t.Errorf("left texel = %v, want red", got)
	}
	if got := fb.GetPixel(6, 0); got != pixel.Blue {
		t.Errorf("right texel = %v, want blue", got)
	}
}

func TestPhongTexturedMatchesPhongWithWhiteTexture(t *testing.T) {
	white, _ := pixel.NewTexture(4, 4)
	white.Fill(pixel.White)

	plain := models.NewMaterial(pixel.White)
	plain.Reflectivity = 200
	textured := models.NewMaterial(pixel.RGB(17, 99, 3)) // Replaced by texels
	textured.Reflectivity = 200
	textured.Texture = white

	lights := []scene.Light{
		{Direction: math3d.V3(0.3, -0.2, -1), Diffuse: pixel.RGB(180, 160, 140), Specular: pixel.White, Sheen: 200, Spread: 40},
	}

	draw := func(m *models.Material) *Framebuffer {
		fb := NewFramebuffer(12, 12)
		lm := NewLightmap()
		lm.Rebuild(pixel.RGB(20, 20, 20), lights)
		r := NewRasterizer(fb, lm, false)
		r.LoadMaterial(m)
		a, b, c := sv(0, 0, 1), sv(12, 0, 2), sv(0, 12, 3)
		a.NX, a.NY = 90, 140
		b.NX, b.NY = 200, 100
		c.NX, c.NY = 128, 60
		r.DrawTriangle(&a, &b, &c, 128, 128, 0)
		return fb
	}

	want, got := draw(plain), draw(textured)
	for i := range want.Pixels {
		if want.Pixels[i] != got.Pixels[i] {
			t.Fatalf("pixel %d: textured %v, phong %v", i, got.Pixels[i], want.Pixels[i])
		}
	}
}

func TestEnvMapAddsToSpecular(t *testing.T) {
	env, _ := pixel.NewTexture(4, 4)
	env.Fill(pixel.RGB(50, 50, 50))

	mat := models.NewMaterial(pixel.White)
	mat.EnvMap = env
	mat.Reflectivity = 255

	fb := NewFramebuffer(8, 8)
	lm := NewLightmap()
	lm.Rebuild(pixel.RGB(100, 100, 100), nil)
	r := NewRasterizer(fb, lm, false)
	r.LoadMaterial(mat)
	a, b, c := fullScreen(1)
	r.DrawTriangle(&a, &b, &c, 128, 128, 0)

	if got := fb.GetPixel(3, 3); got != pixel.RGB(150, 150, 150) {
		t.Errorf("pixel = %v, want #969696", got)
	}
}

func TestTransparencyBlendsWithBuffer(t *testing.T) {
	r, fb := createTestRasterizer(8, 8, false)
	fb.Clear(pixel.White)

	mat := models.NewMaterial(pixel.Black)
	mat.Transparency = 128
	r.LoadMaterial(mat)
	a, b, c := fullScreen(1)
	r.DrawTriangle(&a, &b, &c, 128, 128, 0)

	got := fb.GetPixel(4, 4)
	if got.R() < 126 || got.R() > 128 {
		t.Errorf("blended pixel = %v, want about half white", got)
	}
}

func TestFlatWireframeDrawsEdgesOnly(t *testing.T) {
	r, fb := createTestRasterizer(16, 16, true)
	mat := models.NewMaterial(pixel.Green)
	mat.Flat = true
	mat.Wireframe = true
	r.LoadMaterial(mat)

	a, b, c := sv(1, 1, 1), sv(14, 1, 1), sv(1, 14, 1)
	r.DrawTriangle(&a, &b, &c, 128, 128, 9)

	for _, p := range [][2]int{{1, 1}, {14, 1}, {1, 14}, {7, 1}, {1, 7}} {
		if fb.GetPixel(p[0], p[1]) != pixel.Green {
			t.Errorf("edge pixel %v not drawn", p)
		}
	}
	if fb.GetPixel(4, 4) != pixel.Black {
		t.Error("wireframe filled the interior")
	}
	if r.ID(7, 1) != 9 {
		t.Errorf("edge id = %d, want 9", r.ID(7, 1))
	}
}

func TestWireframeOverFill(t *testing.T) {
	fb := NewFramebuffer(16, 16)
	lm := NewLightmap()
	lm.Rebuild(pixel.Black, []scene.Light{{Direction: math3d.V3(0, 0, -1), Diffuse: pixel.White}})
	r := NewRasterizer(fb, lm, true)

	mat := models.NewMaterial(pixel.Green)
	mat.Wireframe = true
	r.LoadMaterial(mat)
	if r.Mode() != ShadePhong|ShadeWireframe {
		t.Fatalf("mode = %v, want phong+wireframe", r.Mode())
	}

	// Vertex normals tilt away from the light so the fill is dimmer than the
	// edges, which are lit with the frontal face normal.
	a, b, c := sv(1, 1, 1), sv(14, 1, 1), sv(1, 14, 1)
	a.NX, b.NX, c.NX = 192, 192, 192
	r.DrawTriangle(&a, &b, &c, 128, 128, 9)

	in := fb.GetPixel(4, 4)
	if in.R() != 0 || in.B() != 0 || in.G() < 150 || in.G() >= 255 {
		t.Errorf("interior = %v, want a dimmer green fill", in)
	}
	if r.ID(4, 4) != 9 {
		t.Errorf("interior id = %d, want 9", r.ID(4, 4))
	}
	for _, p := range [][2]int{{7, 1}, {1, 7}, {7, 8}} {
		if got := fb.GetPixel(p[0], p[1]); got != pixel.Green {
			t.Errorf("edge pixel %v = %v, want %v", p, got, pixel.Green)
		}
	}
}

func TestFillDepthFarFromCamera(t *testing.T) {
	r, _ := createTestRasterizer(8, 8, false)
	r.LoadMaterial(models.NewMaterial(pixel.White))
	const depth = 30000.0
	a, b, c := fullScreen(depth)
	r.DrawTriangle(&a, &b, &c, 128, 128, 0)
	if got, want := r.zbuf[3*8+5], int32(depth*fixOne); got != want {
		t.Errorf("z = %d, want %d", got, want)
	}
}

func TestWireframeDepthTest(t *testing.T) {
	r, fb := createTestRasterizer(16, 16, false)
	r.LoadMaterial(models.NewMaterial(pixel.Red))
	fa, fb2, fc := sv(-1, -1, 1), sv(40, -1, 1), sv(-1, 40, 1)
	r.DrawTriangle(&fa, &fb2, &fc, 128, 128, 0)

	mat := models.NewMaterial(pixel.Green)
	mat.Flat = true
	mat.Wireframe = true
	r.LoadMaterial(mat)
	a, b, c := sv(1, 1, 5), sv(14, 1, 5), sv(1, 14, 5)
	r.DrawTriangle(&a, &b, &c, 128, 128, 0)

	if got := countColor(fb, pixel.Green); got != 0 {
		t.Errorf("hidden wireframe drew %d pixels", got)
	}
}

func BenchmarkFillTriangle(b *testing.B) {
	r, _ := createTestRasterizer(320, 240, true)
	r.LoadMaterial(models.NewMaterial(pixel.White))
	v0, v1, v2 := sv(10, 10, 1), sv(300, 40, 2), sv(60, 230, 3)
	v1.NX = 200
	for b.Loop() {
		r.Clear()
		r.DrawTriangle(&v0, &v1, &v2, 128, 128, 0)
	}
}
