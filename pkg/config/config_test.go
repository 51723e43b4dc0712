package config

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/taigrr/facet/pkg/math3d"
	"github.com/taigrr/facet/pkg/pixel"
)

const sample = `
width: 160
height: 120
antialias: true
background: "#101018"
ambient: "#202020"
camera:
  position: [0, 1, 6]
  target: [0, 0, 0]
  fov: 45
  roll: 90
lights:
  key:
    direction: [-0.3, -0.5, -1]
    diffuse: "#ffeedd"
    sheen: 200
    spread: 40
  fill:
    direction: [1, 0, 0]
meshes:
  cube:
    source: box
    size: 2
    rotate: [0, 90, 0]
    translate: [1, 0, 0]
    material:
      color: "#ff8040"
      reflectivity: 128
      flat: true
  ghost:
    source: box
    hidden: true
`

func TestParse(t *testing.T) {
	f, err := Parse([]byte(sample))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if f.Width != 160 || f.Height != 120 || !f.Antialias {
		t.Errorf("output = %dx%d aa=%v", f.Width, f.Height, f.Antialias)
	}
	if *f.Camera.Position != (Vec3{0, 1, 6}) || f.Camera.FOV != 45 {
		t.Errorf("camera = %+v", f.Camera)
	}
	if len(f.Lights) != 2 || *f.Lights["key"].Sheen != 200 || f.Lights["fill"].Sheen != nil {
		t.Errorf("lights = %+v", f.Lights)
	}
	if got := f.Meshes["ghost"]; got.Size != 1 || got.Scale != 1 || !got.Hidden {
		t.Errorf("ghost defaults = %+v", got)
	}
}

func TestParseDefaults(t *testing.T) {
	f, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse(empty): %v", err)
	}
	if f.Width != DefaultWidth || f.Height != DefaultHeight || f.Camera.FOV != DefaultFOV {
		t.Errorf("defaults = %dx%d fov %v", f.Width, f.Height, f.Camera.FOV)
	}
	if f.Camera.Position == nil || *f.Camera.Position != (Vec3{0, 0, 5}) {
		t.Errorf("default camera position = %v", f.Camera.Position)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		invalid bool
	}{
		{"unknown key", "colour: red\n", false},
		{"bad yaml", "width: [\n", false},
		{"no source", "meshes:\n  a: {size: 1}\n", true},
		{"bad source", "meshes:\n  a: {source: model.obj}\n", true},
		{"negative size", "meshes:\n  a: {source: box, size: -1}\n", true},
		{"light without direction", "lights:\n  a: {diffuse: '#ffffff'}\n", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.yaml))
			if err == nil {
				t.Fatal("expected an error")
			}
			if got := errors.Is(err, ErrInvalid); got != tc.invalid {
				t.Errorf("errors.Is(err, ErrInvalid) = %v, want %v (%v)", got, tc.invalid, err)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.yaml")
	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err != nil {
		t.Fatalf("Load: %v", err)
	}

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Load(missing) = %v, want fs.ErrNotExist", err)
	}
}

func TestBuild(t *testing.T) {
	f, err := Parse([]byte(sample))
	if err != nil {
		t.Fatal(err)
	}
	s, err := f.Build(".", nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if s.Background != pixel.RGB(0x10, 0x10, 0x18) || s.Ambient() != pixel.RGB(0x20, 0x20, 0x20) {
		t.Errorf("background %v ambient %v", s.Background, s.Ambient())
	}
	if w, h := s.Camera.ScreenSize(); w != 160 || h != 120 {
		t.Errorf("camera screen = %dx%d", w, h)
	}
	if !s.Camera.Position().ApproxEqual(math3d.V3(0, 1, 6), 1e-12) || s.Camera.FOV() != 45 {
		t.Errorf("camera at %v fov %v", s.Camera.Position(), s.Camera.FOV())
	}

	key, ok := s.Light("key")
	if !ok || key.Diffuse != pixel.RGB(0xff, 0xee, 0xdd) || key.Sheen != 200 || key.Spread != 40 {
		t.Errorf("key light = %+v", key)
	}
	fill, _ := s.Light("fill")
	if fill.Diffuse != pixel.White || fill.Spread != 32 {
		t.Errorf("fill light = %+v, want scene defaults", fill)
	}

	cube, ok := s.Mesh("cube")
	if !ok {
		t.Fatal("cube missing")
	}
	if cube.Material.Color != pixel.RGB(0xff, 0x80, 0x40) || !cube.Material.Flat || cube.Material.Reflectivity != 128 {
		t.Errorf("cube material = %+v", cube.Material)
	}
	// Rotated a quarter turn about Y, then moved +1 on X: local +X ends at world -Z.
	got := cube.Matrix.MulVec3(math3d.V3(1, 0, 0))
	if !got.ApproxEqual(math3d.V3(1, 0, -1), 1e-9) {
		t.Errorf("cube transform maps +X to %v, want (1,0,-1)", got)
	}

	ghost, _ := s.Mesh("ghost")
	if ghost.Visible {
		t.Error("hidden mesh is visible")
	}
	if err := s.Rebuild(); err != nil {
		t.Errorf("scene Rebuild: %v", err)
	}
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"background", "background: nope\n", "background"},
		{"ambient", "ambient: '#12'\n", "ambient"},
		{"light color", "lights:\n  k: {direction: [0, 0, -1], specular: zz}\n", `light "k"`},
		{"material color", "meshes:\n  m: {source: box, material: {color: red}}\n", `mesh "m"`},
		{"missing model", "meshes:\n  m: {source: nowhere.glb}\n", `mesh "m"`},
		{"missing texture", "meshes:\n  m: {source: box, material: {texture: nowhere.png}}\n", "texture"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f, err := Parse([]byte(tc.yaml))
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			_, err = f.Build(t.TempDir(), nil)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Errorf("Build error = %v, want mention of %q", err, tc.want)
			}
		})
	}
}

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	out, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer out.Close()
	if err := png.Encode(out, img); err != nil {
		t.Fatal(err)
	}
}

func TestBuildTextures(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "wood.png"), 8, 8)
	writePNG(t, filepath.Join(dir, "sky.png"), 6, 3)

	f, err := Parse([]byte(`
background_texture: sky.png
meshes:
  crate:
    source: box
    material:
      texture: wood.png
      env_map: sky.png
`))
	if err != nil {
		t.Fatal(err)
	}
	s, err := f.Build(dir, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	crate, _ := s.Mesh("crate")
	if tex := crate.Material.Texture; tex == nil || tex.Width != 8 || tex.At(0, 0) != pixel.Red {
		t.Errorf("texture = %+v", tex)
	}
	// 6x3 resamples to a power-of-two size.
	if env := crate.Material.EnvMap; env == nil || env.Width&(env.Width-1) != 0 || env.Height&(env.Height-1) != 0 {
		t.Errorf("env map not power of two: %+v", env)
	}
	if s.BackgroundTexture == nil {
		t.Error("background texture not loaded")
	}

	want := []string{filepath.Join(dir, "sky.png"), filepath.Join(dir, "wood.png")}
	got := f.Assets(dir)
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("Assets = %v, want %v", got, want)
	}
}

func TestFitGroup(t *testing.T) {
	f, err := Parse([]byte("meshes:\n  big: {source: box, size: 10, fit: true}\n"))
	if err != nil {
		t.Fatal(err)
	}
	s, err := f.Build(".", nil)
	if err != nil {
		t.Fatal(err)
	}
	big, _ := s.Mesh("big")
	if err := big.Rebuild(); err != nil {
		t.Fatal(err)
	}
	if size := big.Size(); !size.ApproxEqual(math3d.V3(2, 2, 2), 1e-9) {
		t.Errorf("fitted size = %v, want 2x2x2", size)
	}
}

func TestDefault(t *testing.T) {
	s, err := Default().Build(".", nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if s.MeshCount() != 1 || len(s.Lights()) != 1 {
		t.Errorf("default scene has %d meshes and %d lights", s.MeshCount(), len(s.Lights()))
	}
}
