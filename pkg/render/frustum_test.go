package render

import (
	"math"
	"testing"

	"github.com/taigrr/facet/pkg/math3d"
)

func box(x0, y0, z0, x1, y1, z1 float64) Bounds {
	return Bounds{Min: math3d.V3(x0, y0, z0), Max: math3d.V3(x1, y1, z1)}
}

func TestNewPlaneRescales(t *testing.T) {
	p := newPlane(math3d.V3(0, 3, 4), 10)
	if !p.Normal.ApproxEqual(math3d.V3(0, 0.6, 0.8), 1e-9) || math.Abs(p.D-2) > 1e-9 {
		t.Fatalf("plane = %+v, want normal (0,0.6,0.8) and D 2", p)
	}
	if d := p.Distance(math3d.V3(7, 0, 5)); math.Abs(d-6) > 1e-9 {
		t.Errorf("Distance = %v, want 6", d)
	}
	if d := p.Distance(math3d.V3(0, 0, -10)); d >= 0 {
		t.Errorf("point behind plane has distance %v", d)
	}
}

func TestBoundsTransform(t *testing.T) {
	unit := box(-1, -1, -1, 1, 1, 1)

	moved := unit.Transform(math3d.Translate(math3d.V3(10, 20, 30)))
	if moved != box(9, 19, 29, 11, 21, 31) {
		t.Errorf("translated = %+v", moved)
	}

	spun := unit.Transform(math3d.RotateY(math.Pi / 4))
	if math.Abs(spun.Max.X-math.Sqrt2) > 1e-9 || math.Abs(spun.Min.Z+math.Sqrt2) > 1e-9 {
		t.Errorf("rotated = %+v, want ±√2 in X and Z", spun)
	}
	if c := spun.Center(); !c.ApproxEqual(math3d.Zero3(), 1e-9) {
		t.Errorf("center = %v, want origin", c)
	}
}

// testFrustum is a 100x100 screen with a 90° field of view.
func testFrustum() Frustum {
	return NewFrustum(100, 100, 50, 0.1)
}

func TestFrustumContainsPoint(t *testing.T) {
	f := testFrustum()
	tests := []struct {
		name  string
		point math3d.Vec3
		want  bool
	}{
		{"straight ahead", math3d.V3(0, 0, -5), true},
		{"near corner", math3d.V3(4.9, 4.9, -5), true},
		{"past right edge", math3d.V3(5.1, 0, -5), false},
		{"past left edge", math3d.V3(-5.1, 0, -5), false},
		{"past top edge", math3d.V3(0, 5.1, -5), false},
		{"past bottom edge", math3d.V3(0, -5.1, -5), false},
		{"behind camera", math3d.V3(0, 0, 5), false},
		{"closer than near", math3d.V3(0, 0, -0.05), false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := f.ContainsPoint(tc.point); got != tc.want {
				t.Errorf("ContainsPoint(%v) = %v, want %v", tc.point, got, tc.want)
			}
		})
	}
}

func TestFrustumClassify(t *testing.T) {
	f := testFrustum()
	tests := []struct {
		name string
		b    Bounds
		want Visibility
	}{
		{"ahead", box(-1, -1, -6, 1, 1, -4), Inside},
		{"behind", box(-1, -1, 4, 1, 1, 6), Outside},
		{"far right", box(20, -1, -6, 22, 1, -4), Outside},
		{"straddles left edge", box(-6, -1, -5, -4, 1, -5), Partial},
		{"around the camera", box(-1, -1, -1, 1, 1, 1), Partial},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := f.Classify(tc.b); got != tc.want {
				t.Errorf("Classify = %v, want %v", got, tc.want)
			}
		})
	}
}

func BenchmarkFrustumClassify(b *testing.B) {
	f := testFrustum()
	bb := box(-1, -1, -15, 1, 1, -5)
	for b.Loop() {
		_ = f.Classify(bb)
	}
}

func BenchmarkBoundsTransform(b *testing.B) {
	bb := box(-1, -1, -1, 1, 1, 1)
	m := math3d.ScaleUniform(2).Transform(math3d.RotateY(0.5)).Transform(math3d.Translate(math3d.V3(10, 5, -20)))
	for b.Loop() {
		_ = bb.Transform(m)
	}
}
