package math3d

import (
	"math"
	"testing"
)

func TestVec3Arithmetic(t *testing.T) {
	a, b := V3(1, 2, 3), V3(4, 5, 6)
	tests := []struct {
		name string
		got  Vec3
		want Vec3
	}{
		{"add", a.Add(b), V3(5, 7, 9)},
		{"sub", b.Sub(a), V3(3, 3, 3)},
		{"mul", a.Mul(b), V3(4, 10, 18)},
		{"scale", a.Scale(2), V3(2, 4, 6)},
		{"negate", a.Negate(), V3(-1, -2, -3)},
		{"cross", V3(1, 0, 0).Cross(V3(0, 1, 0)), V3(0, 0, 1)},
		{"min", V3(1, 5, -2).Min(V3(3, 0, -1)), V3(1, 0, -2)},
		{"max", V3(1, 5, -2).Max(V3(3, 0, -1)), V3(3, 5, -1)},
	}
	for _, tc := range tests {
		if tc.got != tc.want {
			t.Errorf("%s = %v, want %v", tc.name, tc.got, tc.want)
		}
	}
	if got := a.Dot(b); got != 32 {
		t.Errorf("Dot = %v, want 32", got)
	}
}

func TestVec3Normalize(t *testing.T) {
	n := V3(3, 4, 0).Normalize()
	if math.Abs(n.Len()-1) > eps {
		t.Errorf("Len = %v, want 1", n.Len())
	}
	if got := Zero3().Normalize(); got != Zero3() {
		t.Errorf("zero Normalize = %v, want zero", got)
	}
}

func TestVec3Transform(t *testing.T) {
	m := RotateZ(math.Pi / 2).Transform(Translate(V3(0, 0, -2)))
	if got := V3(1, 0, 0).Transform(m); !got.ApproxEqual(V3(0, 1, -2), eps) {
		t.Errorf("Transform = %v, want (0,1,-2)", got)
	}
	if got := V3(1, 0, 0).TransformDir(m); !got.ApproxEqual(V3(0, 1, 0), eps) {
		t.Errorf("TransformDir = %v, want (0,1,0)", got)
	}
}
