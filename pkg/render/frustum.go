package render

import "github.com/taigrr/facet/pkg/math3d"

// Plane is the half-space Normal·p + D >= 0 in camera space.
type Plane struct {
	Normal math3d.Vec3
	D      float64
}

// newPlane returns the plane through the origin offset by d, rescaled so
// Distance reports true distances.
func newPlane(n math3d.Vec3, d float64) Plane {
	l := n.Len()
	if l == 0 {
		return Plane{Normal: n, D: d}
	}
	return Plane{Normal: n.Scale(1 / l), D: d / l}
}

// Distance is positive on the visible side of p.
func (p Plane) Distance(v math3d.Vec3) float64 {
	return p.Normal.Dot(v) + p.D
}

// Frustum planes, in the order NewFrustum builds them. There is no far plane.
const (
	FrustumLeft = iota
	FrustumRight
	FrustumBottom
	FrustumTop
	FrustumNear
)

// Frustum is the camera-space volume that projects onto the screen in front
// of the near plane.
type Frustum [5]Plane

// NewFrustum builds the volume seen by a width×height screen with the given
// focal length in pixels.
func NewFrustum(width, height int, focal, near float64) Frustum {
	hw, hh := float64(width)/2, float64(height)/2
	return Frustum{
		FrustumLeft:   newPlane(math3d.V3(focal, 0, -hw), 0),
		FrustumRight:  newPlane(math3d.V3(-focal, 0, -hw), 0),
		FrustumBottom: newPlane(math3d.V3(0, focal, -hh), 0),
		FrustumTop:    newPlane(math3d.V3(0, -focal, -hh), 0),
		FrustumNear:   newPlane(math3d.V3(0, 0, -1), -near),
	}
}

// Visibility is how a bounding box relates to a frustum.
type Visibility int

const (
	Outside Visibility = iota
	Partial
	Inside
)

func (v Visibility) String() string {
	switch v {
	case Outside:
		return "outside"
	case Partial:
		return "partial"
	case Inside:
		return "inside"
	}
	return "unknown"
}

// Classify tests b against every plane. A box is Outside as soon as its
// corner furthest along some plane normal lies behind that plane. It is
// Inside only when its nearest corner clears all of them.
func (f Frustum) Classify(b Bounds) Visibility {
	vis := Inside
	for _, p := range f {
		far, near := b.extremes(p.Normal)
		if p.Distance(far) < 0 {
			return Outside
		}
		if p.Distance(near) < 0 {
			vis = Partial
		}
	}
	return vis
}

// ContainsPoint reports whether v is on the visible side of every plane.
func (f Frustum) ContainsPoint(v math3d.Vec3) bool {
	for _, p := range f {
		if p.Distance(v) < 0 {
			return false
		}
	}
	return true
}

// Bounds is an axis-aligned box.
type Bounds struct {
	Min, Max math3d.Vec3
}

func (b Bounds) Center() math3d.Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// corner picks Min or Max per axis from bits 0, 1 and 2 of i.
func (b Bounds) corner(i int) math3d.Vec3 {
	c := b.Min
	if i&1 != 0 {
		c.X = b.Max.X
	}
	if i&2 != 0 {
		c.Y = b.Max.Y
	}
	if i&4 != 0 {
		c.Z = b.Max.Z
	}
	return c
}

// extremes returns the corners furthest along and against n.
func (b Bounds) extremes(n math3d.Vec3) (far, near math3d.Vec3) {
	i := 0
	if n.X >= 0 {
		i |= 1
	}
	if n.Y >= 0 {
		i |= 2
	}
	if n.Z >= 0 {
		i |= 4
	}
	return b.corner(i), b.corner(^i & 7)
}

// Transform returns the box enclosing all eight corners of b mapped by m.
func (b Bounds) Transform(m math3d.Mat4) Bounds {
	first := b.corner(0).Transform(m)
	out := Bounds{Min: first, Max: first}
	for i := 1; i < 8; i++ {
		c := b.corner(i).Transform(m)
		out.Min, out.Max = out.Min.Min(c), out.Max.Max(c)
	}
	return out
}
