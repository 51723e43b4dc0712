package scene

import (
	"math"

	"github.com/taigrr/facet/pkg/math3d"
)

// DefaultNear is the default near plane distance.
const DefaultNear = 0.1

// Camera looks from a position at a target. It derives a view matrix and a
// translation-free normal matrix, both memoized until the next setter call.
type Camera struct {
	position math3d.Vec3
	target   math3d.Vec3
	roll     float64 // Radians around the view axis
	fov      float64 // Degrees across the shorter screen side
	near     float64
	width    int
	height   int

	// Cached matrices (computed on demand)
	viewMatrix   math3d.Mat4
	normalMatrix math3d.Mat4
	dirty        bool
}

// NewCamera creates a camera at (0,0,5) looking at the origin with a 60° field of view.
func NewCamera() *Camera {
	return &Camera{
		position: math3d.V3(0, 0, 5),
		fov:      60,
		near:     DefaultNear,
		width:    320,
		height:   240,
		dirty:    true,
	}
}

// SetPosition sets the camera position.
func (c *Camera) SetPosition(pos math3d.Vec3) {
	c.position = pos
	c.dirty = true
}

// Position returns the camera position.
func (c *Camera) Position() math3d.Vec3 {
	return c.position
}

// LookAt sets the point the camera looks at.
func (c *Camera) LookAt(target math3d.Vec3) {
	c.target = target
	c.dirty = true
}

// Target returns the look-at point.
func (c *Camera) Target() math3d.Vec3 {
	return c.target
}

// SetRoll sets the rotation around the view axis in radians.
func (c *Camera) SetRoll(roll float64) {
	c.roll = roll
	c.dirty = true
}

// Roll returns the roll angle in radians.
func (c *Camera) Roll() float64 {
	return c.roll
}

// SetFOV sets the field of view in degrees, clamped to (0, 179].
func (c *Camera) SetFOV(degrees float64) {
	c.fov = math.Min(math.Max(degrees, 0.01), 179)
	c.dirty = true
}

// FOV returns the field of view in degrees.
func (c *Camera) FOV() float64 {
	return c.fov
}

// SetNear sets the near plane distance.
func (c *Camera) SetNear(near float64) {
	c.near = math.Max(near, 1e-6)
	c.dirty = true
}

// Near returns the near plane distance.
func (c *Camera) Near() float64 {
	return c.near
}

// SetScreenSize sets the target buffer size in pixels.
func (c *Camera) SetScreenSize(width, height int) {
	if width == c.width && height == c.height {
		return
	}
	c.width, c.height = width, height
	c.dirty = true
}

// ScreenSize returns the target buffer size.
func (c *Camera) ScreenSize() (width, height int) {
	return c.width, c.height
}

// FOVFactor returns tan(fov/2).
func (c *Camera) FOVFactor() float64 {
	return math.Tan(c.fov * math.Pi / 360)
}

// FocalLength returns the screen-space scale at unit depth: a point at
// camera-space (x, y, -d) lands x*FocalLength/d pixels from the center.
func (c *Camera) FocalLength() float64 {
	return float64(min(c.width, c.height)) / 2 / c.FOVFactor()
}

// ViewMatrix returns the world to camera transform.
func (c *Camera) ViewMatrix() math3d.Mat4 {
	if c.dirty {
		c.computeMatrices()
	}
	return c.viewMatrix
}

// NormalMatrix returns the view matrix without translation.
func (c *Camera) NormalMatrix() math3d.Mat4 {
	if c.dirty {
		c.computeMatrices()
	}
	return c.normalMatrix
}

func (c *Camera) computeMatrices() {
	// Roll spins camera space around its own view axis after the look-at.
	c.viewMatrix = math3d.LookAt(c.position, c.target, math3d.Up()).Transform(math3d.RotateZ(-c.roll))
	c.normalMatrix = c.viewMatrix.Linear()
	c.dirty = false
}

// Forward returns the unit view direction in world space.
func (c *Camera) Forward() math3d.Vec3 {
	return c.target.Sub(c.position).Normalize()
}

// MoveForward moves the camera toward its target, keeping the target fixed.
// The camera never passes closer than the near plane.
func (c *Camera) MoveForward(distance float64) {
	d := c.target.Sub(c.position)
	l := d.Len()
	if l == 0 {
		return
	}
	l = math.Max(l-distance, c.near*2)
	c.SetPosition(c.target.Sub(d.Normalize().Scale(l)))
}

// Orbit places the camera on a sphere of radius distance around its target
// at the given yaw and pitch (radians).
func (c *Camera) Orbit(yaw, pitch, distance float64) {
	offset := math3d.V3(
		math.Sin(yaw)*math.Cos(pitch),
		math.Sin(pitch),
		math.Cos(yaw)*math.Cos(pitch),
	).Scale(distance)
	c.SetPosition(c.target.Add(offset))
}

// WorldToScreen projects a world-space point to screen coordinates.
// visible is false when the point lies in front of the near plane.
func (c *Camera) WorldToScreen(p math3d.Vec3) (x, y, depth float64, visible bool) {
	v := c.ViewMatrix().MulVec3(p)
	depth = -v.Z
	if depth < c.near {
		return 0, 0, depth, false
	}
	f := c.FocalLength() / depth
	x = float64(c.width)/2 + v.X*f
	y = float64(c.height)/2 - v.Y*f
	return x, y, depth, true
}
