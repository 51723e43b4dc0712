package scene

import (
	"github.com/taigrr/facet/pkg/math3d"
	"github.com/taigrr/facet/pkg/pixel"
)

// Light is a directional light expressed in view space.
type Light struct {
	Direction math3d.Vec3 // Direction the light travels
	Diffuse   pixel.Color
	Specular  pixel.Color
	Sheen     uint8 // Highlight strength
	Spread    uint8 // Highlight width; larger is wider
}

// NewLight creates a white light travelling along dir with a moderate highlight.
func NewLight(dir math3d.Vec3) Light {
	return Light{
		Direction: dir,
		Diffuse:   pixel.White,
		Specular:  pixel.White,
		Sheen:     255,
		Spread:    32,
	}
}

// ToLight returns the unit vector pointing from a surface toward the light.
func (l Light) ToLight() math3d.Vec3 {
	return l.Direction.Negate().Normalize()
}
