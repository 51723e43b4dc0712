package models

import "github.com/taigrr/facet/pkg/pixel"

// Material describes how the rasterizer shades a mesh.
type Material struct {
	Name         string
	Color        pixel.Color
	Transparency uint8 // 0 opaque, 255 fully transparent
	Reflectivity uint8 // Scales the specular term
	Flat         bool  // Light with the face normal instead of interpolated vertex normals
	Wireframe    bool  // Draw edges instead of filling

	Texture *pixel.Texture // Optional power-of-two base color texture
	EnvMap  *pixel.Texture // Optional environment map indexed by normal
}

// NewMaterial creates an opaque material with the given color.
func NewMaterial(c pixel.Color) *Material {
	return &Material{Color: c}
}

// Invisible reports whether the material contributes nothing: fully
// transparent with no reflection.
func (m *Material) Invisible() bool {
	return m.Transparency == 255 && m.Reflectivity == 0
}

// Transparent reports whether triangles using m blend with the background.
func (m *Material) Transparent() bool {
	return m.Transparency > 0
}
