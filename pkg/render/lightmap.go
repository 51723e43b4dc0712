package render

import (
	"math"

	"github.com/chewxy/math32"
	"github.com/taigrr/facet/pkg/math3d"
	"github.com/taigrr/facet/pkg/pixel"
	"github.com/taigrr/facet/pkg/scene"
)

// LightmapSize is the side of the square lightmap tables.
const LightmapSize = 256

// Lightmap holds diffuse and specular colors for every quantized normal.
// Tables are indexed by LUTIndex(nx, ny).
type Lightmap struct {
	Diffuse  []pixel.Color
	Specular []pixel.Color

	// Unit hemisphere normal for every cell.
	sphere [][3]float32
}

// NewLightmap creates a lightmap lit only by black ambient light.
func NewLightmap() *Lightmap {
	const n = LightmapSize * LightmapSize
	lm := &Lightmap{
		Diffuse:  make([]pixel.Color, n),
		Specular: make([]pixel.Color, n),
		sphere:   make([][3]float32, n),
	}
	for ny := range LightmapSize {
		for nx := range LightmapSize {
			x := float32(nx-128) / 127
			y := float32(ny-128) / 127
			d := x*x + y*y
			z := math32.Sqrt(math32.Max(0, 1-d))
			if d > 1 {
				l := math32.Sqrt(d)
				x, y = x/l, y/l
			}
			lm.sphere[LUTIndex(nx, ny)] = [3]float32{x, y, z}
		}
	}
	lm.Rebuild(pixel.Black, nil)
	return lm
}

// LUTIndex returns the table index for biased normal components in 0..255.
func LUTIndex(nx, ny int) int {
	return ny<<8 | nx
}

// BiasNormal quantizes the x and y of a unit normal into 0..255.
func BiasNormal(n math3d.Vec3) (nx, ny int32) {
	return biasComponent(n.X), biasComponent(n.Y)
}

func biasComponent(v float64) int32 {
	b := int32(math.Round(v*127)) + 128
	return min(max(b, 0), 255)
}

// Rebuild recomputes both tables from an ambient color and view-space lights.
// diffuse = ambient + Σ diffuse·cos, specular = Σ specular·sheen·cos^(255/spread),
// each channel clamped to 0..255.
func (lm *Lightmap) Rebuild(ambient pixel.Color, lights []scene.Light) {
	type prepared struct {
		dir      [3]float32
		diffuse  pixel.Color
		specular pixel.Color
		sheen    float32
		exponent float32
	}
	ls := make([]prepared, len(lights))
	for i, l := range lights {
		d := l.ToLight()
		ls[i] = prepared{
			dir:      [3]float32{float32(d.X), float32(d.Y), float32(d.Z)},
			diffuse:  l.Diffuse,
			specular: l.Specular,
			sheen:    float32(l.Sheen) / 255,
			exponent: 255 / float32(max(l.Spread, 1)),
		}
	}

	for i, n := range lm.sphere {
		diffuse := pixel.Sum{}
		diffuse.AddScaled(ambient, 1)
		specular := pixel.Sum{}
		for _, l := range ls {
			cos := n[0]*l.dir[0] + n[1]*l.dir[1] + n[2]*l.dir[2]
			if cos <= 0 {
				continue
			}
			diffuse.AddScaled(l.diffuse, cos)
			if l.sheen > 0 {
				specular.AddScaled(l.specular, l.sheen*math32.Pow(cos, l.exponent))
			}
		}
		lm.Diffuse[i] = diffuse.Color()
		lm.Specular[i] = specular.Color()
	}
}

// Shade returns the diffuse and specular colors for a view-space normal.
func (lm *Lightmap) Shade(n math3d.Vec3) (diffuse, specular pixel.Color) {
	nx, ny := BiasNormal(n)
	i := LUTIndex(int(nx), int(ny))
	return lm.Diffuse[i], lm.Specular[i]
}
