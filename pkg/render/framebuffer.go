// Package render implements the facet software rendering pipeline: projection,
// clipping, depth sorting, scanline rasterization and lightmap shading.
package render

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/taigrr/facet/pkg/pixel"
	"golang.org/x/image/bmp"
)

// Framebuffer is a row-major buffer of packed colors.
type Framebuffer struct {
	Width  int
	Height int
	Pixels []pixel.Color
}

// NewFramebuffer creates a black framebuffer with the given dimensions.
func NewFramebuffer(width, height int) *Framebuffer {
	width, height = max(width, 1), max(height, 1)
	fb := &Framebuffer{
		Width:  width,
		Height: height,
		Pixels: make([]pixel.Color, width*height),
	}
	fb.Clear(pixel.Black)
	return fb
}

// Clear fills the framebuffer with a solid color.
func (fb *Framebuffer) Clear(c pixel.Color) {
	c |= pixel.Alpha
	for i := range fb.Pixels {
		fb.Pixels[i] = c
	}
}

// SetPixel sets a pixel at (x, y). Out of bounds writes are ignored.
func (fb *Framebuffer) SetPixel(x, y int, c pixel.Color) {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return
	}
	fb.Pixels[y*fb.Width+x] = c
}

// GetPixel returns the color at (x, y), or black when out of bounds.
func (fb *Framebuffer) GetPixel(x, y int) pixel.Color {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return pixel.Black
	}
	return fb.Pixels[y*fb.Width+x]
}

// Blit stretches a texture over the whole framebuffer with nearest sampling.
func (fb *Framebuffer) Blit(tex *pixel.Texture) {
	for y := range fb.Height {
		ty := y * tex.Height / fb.Height
		row := fb.Pixels[y*fb.Width : (y+1)*fb.Width]
		for x := range row {
			row[x] = tex.At(x*tex.Width/fb.Width, ty)
		}
	}
}

// Downsample box-filters src, which must be exactly twice fb's size, into fb.
func (fb *Framebuffer) Downsample(src *Framebuffer) {
	sw := src.Width
	for y := range fb.Height {
		top := src.Pixels[2*y*sw:]
		bot := src.Pixels[(2*y+1)*sw:]
		for x := range fb.Width {
			fb.Pixels[y*fb.Width+x] = pixel.Average4(top[2*x], top[2*x+1], bot[2*x], bot[2*x+1])
		}
	}
}

// ToImage converts the framebuffer to a standard Go image.RGBA.
func (fb *Framebuffer) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	for y := range fb.Height {
		for x := range fb.Width {
			img.SetRGBA(x, y, fb.Pixels[y*fb.Width+x].RGBA())
		}
	}
	return img
}

type encoder func(io.Writer, image.Image) error

// SavePNG saves the framebuffer as a PNG file.
func (fb *Framebuffer) SavePNG(path string) error {
	return fb.saveAs(path, png.Encode)
}

// SaveBMP saves the framebuffer as a BMP file.
func (fb *Framebuffer) SaveBMP(path string) error {
	return fb.saveAs(path, bmp.Encode)
}

func (fb *Framebuffer) saveAs(path string, enc encoder) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	return fb.encodeTo(f, enc)
}

// encodeTo encodes fb into w and closes it. A Close error is returned only
// when encoding succeeded.
func (fb *Framebuffer) encodeTo(w io.WriteCloser, enc encoder) error {
	err := enc(w, fb.ToImage())
	if cerr := w.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("close image: %w", cerr)
	}
	return err
}

// Save writes the framebuffer in the format named by the path's extension.
func (fb *Framebuffer) Save(path string) error {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".png":
		return fb.SavePNG(path)
	case ".bmp":
		return fb.SaveBMP(path)
	default:
		return fmt.Errorf("unsupported image format %q (use .png or .bmp)", ext)
	}
}
