package pixel

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"math/bits"
	"os"

	_ "golang.org/x/image/bmp" // Register BMP decoder
	"golang.org/x/image/draw"
)

// ErrNotPowerOfTwo is returned when a texture dimension is not a power of two.
var ErrNotPowerOfTwo = errors.New("pixel: texture size must be a power of two")

// MaxTextureSize bounds the power-of-two size chosen when resampling images.
const MaxTextureSize = 1024

// Texture is a row-major power-of-two pixel buffer addressed with masks.
type Texture struct {
	Width     int
	Height    int
	BitWidth  uint // log2(Width)
	BitHeight uint // log2(Height)
	Pixels    []Color
}

// NewTexture creates a black texture. Both dimensions must be powers of two.
func NewTexture(width, height int) (*Texture, error) {
	if !isPowerOfTwo(width) || !isPowerOfTwo(height) {
		return nil, fmt.Errorf("%w: %dx%d", ErrNotPowerOfTwo, width, height)
	}
	t := &Texture{
		Width:     width,
		Height:    height,
		BitWidth:  uint(bits.TrailingZeros(uint(width))),
		BitHeight: uint(bits.TrailingZeros(uint(height))),
		Pixels:    make([]Color, width*height),
	}
	for i := range t.Pixels {
		t.Pixels[i] = Black
	}
	return t, nil
}

// Load decodes an image file into a texture, resampling to power-of-two size.
func Load(path string) (*Texture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open texture: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode texture %s: %w", path, err)
	}
	return FromImage(img), nil
}

// FromImage converts an image into a texture. Images whose sides are not
// powers of two are resampled to the nearest power of two with Catmull-Rom.
func FromImage(img image.Image) *Texture {
	b := img.Bounds()
	w, h := nearestPowerOfTwo(b.Dx()), nearestPowerOfTwo(b.Dy())

	src := img
	if w != b.Dx() || h != b.Dy() {
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
		src = dst
	}

	// Dimensions are powers of two by construction.
	t, _ := NewTexture(w, h)
	sb := src.Bounds()
	for y := range h {
		for x := range w {
			t.Pixels[y*w+x] = FromColor(src.At(sb.Min.X+x, sb.Min.Y+y))
		}
	}
	return t
}

// NewChecker creates a size×size checkerboard with cells of cell pixels.
func NewChecker(size, cell int, a, b Color) (*Texture, error) {
	t, err := NewTexture(size, size)
	if err != nil {
		return nil, err
	}
	cell = max(cell, 1)
	for y := range size {
		for x := range size {
			if (x/cell+y/cell)%2 == 0 {
				t.Pixels[y*size+x] = a
			} else {
				t.Pixels[y*size+x] = b
			}
		}
	}
	return t, nil
}

// Fill sets every pixel to c.
func (t *Texture) Fill(c Color) {
	for i := range t.Pixels {
		t.Pixels[i] = c
	}
}

// At returns the texel at integer coordinates, wrapping with the size masks.
func (t *Texture) At(x, y int) Color {
	x &= t.Width - 1
	y &= t.Height - 1
	return t.Pixels[y<<t.BitWidth|x]
}

// Set writes a texel, wrapping like At.
func (t *Texture) Set(x, y int, c Color) {
	x &= t.Width - 1
	y &= t.Height - 1
	t.Pixels[y<<t.BitWidth|x] = c
}

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// nearestPowerOfTwo rounds n to the closest power of two in [1, MaxTextureSize].
func nearestPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	lo := 1 << (bits.Len(uint(n)) - 1)
	hi := lo << 1
	p := lo
	if hi-n < n-lo {
		p = hi
	}
	return min(p, MaxTextureSize)
}
