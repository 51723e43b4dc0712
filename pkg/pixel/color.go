// Package pixel provides packed 24-bit colors and power-of-two textures.
package pixel

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Color is a packed 0xAARRGGBB value. Rendered colors always carry full alpha.
type Color uint32

// Alpha is the full-alpha byte in packed position.
const Alpha Color = 0xFF000000

// Common colors.
const (
	Black Color = 0xFF000000
	White Color = 0xFFFFFFFF
	Red   Color = 0xFFFF0000
	Green Color = 0xFF00FF00
	Blue  Color = 0xFF0000FF
)

// RGB creates an opaque color.
func RGB(r, g, b uint8) Color {
	return Alpha | Color(r)<<16 | Color(g)<<8 | Color(b)
}

// R returns the red channel.
func (c Color) R() uint8 { return uint8(c >> 16) }

// G returns the green channel.
func (c Color) G() uint8 { return uint8(c >> 8) }

// B returns the blue channel.
func (c Color) B() uint8 { return uint8(c) }

// RGBA converts c to a standard library color.
func (c Color) RGBA() color.RGBA {
	return color.RGBA{R: c.R(), G: c.G(), B: c.B(), A: 0xFF}
}

// String formats c as #rrggbb.
func (c Color) String() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R(), c.G(), c.B())
}

// FromColor converts any color.Color, dropping alpha.
func FromColor(c color.Color) Color {
	r, g, b, _ := c.RGBA()
	return RGB(uint8(r>>8), uint8(g>>8), uint8(b>>8))
}

// ParseHex parses "#rrggbb" or "rrggbb".
func ParseHex(s string) (Color, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return 0, fmt.Errorf("pixel: invalid color %q", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("pixel: invalid color %q: %w", s, err)
	}
	return Alpha | Color(v), nil
}

// Scale multiplies every channel by f/255. f is clamped to [0,255].
func Scale(c Color, f int) Color {
	f = clamp(f)
	r := int(c.R()) * f / 255
	g := int(c.G()) * f / 255
	b := int(c.B()) * f / 255
	return Alpha | Color(r)<<16 | Color(g)<<8 | Color(b)
}

// Multiply modulates a by b channel-wise.
func Multiply(a, b Color) Color {
	r := int(a.R()) * int(b.R()) / 255
	g := int(a.G()) * int(b.G()) / 255
	bl := int(a.B()) * int(b.B()) / 255
	return Alpha | Color(r)<<16 | Color(g)<<8 | Color(bl)
}

// Add sums a and b channel-wise, saturating at 255.
func Add(a, b Color) Color {
	r := min(int(a.R())+int(b.R()), 255)
	g := min(int(a.G())+int(b.G()), 255)
	bl := min(int(a.B())+int(b.B()), 255)
	return Alpha | Color(r)<<16 | Color(g)<<8 | Color(bl)
}

// Sub subtracts b from a channel-wise, saturating at 0.
func Sub(a, b Color) Color {
	r := max(int(a.R())-int(b.R()), 0)
	g := max(int(a.G())-int(b.G()), 0)
	bl := max(int(a.B())-int(b.B()), 0)
	return Alpha | Color(r)<<16 | Color(g)<<8 | Color(bl)
}

// Transparency blends fg over bg. t=0 yields fg, t=255 yields bg.
func Transparency(bg, fg Color, t int) Color {
	t = clamp(t)
	if t == 0 {
		return fg | Alpha
	}
	o := 255 - t
	r := (int(fg.R())*o + int(bg.R())*t) / 255
	g := (int(fg.G())*o + int(bg.G())*t) / 255
	b := (int(fg.B())*o + int(bg.B())*t) / 255
	return Alpha | Color(r)<<16 | Color(g)<<8 | Color(b)
}

// Average4 returns the channel-wise mean of four colors.
func Average4(a, b, c, d Color) Color {
	r := (int(a.R()) + int(b.R()) + int(c.R()) + int(d.R())) >> 2
	g := (int(a.G()) + int(b.G()) + int(c.G()) + int(d.G())) >> 2
	bl := (int(a.B()) + int(b.B()) + int(c.B()) + int(d.B())) >> 2
	return Alpha | Color(r)<<16 | Color(g)<<8 | Color(bl)
}

// Sum is an unclamped channel accumulator used when adding many light terms.
type Sum struct {
	R, G, B int
}

// AddScaled accumulates c scaled by f in [0,1].
func (s *Sum) AddScaled(c Color, f float32) {
	s.R += int(float32(c.R())*f + 0.5)
	s.G += int(float32(c.G())*f + 0.5)
	s.B += int(float32(c.B())*f + 0.5)
}

// Color clamps the accumulator to [0,255] per channel.
func (s Sum) Color() Color {
	return RGB(uint8(clamp(s.R)), uint8(clamp(s.G)), uint8(clamp(s.B)))
}

func clamp(v int) int {
	return min(max(v, 0), 255)
}
