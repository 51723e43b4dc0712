package render

import "math"

// wireBias pulls edges drawn over their own filled triangle in front of it,
// in device z units.
const wireBias = fixOne >> 8

// wire outlines a triangle in the flat-lit material color, bias device z
// units nearer than the triangle itself.
func (r *Rasterizer) wire(a, b, c *ScreenVertex, lut int, id uint32, bias int64) {
	r.line(a, b, lut, id, bias)
	r.line(b, c, lut, id, bias)
	r.line(c, a, lut, id, bias)
}

// line walks from a to b one pixel at a time along the major axis, stepping
// the minor axis and device z in 16.16 fixed point. The segment is first
// trimmed to the buffer so far off-screen endpoints cost nothing.
func (r *Rasterizer) line(a, b *ScreenVertex, lut int, id uint32, bias int64) {
	t0, t1, ok := clipSegment(a.X, a.Y, b.X, b.Y, float64(r.width), float64(r.height))
	if !ok {
		return
	}
	dx, dy := b.X-a.X, b.Y-a.Y
	dz := float64(b.Z) - float64(a.Z)
	x0, y0 := a.X+dx*t0, a.Y+dy*t0
	z0 := float64(a.Z) + dz*t0
	span := t1 - t0

	n := int(math.Ceil(max(math.Abs(dx), math.Abs(dy)) * span))
	if n == 0 {
		r.plot(int(math.Floor(x0)), int(math.Floor(y0)), int32(max(int64(z0)-bias, 0)), lut, id)
		return
	}
	inv := span / float64(n)
	x, y := toFixed(x0), toFixed(y0)
	sx, sy := toFixed(dx*inv), toFixed(dy*inv)
	z, sz := int64(z0)-bias, int64(dz*inv)
	for range n + 1 {
		r.plot(int(x>>fixShift), int(y>>fixShift), int32(max(z, 0)), lut, id)
		x += sx
		y += sy
		z += sz
	}
}

// clipSegment trims the segment (x0,y0)-(x1,y1) to [0,w]×[0,h] and returns
// the surviving parameter range.
func clipSegment(x0, y0, x1, y1, w, h float64) (t0, t1 float64, ok bool) {
	t0, t1 = 0, 1
	dx, dy := x1-x0, y1-y0
	edges := [4][2]float64{{-dx, x0}, {dx, w - x0}, {-dy, y0}, {dy, h - y0}}
	for _, e := range edges {
		p, q := e[0], e[1]
		if p == 0 {
			if q < 0 {
				return 0, 0, false
			}
			continue
		}
		t := q / p
		if p < 0 {
			t0 = max(t0, t)
		} else {
			t1 = min(t1, t)
		}
		if t0 > t1 {
			return 0, 0, false
		}
	}
	return t0, t1, true
}

func (r *Rasterizer) plot(x, y int, z int32, lut int, id uint32) {
	if x < 0 || x >= r.width || y < 0 || y >= r.height {
		return
	}
	off := y*r.width + x
	if z >= r.zbuf[off] {
		return
	}
	r.zbuf[off] = z
	r.color[off] = r.compose(r.color[off], r.base, r.lightmap.Specular[lut], lut)
	if r.idbuf != nil {
		r.idbuf[off] = id
	}
	r.written++
}
