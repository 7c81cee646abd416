package render

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/vector"
)

// kappa places cubic control points so four curves approximate a circle
const kappa = 0.5522847498

// canvas rasterizes anti-aliased paths into a coverage mask and composites
// a source image through it onto dst
type canvas struct {
	dst  *image.RGBA
	rast *vector.Rasterizer
	buf  []uint8
}

func newCanvas(dst *image.RGBA) *canvas {
	return &canvas{dst: dst, rast: vector.NewRasterizer(1, 1)}
}

// path is drawn with coordinates relative to the mask origin
type path func(z *vector.Rasterizer, ox, oy float32)

// fill rasterizes p over the given float bounding box and composites src
// through it. Shapes entirely outside dst are skipped.
func (c *canvas) fill(minX, minY, maxX, maxY float64, src image.Image, p path) {
	box := image.Rect(
		int(math.Floor(minX))-1, int(math.Floor(minY))-1,
		int(math.Ceil(maxX))+1, int(math.Ceil(maxY))+1,
	).Intersect(c.dst.Bounds())
	if box.Empty() {
		return
	}

	w, h := box.Dx(), box.Dy()
	if cap(c.buf) < w*h {
		c.buf = make([]uint8, w*h)
	}
	mask := &image.Alpha{Pix: c.buf[:w*h], Stride: w, Rect: image.Rect(0, 0, w, h)}

	c.rast.Reset(w, h)
	c.rast.DrawOp = draw.Src
	p(c.rast, float32(box.Min.X), float32(box.Min.Y))
	c.rast.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})

	draw.DrawMask(c.dst, box, src, box.Min, mask, image.Point{}, draw.Over)
}

func circlePath(z *vector.Rasterizer, cx, cy, r float32, reverse bool) {
	k := r * kappa
	if !reverse {
		z.MoveTo(cx+r, cy)
		z.CubeTo(cx+r, cy+k, cx+k, cy+r, cx, cy+r)
		z.CubeTo(cx-k, cy+r, cx-r, cy+k, cx-r, cy)
		z.CubeTo(cx-r, cy-k, cx-k, cy-r, cx, cy-r)
		z.CubeTo(cx+k, cy-r, cx+r, cy-k, cx+r, cy)
	} else {
		z.MoveTo(cx+r, cy)
		z.CubeTo(cx+r, cy-k, cx+k, cy-r, cx, cy-r)
		z.CubeTo(cx-k, cy-r, cx-r, cy-k, cx-r, cy)
		z.CubeTo(cx-r, cy+k, cx-k, cy+r, cx, cy+r)
		z.CubeTo(cx+k, cy+r, cx+r, cy+k, cx+r, cy)
	}
	z.ClosePath()
}

// disc fills a circle of radius r centred on (x, y)
func (c *canvas) disc(x, y, r float64, src image.Image) {
	if r <= 0 {
		return
	}
	c.fill(x-r, y-r, x+r, y+r, src, func(z *vector.Rasterizer, ox, oy float32) {
		circlePath(z, float32(x)-ox, float32(y)-oy, float32(r), false)
	})
}

// ring fills the annulus between r-width/2 and r+width/2
func (c *canvas) ring(x, y, r, width float64, src image.Image) {
	outer, inner := r+width/2, r-width/2
	if outer <= 0 {
		return
	}
	c.fill(x-outer, y-outer, x+outer, y+outer, src, func(z *vector.Rasterizer, ox, oy float32) {
		cx, cy := float32(x)-ox, float32(y)-oy
		circlePath(z, cx, cy, float32(outer), false)
		if inner > 0 {
			circlePath(z, cx, cy, float32(inner), true)
		}
	})
}

// line strokes a straight segment as a quad of the given width
func (c *canvas) line(x1, y1, x2, y2, width float64, src image.Image) {
	dx, dy := x2-x1, y2-y1
	d := math.Hypot(dx, dy)
	if d == 0 || width <= 0 {
		return
	}
	nx, ny := -dy/d*width/2, dx/d*width/2
	c.fill(
		math.Min(x1, x2)-width, math.Min(y1, y2)-width,
		math.Max(x1, x2)+width, math.Max(y1, y2)+width,
		src,
		func(z *vector.Rasterizer, ox, oy float32) {
			z.MoveTo(float32(x1+nx)-ox, float32(y1+ny)-oy)
			z.LineTo(float32(x2+nx)-ox, float32(y2+ny)-oy)
			z.LineTo(float32(x2-nx)-ox, float32(y2-ny)-oy)
			z.LineTo(float32(x1-nx)-ox, float32(y1-ny)-oy)
			z.ClosePath()
		},
	)
}

// radialGradient shades from inner at (cx, cy) to outer at distance r
type radialGradient struct {
	cx, cy, r    float64
	inner, outer color.NRGBA
}

func (g *radialGradient) ColorModel() color.Model { return color.NRGBAModel }

func (g *radialGradient) Bounds() image.Rectangle {
	return image.Rect(-1<<30, -1<<30, 1<<30, 1<<30)
}

func (g *radialGradient) At(x, y int) color.Color {
	d := math.Hypot(float64(x)+0.5-g.cx, float64(y)+0.5-g.cy)
	return mix(g.inner, g.outer, clamp01(d/g.r))
}

func uniform(c color.NRGBA) *image.Uniform {
	return image.NewUniform(c)
}
