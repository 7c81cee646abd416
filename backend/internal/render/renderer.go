// Package render draws a graph frame into an RGBA raster: links, then nodes
// in array order, then labels.
package render

import (
	"image"
	"image/color"
	"math"
	"time"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"

	"network-journal/backend/internal/camera"
	"network-journal/backend/internal/scene"
)

const (
	glowPadding     = 20.0
	selectedPadding = 15.0
	draggedPadding  = 12.0
	selectionPeriod = 1500 * time.Millisecond
	labelGap        = 14.0
)

// Frame is everything one render depends on. Rendering the same Frame twice
// produces identical pixels.
type Frame struct {
	Graph      *scene.Graph
	Transform  camera.Transform
	Options    scene.Options
	SelectedID string
	DraggedID  string
	// Clock drives the selection pulse
	Clock time.Duration
}

// Renderer owns the font face and scratch buffers. It is not safe for
// concurrent use.
type Renderer struct {
	face font.Face
}

// New creates a renderer with the embedded Go Regular face
func New() (*Renderer, error) {
	face, err := newFace(LabelSize)
	if err != nil {
		return nil, err
	}
	return &Renderer{face: face}, nil
}

// NewImage allocates a canvas of the given size
func NewImage(width, height int) *image.RGBA {
	return image.NewRGBA(image.Rect(0, 0, width, height))
}

// Render draws f into dst. It only reads the graph.
func (r *Renderer) Render(dst *image.RGBA, f Frame) {
	draw.Draw(dst, dst.Bounds(), uniform(background), image.Point{}, draw.Src)
	if f.Graph == nil {
		return
	}
	c := newCanvas(dst)
	tr := f.Transform
	if tr.K <= 0 || math.IsNaN(tr.K) {
		tr = camera.Identity()
	}

	r.drawLinks(c, f, tr)
	for i := range f.Graph.Nodes {
		r.drawNode(c, f, tr, &f.Graph.Nodes[i])
	}
	if f.Options.ShowLabels {
		for i := range f.Graph.Nodes {
			r.drawNodeLabel(dst, f, tr, &f.Graph.Nodes[i])
		}
	}
}

func (r *Renderer) drawLinks(c *canvas, f Frame, tr camera.Transform) {
	g := f.Graph
	width := math.Max(1, 1.5*tr.K)
	normal := uniform(withAlpha(linkColor, f.Options.LinkOpacity))
	highlight := uniform(withAlpha(white, math.Min(1, f.Options.LinkOpacity+0.3)))

	for _, l := range g.Links {
		a, b := &g.Nodes[l.Source], &g.Nodes[l.Target]
		if !a.Drawable() || !b.Drawable() {
			continue
		}
		x1, y1 := tr.Apply(a.X, a.Y)
		x2, y2 := tr.Apply(b.X, b.Y)
		src := normal
		if f.SelectedID != "" && (a.ID == f.SelectedID || b.ID == f.SelectedID) {
			src = highlight
		}
		c.line(x1, y1, x2, y2, width, src)
	}
}

func (r *Renderer) drawNode(c *canvas, f Frame, tr camera.Transform, n *scene.Node) {
	if !n.Drawable() {
		return
	}
	selected := n.ID == f.SelectedID
	dragged := n.ID == f.DraggedID
	style := StyleFor(n.Type)
	x, y := tr.Apply(n.X, n.Y)
	radius := f.Options.EffectiveRadius(n, selected, dragged) * tr.K

	if f.Options.ShowGlow {
		gr := radius + glowPadding*tr.K
		transparent := style.Glow
		transparent.A = 0
		c.disc(x, y, gr, &radialGradient{cx: x, cy: y, r: gr, inner: style.Glow, outer: transparent})
	}

	if selected {
		phase := 2 * math.Pi * float64(f.Clock%selectionPeriod) / float64(selectionPeriod)
		alpha := 0.55 + 0.45*math.Sin(phase)
		c.ring(x, y, radius+selectedPadding*tr.K, 3*tr.K, uniform(withAlpha(white, alpha)))
	}
	if dragged {
		c.ring(x, y, radius+draggedPadding*tr.K, 2*tr.K, uniform(white))
	}

	inner, outer, stroke := style.Light, style.Dark, style.Stroke
	if dragged {
		inner, outer, stroke = mix(style.Light, white, 0.3), style.Fill, white
	}
	c.disc(x, y, radius, &radialGradient{
		cx:    x - radius*0.3,
		cy:    y - radius*0.3,
		r:     radius * 1.3,
		inner: inner,
		outer: outer,
	})

	switch {
	case n.Focal:
		c.ring(x, y, radius, 3*tr.K, uniform(white))
	default:
		c.ring(x, y, radius, 1.5*tr.K, uniform(stroke))
	}
}

func (r *Renderer) drawNodeLabel(dst *image.RGBA, f Frame, tr camera.Transform, n *scene.Node) {
	if !n.Drawable() || n.Label == "" {
		return
	}
	x, y := tr.Apply(n.X, n.Y)
	radius := f.Options.EffectiveRadius(n, n.ID == f.SelectedID, n.ID == f.DraggedID) * tr.K
	baseline := y + radius + labelGap

	b := dst.Bounds()
	if baseline < float64(b.Min.Y) || baseline-LabelSize > float64(b.Max.Y) || x < float64(b.Min.X)-200 || x > float64(b.Max.X)+200 {
		return
	}
	col := color.NRGBA{226, 232, 240, 255}
	if n.Focal {
		col = white
	}
	drawLabel(dst, r.face, LabelFor(n.Label, n.Focal), x, baseline, col)
}
