package layout

import (
	"math"

	"network-journal/backend/internal/physics"
	"network-journal/backend/internal/scene"
)

// CircleRadius is the radius of the circular layout
const CircleRadius = 250.0

// Circular pins every node on one circle in input order
type Circular struct {
	anchors
	Radius float64
}

// NewCircular returns the circular strategy
func NewCircular() *Circular {
	return &Circular{Radius: CircleRadius}
}

// Kind implements Strategy
func (l *Circular) Kind() Kind { return KindCircular }

// InitialPositions places node i at angle i*2pi/N and pins it there
func (l *Circular) InitialPositions(g *scene.Graph, vp Viewport) {
	cx, cy := vp.Center()
	n := len(g.Nodes)
	l.anchors = make(anchors, n)
	for i := range g.Nodes {
		a := float64(i) * 2 * math.Pi / float64(n)
		x, y := cx+l.Radius*math.Cos(a), cy+l.Radius*math.Sin(a)
		g.Nodes[i].Pin(x, y)
		l.anchors[i] = point{x, y, true}
	}
}

// Forces implements Strategy
func (l *Circular) Forces() []physics.Force {
	springs := physics.NewLink()
	springs.Scale = 0.6
	return []physics.Force{springs, physics.NewCollision()}
}
