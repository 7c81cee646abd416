package layout

import (
	"math"

	"network-journal/backend/internal/physics"
	"network-journal/backend/internal/scene"
)

// RingRadii are the radii of the radial layout's rings, innermost first
var RingRadii = []float64{120, 240, 360}

// Radial puts the owner at the centre and everyone else on concentric rings
type Radial struct {
	anchors
	rings *Ring
}

// NewRadial returns the radial strategy
func NewRadial() *Radial {
	return &Radial{rings: &Ring{Strength: 0.3}}
}

// Kind implements Strategy
func (l *Radial) Kind() Kind { return KindRadial }

// InitialPositions buckets the non-root nodes, in input order, into rings
func (l *Radial) InitialPositions(g *scene.Graph, vp Viewport) {
	unpinAll(g)
	cx, cy := vp.Center()
	n := len(g.Nodes)
	l.anchors = make(anchors, n)
	l.rings.Radii = make([]float64, n)
	root := rootIndex(g)
	if root < 0 {
		return
	}

	others := make([]int, 0, n-1)
	for i := range g.Nodes {
		if i != root {
			others = append(others, i)
		}
	}
	perRing := int(math.Ceil(float64(len(others)) / float64(len(RingRadii))))
	for j, i := range others {
		ring := j / perRing
		first := ring * perRing
		count := min(perRing, len(others)-first)
		a := 2 * math.Pi * float64(j-first) / float64(count)
		r := RingRadii[ring]
		g.Nodes[i].Place(cx+r*math.Cos(a), cy+r*math.Sin(a))
		g.Nodes[i].VX, g.Nodes[i].VY = 0, 0
		l.rings.Radii[i] = r
	}

	g.Nodes[root].Pin(cx, cy)
	l.anchors[root] = point{cx, cy, true}
}

// Forces implements Strategy
func (l *Radial) Forces() []physics.Force {
	springs := physics.NewLink()
	springs.Scale = 0.6
	return []physics.Force{springs, physics.NewCharge(-100), physics.NewCollision(), l.rings}
}
