package layout

import (
	"network-journal/backend/internal/physics"
	"network-journal/backend/internal/scene"
)

// ForceDirected is the default layout: the owner is pinned at the centre and
// everything else finds its place under the full force list
type ForceDirected struct {
	anchors
}

// NewForceDirected returns the force-directed strategy
func NewForceDirected() *ForceDirected {
	return &ForceDirected{}
}

// Kind implements Strategy
func (l *ForceDirected) Kind() Kind { return KindForce }

// InitialPositions keeps existing positions and seeds the rest
func (l *ForceDirected) InitialPositions(g *scene.Graph, vp Viewport) {
	cx, cy := vp.Center()
	unpinAll(g)
	l.anchors = make(anchors, len(g.Nodes))
	if i := g.Focal(); i >= 0 {
		g.Nodes[i].Pin(cx, cy)
		l.anchors[i] = point{cx, cy, true}
	}
	physics.Seed(g, cx, cy)
}

// Forces implements Strategy
func (l *ForceDirected) Forces() []physics.Force {
	return []physics.Force{
		physics.NewLink(),
		physics.NewCharge(-200),
		physics.NewCollision(),
		physics.NewEdgeRepulsion(),
		physics.NewGravity(),
		physics.NewCentering(),
	}
}
