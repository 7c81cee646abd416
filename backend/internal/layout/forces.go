package layout

import (
	"math"

	"network-journal/backend/internal/physics"
)

// Target is an assigned position; nodes without one are left alone
type Target struct {
	X, Y float64
	Set  bool
}

// Position springs every node toward its target
type Position struct {
	Targets  []Target
	Strength float64
}

// Apply implements physics.Force
func (f *Position) Apply(t *physics.Tick) {
	k := math.Min(f.Strength, 0.1) * t.Alpha
	for i := range t.Graph.Nodes {
		if i >= len(f.Targets) || !f.Targets[i].Set {
			continue
		}
		n := &t.Graph.Nodes[i]
		n.VX += (f.Targets[i].X - n.X) * k
		n.VY += (f.Targets[i].Y - n.Y) * k
	}
}

// Ring pulls every node radially toward its ring around the centre.
// A zero radius means the node has no ring.
type Ring struct {
	Radii    []float64
	Strength float64
}

// Apply implements physics.Force
func (f *Ring) Apply(t *physics.Tick) {
	k := f.Strength * t.Alpha
	for i := range t.Graph.Nodes {
		if i >= len(f.Radii) || f.Radii[i] == 0 {
			continue
		}
		n := &t.Graph.Nodes[i]
		dx, dy := n.X-t.CenterX, n.Y-t.CenterY
		d := math.Hypot(dx, dy)
		if d == 0 {
			continue
		}
		delta := (f.Radii[i] - d) * k
		n.VX += dx / d * delta
		n.VY += dy / d * delta
	}
}
