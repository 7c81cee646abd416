package layout

import (
	"math/rand"

	"network-journal/backend/internal/physics"
	"network-journal/backend/internal/scene"
)

const (
	// RowHeight separates BFS levels
	RowHeight = 100.0
	// TopMargin is the y of the root row
	TopMargin = 80.0
)

// Hierarchical lays nodes out in rows by BFS distance from the owner
type Hierarchical struct {
	anchors
	targets *Position
	seed    int64
}

// NewHierarchical returns the hierarchical strategy
func NewHierarchical() *Hierarchical {
	return &Hierarchical{targets: &Position{Strength: 0.1}, seed: 1}
}

// Kind implements Strategy
func (l *Hierarchical) Kind() Kind { return KindHierarchical }

// Levels returns the BFS level of every node from root, -1 when unreached
func Levels(g *scene.Graph, root int) []int {
	levels := make([]int, len(g.Nodes))
	for i := range levels {
		levels[i] = -1
	}
	if root < 0 || root >= len(g.Nodes) {
		return levels
	}
	adj := g.Adjacency()
	levels[root] = 0
	queue := []int{root}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range adj[cur] {
			if levels[next] == -1 {
				levels[next] = levels[cur] + 1
				queue = append(queue, next)
			}
		}
	}
	return levels
}

// InitialPositions assigns rows by level and spreads each row evenly.
// Unreached nodes get stable pseudo-random positions inside the viewport.
func (l *Hierarchical) InitialPositions(g *scene.Graph, vp Viewport) {
	unpinAll(g)
	n := len(g.Nodes)
	l.anchors = make(anchors, n)
	l.targets.Targets = make([]Target, n)
	root := rootIndex(g)
	if root < 0 {
		return
	}

	levels := Levels(g, root)
	rows := map[int][]int{}
	for i, lv := range levels {
		if lv >= 0 {
			rows[lv] = append(rows[lv], i)
		}
	}
	for lv, members := range rows {
		y := TopMargin + float64(lv)*RowHeight
		for j, i := range members {
			x := vp.Width * float64(j+1) / float64(len(members)+1)
			g.Nodes[i].Place(x, y)
			g.Nodes[i].VX, g.Nodes[i].VY = 0, 0
			l.targets.Targets[i] = Target{X: x, Y: y, Set: true}
		}
	}

	rng := rand.New(rand.NewSource(l.seed))
	for i, lv := range levels {
		if lv >= 0 {
			continue
		}
		x, y := rng.Float64()*vp.Width, rng.Float64()*vp.Height
		g.Nodes[i].Place(x, y)
		g.Nodes[i].VX, g.Nodes[i].VY = 0, 0
		l.targets.Targets[i] = Target{X: x, Y: y, Set: true}
	}

	rx, ry := vp.Width/2, TopMargin
	g.Nodes[root].Pin(rx, ry)
	l.anchors[root] = point{rx, ry, true}
}

// Forces implements Strategy
func (l *Hierarchical) Forces() []physics.Force {
	return []physics.Force{physics.NewCharge(-50), physics.NewCollision(), l.targets}
}
