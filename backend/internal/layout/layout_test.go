package layout

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"network-journal/backend/internal/physics"
	"network-journal/backend/internal/scene"
	apperrors "network-journal/backend/pkg/errors"
)

var viewport = Viewport{Width: 1280, Height: 800}

// star builds an owner linked to n-1 others, plus one isolated node when
// isolated is set
func star(n int, isolated bool) *scene.Graph {
	nodes := make([]scene.Node, n)
	var links []scene.Link
	for i := range nodes {
		nodes[i] = scene.Node{ID: fmt.Sprintf("n%d", i), Type: scene.TypePerson}
		if i > 0 && !(isolated && i == n-1) {
			links = append(links, scene.Link{ID: fmt.Sprintf("l%d", i), Source: 0, Target: i})
		}
	}
	nodes[0].Focal = true
	return scene.NewGraph(nodes, links)
}

func TestNew(t *testing.T) {
	for _, name := range []string{"force", "force-directed", "circular", "hierarchical", "radial", "RADIAL"} {
		s, err := New(name)
		require.NoError(t, err, name)
		assert.NotEmpty(t, s.Forces())
	}

	_, err := New("spiral")
	require.Error(t, err)
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeLayout))
	var unknown *apperrors.ErrUnknownLayout
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "spiral", unknown.Name)
}

func TestCircularSpacing(t *testing.T) {
	for _, n := range []int{1, 2, 7, 12} {
		g := star(n, false)
		l := NewCircular()
		l.InitialPositions(g, viewport)
		cx, cy := viewport.Center()

		step := 2 * math.Pi / float64(n)
		for i := range g.Nodes {
			node := &g.Nodes[i]
			assert.True(t, node.Pinned)
			assert.InDelta(t, CircleRadius, math.Hypot(node.X-cx, node.Y-cy), 1e-9)

			want := float64(i) * step
			got := math.Atan2(node.Y-cy, node.X-cx)
			if got < 0 {
				got += 2 * math.Pi
			}
			diff := math.Mod(math.Abs(got-want), 2*math.Pi)
			assert.True(t, diff < 1e-9 || 2*math.Pi-diff < 1e-9, "n=%d i=%d got=%v want=%v", n, i, got, want)

			x, y, ok := l.Anchor(i)
			assert.True(t, ok)
			assert.Equal(t, node.X, x)
			assert.Equal(t, node.Y, y)
		}
	}
}

func TestForceDirectedPinsOwnerAndKeepsPlacedNodes(t *testing.T) {
	g := star(4, false)
	g.Nodes[2].Place(10, 20)
	g.Nodes[3].Pin(5, 5)

	l := NewForceDirected()
	l.InitialPositions(g, viewport)

	owner := &g.Nodes[0]
	assert.True(t, owner.Pinned)
	assert.Equal(t, 640.0, owner.X)
	assert.Equal(t, 400.0, owner.Y)
	assert.Equal(t, 10.0, g.Nodes[2].X)
	assert.False(t, g.Nodes[3].Pinned)
	assert.True(t, g.Nodes[1].Drawable())

	_, _, ok := l.Anchor(1)
	assert.False(t, ok)
	x, y, ok := l.Anchor(0)
	assert.True(t, ok)
	assert.Equal(t, 640.0, x)
	assert.Equal(t, 400.0, y)
}

func TestLevels(t *testing.T) {
	nodes := []scene.Node{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}}
	g := scene.NewGraph(nodes, []scene.Link{
		{Source: 0, Target: 1},
		{Source: 2, Target: 1},
	})
	assert.Equal(t, []int{0, 1, 2, -1}, Levels(g, 0))
	assert.Equal(t, []int{-1, -1, -1, -1}, Levels(g, -1))
}

func TestHierarchicalRows(t *testing.T) {
	g := star(5, true)
	l := NewHierarchical()
	l.InitialPositions(g, viewport)

	root := &g.Nodes[0]
	assert.True(t, root.Pinned)
	assert.Equal(t, TopMargin, root.Y)

	row := []float64{}
	for i := 1; i < 4; i++ {
		assert.Equal(t, TopMargin+RowHeight, g.Nodes[i].Y)
		row = append(row, g.Nodes[i].X)
	}
	assert.InDelta(t, row[1]-row[0], row[2]-row[1], 1e-9)

	isolated := &g.Nodes[4]
	assert.True(t, isolated.Drawable())
	assert.GreaterOrEqual(t, isolated.X, 0.0)
	assert.LessOrEqual(t, isolated.X, viewport.Width)

	again := star(5, true)
	NewHierarchical().InitialPositions(again, viewport)
	assert.Equal(t, isolated.X, again.Nodes[4].X)
}

func TestHierarchicalWithoutOwnerStartsAtFirstNode(t *testing.T) {
	g := star(3, false)
	g.Nodes[0].Focal = false
	l := NewHierarchical()
	l.InitialPositions(g, viewport)
	assert.True(t, g.Nodes[0].Pinned)
	assert.Equal(t, TopMargin, g.Nodes[0].Y)
}

func TestRadialRings(t *testing.T) {
	g := star(10, false)
	l := NewRadial()
	l.InitialPositions(g, viewport)
	cx, cy := viewport.Center()

	assert.Equal(t, cx, g.Nodes[0].X)
	assert.True(t, g.Nodes[0].Pinned)

	// 9 others, 3 per ring
	for i := 1; i < 10; i++ {
		want := RingRadii[(i-1)/3]
		assert.InDelta(t, want, math.Hypot(g.Nodes[i].X-cx, g.Nodes[i].Y-cy), 1e-9, "node %d", i)
	}
}

func TestRadialSettlesNearRings(t *testing.T) {
	g := star(7, false)
	l := NewRadial()
	l.InitialPositions(g, viewport)
	cx, cy := viewport.Center()

	sim := physics.New(g, l.Forces(), cx, cy)
	for i := 0; i < 300; i++ {
		sim.Tick()
	}
	for i := range g.Nodes {
		require.True(t, g.Nodes[i].Drawable())
	}
	assert.Equal(t, cx, g.Nodes[0].X)
}

func TestPositionForceCapsStrength(t *testing.T) {
	g := star(2, false)
	g.Nodes[1].Place(0, 0)
	f := &Position{Targets: []Target{{}, {X: 100, Y: 0, Set: true}}, Strength: 5}
	f.Apply(&physics.Tick{Graph: g, Alpha: 1})
	assert.InDelta(t, 10.0, g.Nodes[1].VX, 1e-9)
	assert.Zero(t, g.Nodes[0].VX)
}
