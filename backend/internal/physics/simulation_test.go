package physics

import (
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"network-journal/backend/internal/scene"
)

const cx, cy = 640.0, 400.0

func defaultForces() []Force {
	return []Force{NewLink(), NewCharge(-200), NewCollision(), NewEdgeRepulsion(), NewGravity(), NewCentering()}
}

func chain(n int) *scene.Graph {
	nodes := make([]scene.Node, n)
	for i := range nodes {
		nodes[i] = scene.Node{ID: fmt.Sprintf("n%d", i), Label: fmt.Sprintf("N%d", i), Type: scene.TypePerson}
	}
	links := make([]scene.Link, 0, n)
	for i := 1; i < n; i++ {
		links = append(links, scene.Link{ID: fmt.Sprintf("l%d", i), Source: i - 1, Target: i})
	}
	return scene.NewGraph(nodes, links)
}

func distance(a, b *scene.Node) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

func TestThreeNodeChainSettles(t *testing.T) {
	g := chain(3)
	g.Nodes[0].Focal = true
	g.Nodes[0].Pin(cx, cy)

	sim := New(g, defaultForces(), cx, cy)
	for i := 0; i < 500; i++ {
		sim.Tick()
	}

	a, b, c := &g.Nodes[0], &g.Nodes[1], &g.Nodes[2]
	assert.Equal(t, cx, a.X)
	assert.Equal(t, cy, a.Y)

	ab, bc := distance(a, b), distance(b, c)
	assert.GreaterOrEqual(t, ab, 40.0)
	assert.LessOrEqual(t, ab, 60.0)
	assert.GreaterOrEqual(t, bc, 40.0)
	assert.LessOrEqual(t, bc, 60.0)
}

func TestCoincidentStartStaysFinite(t *testing.T) {
	for _, n := range []int{2, 10, 300} {
		g := chain(n)
		for i := range g.Nodes {
			g.Nodes[i].Place(cx, cy)
		}
		sim := New(g, defaultForces(), cx, cy)
		for i := 0; i < 300; i++ {
			sim.Tick()
		}
		for i := range g.Nodes {
			node := &g.Nodes[i]
			require.True(t, finite(node.X) && finite(node.Y), "n=%d node %d", n, i)
			require.True(t, finite(node.VX) && finite(node.VY), "n=%d node %d", n, i)
		}
	}
}

func TestSeedPlacesOnlyUnplacedNodes(t *testing.T) {
	g := chain(4)
	g.Nodes[2].Place(1, 2)

	seeded := Seed(g, cx, cy)
	assert.Equal(t, 3, seeded)
	assert.Equal(t, 1.0, g.Nodes[2].X)
	for i := range g.Nodes {
		assert.True(t, g.Nodes[i].Drawable())
	}
	assert.NotEqual(t, g.Nodes[0].X, g.Nodes[1].X)
}

func TestAlphaDecaysTowardTarget(t *testing.T) {
	sim := New(chain(2), nil, cx, cy)
	sim.Tick()
	assert.InDelta(t, 1-AlphaDecay, sim.Alpha(), 1e-12)

	for i := 0; i < 1000; i++ {
		sim.Tick()
	}
	assert.Greater(t, sim.Alpha(), 0.0)
	assert.Less(t, sim.Alpha(), 0.001)

	sim.SetAlphaTarget(DragAlphaTarget)
	for i := 0; i < 1000; i++ {
		sim.Tick()
	}
	assert.InDelta(t, DragAlphaTarget, sim.Alpha(), 0.01)
}

func TestAnimationSpeedScalesDecay(t *testing.T) {
	sim := New(chain(2), nil, cx, cy)
	opts := scene.DefaultOptions()
	opts.AnimationSpeed = scene.SpeedFast
	sim.SetOptions(opts)
	sim.Tick()
	assert.InDelta(t, 1-2*AlphaDecay, sim.Alpha(), 1e-12)
}

func TestStopAndRestart(t *testing.T) {
	sim := New(chain(2), defaultForces(), cx, cy)
	sim.Stop()
	assert.False(t, sim.Tick())
	assert.Equal(t, 0, sim.Ticks())

	sim.Restart()
	assert.True(t, sim.Tick())
	assert.Equal(t, 1, sim.Ticks())

	sim.Stop()
	sim.Reheat(0.5)
	assert.True(t, sim.Running())
	assert.InDelta(t, 1-AlphaDecay, sim.Alpha(), 1e-12)
}

func TestPinnedNodeSnapsToPin(t *testing.T) {
	g := chain(2)
	g.Nodes[0].Pin(100, 100)
	g.Nodes[0].X = 5
	sim := New(g, defaultForces(), cx, cy)
	sim.Tick()
	assert.Equal(t, 100.0, g.Nodes[0].X)
	assert.Zero(t, g.Nodes[0].VX)
}

func TestNonFiniteVelocityIsDiscarded(t *testing.T) {
	g := chain(2)
	g.Nodes[0].Place(10, 10)
	g.Nodes[1].Place(20, 20)
	poison := ForceFunc(func(t *Tick) { t.Graph.Nodes[1].VX = math.Inf(1) })

	sim := New(g, []Force{poison}, cx, cy)
	sim.Tick()
	assert.Equal(t, 20.0, g.Nodes[1].X)
	assert.Zero(t, g.Nodes[1].VX)
}

func TestLinkForceRaisesPulse(t *testing.T) {
	g := chain(2)
	g.Nodes[0].Place(0, 0)
	g.Nodes[1].Place(100, 0)
	sim := New(g, []Force{NewLink()}, cx, cy)
	sim.Tick()
	assert.InDelta(t, 0.1-PulseDecay, g.Nodes[0].Pulse, 1e-12)
	assert.Greater(t, g.Nodes[0].X, 0.0)
	assert.Less(t, g.Nodes[1].X, 100.0)
}

func TestBarnesHutApproximatesExactCharge(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	const n = 400
	exact := chain(n)
	approx := chain(n)
	for i := 0; i < n; i++ {
		x, y := rng.Float64()*800, rng.Float64()*800
		exact.Nodes[i].Place(x, y)
		approx.Nodes[i].Place(x, y)
	}

	(&Charge{Strength: -200, Theta: 0.9, ExactBelow: n + 1}).Apply(&Tick{Graph: exact, Alpha: 1})
	(&Charge{Strength: -200, Theta: 0.9, ExactBelow: 1}).Apply(&Tick{Graph: approx, Alpha: 1})

	var errSum, magSum float64
	for i := 0; i < n; i++ {
		e, a := &exact.Nodes[i], &approx.Nodes[i]
		errSum += math.Hypot(e.VX-a.VX, e.VY-a.VY)
		magSum += math.Hypot(e.VX, e.VY)
	}
	assert.Less(t, errSum/magSum, 0.25)
}

func TestEdgeRepulsionPushesParallelLinksApart(t *testing.T) {
	nodes := []scene.Node{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}}
	nodes[0].Place(0, 0)
	nodes[1].Place(100, 0)
	nodes[2].Place(100, 10)
	nodes[3].Place(0, 10)
	g := scene.NewGraph(nodes, []scene.Link{
		{ID: "ab", Source: 0, Target: 1},
		{ID: "dc", Source: 3, Target: 2},
	})

	NewEdgeRepulsion().Apply(&Tick{Graph: g, Alpha: 1})

	assert.Less(t, g.Nodes[0].VY, 0.0)
	assert.Greater(t, g.Nodes[3].VY, 0.0)
}

func TestEdgeRepulsionSkipsSharedEndpoints(t *testing.T) {
	nodes := []scene.Node{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	nodes[0].Place(0, 0)
	nodes[1].Place(100, 0)
	nodes[2].Place(100, 5)
	g := scene.NewGraph(nodes, []scene.Link{
		{ID: "ab", Source: 0, Target: 1},
		{ID: "ac", Source: 0, Target: 2},
	})

	NewEdgeRepulsion().Apply(&Tick{Graph: g, Alpha: 1})

	for i := range g.Nodes {
		assert.Zero(t, g.Nodes[i].VX)
		assert.Zero(t, g.Nodes[i].VY)
	}
}

func TestLinkPushesEndpointsEqualAndOpposite(t *testing.T) {
	nodes := []scene.Node{{ID: "a"}, {ID: "b"}}
	nodes[0].Place(0, 0)
	nodes[1].Place(80, 0)
	g := scene.NewGraph(nodes, []scene.Link{{ID: "ab", Source: 0, Target: 1}})

	NewLink().Apply(&Tick{Graph: g, Alpha: 1, Spring: 1})

	a, b := &g.Nodes[0], &g.Nodes[1]
	want := (80.0 - 50) * 0.4 * (1 + math.Sin(80.0/50*math.Pi)*0.15)
	assert.InDelta(t, want, a.VX, 1e-9)
	assert.InDelta(t, -want, b.VX, 1e-9)
	assert.Zero(t, a.VY)
	assert.Zero(t, b.VY)
}

func TestEdgeRepulsionSkipsCrossingLinks(t *testing.T) {
	nodes := []scene.Node{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}}
	nodes[0].Place(0, 0)
	nodes[1].Place(100, 0)
	nodes[2].Place(50, -30)
	nodes[3].Place(50, 30)
	g := scene.NewGraph(nodes, []scene.Link{
		{ID: "ab", Source: 0, Target: 1},
		{ID: "cd", Source: 2, Target: 3},
	})

	NewEdgeRepulsion().Apply(&Tick{Graph: g, Alpha: 1})

	for i := range g.Nodes {
		assert.Zero(t, g.Nodes[i].VX)
		assert.Zero(t, g.Nodes[i].VY)
	}
}

func TestClosestPointsOfCrossingSegments(t *testing.T) {
	s, u, px, py, qx, qy := closestPoints(0, 0, 100, 0, 25, -10, 25, 30)
	assert.InDelta(t, 0.25, s, 1e-12)
	assert.InDelta(t, 0.25, u, 1e-12)
	assert.Equal(t, px, qx)
	assert.Equal(t, py, qy)
	assert.InDelta(t, 25.0, px, 1e-12)

	_, _, px, py, qx, qy = closestPoints(0, 0, 100, 0, 50, 5, 50, 30)
	assert.InDelta(t, 5.0, math.Hypot(qx-px, qy-py), 1e-12)
}

func TestBarnesHutLeafLeavesOutQueryingBody(t *testing.T) {
	xs := []float64{0, 0.0001, 0.0003}
	ys := []float64{0, 0.0002, 0.0001}
	leaf := newBarnesHutNode(0, 0, minCellSize/2)
	for i := range xs {
		leaf.insert(i, xs[i], ys[i])
	}
	require.True(t, leaf.isLeaf)
	require.Equal(t, 3.0, leaf.mass)

	for i := range xs {
		assert.True(t, leaf.holds(i))

		var wantX, wantY float64
		for j := range xs {
			if j == i {
				continue
			}
			dx, dy := xs[j]-xs[i], ys[j]-ys[i]
			// closer than one unit, so the squared distance clamps to 1
			wantX += dx * -1
			wantY += dy * -1
		}
		vx, vy := leaf.accumulate(i, xs[i], ys[i], 0.9, -1)
		assert.InDelta(t, wantX, vx, 1e-15, "body %d", i)
		assert.InDelta(t, wantY, vy, 1e-15, "body %d", i)
	}
	assert.False(t, leaf.holds(3))
}
