package physics

import "math"

// minCellSize stops subdivision so coincident nodes share one leaf instead of
// splitting forever
const minCellSize = 1e-3

// barnesHutNode is a quadtree cell carrying the centre of mass of the nodes
// inside it. Every node has unit mass.
type barnesHutNode struct {
	x, y, size float64

	centerX, centerY float64
	mass             float64

	body           int
	extra          []int // later bodies of a leaf too small to split
	isLeaf         bool
	nw, ne, sw, se *barnesHutNode
}

func newBarnesHutNode(x, y, size float64) *barnesHutNode {
	return &barnesHutNode{x: x, y: y, size: size, isLeaf: true, body: -1}
}

func (n *barnesHutNode) insert(i int, px, py float64) {
	if n.isLeaf && n.body == -1 {
		n.body = i
		n.centerX, n.centerY = px, py
		n.mass = 1
		return
	}

	if n.isLeaf && n.size > minCellSize {
		n.isLeaf = false
		half := n.size / 2
		n.nw = newBarnesHutNode(n.x, n.y, half)
		n.ne = newBarnesHutNode(n.x+half, n.y, half)
		n.sw = newBarnesHutNode(n.x, n.y+half, half)
		n.se = newBarnesHutNode(n.x+half, n.y+half, half)
		n.quadrant(n.centerX, n.centerY).insert(n.body, n.centerX, n.centerY)
		n.body = -1
	}

	total := n.mass + 1
	n.centerX = (n.centerX*n.mass + px) / total
	n.centerY = (n.centerY*n.mass + py) / total
	n.mass = total

	if n.isLeaf {
		n.extra = append(n.extra, i)
		return
	}
	n.quadrant(px, py).insert(i, px, py)
}

// holds reports whether body i was inserted into this leaf
func (n *barnesHutNode) holds(i int) bool {
	if !n.isLeaf {
		return false
	}
	if n.body == i {
		return true
	}
	for _, b := range n.extra {
		if b == i {
			return true
		}
	}
	return false
}

func (n *barnesHutNode) quadrant(px, py float64) *barnesHutNode {
	half := n.size / 2
	if px < n.x+half {
		if py < n.y+half {
			return n.nw
		}
		return n.sw
	}
	if py < n.y+half {
		return n.ne
	}
	return n.se
}

// accumulate returns the velocity change on node i at (px, py). strength is
// already scaled by alpha and is negative for repulsion.
func (n *barnesHutNode) accumulate(i int, px, py, theta, strength float64) (float64, float64) {
	if n == nil || n.mass == 0 {
		return 0, 0
	}
	mass, cx, cy := n.mass, n.centerX, n.centerY
	if n.holds(i) {
		if mass == 1 {
			return 0, 0
		}
		// leave node i out of its own leaf's centre of mass
		cx = (cx*mass - px) / (mass - 1)
		cy = (cy*mass - py) / (mass - 1)
		mass--
	}

	dx, dy := cx-px, cy-py
	l2 := dx*dx + dy*dy

	if n.isLeaf || n.size*n.size < theta*theta*l2 {
		if l2 == 0 {
			return 0, 0
		}
		if l2 < 1 {
			l2 = 1
		}
		w := strength * mass / l2
		return dx * w, dy * w
	}

	var vx, vy float64
	for _, child := range [4]*barnesHutNode{n.nw, n.ne, n.sw, n.se} {
		cx, cy := child.accumulate(i, px, py, theta, strength)
		vx += cx
		vy += cy
	}
	return vx, vy
}

// buildBarnesHutTree builds a square tree over the padded bounding box of
// the given positions. Non-finite positions are left out.
func buildBarnesHutTree(xs, ys []float64) *barnesHutNode {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for i := range xs {
		if !finite(xs[i]) || !finite(ys[i]) {
			continue
		}
		minX, maxX = math.Min(minX, xs[i]), math.Max(maxX, xs[i])
		minY, maxY = math.Min(minY, ys[i]), math.Max(maxY, ys[i])
	}
	if minX > maxX {
		return nil
	}

	size := math.Max(maxX-minX, maxY-minY)
	pad := math.Max(size*0.1, 1)
	size += 2 * pad
	root := newBarnesHutNode(minX-pad, minY-pad, size)
	for i := range xs {
		if finite(xs[i]) && finite(ys[i]) {
			root.insert(i, xs[i], ys[i])
		}
	}
	return root
}
