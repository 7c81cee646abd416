// Package quadtree is a point-region quadtree used to find nearby nodes
// during collision resolution and hit testing.
package quadtree

const (
	// Capacity is the number of points a leaf holds before it splits
	Capacity = 10
	// MaxDepth stops subdivision; leaves at this depth grow without bound
	MaxDepth = 8
)

// Bounds is an axis-aligned rectangle, inclusive on every edge
type Bounds struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

// Around returns the square of half-extent half centred on (cx, cy)
func Around(cx, cy, half float64) Bounds {
	return Bounds{MinX: cx - half, MinY: cy - half, MaxX: cx + half, MaxY: cy + half}
}

// Contains reports whether (x, y) lies inside b. NaN coordinates never do.
func (b Bounds) Contains(x, y float64) bool {
	return x >= b.MinX && x <= b.MaxX && y >= b.MinY && y <= b.MaxY
}

// Intersects reports whether b and o overlap
func (b Bounds) Intersects(o Bounds) bool {
	return b.MinX <= o.MaxX && o.MinX <= b.MaxX && b.MinY <= o.MaxY && o.MinY <= b.MaxY
}

// Point is an indexed position; Index refers back into the caller's arena
type Point struct {
	X, Y  float64
	Index int
}

type node struct {
	bounds   Bounds
	depth    int
	points   []Point
	children *[4]node
}

// Tree is a quadtree over a fixed root rectangle. It is rebuilt every tick
// and is not safe for concurrent mutation.
type Tree struct {
	root node
	size int
}

// New creates an empty tree covering bounds
func New(bounds Bounds) *Tree {
	return &Tree{root: node{bounds: bounds}}
}

// Build creates a tree and inserts every point that fits
func Build(bounds Bounds, points []Point) *Tree {
	t := New(bounds)
	for _, p := range points {
		t.Insert(p)
	}
	return t
}

// Bounds returns the root rectangle
func (t *Tree) Bounds() Bounds {
	return t.root.bounds
}

// Len returns the number of stored points
func (t *Tree) Len() int {
	return t.size
}

// Insert stores p and reports whether it fell inside the root bounds.
// Points outside are rejected and never appear in query results.
func (t *Tree) Insert(p Point) bool {
	if !t.root.bounds.Contains(p.X, p.Y) {
		return false
	}
	t.root.insert(p)
	t.size++
	return true
}

// Query appends every stored point inside r to out
func (t *Tree) Query(r Bounds, out []Point) []Point {
	return t.root.query(r, out)
}

func (n *node) insert(p Point) {
	if n.children == nil {
		if len(n.points) < Capacity || n.depth >= MaxDepth {
			n.points = append(n.points, p)
			return
		}
		n.split()
	}
	n.child(p.X, p.Y).insert(p)
}

func (n *node) split() {
	midX := (n.bounds.MinX + n.bounds.MaxX) / 2
	midY := (n.bounds.MinY + n.bounds.MaxY) / 2
	b := n.bounds
	n.children = &[4]node{
		{bounds: Bounds{b.MinX, b.MinY, midX, midY}, depth: n.depth + 1},
		{bounds: Bounds{midX, b.MinY, b.MaxX, midY}, depth: n.depth + 1},
		{bounds: Bounds{b.MinX, midY, midX, b.MaxY}, depth: n.depth + 1},
		{bounds: Bounds{midX, midY, b.MaxX, b.MaxY}, depth: n.depth + 1},
	}
	points := n.points
	n.points = nil
	for _, p := range points {
		n.child(p.X, p.Y).insert(p)
	}
}

// child picks exactly one quadrant, so points on a split line are stored once
func (n *node) child(x, y float64) *node {
	midX := (n.bounds.MinX + n.bounds.MaxX) / 2
	midY := (n.bounds.MinY + n.bounds.MaxY) / 2
	i := 0
	if x >= midX {
		i++
	}
	if y >= midY {
		i += 2
	}
	return &n.children[i]
}

func (n *node) query(r Bounds, out []Point) []Point {
	if !n.bounds.Intersects(r) {
		return out
	}
	for _, p := range n.points {
		if r.Contains(p.X, p.Y) {
			out = append(out, p)
		}
	}
	if n.children != nil {
		for i := range n.children {
			out = n.children[i].query(r, out)
		}
	}
	return out
}
