package physics

import (
	"math"

	"network-journal/backend/internal/quadtree"
)

// Link pulls linked nodes toward a rest length. The spring is slightly
// modulated by distance so chains settle with a visible wobble.
type Link struct {
	Distance float64
	Strength float64
	// Scale multiplies Strength on top of the spring option; layouts use it
	// for loose secondary springs
	Scale float64
}

// NewLink returns the default spring: rest length 50, strength 0.4
func NewLink() *Link {
	return &Link{Distance: 50, Strength: 0.4, Scale: 1}
}

// Apply implements Force
func (f *Link) Apply(t *Tick) {
	nodes := t.Graph.Nodes
	k := f.Strength * f.Scale * t.Spring * t.Alpha
	for _, l := range t.Graph.Links {
		a, b := &nodes[l.Source], &nodes[l.Target]
		dx, dy := b.X-a.X, b.Y-a.Y
		d := math.Hypot(dx, dy)
		if d == 0 {
			continue
		}
		force := (d - f.Distance) * k * (1 + math.Sin(d/f.Distance*math.Pi)*0.15)
		// each endpoint takes the whole correction, in opposite directions
		ux, uy := dx/d*force, dy/d*force
		a.VX += ux
		a.VY += uy
		b.VX -= ux
		b.VY -= uy
		a.Pulse = math.Min(1, a.Pulse+0.1)
		b.Pulse = math.Min(1, b.Pulse+0.1)
	}
}

// Charge is inverse-distance repulsion between every pair of nodes. Above
// ExactBelow nodes it switches to a Barnes-Hut approximation.
type Charge struct {
	Strength   float64
	Theta      float64
	ExactBelow int
}

// NewCharge returns a many-body force with the given (negative) strength
func NewCharge(strength float64) *Charge {
	return &Charge{Strength: strength, Theta: 0.9, ExactBelow: 256}
}

// Apply implements Force
func (f *Charge) Apply(t *Tick) {
	nodes := t.Graph.Nodes
	if len(nodes) < 2 {
		return
	}
	if len(nodes) >= f.ExactBelow {
		f.applyBarnesHut(t)
		return
	}
	for i := range nodes {
		a := &nodes[i]
		for j := range nodes {
			if i == j {
				continue
			}
			b := &nodes[j]
			dx, dy := b.X-a.X, b.Y-a.Y
			l2 := dx*dx + dy*dy
			if l2 == 0 {
				continue
			}
			if l2 < 1 {
				l2 = 1
			}
			w := f.Strength * t.Alpha / l2
			a.VX += dx * w
			a.VY += dy * w
		}
	}
}

func (f *Charge) applyBarnesHut(t *Tick) {
	nodes := t.Graph.Nodes
	xs := make([]float64, len(nodes))
	ys := make([]float64, len(nodes))
	for i := range nodes {
		xs[i], ys[i] = nodes[i].X, nodes[i].Y
	}
	root := buildBarnesHutTree(xs, ys)
	if root == nil {
		return
	}
	for i := range nodes {
		vx, vy := root.accumulate(i, xs[i], ys[i], f.Theta, f.Strength*t.Alpha)
		nodes[i].VX += vx
		nodes[i].VY += vy
	}
}

// Collision separates nodes closer than Radius, using the tick's spatial index
type Collision struct {
	Radius   float64
	Strength float64

	buf []quadtree.Point
}

// NewCollision returns the default collision force: radius 30, strength 0.1
func NewCollision() *Collision {
	return &Collision{Radius: 30, Strength: 0.1}
}

// Apply implements Force
func (f *Collision) Apply(t *Tick) {
	if t.Index == nil {
		return
	}
	nodes := t.Graph.Nodes
	for i := range nodes {
		a := &nodes[i]
		f.buf = t.Index.Query(quadtree.Around(a.X, a.Y, f.Radius), f.buf[:0])
		for _, p := range f.buf {
			if p.Index <= i {
				continue
			}
			b := &nodes[p.Index]
			dx, dy := b.X-a.X, b.Y-a.Y
			d := math.Hypot(dx, dy)
			if d == 0 || d >= f.Radius {
				continue
			}
			impulse := (f.Radius - d) * f.Strength * t.Alpha
			ux, uy := dx/d*impulse, dy/d*impulse
			a.VX -= ux
			a.VY -= uy
			b.VX += ux
			b.VY += uy
		}
	}
}

// EdgeRepulsion pushes apart links that pass within Threshold of each other.
// Links sharing an endpoint are exempt.
type EdgeRepulsion struct {
	Threshold float64
	Strength  float64
}

// NewEdgeRepulsion returns the default edge force: threshold 20, strength 0.05
func NewEdgeRepulsion() *EdgeRepulsion {
	return &EdgeRepulsion{Threshold: 20, Strength: 0.05}
}

// Apply implements Force
func (f *EdgeRepulsion) Apply(t *Tick) {
	nodes := t.Graph.Nodes
	links := t.Graph.Links
	for i := range links {
		l1 := links[i]
		a1, b1 := &nodes[l1.Source], &nodes[l1.Target]
		for j := i + 1; j < len(links); j++ {
			l2 := links[j]
			if l1.Source == l2.Source || l1.Source == l2.Target || l1.Target == l2.Source || l1.Target == l2.Target {
				continue
			}
			a2, b2 := &nodes[l2.Source], &nodes[l2.Target]
			if !boxesNear(a1.X, a1.Y, b1.X, b1.Y, a2.X, a2.Y, b2.X, b2.Y, f.Threshold) {
				continue
			}
			s, u, px, py, qx, qy := closestPoints(a1.X, a1.Y, b1.X, b1.Y, a2.X, a2.Y, b2.X, b2.Y)
			dx, dy := qx-px, qy-py
			d := math.Hypot(dx, dy)
			if d == 0 || d >= f.Threshold {
				continue
			}
			push := (f.Threshold - d) * f.Strength * t.Alpha
			nx, ny := dx/d*push, dy/d*push
			a1.VX -= nx * (1 - s)
			a1.VY -= ny * (1 - s)
			b1.VX -= nx * s
			b1.VY -= ny * s
			a2.VX += nx * (1 - u)
			a2.VY += ny * (1 - u)
			b2.VX += nx * u
			b2.VY += ny * u
		}
	}
}

// Gravity pulls every node toward the centre, growing linearly with distance
type Gravity struct {
	Strength float64
	Falloff  float64
}

// NewGravity returns the default pull: strength 0.8 per 200 units
func NewGravity() *Gravity {
	return &Gravity{Strength: 0.8, Falloff: 200}
}

// Apply implements Force
func (f *Gravity) Apply(t *Tick) {
	k := f.Strength * t.Alpha * t.Gravity / f.Falloff
	for i := range t.Graph.Nodes {
		n := &t.Graph.Nodes[i]
		dx, dy := t.CenterX-n.X, t.CenterY-n.Y
		if dx == 0 && dy == 0 {
			continue
		}
		// (d/falloff)*strength along the unit vector reduces to dx*k
		n.VX += dx * k
		n.VY += dy * k
	}
}

// Centering nudges every node toward the centre in proportion to its offset
type Centering struct {
	Strength float64
}

// NewCentering returns the default centering strength 0.05
func NewCentering() *Centering {
	return &Centering{Strength: 0.05}
}

// Apply implements Force
func (f *Centering) Apply(t *Tick) {
	k := f.Strength * t.Alpha
	for i := range t.Graph.Nodes {
		n := &t.Graph.Nodes[i]
		n.VX += (t.CenterX - n.X) * k
		n.VY += (t.CenterY - n.Y) * k
	}
}

func boxesNear(ax, ay, bx, by, cx, cy, dx, dy, pad float64) bool {
	return math.Min(ax, bx)-pad <= math.Max(cx, dx) && math.Min(cx, dx) <= math.Max(ax, bx)+pad &&
		math.Min(ay, by)-pad <= math.Max(cy, dy) && math.Min(cy, dy) <= math.Max(ay, by)+pad
}

// projectOnSegment returns the clamped parameter of (px, py) on segment a-b
func projectOnSegment(px, py, ax, ay, bx, by float64) float64 {
	vx, vy := bx-ax, by-ay
	l2 := vx*vx + vy*vy
	if l2 == 0 {
		return 0
	}
	s := ((px-ax)*vx + (py-ay)*vy) / l2
	return math.Max(0, math.Min(1, s))
}

// closestPoints returns the closest pair between segments a1-b1 and a2-b2:
// the parameters on both segments and the two points. Crossing segments
// return their intersection twice; otherwise the pair lies on an endpoint
// projected onto the other segment.
func closestPoints(a1x, a1y, b1x, b1y, a2x, a2y, b2x, b2y float64) (s, u, px, py, qx, qy float64) {
	if cs, cu, ok := intersect(a1x, a1y, b1x, b1y, a2x, a2y, b2x, b2y); ok {
		px, py = a1x+(b1x-a1x)*cs, a1y+(b1y-a1y)*cs
		return cs, cu, px, py, px, py
	}

	best := math.Inf(1)
	consider := func(cs, cu float64) {
		x1, y1 := a1x+(b1x-a1x)*cs, a1y+(b1y-a1y)*cs
		x2, y2 := a2x+(b2x-a2x)*cu, a2y+(b2y-a2y)*cu
		if d := math.Hypot(x2-x1, y2-y1); d < best {
			best = d
			s, u, px, py, qx, qy = cs, cu, x1, y1, x2, y2
		}
	}
	consider(0, projectOnSegment(a1x, a1y, a2x, a2y, b2x, b2y))
	consider(1, projectOnSegment(b1x, b1y, a2x, a2y, b2x, b2y))
	consider(projectOnSegment(a2x, a2y, a1x, a1y, b1x, b1y), 0)
	consider(projectOnSegment(b2x, b2y, a1x, a1y, b1x, b1y), 1)
	return
}

// intersect reports whether segments a1-b1 and a2-b2 cross, with the
// parameters of the crossing on each. Parallel segments never cross here;
// the endpoint projections cover them.
func intersect(a1x, a1y, b1x, b1y, a2x, a2y, b2x, b2y float64) (s, u float64, ok bool) {
	rx, ry := b1x-a1x, b1y-a1y
	qx, qy := b2x-a2x, b2y-a2y
	denom := rx*qy - ry*qx
	if denom == 0 {
		return 0, 0, false
	}
	wx, wy := a2x-a1x, a2y-a1y
	s = (wx*qy - wy*qx) / denom
	u = (wx*ry - wy*rx) / denom
	if s < 0 || s > 1 || u < 0 || u > 1 {
		return 0, 0, false
	}
	return s, u, true
}
