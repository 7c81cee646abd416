package scene

// Graph owns the nodes and links of one snapshot. Links refer to nodes by
// index into Nodes, and node order is draw order.
type Graph struct {
	Nodes []Node
	Links []Link

	index map[string]int
}

// NewGraph builds a graph arena; links must already reference valid indices
func NewGraph(nodes []Node, links []Link) *Graph {
	g := &Graph{Nodes: nodes, Links: links, index: make(map[string]int, len(nodes))}
	for i := range g.Nodes {
		g.index[g.Nodes[i].ID] = i
	}
	return g
}

// Index returns the arena index of the node with the given id
func (g *Graph) Index(id string) (int, bool) {
	i, ok := g.index[id]
	return i, ok
}

// Node returns the node with the given id
func (g *Graph) Node(id string) (*Node, bool) {
	i, ok := g.index[id]
	if !ok {
		return nil, false
	}
	return &g.Nodes[i], true
}

// Focal returns the index of the owner node, or -1
func (g *Graph) Focal() int {
	for i := range g.Nodes {
		if g.Nodes[i].Focal {
			return i
		}
	}
	return -1
}

// Adjacency returns the undirected neighbour lists, in link order
func (g *Graph) Adjacency() [][]int {
	adj := make([][]int, len(g.Nodes))
	for _, l := range g.Links {
		adj[l.Source] = append(adj[l.Source], l.Target)
		adj[l.Target] = append(adj[l.Target], l.Source)
	}
	return adj
}

// AdoptPositions copies positions of nodes that also exist in prev, so a
// rebuilt graph does not jump. Velocities and pins are not carried over.
func (g *Graph) AdoptPositions(prev *Graph) int {
	if prev == nil {
		return 0
	}
	adopted := 0
	for i := range g.Nodes {
		old, ok := prev.Node(g.Nodes[i].ID)
		if !ok || !old.Drawable() {
			continue
		}
		g.Nodes[i].Place(old.X, old.Y)
		adopted++
	}
	return adopted
}

// Translate moves every placed node, and its pin, by (dx, dy)
func (g *Graph) Translate(dx, dy float64) {
	for i := range g.Nodes {
		n := &g.Nodes[i]
		if !n.Placed {
			continue
		}
		n.X += dx
		n.Y += dy
		if n.Pinned {
			n.FX += dx
			n.FY += dy
		}
	}
}
