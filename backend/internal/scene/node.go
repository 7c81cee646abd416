package scene

import (
	"math"
	"strings"
)

// NodeType is the category of a node
type NodeType int

const (
	TypeUnknown NodeType = iota
	TypePerson
	TypeCompany
	TypeTopic
	TypeEvent
	TypeLocation
	TypeInteraction
)

var nodeTypeNames = [...]string{
	TypeUnknown:     "unknown",
	TypePerson:      "person",
	TypeCompany:     "company",
	TypeTopic:       "topic",
	TypeEvent:       "event",
	TypeLocation:    "location",
	TypeInteraction: "interaction",
}

// NodeTypes returns every node type, unknown included, in declaration order
func NodeTypes() []NodeType {
	out := make([]NodeType, len(nodeTypeNames))
	for i := range nodeTypeNames {
		out[i] = NodeType(i)
	}
	return out
}

// ParseNodeType maps a snapshot type string onto a NodeType
func ParseNodeType(s string) NodeType {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range nodeTypeNames {
		if name == s {
			return NodeType(i)
		}
	}
	return TypeUnknown
}

func (t NodeType) String() string {
	if t < 0 || int(t) >= len(nodeTypeNames) {
		return nodeTypeNames[TypeUnknown]
	}
	return nodeTypeNames[t]
}

// MarshalText implements encoding.TextMarshaler
func (t NodeType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (t *NodeType) UnmarshalText(b []byte) error {
	*t = ParseNodeType(string(b))
	return nil
}

// Node is a mutable simulation record. Nodes live in the Graph arena and are
// addressed by index; only the simulation and an active drag write to them.
type Node struct {
	ID         string
	Label      string
	Type       NodeType
	Properties map[string]interface{}
	Focal      bool

	X, Y   float64
	VX, VY float64
	Placed bool

	Pinned bool
	FX, FY float64

	// Pulse is visual emphasis only, in [0,1]
	Pulse float64
}

// Place sets the position and marks the node as positioned
func (n *Node) Place(x, y float64) {
	n.X, n.Y = x, y
	n.Placed = true
}

// Pin fixes the node at (x, y); the simulation will not move it
func (n *Node) Pin(x, y float64) {
	n.Pinned = true
	n.FX, n.FY = x, y
	n.Place(x, y)
	n.VX, n.VY = 0, 0
}

// Unpin hands the node back to the simulation
func (n *Node) Unpin() {
	n.Pinned = false
	n.FX, n.FY = 0, 0
}

// Drawable reports whether the node has a usable position
func (n *Node) Drawable() bool {
	return n.Placed && isFinite(n.X) && isFinite(n.Y)
}

// Link connects two nodes of the same Graph by index
type Link struct {
	ID         string
	Source     int
	Target     int
	Type       string
	Properties map[string]interface{}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
