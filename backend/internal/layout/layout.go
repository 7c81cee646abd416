// Package layout holds the strategies that seed node positions and choose
// the forces the simulation runs with.
package layout

import (
	"strings"

	"network-journal/backend/internal/physics"
	"network-journal/backend/internal/scene"
	apperrors "network-journal/backend/pkg/errors"
)

// Kind names a layout strategy
type Kind string

const (
	KindForce        Kind = "force"
	KindCircular     Kind = "circular"
	KindHierarchical Kind = "hierarchical"
	KindRadial       Kind = "radial"
)

// Kinds lists every strategy, default first
var Kinds = []Kind{KindForce, KindCircular, KindHierarchical, KindRadial}

// ParseKind accepts a strategy name; "force-directed" is an alias for force
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "force-directed" || s == "" {
		return KindForce, nil
	}
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", apperrors.NewUnknownLayout(s)
}

// Viewport is the drawing area in simulation units
type Viewport struct {
	Width  float64
	Height float64
}

// Center returns the middle of the viewport
func (v Viewport) Center() (float64, float64) {
	return v.Width / 2, v.Height / 2
}

// Strategy seeds positions and provides the force list for one layout.
// A strategy remembers the targets it assigned to the last graph it placed.
type Strategy interface {
	Kind() Kind
	// InitialPositions places and pins nodes for this layout
	InitialPositions(g *scene.Graph, vp Viewport)
	// Forces returns the forces to run, in application order
	Forces() []physics.Force
	// Anchor returns the pin node i returns to after a drag ends
	Anchor(i int) (x, y float64, ok bool)
}

// New returns the strategy for kind
func New(kind string) (Strategy, error) {
	k, err := ParseKind(kind)
	if err != nil {
		return nil, err
	}
	switch k {
	case KindCircular:
		return NewCircular(), nil
	case KindHierarchical:
		return NewHierarchical(), nil
	case KindRadial:
		return NewRadial(), nil
	default:
		return NewForceDirected(), nil
	}
}

// MustNew is New for compile-time constant kinds
func MustNew(kind Kind) Strategy {
	s, err := New(string(kind))
	if err != nil {
		panic(err)
	}
	return s
}

// rootIndex is the owner, or the first node when there is no owner
func rootIndex(g *scene.Graph) int {
	if i := g.Focal(); i >= 0 {
		return i
	}
	if len(g.Nodes) > 0 {
		return 0
	}
	return -1
}

func unpinAll(g *scene.Graph) {
	for i := range g.Nodes {
		g.Nodes[i].Unpin()
	}
}

type point struct {
	x, y float64
	ok   bool
}

// anchors is the shared Anchor bookkeeping
type anchors []point

func (a anchors) Anchor(i int) (float64, float64, bool) {
	if i < 0 || i >= len(a) {
		return 0, 0, false
	}
	return a[i].x, a[i].y, a[i].ok
}
