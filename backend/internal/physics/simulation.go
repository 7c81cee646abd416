// Package physics is the velocity-based force simulation that moves graph
// nodes. It is single-threaded; the caller owns the graph for the duration of
// a Tick.
package physics

import (
	"math"

	"network-journal/backend/internal/constants"
	"network-journal/backend/internal/quadtree"
	"network-journal/backend/internal/scene"
)

const (
	// AlphaDecay is the per-tick cooling rate at normal animation speed
	AlphaDecay = 0.0228
	// VelocityRetention is the fraction of velocity kept each tick
	VelocityRetention = 0.6
	// MaxVelocity caps the distance a node can travel in one tick
	MaxVelocity = 200.0
	// PulseDecay is subtracted from every node's pulse each tick
	PulseDecay = 0.02
	// DragAlphaTarget keeps the simulation warm while a node is dragged
	DragAlphaTarget = 0.3
)

// Tick is the per-tick state handed to every force
type Tick struct {
	Graph   *scene.Graph
	Alpha   float64
	CenterX float64
	CenterY float64
	// Spring and Gravity are the option multipliers for link stiffness and
	// the pull toward the centre
	Spring  float64
	Gravity float64
	// Index holds every node position at the start of the tick
	Index *quadtree.Tree
}

// Force adds velocity to nodes. Forces never move positions directly.
type Force interface {
	Apply(t *Tick)
}

// ForceFunc adapts a plain function to Force
type ForceFunc func(t *Tick)

// Apply implements Force
func (f ForceFunc) Apply(t *Tick) { f(t) }

// Simulation advances node positions under a list of forces
type Simulation struct {
	graph  *scene.Graph
	forces []Force

	alpha       float64
	alphaTarget float64
	speed       float64
	spring      float64
	gravity     float64

	centerX, centerY float64
	running          bool
	ticks            int

	points []quadtree.Point
}

// New creates a running simulation at alpha 1. Any node that has no position
// yet is seeded on a phyllotaxis spiral around the centre.
func New(g *scene.Graph, forces []Force, centerX, centerY float64) *Simulation {
	s := &Simulation{
		graph:   g,
		forces:  forces,
		alpha:   1,
		speed:   1,
		spring:  1,
		gravity: 1,
		centerX: centerX,
		centerY: centerY,
		running: true,
	}
	Seed(g, centerX, centerY)
	return s
}

// SetOptions applies the physics multipliers of o
func (s *Simulation) SetOptions(o scene.Options) {
	s.speed = o.AnimationSpeed.Multiplier()
	s.spring = o.Spring.Multiplier()
	s.gravity = o.Gravity.Multiplier()
}

// SetForces replaces the force list
func (s *Simulation) SetForces(forces []Force) {
	s.forces = forces
}

// SetCenter moves the point gravity and centering pull toward
func (s *Simulation) SetCenter(x, y float64) {
	s.centerX, s.centerY = x, y
}

// Center returns the current centre
func (s *Simulation) Center() (float64, float64) {
	return s.centerX, s.centerY
}

// Graph returns the simulated graph
func (s *Simulation) Graph() *scene.Graph {
	return s.graph
}

// Alpha returns the current temperature
func (s *Simulation) Alpha() float64 {
	return s.alpha
}

// AlphaTarget returns the temperature alpha decays toward
func (s *Simulation) AlphaTarget() float64 {
	return s.alphaTarget
}

// SetAlphaTarget sets the temperature alpha decays toward
func (s *Simulation) SetAlphaTarget(target float64) {
	s.alphaTarget = target
}

// Reheat raises alpha to at least a and resumes ticking
func (s *Simulation) Reheat(a float64) {
	if s.alpha < a {
		s.alpha = a
	}
	s.running = true
}

// Restart resets alpha to 1 and resumes ticking
func (s *Simulation) Restart() {
	s.alpha = 1
	s.running = true
}

// Stop halts ticking; Tick becomes a no-op until Restart or Reheat
func (s *Simulation) Stop() {
	s.running = false
}

// Running reports whether Tick advances the simulation
func (s *Simulation) Running() bool {
	return s.running
}

// Ticks returns the number of ticks run so far
func (s *Simulation) Ticks() int {
	return s.ticks
}

// Tick runs one simulation step and reports whether anything ran
func (s *Simulation) Tick() bool {
	if !s.running {
		return false
	}
	s.alpha += (s.alphaTarget - s.alpha) * AlphaDecay * s.speed

	t := &Tick{
		Graph:   s.graph,
		Alpha:   s.alpha,
		CenterX: s.centerX,
		CenterY: s.centerY,
		Spring:  s.spring,
		Gravity: s.gravity,
		Index:   s.buildIndex(),
	}
	for _, f := range s.forces {
		f.Apply(t)
	}
	s.integrate()
	s.ticks++
	return true
}

func (s *Simulation) buildIndex() *quadtree.Tree {
	s.points = s.points[:0]
	for i := range s.graph.Nodes {
		n := &s.graph.Nodes[i]
		s.points = append(s.points, quadtree.Point{X: n.X, Y: n.Y, Index: i})
	}
	return quadtree.Build(quadtree.Around(s.centerX, s.centerY, constants.WorkingAreaHalfExtent), s.points)
}

func (s *Simulation) integrate() {
	for i := range s.graph.Nodes {
		n := &s.graph.Nodes[i]
		n.Pulse = math.Max(0, n.Pulse-PulseDecay)

		if n.Pinned {
			n.X, n.Y = n.FX, n.FY
			n.VX, n.VY = 0, 0
			n.Placed = true
			continue
		}

		n.VX *= VelocityRetention
		n.VY *= VelocityRetention
		if speed := math.Hypot(n.VX, n.VY); speed > MaxVelocity {
			n.VX *= MaxVelocity / speed
			n.VY *= MaxVelocity / speed
		}

		x, y := n.X+n.VX, n.Y+n.VY
		if !finite(x) || !finite(y) {
			n.VX, n.VY = 0, 0
			continue
		}
		n.X, n.Y = x, y
	}
}

// Seed places every unplaced node on a phyllotaxis spiral around (cx, cy)
func Seed(g *scene.Graph, cx, cy float64) int {
	golden := math.Pi * (3 - math.Sqrt(5))
	seeded := 0
	for i := range g.Nodes {
		n := &g.Nodes[i]
		if n.Drawable() {
			continue
		}
		r := 10 * math.Sqrt(0.5+float64(i))
		a := float64(i) * golden
		n.Place(cx+r*math.Cos(a), cy+r*math.Sin(a))
		n.VX, n.VY = 0, 0
		seeded++
	}
	return seeded
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
