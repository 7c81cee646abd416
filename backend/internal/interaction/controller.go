// Package interaction turns raw pointer events into click, drag, pan and
// zoom intents. It is a table-driven state machine and never touches the
// graph itself.
package interaction

import (
	"math"
	"time"
)

const (
	// DragThreshold is how far, in screen pixels, the pointer must travel
	// before a press on a node becomes a drag
	DragThreshold = 5.0
	// ClickWindow is the longest press that still counts as a click
	ClickWindow = 200 * time.Millisecond
	// WheelSensitivity converts wheel delta into a zoom exponent
	WheelSensitivity = 0.002
)

// State of the controller
type State int

const (
	Idle State = iota
	Candidate
	Dragging
	Panning
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Candidate:
		return "candidate"
	case Dragging:
		return "dragging"
	case Panning:
		return "panning"
	}
	return "unknown"
}

// EventKind is the type of pointer event
type EventKind int

const (
	Down EventKind = iota
	Move
	Up
	Leave
	Wheel
)

// Event is a pointer event in screen coordinates
type Event struct {
	Kind   EventKind
	X, Y   float64
	DeltaY float64
	Time   time.Time
}

// IntentKind is what the host should do in response to input
type IntentKind int

const (
	Click IntentKind = iota
	DragStart
	DragMove
	DragEnd
	Pan
	Zoom
)

func (k IntentKind) String() string {
	return [...]string{"click", "drag_start", "drag_move", "drag_end", "pan", "zoom"}[k]
}

// Intent is one action for the host. Node is the arena index for node
// intents; X and Y are in simulation space for drags. Pan carries a screen
// delta in DX and DY, Zoom a factor around the screen point (X, Y).
type Intent struct {
	Kind   IntentKind
	Node   int
	X, Y   float64
	DX, DY float64
	Factor float64
}

// Surface is what the controller needs from the view
type Surface interface {
	// HitTest returns the topmost node under a screen point
	HitTest(sx, sy float64) (int, bool)
	// ToWorld maps a screen point into simulation space
	ToWorld(sx, sy float64) (float64, float64)
}

type transitionKey struct {
	state State
	kind  EventKind
}

type handler func(c *Controller, ev Event) []Intent

var transitions = map[transitionKey]handler{
	{Idle, Down}:       (*Controller).press,
	{Candidate, Move}:  (*Controller).maybeStartDrag,
	{Candidate, Up}:    (*Controller).release,
	{Candidate, Leave}: (*Controller).cancel,
	{Dragging, Move}:   (*Controller).drag,
	{Dragging, Up}:     (*Controller).endDrag,
	{Dragging, Leave}:  (*Controller).endDrag,
	{Panning, Move}:    (*Controller).pan,
	{Panning, Up}:      (*Controller).cancel,
	{Panning, Leave}:   (*Controller).cancel,
}

// Controller is the pointer state machine
type Controller struct {
	surface Surface
	state   State

	node         int
	downAt       time.Time
	downX, downY float64
	lastX, lastY float64
}

// New creates an idle controller over surface
func New(surface Surface) *Controller {
	return &Controller{surface: surface, node: -1}
}

// State returns the current state
func (c *Controller) State() State {
	return c.state
}

// Active returns the node being pressed or dragged
func (c *Controller) Active() (int, bool) {
	if c.state == Candidate || c.state == Dragging {
		return c.node, true
	}
	return -1, false
}

// Reset drops any gesture in progress, e.g. when the graph is replaced
func (c *Controller) Reset() {
	c.state = Idle
	c.node = -1
}

// Handle feeds one event through the transition table
func (c *Controller) Handle(ev Event) []Intent {
	if ev.Kind == Wheel {
		return c.zoom(ev)
	}
	h, ok := transitions[transitionKey{c.state, ev.Kind}]
	if !ok {
		return nil
	}
	return h(c, ev)
}

func (c *Controller) press(ev Event) []Intent {
	c.downAt = ev.Time
	c.downX, c.downY = ev.X, ev.Y
	c.lastX, c.lastY = ev.X, ev.Y
	if i, ok := c.surface.HitTest(ev.X, ev.Y); ok {
		c.node = i
		c.state = Candidate
		return nil
	}
	c.node = -1
	c.state = Panning
	return nil
}

func (c *Controller) maybeStartDrag(ev Event) []Intent {
	c.lastX, c.lastY = ev.X, ev.Y
	if math.Hypot(ev.X-c.downX, ev.Y-c.downY) <= DragThreshold {
		return nil
	}
	c.state = Dragging
	x, y := c.surface.ToWorld(ev.X, ev.Y)
	return []Intent{{Kind: DragStart, Node: c.node, X: x, Y: y}}
}

func (c *Controller) release(ev Event) []Intent {
	node := c.node
	c.Reset()
	if ev.Time.Sub(c.downAt) >= ClickWindow {
		return nil
	}
	return []Intent{{Kind: Click, Node: node}}
}

func (c *Controller) drag(ev Event) []Intent {
	c.lastX, c.lastY = ev.X, ev.Y
	x, y := c.surface.ToWorld(ev.X, ev.Y)
	return []Intent{{Kind: DragMove, Node: c.node, X: x, Y: y}}
}

func (c *Controller) endDrag(ev Event) []Intent {
	node := c.node
	sx, sy := c.lastX, c.lastY
	if ev.Kind == Up {
		sx, sy = ev.X, ev.Y
	}
	c.Reset()
	x, y := c.surface.ToWorld(sx, sy)
	return []Intent{{Kind: DragEnd, Node: node, X: x, Y: y}}
}

func (c *Controller) pan(ev Event) []Intent {
	dx, dy := ev.X-c.lastX, ev.Y-c.lastY
	c.lastX, c.lastY = ev.X, ev.Y
	if dx == 0 && dy == 0 {
		return nil
	}
	return []Intent{{Kind: Pan, Node: -1, DX: dx, DY: dy}}
}

func (c *Controller) cancel(Event) []Intent {
	c.Reset()
	return nil
}

func (c *Controller) zoom(ev Event) []Intent {
	if ev.DeltaY == 0 {
		return nil
	}
	factor := math.Pow(2, -ev.DeltaY*WheelSensitivity)
	return []Intent{{Kind: Zoom, Node: -1, X: ev.X, Y: ev.Y, Factor: factor}}
}
