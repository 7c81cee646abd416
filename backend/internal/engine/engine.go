// Package engine drives the graph view: one Step is one simulation tick
// followed by one render. An Engine is single-threaded; Loop owns it on one
// goroutine and serialises every outside request onto that goroutine.
package engine

import (
	"image"
	"math"
	"time"

	"go.uber.org/zap"

	"network-journal/backend/internal/camera"
	"network-journal/backend/internal/constants"
	"network-journal/backend/internal/interaction"
	"network-journal/backend/internal/layout"
	"network-journal/backend/internal/physics"
	"network-journal/backend/internal/render"
	"network-journal/backend/internal/scene"
	"network-journal/backend/internal/state"
	apperrors "network-journal/backend/pkg/errors"
	"network-journal/backend/pkg/logger"
)

// NodeInfo identifies a node in callbacks and events
type NodeInfo struct {
	ID    string         `json:"id"`
	Label string         `json:"label"`
	Type  scene.NodeType `json:"type"`
	X     float64        `json:"x"`
	Y     float64        `json:"y"`
}

// Hooks are called on the engine goroutine
type Hooks struct {
	OnNodeClick func(NodeInfo)
	OnDragStart func(NodeInfo)
	OnEvent     func(Event)
}

// Event is published for every user-visible change
type Event struct {
	Type string    `json:"type"`
	Node *NodeInfo `json:"node,omitempty"`
}

// Engine holds one graph view
type Engine struct {
	log *zap.Logger

	width, height int
	options       scene.Options
	visibility    scene.Visibility
	owner         scene.Owner
	strategy      layout.Strategy
	hooks         Hooks

	snapshot *state.Snapshot
	graph    *scene.Graph
	report   scene.BuildReport
	sim      *physics.Simulation

	camera     *camera.Camera
	controller *interaction.Controller
	renderer   *render.Renderer
	frame      *image.RGBA

	selectedID string
	draggedID  string

	start time.Time
	now   time.Time
}

// New creates an engine with an empty graph
func New(cfg Config) (*Engine, error) {
	strategy, err := layout.New(cfg.Layout)
	if err != nil {
		return nil, err
	}
	if err := cfg.Options.Validate(); err != nil {
		return nil, err
	}
	renderer, err := render.New()
	if err != nil {
		return nil, apperrors.NewRenderFailed("font", err)
	}

	e := &Engine{
		log:        logger.Named("engine"),
		width:      max(cfg.Width, 1),
		height:     max(cfg.Height, 1),
		options:    cfg.Options,
		visibility: cfg.Visibility,
		owner:      cfg.Owner,
		strategy:   strategy,
		hooks:      cfg.Hooks,
		camera:     camera.New(),
		renderer:   renderer,
	}
	e.controller = interaction.New(e)
	e.frame = render.NewImage(e.width, e.height)
	e.Load(nil)
	return e, nil
}

// SetHooks replaces the callbacks
func (e *Engine) SetHooks(h Hooks) {
	e.hooks = h
}

func (e *Engine) viewport() layout.Viewport {
	return layout.Viewport{Width: float64(e.width), Height: float64(e.height)}
}

// Load replaces the graph with one built from snap. The running simulation
// is stopped before the new one is built; nodes that survive keep their
// positions.
func (e *Engine) Load(snap *state.Snapshot) {
	if e.sim != nil {
		e.sim.Stop()
	}
	prev := e.graph
	e.snapshot = snap

	g, report := scene.Build(snap, e.visibility, e.owner)
	g.AdoptPositions(prev)
	e.graph = g
	e.report = report
	e.controller.Reset()
	e.draggedID = ""
	if _, ok := g.Node(e.selectedID); !ok {
		e.selectedID = ""
	}

	e.startSimulation()

	graphNodes.Set(float64(len(g.Nodes)))
	graphLinks.Set(float64(len(g.Links)))
	droppedLinksTotal.Add(float64(report.DroppedLinks))
	e.log.Info("Graph loaded",
		zap.Int("nodes", report.Nodes),
		zap.Int("links", report.Links),
		zap.Int("hidden_nodes", report.HiddenNodes),
		zap.Int("dropped_links", report.DroppedLinks),
		zap.String("layout", string(e.strategy.Kind())),
	)
}

func (e *Engine) startSimulation() {
	e.strategy.InitialPositions(e.graph, e.viewport())
	cx, cy := e.viewport().Center()
	e.sim = physics.New(e.graph, e.strategy.Forces(), cx, cy)
	e.sim.SetOptions(e.options)
}

// Reload rebuilds the graph from the current snapshot
func (e *Engine) Reload() {
	e.Load(e.snapshot)
}

// SetLayout switches strategy, keeping node and link identity
func (e *Engine) SetLayout(kind string) error {
	strategy, err := layout.New(kind)
	if err != nil {
		return err
	}
	e.sim.Stop()
	e.strategy = strategy
	e.controller.Reset()
	e.draggedID = ""
	e.startSimulation()
	e.log.Info("Layout changed", zap.String("layout", string(strategy.Kind())))
	return nil
}

// Layout returns the active strategy kind
func (e *Engine) Layout() layout.Kind {
	return e.strategy.Kind()
}

// SetVisibility changes which node types are shown and rebuilds the graph
func (e *Engine) SetVisibility(v scene.Visibility) {
	e.visibility = v
	e.Reload()
}

// Visibility returns the per-type visibility
func (e *Engine) Visibility() scene.Visibility {
	return e.visibility
}

// SetOptions changes presentation and physics options
func (e *Engine) SetOptions(o scene.Options) error {
	if err := o.Validate(); err != nil {
		return err
	}
	e.options = o
	e.sim.SetOptions(o)
	e.sim.Reheat(0.3)
	return nil
}

// Options returns the current options
func (e *Engine) Options() scene.Options {
	return e.options
}

// Resize changes the viewport; resizing to the current size does nothing.
// The graph moves with the viewport centre and the layout re-pins its
// anchors there; a node being dragged stays under the pointer.
func (e *Engine) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return apperrors.NewInvalidOption("size", "non-positive")
	}
	if width == e.width && height == e.height {
		return nil
	}
	ox, oy := e.viewport().Center()
	e.width, e.height = width, height
	e.frame = render.NewImage(width, height)
	cx, cy := e.viewport().Center()

	dragged, dragging := e.graph.Node(e.draggedID)
	var dragX, dragY float64
	if dragging {
		dragX, dragY = dragged.X, dragged.Y
	}

	e.graph.Translate(cx-ox, cy-oy)
	e.strategy.InitialPositions(e.graph, e.viewport())
	if dragging {
		dragged.Pin(dragX, dragY)
	}
	e.sim.SetCenter(cx, cy)
	e.sim.Reheat(0.3)
	return nil
}

// Size returns the viewport size
func (e *Engine) Size() (int, int) {
	return e.width, e.height
}

// Graph returns the current graph; callers on other goroutines must go
// through Loop.Do
func (e *Engine) Graph() *scene.Graph {
	return e.graph
}

// Simulation returns the running simulation
func (e *Engine) Simulation() *physics.Simulation {
	return e.sim
}

// Report returns what the adapter kept and dropped on the last load
func (e *Engine) Report() scene.BuildReport {
	return e.report
}

// Step runs one tick and renders one frame at now
func (e *Engine) Step(now time.Time) *image.RGBA {
	if e.start.IsZero() {
		e.start = now
	}
	e.now = now

	begin := time.Now()
	if e.sim.Tick() {
		ticksTotal.Inc()
		tickDuration.Observe(time.Since(begin).Seconds())
	}

	begin = time.Now()
	e.renderer.Render(e.frame, e.Frame(now))
	renderDuration.Observe(time.Since(begin).Seconds())
	return e.frame
}

// Frame returns the render input for now
func (e *Engine) Frame(now time.Time) render.Frame {
	clock := time.Duration(0)
	if !e.start.IsZero() {
		clock = now.Sub(e.start)
	}
	return render.Frame{
		Graph:      e.graph,
		Transform:  e.camera.At(now),
		Options:    e.options,
		SelectedID: e.selectedID,
		DraggedID:  e.draggedID,
		Clock:      clock,
	}
}

// Image returns the last rendered frame
func (e *Engine) Image() *image.RGBA {
	return e.frame
}

// Transform returns the view transform at the engine's current time
func (e *Engine) Transform() camera.Transform {
	return e.camera.At(e.now)
}

// HitTest returns the topmost node under a screen point. Nodes are scanned
// in reverse draw order against their drawn radius.
func (e *Engine) HitTest(sx, sy float64) (int, bool) {
	x, y := e.ToWorld(sx, sy)
	for i := len(e.graph.Nodes) - 1; i >= 0; i-- {
		n := &e.graph.Nodes[i]
		if !n.Drawable() {
			continue
		}
		r := e.options.EffectiveRadius(n, n.ID == e.selectedID, n.ID == e.draggedID)
		if math.Hypot(n.X-x, n.Y-y) <= r {
			return i, true
		}
	}
	return -1, false
}

// ToWorld maps a screen point into simulation space
func (e *Engine) ToWorld(sx, sy float64) (float64, float64) {
	return e.Transform().Invert(sx, sy)
}

// HandlePointer feeds a pointer event through the interaction controller and
// applies the resulting intents
func (e *Engine) HandlePointer(ev interaction.Event) {
	if ev.Time.IsZero() {
		ev.Time = e.now
	}
	if !ev.Time.IsZero() {
		e.now = ev.Time
	}
	for _, in := range e.controller.Handle(ev) {
		intentsTotal.WithLabelValues(in.Kind.String()).Inc()
		e.apply(in)
	}
}

// InteractionState returns the controller state
func (e *Engine) InteractionState() interaction.State {
	return e.controller.State()
}

func (e *Engine) apply(in interaction.Intent) {
	switch in.Kind {
	case interaction.Click:
		if n := e.nodeAt(in.Node); n != nil {
			e.selectNode(n)
			info := infoOf(n)
			if e.hooks.OnNodeClick != nil {
				e.hooks.OnNodeClick(info)
			}
			e.emit(Event{Type: constants.EventClick, Node: &info})
		}
	case interaction.DragStart:
		n := e.nodeAt(in.Node)
		if n == nil {
			return
		}
		n.Pin(in.X, in.Y)
		e.draggedID = n.ID
		if e.selectedID != "" {
			e.selectedID = ""
			e.emit(Event{Type: constants.EventSelection})
		}
		e.sim.SetAlphaTarget(physics.DragAlphaTarget)
		e.sim.Reheat(0)
		info := infoOf(n)
		if e.hooks.OnDragStart != nil {
			e.hooks.OnDragStart(info)
		}
		e.emit(Event{Type: constants.EventDragStart, Node: &info})
	case interaction.DragMove:
		if n := e.nodeAt(in.Node); n != nil {
			n.Pin(in.X, in.Y)
		}
	case interaction.DragEnd:
		n := e.nodeAt(in.Node)
		if n == nil {
			return
		}
		n.Pin(in.X, in.Y)
		if x, y, ok := e.strategy.Anchor(in.Node); ok {
			n.Pin(x, y)
		} else {
			n.Unpin()
		}
		e.draggedID = ""
		e.sim.SetAlphaTarget(0)
		info := infoOf(n)
		info.X, info.Y = in.X, in.Y
		e.emit(Event{Type: constants.EventDragEnd, Node: &info})
	case interaction.Pan:
		e.camera.Pan(e.now, in.DX, in.DY)
	case interaction.Zoom:
		e.camera.ZoomAt(e.now, in.Factor, in.X, in.Y)
	}
}

// Select focuses the view on the node with the given id
func (e *Engine) Select(id string) error {
	n, ok := e.graph.Node(id)
	if !ok || !n.Drawable() {
		return apperrors.NewNodeNotFound(id)
	}
	e.selectNode(n)
	return nil
}

func (e *Engine) selectNode(n *scene.Node) {
	e.selectedID = n.ID
	e.camera.FocusOn(e.now, n.X, n.Y, float64(e.width), float64(e.height))
	info := infoOf(n)
	e.emit(Event{Type: constants.EventSelection, Node: &info})
}

// ClearSelection drops the selection and animates back to the identity view
func (e *Engine) ClearSelection() {
	e.selectedID = ""
	e.camera.Reset(e.now)
	e.emit(Event{Type: constants.EventSelection})
}

// SelectedID returns the selected node id, or ""
func (e *Engine) SelectedID() string {
	return e.selectedID
}

// DraggedID returns the dragged node id, or ""
func (e *Engine) DraggedID() string {
	return e.draggedID
}

func (e *Engine) nodeAt(i int) *scene.Node {
	if i < 0 || i >= len(e.graph.Nodes) {
		return nil
	}
	return &e.graph.Nodes[i]
}

func (e *Engine) emit(ev Event) {
	if e.hooks.OnEvent != nil {
		e.hooks.OnEvent(ev)
	}
}

func infoOf(n *scene.Node) NodeInfo {
	return NodeInfo{ID: n.ID, Label: n.Label, Type: n.Type, X: n.X, Y: n.Y}
}
