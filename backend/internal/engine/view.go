package engine

import (
	"image"

	"network-journal/backend/internal/camera"
	"network-journal/backend/internal/layout"
	"network-journal/backend/internal/scene"
)

// NodeView is the published position of one node
type NodeView struct {
	ID     string         `json:"id"`
	Label  string         `json:"label"`
	Type   scene.NodeType `json:"type"`
	X      float64        `json:"x"`
	Y      float64        `json:"y"`
	Focal  bool           `json:"focal,omitempty"`
	Pinned bool           `json:"pinned,omitempty"`
}

// View is a JSON-safe copy of the engine state
type View struct {
	Width       int               `json:"width"`
	Height      int               `json:"height"`
	Layout      layout.Kind       `json:"layout"`
	Options     scene.Options     `json:"options"`
	Transform   camera.Transform  `json:"transform"`
	SelectedID  string            `json:"selected_id,omitempty"`
	DraggedID   string            `json:"dragged_id,omitempty"`
	Interaction string            `json:"interaction"`
	Alpha       float64           `json:"alpha"`
	Ticks       int               `json:"ticks"`
	Report      scene.BuildReport `json:"report"`
	Nodes       []NodeView        `json:"nodes"`
}

// View copies the current state. Nodes without a usable position are left out.
func (e *Engine) View() View {
	v := View{
		Width:       e.width,
		Height:      e.height,
		Layout:      e.strategy.Kind(),
		Options:     e.options,
		Transform:   e.Transform(),
		SelectedID:  e.selectedID,
		DraggedID:   e.draggedID,
		Interaction: e.controller.State().String(),
		Alpha:       e.sim.Alpha(),
		Ticks:       e.sim.Ticks(),
		Report:      e.report,
		Nodes:       make([]NodeView, 0, len(e.graph.Nodes)),
	}
	for i := range e.graph.Nodes {
		n := &e.graph.Nodes[i]
		if !n.Drawable() {
			continue
		}
		v.Nodes = append(v.Nodes, NodeView{
			ID:     n.ID,
			Label:  n.Label,
			Type:   n.Type,
			X:      n.X,
			Y:      n.Y,
			Focal:  n.Focal,
			Pinned: n.Pinned,
		})
	}
	return v
}

// CloneImage copies the last frame so it can be encoded off the engine goroutine
func (e *Engine) CloneImage() *image.RGBA {
	out := image.NewRGBA(e.frame.Bounds())
	copy(out.Pix, e.frame.Pix)
	return out
}
