package scene

import (
	"fmt"
	"strings"

	"network-journal/backend/internal/state"
)

// Visibility hides node types; types not present in the map are visible
type Visibility map[NodeType]bool

// Visible reports whether nodes of type t are shown
func (v Visibility) Visible(t NodeType) bool {
	shown, ok := v[t]
	return !ok || shown
}

// Hide returns a visibility map hiding the named types
func Hide(types ...string) Visibility {
	v := Visibility{}
	for _, name := range types {
		v[ParseNodeType(name)] = false
	}
	return v
}

// Owner identifies the focal node: by id when set, otherwise by person name
type Owner struct {
	ID   string
	Name string
}

func (o Owner) matches(n state.SnapshotNode) bool {
	if o.ID != "" {
		return n.ID == o.ID
	}
	return o.Name != "" && ParseNodeType(n.Type) == TypePerson && strings.EqualFold(n.Label, o.Name)
}

// BuildReport counts what the adapter kept and dropped
type BuildReport struct {
	Nodes        int `json:"nodes"`
	HiddenNodes  int `json:"hidden_nodes"`
	Links        int `json:"links"`
	DroppedLinks int `json:"dropped_links"`
}

// Build converts a snapshot into a simulation-ready graph. Nodes of hidden
// types are left out, and any link whose endpoint is hidden or missing (or
// which loops onto its own source) is dropped, so every link of the result
// resolves to two distinct nodes.
func Build(snap *state.Snapshot, vis Visibility, owner Owner) (*Graph, BuildReport) {
	var report BuildReport
	if snap == nil {
		return NewGraph(nil, nil), report
	}

	nodes := make([]Node, 0, len(snap.Nodes))
	index := make(map[string]int, len(snap.Nodes))
	focalSet := false
	for _, sn := range snap.Nodes {
		t := ParseNodeType(sn.Type)
		if !vis.Visible(t) {
			report.HiddenNodes++
			continue
		}
		if _, dup := index[sn.ID]; dup || sn.ID == "" {
			continue
		}
		label := sn.Label
		if label == "" {
			label = sn.ID
		}
		n := Node{
			ID:         sn.ID,
			Label:      label,
			Type:       t,
			Properties: sn.Properties,
		}
		if !focalSet && owner.matches(sn) {
			n.Focal = true
			focalSet = true
		}
		index[sn.ID] = len(nodes)
		nodes = append(nodes, n)
	}

	links := make([]Link, 0, len(snap.Links))
	for _, sl := range snap.Links {
		src, okSrc := index[sl.SourceID]
		tgt, okTgt := index[sl.TargetID]
		if !okSrc || !okTgt || src == tgt {
			report.DroppedLinks++
			continue
		}
		id := sl.ID
		if id == "" {
			id = fmt.Sprintf("%s-%s-%s", sl.SourceID, sl.Type, sl.TargetID)
		}
		links = append(links, Link{
			ID:         id,
			Source:     src,
			Target:     tgt,
			Type:       sl.Type,
			Properties: sl.Properties,
		})
	}

	report.Nodes = len(nodes)
	report.Links = len(links)
	return NewGraph(nodes, links), report
}
