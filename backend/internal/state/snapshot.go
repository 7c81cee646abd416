package state

import (
	"encoding/json"
	"fmt"
	"io"

	apperrors "network-journal/backend/pkg/errors"
)

// Snapshot is the complete node/link collection handed to the graph view.
// It is treated as immutable once handed over; a change produces a new Snapshot.
type Snapshot struct {
	Nodes []SnapshotNode `json:"nodes"`
	Links []SnapshotLink `json:"links"`
}

// SnapshotNode is one entity of the contact network
type SnapshotNode struct {
	ID         string                 `json:"id"`
	Label      string                 `json:"label"`
	Type       string                 `json:"type"` // person, company, topic, event, location, interaction
	Properties map[string]interface{} `json:"properties,omitempty"`
}

// SnapshotLink is one relationship between two entities
type SnapshotLink struct {
	ID         string                 `json:"id"`
	SourceID   string                 `json:"source_id"`
	TargetID   string                 `json:"target_id"`
	Type       string                 `json:"type"` // KNOWS, WORKS_AT, ...
	Properties map[string]interface{} `json:"properties,omitempty"`
}

// UnmarshalJSON accepts both the links/source_id form and the older edges/source form
func (s *Snapshot) UnmarshalJSON(data []byte) error {
	var raw struct {
		Nodes []SnapshotNode `json:"nodes"`
		Links []SnapshotLink `json:"links"`
		Edges []SnapshotLink `json:"edges"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	s.Nodes = raw.Nodes
	s.Links = append(raw.Links, raw.Edges...)
	return nil
}

// UnmarshalJSON accepts source/target as aliases of source_id/target_id
func (l *SnapshotLink) UnmarshalJSON(data []byte) error {
	type plain SnapshotLink
	var raw struct {
		plain
		Source string `json:"source"`
		Target string `json:"target"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*l = SnapshotLink(raw.plain)
	if l.SourceID == "" {
		l.SourceID = raw.Source
	}
	if l.TargetID == "" {
		l.TargetID = raw.Target
	}
	return nil
}

// Decode reads a JSON snapshot and validates it
func Decode(r io.Reader) (*Snapshot, error) {
	var snap Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return nil, apperrors.NewInvalidSnapshot("malformed JSON", err)
	}
	if err := snap.Validate(); err != nil {
		return nil, apperrors.NewInvalidSnapshot("structure", err)
	}
	return &snap, nil
}

// Validate checks node identity. Links pointing at unknown nodes are not an
// error here: the graph view drops them when it builds its scene.
func (s *Snapshot) Validate() error {
	seen := make(map[string]struct{}, len(s.Nodes))
	for i, n := range s.Nodes {
		if n.ID == "" {
			return ErrInvalidNode{Index: i, Reason: "id cannot be empty"}
		}
		if _, dup := seen[n.ID]; dup {
			return ErrInvalidNode{Index: i, Reason: fmt.Sprintf("duplicate id %q", n.ID)}
		}
		seen[n.ID] = struct{}{}
	}
	return nil
}

// NodeByID returns the node with the given id
func (s *Snapshot) NodeByID(id string) (SnapshotNode, bool) {
	for _, n := range s.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return SnapshotNode{}, false
}

// Errors

type ErrInvalidNode struct {
	Index  int
	Reason string
}

func (e ErrInvalidNode) Error() string {
	return fmt.Sprintf("invalid node at index %d: %s", e.Index, e.Reason)
}
