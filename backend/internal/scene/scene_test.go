package scene

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"network-journal/backend/internal/state"
	apperrors "network-journal/backend/pkg/errors"
)

func sampleSnapshot() *state.Snapshot {
	return &state.Snapshot{
		Nodes: []state.SnapshotNode{
			{ID: "p1", Label: "Alice", Type: "person"},
			{ID: "p2", Label: "Bob", Type: "person"},
			{ID: "c1", Label: "Acme", Type: "company"},
			{ID: "i1", Label: "Coffee (2024-01-02)", Type: "interaction"},
		},
		Links: []state.SnapshotLink{
			{ID: "e1", SourceID: "p1", TargetID: "p2", Type: "KNOWS"},
			{ID: "e2", SourceID: "p2", TargetID: "c1", Type: "WORKS_AT"},
			{ID: "e3", SourceID: "p1", TargetID: "i1", Type: "PARTICIPATED_IN"},
			{ID: "e4", SourceID: "p1", TargetID: "ghost", Type: "KNOWS"},
			{SourceID: "c1", TargetID: "p1", Type: "KNOWS"},
		},
	}
}

func TestBuild_ResolvesLinksAndFocal(t *testing.T) {
	g, report := Build(sampleSnapshot(), nil, Owner{Name: "alice"})

	require.Len(t, g.Nodes, 4)
	assert.Equal(t, 0, g.Focal())
	assert.Equal(t, 4, report.Links)
	assert.Equal(t, 1, report.DroppedLinks)

	for _, l := range g.Links {
		assert.GreaterOrEqual(t, l.Source, 0)
		assert.Less(t, l.Source, len(g.Nodes))
		assert.Less(t, l.Target, len(g.Nodes))
		assert.NotEqual(t, l.Source, l.Target)
	}
	assert.Equal(t, "c1-KNOWS-p1", g.Links[3].ID)
}

func TestBuild_HiddenTypesDropLinks(t *testing.T) {
	g, report := Build(sampleSnapshot(), Hide("interaction"), Owner{ID: "p1"})

	assert.Len(t, g.Nodes, 3)
	assert.Equal(t, 1, report.HiddenNodes)
	assert.Equal(t, 2, report.DroppedLinks)
	_, ok := g.Index("i1")
	assert.False(t, ok)
}

func TestBuild_OwnerByIDWinsOverName(t *testing.T) {
	g, _ := Build(sampleSnapshot(), nil, Owner{ID: "p2", Name: "Alice"})
	assert.Equal(t, 1, g.Focal())
}

func TestBuild_NoOwner(t *testing.T) {
	g, _ := Build(sampleSnapshot(), nil, Owner{})
	assert.Equal(t, -1, g.Focal())
}

func TestBuild_NilSnapshot(t *testing.T) {
	g, report := Build(nil, nil, Owner{})
	assert.Empty(t, g.Nodes)
	assert.Zero(t, report.Nodes)
}

func TestAdoptPositions(t *testing.T) {
	prev, _ := Build(sampleSnapshot(), nil, Owner{})
	prev.Nodes[1].Place(10, 20)

	next, _ := Build(sampleSnapshot(), Hide("company"), Owner{})
	n := next.AdoptPositions(prev)

	assert.Equal(t, 1, n)
	bob, _ := next.Node("p2")
	assert.True(t, bob.Placed)
	assert.Equal(t, 10.0, bob.X)
	assert.Equal(t, 20.0, bob.Y)
}

func TestNodePinning(t *testing.T) {
	var n Node
	assert.False(t, n.Drawable())

	n.VX = 3
	n.Pin(5, 6)
	assert.True(t, n.Pinned)
	assert.True(t, n.Drawable())
	assert.Zero(t, n.VX)

	n.Unpin()
	assert.False(t, n.Pinned)
	assert.Equal(t, 5.0, n.X)
}

func TestParseNodeType(t *testing.T) {
	assert.Equal(t, TypeCompany, ParseNodeType(" Company"))
	assert.Equal(t, TypeUnknown, ParseNodeType("spaceship"))
	assert.Equal(t, "interaction", TypeInteraction.String())
}

func TestOptionParsing(t *testing.T) {
	size, err := ParseNodeSize("large")
	require.NoError(t, err)
	assert.Equal(t, 1.3, size.Multiplier())

	_, err = ParseGravity("crushing")
	require.Error(t, err)
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeLayout))

	speed, err := ParseAnimationSpeed("FAST")
	require.NoError(t, err)
	assert.Equal(t, SpeedFast, speed)
}

func TestOptionsJSON(t *testing.T) {
	opts := DefaultOptions()
	opts.Spring = SpringTight

	data, err := json.Marshal(opts)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"spring_strength":"tight"`)

	var decoded Options
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, opts, decoded)

	err = json.Unmarshal([]byte(`{"node_size":"huge"}`), &decoded)
	assert.Error(t, err)
}

func TestEffectiveRadius(t *testing.T) {
	opts := DefaultOptions()
	owner := &Node{Focal: true}
	other := &Node{Pulse: 1}

	assert.Equal(t, 35.0, opts.EffectiveRadius(owner, false, false))
	assert.InDelta(t, 25*1.15*1.2*1.15, opts.EffectiveRadius(other, true, true), 1e-9)

	opts.NodeSize = SizeSmall
	assert.InDelta(t, 28.0, opts.EffectiveRadius(owner, false, false), 1e-9)
}

func TestOptionsValidate(t *testing.T) {
	opts := DefaultOptions()
	assert.NoError(t, opts.Validate())
	opts.LinkOpacity = 1.5
	assert.Error(t, opts.Validate())
}
