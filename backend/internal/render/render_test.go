package render

import (
	"bytes"
	"image/png"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"network-journal/backend/internal/camera"
	"network-journal/backend/internal/scene"
)

func sampleGraph() *scene.Graph {
	nodes := []scene.Node{
		{ID: "alice", Label: "Alice Wonderland-Smith", Type: scene.TypePerson, Focal: true},
		{ID: "acme", Label: "Acme Corporation", Type: scene.TypeCompany},
		{ID: "go", Label: "Go", Type: scene.TypeTopic},
	}
	nodes[0].Pin(200, 150)
	nodes[1].Place(120, 90)
	nodes[2].Place(280, 200)
	nodes[2].Pulse = 0.5
	return scene.NewGraph(nodes, []scene.Link{
		{ID: "l1", Source: 0, Target: 1, Type: "WORKS_AT"},
		{ID: "l2", Source: 0, Target: 2, Type: "INTERESTED_IN"},
	})
}

func sampleFrame() Frame {
	return Frame{
		Graph:      sampleGraph(),
		Transform:  camera.Identity(),
		Options:    scene.DefaultOptions(),
		SelectedID: "acme",
		DraggedID:  "go",
		Clock:      420 * time.Millisecond,
	}
}

func TestRenderIsDeterministic(t *testing.T) {
	r, err := New()
	require.NoError(t, err)
	f := sampleFrame()

	a := NewImage(400, 300)
	b := NewImage(400, 300)
	r.Render(a, f)
	r.Render(b, f)
	assert.True(t, bytes.Equal(a.Pix, b.Pix))

	// a dirty target is fully repainted
	r.Render(a, Frame{Graph: scene.NewGraph(nil, nil), Transform: camera.Identity()})
	r.Render(a, f)
	assert.True(t, bytes.Equal(a.Pix, b.Pix))
}

func TestRenderDoesNotMutateGraph(t *testing.T) {
	r, err := New()
	require.NoError(t, err)
	f := sampleFrame()
	before := append([]scene.Node(nil), f.Graph.Nodes...)

	r.Render(NewImage(400, 300), f)
	assert.Equal(t, before, f.Graph.Nodes)
}

func TestRenderSkipsUnplacedAndNonFiniteNodes(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	nodes := []scene.Node{
		{ID: "a", Label: "A", Type: scene.TypePerson},
		{ID: "b", Label: "B", Type: scene.TypeEvent},
	}
	nodes[1].Place(math.NaN(), 10)
	g := scene.NewGraph(nodes, []scene.Link{{ID: "l", Source: 0, Target: 1}})

	img := NewImage(100, 100)
	r.Render(img, Frame{Graph: g, Transform: camera.Identity(), Options: scene.DefaultOptions()})

	empty := NewImage(100, 100)
	r.Render(empty, Frame{Transform: camera.Identity()})
	assert.True(t, bytes.Equal(img.Pix, empty.Pix))
}

func TestRenderDrawsNodesUnderTransform(t *testing.T) {
	r, err := New()
	require.NoError(t, err)
	f := sampleFrame()
	f.Options.ShowGlow = false
	f.Transform = camera.Transform{K: 2, X: -200, Y: -150}

	img := NewImage(400, 300)
	r.Render(img, f)

	// alice at (200,150) lands on (200,150) under this transform
	bg := img.RGBAAt(395, 5)
	assert.NotEqual(t, bg, img.RGBAAt(200, 150))
}

func TestLabelTruncation(t *testing.T) {
	assert.Equal(t, "Alice Wond…", LabelFor("Alice Wonderland", true))
	assert.Equal(t, "Alice Wo…", LabelFor("Alice Wonderland", false))
	assert.Equal(t, "Go", LabelFor("Go", false))
	assert.Equal(t, "Zoë Åberg-…", LabelFor("Zoë Åberg-Lindqvist", true))
}

func TestStyleTableCoversEveryType(t *testing.T) {
	for _, nt := range scene.NodeTypes() {
		s := StyleFor(nt)
		assert.Equal(t, uint8(255), s.Fill.A, nt.String())
	}
	assert.Equal(t, StyleFor(scene.TypeUnknown), StyleFor(scene.NodeType(99)))
}

func TestEncodePNG(t *testing.T) {
	r, err := New()
	require.NoError(t, err)
	img := NewImage(64, 48)
	r.Render(img, sampleFrame())

	data, err := PNG(img)
	require.NoError(t, err)
	decoded, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, img.Bounds(), decoded.Bounds())
}
