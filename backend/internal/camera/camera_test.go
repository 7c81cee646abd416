package camera

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestApplyInvertRoundTrip(t *testing.T) {
	tr := Transform{K: 2.5, X: -30, Y: 12}
	x, y := tr.Invert(tr.Apply(17, -4))
	assert.InDelta(t, 17, x, 1e-9)
	assert.InDelta(t, -4, y, 1e-9)
}

func TestZoomAtKeepsPointFixedAndClamps(t *testing.T) {
	tr := Identity()
	wx, wy := tr.Invert(300, 200)

	zoomed := tr.ZoomAt(2, 300, 200)
	assert.Equal(t, 2.0, zoomed.K)
	sx, sy := zoomed.Apply(wx, wy)
	assert.InDelta(t, 300, sx, 1e-9)
	assert.InDelta(t, 200, sy, 1e-9)

	assert.Equal(t, MaxScale, tr.ZoomAt(100, 0, 0).K)
	assert.Equal(t, MinScale, tr.ZoomAt(0.001, 0, 0).K)
}

func TestFocusCentresNode(t *testing.T) {
	const w, h = 1280.0, 800.0
	start := time.Unix(1000, 0)
	c := New()
	c.FocusOn(start, 900, 120, w, h)

	assert.True(t, c.Animating())
	mid := c.At(start.Add(FocusDuration / 2))
	assert.Greater(t, mid.K, 1.0)
	assert.Less(t, mid.K, FocusScale)
	// ease-out covers more than half the way at half time
	assert.Greater(t, mid.K, 1.25)

	end := c.At(start.Add(FocusDuration))
	assert.False(t, c.Animating())
	assert.Equal(t, FocusScale, end.K)
	sx, sy := end.Apply(900, 120)
	assert.InDelta(t, w/2, sx, 1e-9)
	assert.InDelta(t, h/2, sy, 1e-9)
}

func TestResetReturnsToIdentity(t *testing.T) {
	start := time.Unix(1000, 0)
	c := New()
	c.Set(Focus(10, 10, 100, 100))
	c.Reset(start)
	assert.Equal(t, Identity(), c.At(start.Add(ResetDuration+time.Millisecond)))
}

func TestPanCancelsTransition(t *testing.T) {
	start := time.Unix(1000, 0)
	c := New()
	c.FocusOn(start, 100, 100, 800, 600)

	at := start.Add(200 * time.Millisecond)
	before := c.At(at)
	after := c.Pan(at, 5, -5)

	assert.False(t, c.Animating())
	assert.Equal(t, before.K, after.K)
	assert.InDelta(t, before.X+5, after.X, 1e-9)
	assert.Equal(t, after, c.At(start.Add(time.Hour)))
}

func TestAtBeforeStartKeepsCurrent(t *testing.T) {
	start := time.Unix(1000, 0)
	c := New()
	c.FocusOn(start, 0, 0, 100, 100)
	assert.Equal(t, Identity(), c.At(start.Add(-time.Second)))
}

func TestEaseOutCubic(t *testing.T) {
	assert.Equal(t, 0.0, EaseOutCubic(0))
	assert.Equal(t, 1.0, EaseOutCubic(1))
	assert.InDelta(t, 0.875, EaseOutCubic(0.5), 1e-12)
}
