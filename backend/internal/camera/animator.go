package camera

import "time"

type transition struct {
	from, to Transform
	start    time.Time
	duration time.Duration
}

// Camera holds the current view transform and at most one running
// transition. Transition progress is sampled from the clock passed in, so
// the camera is independent of the simulation tick rate.
type Camera struct {
	current Transform
	active  *transition
}

// New returns a camera at the identity transform
func New() *Camera {
	return &Camera{current: Identity()}
}

// At samples the transform at now, finishing the transition once it is due
func (c *Camera) At(now time.Time) Transform {
	if c.active == nil {
		return c.current
	}
	tr := c.active
	p := 1.0
	if tr.duration > 0 {
		p = float64(now.Sub(tr.start)) / float64(tr.duration)
	}
	switch {
	case p >= 1:
		c.current = tr.to
		c.active = nil
	case p > 0:
		c.current = lerp(tr.from, tr.to, EaseOutCubic(p))
	}
	return c.current
}

// Animating reports whether a transition is still running
func (c *Camera) Animating() bool {
	return c.active != nil
}

// AnimateTo starts a transition from the transform at now to target
func (c *Camera) AnimateTo(now time.Time, target Transform, d time.Duration) {
	from := c.At(now)
	c.active = &transition{from: from, to: target, start: now, duration: d}
}

// FocusOn animates to centre the simulation point (x, y) on a w by h screen
func (c *Camera) FocusOn(now time.Time, x, y, w, h float64) {
	c.AnimateTo(now, Focus(x, y, w, h), FocusDuration)
}

// Reset animates back to the identity transform
func (c *Camera) Reset(now time.Time) {
	c.AnimateTo(now, Identity(), ResetDuration)
}

// Set jumps to t, cancelling any transition
func (c *Camera) Set(t Transform) {
	c.active = nil
	c.current = t
}

// Pan shifts the view; user input cancels a running transition
func (c *Camera) Pan(now time.Time, dx, dy float64) Transform {
	c.Set(c.At(now).Pan(dx, dy))
	return c.current
}

// ZoomAt zooms around a screen point; user input cancels a running transition
func (c *Camera) ZoomAt(now time.Time, factor, sx, sy float64) Transform {
	c.Set(c.At(now).ZoomAt(factor, sx, sy))
	return c.current
}
