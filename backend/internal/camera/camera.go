// Package camera maps simulation space to screen space and animates focus
// transitions between transforms.
package camera

import (
	"math"
	"time"
)

const (
	MinScale   = 0.1
	MaxScale   = 4.0
	FocusScale = 1.5

	FocusDuration = 800 * time.Millisecond
	ResetDuration = 600 * time.Millisecond
)

// Transform is screen = world*K + (X, Y)
type Transform struct {
	K float64 `json:"k"`
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Identity is the transform of a fresh view
func Identity() Transform {
	return Transform{K: 1}
}

// Apply maps a simulation point to the screen
func (t Transform) Apply(x, y float64) (float64, float64) {
	return x*t.K + t.X, y*t.K + t.Y
}

// Invert maps a screen point back to simulation space
func (t Transform) Invert(sx, sy float64) (float64, float64) {
	return (sx - t.X) / t.K, (sy - t.Y) / t.K
}

// Pan shifts the view by a screen-space delta
func (t Transform) Pan(dx, dy float64) Transform {
	return Transform{K: t.K, X: t.X + dx, Y: t.Y + dy}
}

// ZoomAt scales by factor around the screen point (sx, sy), which stays put.
// The resulting scale is clamped to [MinScale, MaxScale].
func (t Transform) ZoomAt(factor, sx, sy float64) Transform {
	k := ClampScale(t.K * factor)
	wx, wy := t.Invert(sx, sy)
	return Transform{K: k, X: sx - wx*k, Y: sy - wy*k}
}

// ClampScale limits k to the allowed zoom range
func ClampScale(k float64) float64 {
	if math.IsNaN(k) {
		return 1
	}
	return math.Max(MinScale, math.Min(MaxScale, k))
}

// Focus is the transform that centres (x, y) in a w by h screen at FocusScale
func Focus(x, y, w, h float64) Transform {
	return Transform{K: FocusScale, X: w/2 - FocusScale*x, Y: h/2 - FocusScale*y}
}

func lerp(a, b Transform, e float64) Transform {
	return Transform{
		K: a.K + (b.K-a.K)*e,
		X: a.X + (b.X-a.X)*e,
		Y: a.Y + (b.Y-a.Y)*e,
	}
}

// EaseOutCubic decelerates toward the end of the transition
func EaseOutCubic(p float64) float64 {
	q := 1 - p
	return 1 - q*q*q
}
