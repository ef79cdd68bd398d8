package input

import (
	"math"
	"time"
)

// Double-click detection defaults.
const (
	DoubleClickWindow = 400 * time.Millisecond
	DoubleClickSlop   = 4.0 // pixels
)

// ClickTracker turns pairs of nearby pointer-downs into double clicks.
// None of the backends report double clicks natively.
type ClickTracker struct {
	Window time.Duration
	Slop   float64

	last    time.Time
	lx, ly  float64
	pending bool
}

// Observe inspects a pointer-down and reports whether it completes a
// double click. A completed pair resets the tracker so a third click starts
// over.
func (c *ClickTracker) Observe(ev Event) bool {
	if ev.Kind != PointerDown {
		return false
	}
	window, slop := c.Window, c.Slop
	if window == 0 {
		window = DoubleClickWindow
	}
	if slop == 0 {
		slop = DoubleClickSlop
	}

	if c.pending && ev.Time.Sub(c.last) <= window &&
		math.Abs(ev.X-c.lx) <= slop && math.Abs(ev.Y-c.ly) <= slop {
		c.pending = false
		return true
	}
	c.pending = true
	c.last, c.lx, c.ly = ev.Time, ev.X, ev.Y
	return false
}
