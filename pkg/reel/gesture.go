package reel

import "math"

// GestureState is the pointer state of the reel.
type GestureState int

const (
	Idle GestureState = iota
	Dragging
)

func (s GestureState) String() string {
	if s == Dragging {
		return "dragging"
	}
	return "idle"
}

// Gesture tells drags from taps on a horizontal ribbon.
type Gesture struct {
	State  GestureState
	StartX float64
	LastX  float64
}

// Down starts a gesture at x.
func (g *Gesture) Down(x float64) {
	g.State = Dragging
	g.StartX, g.LastX = x, x
}

// Move returns the horizontal distance since the last event while dragging.
func (g *Gesture) Move(x float64) float64 {
	if g.State != Dragging {
		return 0
	}
	dx := x - g.LastX
	g.LastX = x
	return dx
}

// Up ends the gesture and reports whether it was a tap: the pointer ended
// less than threshold pixels from where it went down. An Up without a
// preceding Down is never a tap.
func (g *Gesture) Up(x, threshold float64) (tap bool) {
	if g.State != Dragging {
		return false
	}
	g.State = Idle
	return math.Abs(x-g.StartX) < threshold
}
