package reel

import (
	"math"

	"github.com/taigrr/noel/pkg/math3d"
	"github.com/taigrr/noel/pkg/render"
)

// Ribbon geometry.
const (
	Radius       = 8.0
	FrameWidth   = 3.5
	FrameHeight  = 2.5
	FrameSpacing = 0.5
	AngleStep    = (FrameWidth + FrameSpacing) / Radius

	StripWidth  = FrameWidth + 0.2
	StripHeight = FrameHeight + 0.8

	HoleSize  = 0.15
	HoleCount = 8
	holeZ     = 0.01
	photoZ    = 0.02
)

// Strip and sprocket hole colors.
var (
	StripColor = render.Hex(0x0a0a0a)
	HoleColor  = render.Hex(0x333333)
)

// focus is the point every frame turns toward.
var focus = math3d.V3(0, 0, 5)

// Slot is the placement of one frame on the ribbon.
type Slot struct {
	Angle float64
	Pos   math3d.Vec3
	Local math3d.Mat4 // frame transform inside the ribbon group
}

// Layout places n frames along an arc of radius Radius centered on the
// group origin, each facing the viewer.
func Layout(n int) []Slot {
	slots := make([]Slot, n)
	for i := range n {
		a := float64(i)*AngleStep - float64(n)*AngleStep/2
		pos := math3d.V3(
			math.Sin(a)*Radius,
			math.Sin(float64(i)*0.5)*0.3,
			math.Cos(a)*Radius-Radius,
		)
		slots[i] = Slot{
			Angle: a,
			Pos:   pos,
			Local: math3d.Facing(pos, focus, math3d.Up()),
		}
	}
	return slots
}

// holeOffsets returns the frame-local centers of the sprocket holes, a row
// along the top edge then a row along the bottom.
func holeOffsets() []math3d.Vec3 {
	out := make([]math3d.Vec3, 0, HoleCount*2)
	y := FrameHeight/2 + 0.25
	for _, sy := range []float64{y, -y} {
		for i := range HoleCount {
			x := (float64(i)/float64(HoleCount-1) - 0.5) * FrameWidth
			out = append(out, math3d.V3(x, sy, holeZ))
		}
	}
	return out
}
