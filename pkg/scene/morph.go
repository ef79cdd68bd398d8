package scene

import "github.com/taigrr/noel/pkg/math3d"

// MorphRate is the fraction of the remaining distance the morph factor
// covers each frame.
const MorphRate = 0.06

// Morph is the scalar blend between the assembled tree (0) and the fully
// scattered cloud (1).
type Morph struct {
	Value  float64
	Target float64
}

// SetShattered selects the target state.
func (m *Morph) SetShattered(shattered bool) {
	if shattered {
		m.Target = 1
	} else {
		m.Target = 0
	}
}

// Step eases Value toward Target by the given number of frames. The value
// approaches the target asymptotically and never passes it.
func (m *Morph) Step(frames float64) {
	m.Value = math3d.Approach(m.Value, m.Target, math3d.FrameRate(MorphRate, frames))
}

// Visibility holds which element groups are drawn for a morph value.
type Visibility struct {
	Decorations bool // ornaments
	Star        bool
	Photos      bool // photo surfaces hung on the tree
}

// Morph thresholds above which element groups disappear.
const (
	DecorationsHideAt = 0.99
	StarHideAt        = 0.8
	PhotosHideAt      = 0.9
)

// VisibilityAt returns the visibility of each group at morph value m.
func VisibilityAt(m float64) Visibility {
	return Visibility{
		Decorations: m < DecorationsHideAt,
		Star:        m < StarHideAt,
		Photos:      m < PhotosHideAt,
	}
}

// TreeOpacity is the opacity of the tree particles at morph value m.
func TreeOpacity(m float64) float64 {
	return 0.85 * (1 - m*0.9)
}

// FloorOpacity is the opacity of the floor glow particles.
func FloorOpacity(m float64) float64 {
	return 0.3 * (1 - m)
}

// StarLight is the intensity of the star's point light.
func StarLight(m float64) float64 {
	return 4 * (1 - m)
}

// DecorationsDrop is how far the ornaments sink below their rest height.
func DecorationsDrop(m float64) float64 {
	return -m * 20
}
