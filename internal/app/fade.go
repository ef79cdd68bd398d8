package app

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// fadeSeconds matches the overlay transition when the gallery toggles.
const fadeSeconds = 1.0

// fader tweens an opacity toward 0 or 1. Retargeting mid-tween starts a new
// tween from the current value.
type fader struct {
	value  float32
	target float32
	tween  *gween.Tween
}

func newFader(v float32) fader {
	return fader{value: v, target: v}
}

func (f *fader) Set(target float32) {
	if target == f.target {
		return
	}
	f.target = target
	f.tween = gween.New(f.value, target, fadeSeconds, ease.OutCubic)
}

func (f *fader) Update(dt float64) {
	if f.tween == nil {
		return
	}
	v, done := f.tween.Update(float32(dt))
	f.value = v
	if done {
		f.value = f.target
		f.tween = nil
	}
}

func (f *fader) Value() float64 {
	return float64(f.value)
}
