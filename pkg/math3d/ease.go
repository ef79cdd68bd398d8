package math3d

import "math"

// Approach moves current toward target by the fraction rate of the remaining
// distance. With 0 < rate <= 1 the result never passes target.
func Approach(current, target, rate float64) float64 {
	return current + (target-current)*rate
}

// FrameRate converts a per-frame easing fraction into the equivalent
// fraction for the given number of frames, which may be fractional.
// FrameRate(r, 1) == r.
func FrameRate(rate, frames float64) float64 {
	if frames == 1 {
		return rate
	}
	if frames <= 0 {
		return 0
	}
	return 1 - math.Pow(1-rate, frames)
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
