package math3d

import "math"

// Ray is a half-line starting at Origin along the unit vector Dir.
type Ray struct {
	Origin Vec3
	Dir    Vec3
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float64) Vec3 {
	return r.Origin.AddScaled(r.Dir, t)
}

// IntersectSphere returns the nearest non-negative distance at which the ray
// enters the sphere. ok is false on a miss.
func (r Ray) IntersectSphere(center Vec3, radius float64) (t float64, ok bool) {
	oc := r.Origin.Sub(center)
	b := oc.Dot(r.Dir)
	c := oc.LenSq() - radius*radius
	disc := b*b - c
	if disc < 0 {
		return 0, false
	}
	sq := math.Sqrt(disc)
	t = -b - sq
	if t < 0 {
		// origin inside the sphere
		t = -b + sq
	}
	if t < 0 {
		return 0, false
	}
	return t, true
}

// Quad is a planar rectangle: Center plus half extents along two
// perpendicular axes.
type Quad struct {
	Center Vec3
	AxisU  Vec3 // half-width vector
	AxisV  Vec3 // half-height vector
}

// QuadFromMatrix builds the quad of a w×h plane lying in the local XY plane
// of the transform m.
func QuadFromMatrix(m Mat4, w, h float64) Quad {
	return Quad{
		Center: m.Column(3),
		AxisU:  m.Column(0).Scale(w / 2),
		AxisV:  m.Column(1).Scale(h / 2),
	}
}

// Corners returns the four corners in bottom-left, bottom-right, top-right,
// top-left order.
func (q Quad) Corners() [4]Vec3 {
	return [4]Vec3{
		q.Center.Sub(q.AxisU).Sub(q.AxisV),
		q.Center.Add(q.AxisU).Sub(q.AxisV),
		q.Center.Add(q.AxisU).Add(q.AxisV),
		q.Center.Sub(q.AxisU).Add(q.AxisV),
	}
}

// IntersectQuad returns the distance along the ray to the quad, hitting
// either face.
func (r Ray) IntersectQuad(q Quad) (t float64, ok bool) {
	n := q.AxisU.Cross(q.AxisV)
	denom := n.Dot(r.Dir)
	if math.Abs(denom) < 1e-12 {
		return 0, false
	}
	t = q.Center.Sub(r.Origin).Dot(n) / denom
	if t < 0 {
		return 0, false
	}
	d := r.At(t).Sub(q.Center)
	u := d.Dot(q.AxisU) / q.AxisU.LenSq()
	v := d.Dot(q.AxisV) / q.AxisV.LenSq()
	if u < -1 || u > 1 || v < -1 || v > 1 {
		return 0, false
	}
	return t, true
}
