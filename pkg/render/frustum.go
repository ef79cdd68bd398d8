package render

import (
	"github.com/taigrr/noel/pkg/math3d"
)

// Plane is Normal·p + D = 0 with the normal pointing into the frustum.
type Plane struct {
	Normal math3d.Vec3
	D      float64
}

// Distance returns the signed distance from the plane to a point.
func (p Plane) Distance(point math3d.Vec3) float64 {
	return p.Normal.Dot(point) + p.D
}

// Frustum holds the six view planes: left, right, bottom, top, near, far.
type Frustum struct {
	Planes [6]Plane
}

// ExtractFrustum extracts normalized frustum planes from a view-projection
// matrix (Gribb/Hartmann).
func ExtractFrustum(m math3d.Mat4) Frustum {
	// row i, column j of a column-major matrix is m[i+j*4]
	row := func(i int) (math3d.Vec3, float64) {
		return math3d.V3(m[i], m[i+4], m[i+8]), m[i+12]
	}
	r3, w3 := row(3)

	var f Frustum
	for i := range 3 {
		ri, wi := row(i)
		f.Planes[i*2] = plane(r3.Add(ri), w3+wi)
		f.Planes[i*2+1] = plane(r3.Sub(ri), w3-wi)
	}
	return f
}

func plane(n math3d.Vec3, d float64) Plane {
	l := n.Len()
	if l == 0 {
		return Plane{Normal: n, D: d}
	}
	return Plane{Normal: n.Scale(1 / l), D: d / l}
}

// ContainsPoint reports whether p lies inside all six planes.
func (f Frustum) ContainsPoint(p math3d.Vec3) bool {
	for _, pl := range f.Planes {
		if pl.Distance(p) < 0 {
			return false
		}
	}
	return true
}

// IntersectsSphere reports whether any part of the sphere is inside.
func (f Frustum) IntersectsSphere(center math3d.Vec3, radius float64) bool {
	for _, pl := range f.Planes {
		if pl.Distance(center) < -radius {
			return false
		}
	}
	return true
}
