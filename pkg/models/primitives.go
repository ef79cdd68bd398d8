package models

import (
	"math"

	"github.com/taigrr/noel/pkg/math3d"
)

// UVSphere builds a latitude/longitude sphere centered on the origin.
func UVSphere(radius float64, segments, rings int) *Mesh {
	segments = max(3, segments)
	rings = max(2, rings)
	m := NewMesh("sphere")

	for r := 0; r <= rings; r++ {
		phi := math.Pi * float64(r) / float64(rings)
		y := math.Cos(phi) * radius
		ring := math.Sin(phi) * radius
		for s := 0; s <= segments; s++ {
			theta := 2 * math.Pi * float64(s) / float64(segments)
			m.AddVertex(math3d.V3(ring*math.Cos(theta), y, ring*math.Sin(theta)))
		}
	}

	stride := segments + 1
	for r := range rings {
		for s := range segments {
			a := r*stride + s
			b := a + stride
			if r != 0 {
				m.AddFace(a, b, a+1)
			}
			if r != rings-1 {
				m.AddFace(a+1, b, b+1)
			}
		}
	}

	m.CalculateSmoothNormals()
	m.CalculateBounds()
	return m
}

// Octahedron builds a regular octahedron with vertices at distance radius
// on each axis.
func Octahedron(radius float64) *Mesh {
	m := NewMesh("octahedron")
	px := m.AddVertex(math3d.V3(radius, 0, 0))
	nx := m.AddVertex(math3d.V3(-radius, 0, 0))
	py := m.AddVertex(math3d.V3(0, radius, 0))
	ny := m.AddVertex(math3d.V3(0, -radius, 0))
	pz := m.AddVertex(math3d.V3(0, 0, radius))
	nz := m.AddVertex(math3d.V3(0, 0, -radius))

	m.AddFace(px, py, pz)
	m.AddFace(pz, py, nx)
	m.AddFace(nx, py, nz)
	m.AddFace(nz, py, px)
	m.AddFace(px, pz, ny)
	m.AddFace(pz, nx, ny)
	m.AddFace(nx, nz, ny)
	m.AddFace(nz, px, ny)

	m.CalculateSmoothNormals()
	m.CalculateBounds()
	return m
}
