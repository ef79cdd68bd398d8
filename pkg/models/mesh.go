// Package models holds the triangle meshes drawn by the scenes: procedural
// primitives for ornaments and the star, and glTF/GLB loading for custom
// replacements.
package models

import (
	"math"

	"github.com/taigrr/noel/pkg/math3d"
)

// Mesh represents an indexed triangle mesh.
type Mesh struct {
	Name     string
	Vertices []Vertex
	Faces    [][3]int

	// BaseColor is the first material color found when loading, RGBA in
	// [0,1]. Zero when the source had none.
	BaseColor [4]float64

	radius float64
}

// Vertex holds the per-vertex attributes the rasterizer reads.
type Vertex struct {
	Position math3d.Vec3
	Normal   math3d.Vec3
}

// NewMesh creates an empty mesh.
func NewMesh(name string) *Mesh {
	return &Mesh{Name: name}
}

// AddVertex appends a vertex and returns its index.
func (m *Mesh) AddVertex(p math3d.Vec3) int {
	m.Vertices = append(m.Vertices, Vertex{Position: p})
	return len(m.Vertices) - 1
}

// AddFace appends a triangle.
func (m *Mesh) AddFace(a, b, c int) {
	m.Faces = append(m.Faces, [3]int{a, b, c})
}

// CalculateBounds caches the bounding sphere radius around the local origin.
func (m *Mesh) CalculateBounds() {
	m.radius = 0
	for _, v := range m.Vertices {
		m.radius = math.Max(m.radius, v.Position.Len())
	}
}

// CalculateSmoothNormals computes area-weighted averaged vertex normals.
func (m *Mesh) CalculateSmoothNormals() {
	for i := range m.Vertices {
		m.Vertices[i].Normal = math3d.Vec3{}
	}
	for _, f := range m.Faces {
		v0 := m.Vertices[f[0]].Position
		n := m.Vertices[f[1]].Position.Sub(v0).Cross(m.Vertices[f[2]].Position.Sub(v0))
		for _, idx := range f {
			m.Vertices[idx].Normal = m.Vertices[idx].Normal.Add(n)
		}
	}
	for i := range m.Vertices {
		m.Vertices[i].Normal = m.Vertices[i].Normal.Normalize()
	}
}

// FitRadius recenters the mesh on its centroid and scales it so its
// bounding sphere has the given radius. Used to drop arbitrary models into
// the slot of a procedural primitive.
func (m *Mesh) FitRadius(radius float64) {
	if len(m.Vertices) == 0 {
		return
	}
	var c math3d.Vec3
	for _, v := range m.Vertices {
		c = c.Add(v.Position)
	}
	c = c.Scale(1 / float64(len(m.Vertices)))
	for i := range m.Vertices {
		m.Vertices[i].Position = m.Vertices[i].Position.Sub(c)
	}
	m.CalculateBounds()
	if m.radius == 0 {
		return
	}
	s := radius / m.radius
	for i := range m.Vertices {
		m.Vertices[i].Position = m.Vertices[i].Position.Scale(s)
	}
	m.radius = radius
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Faces)
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// GetVertex returns the position and normal for vertex i.
// Implements render.MeshRenderer.
func (m *Mesh) GetVertex(i int) (pos, normal math3d.Vec3) {
	v := m.Vertices[i]
	return v.Position, v.Normal
}

// GetFace returns the vertex indices for face i.
// Implements render.MeshRenderer.
func (m *Mesh) GetFace(i int) [3]int {
	return m.Faces[i]
}

// BoundingRadius returns the cached bounding sphere radius.
// Implements render.MeshRenderer.
func (m *Mesh) BoundingRadius() float64 {
	return m.radius
}
