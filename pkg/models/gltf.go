package models

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/taigrr/noel/pkg/math3d"
)

// ErrNoGeometry is returned when a document contains no triangle primitives.
var ErrNoGeometry = errors.New("models: no triangle geometry")

// LoadGLB loads every triangle primitive of a glTF or GLB file into a single
// mesh. Buffers must be embedded or resolvable next to the file.
func LoadGLB(path string) (*Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("models: open %s: %w", path, err)
	}
	mesh, err := FromDocument(doc, filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("models: %s: %w", path, err)
	}
	return mesh, nil
}

// FromDocument converts a decoded glTF document into a mesh.
func FromDocument(doc *gltf.Document, name string) (*Mesh, error) {
	mesh := NewMesh(name)

	for _, m := range doc.Meshes {
		for _, prim := range m.Primitives {
			if prim.Mode != gltf.PrimitiveTriangles {
				continue
			}
			if err := appendPrimitive(doc, prim, mesh); err != nil {
				return nil, fmt.Errorf("mesh %q: %w", m.Name, err)
			}
			if prim.Material != nil && mesh.BaseColor == ([4]float64{}) {
				mesh.BaseColor = baseColor(doc, *prim.Material)
			}
		}
	}

	if len(mesh.Faces) == 0 {
		return nil, ErrNoGeometry
	}

	mesh.CalculateSmoothNormals()
	mesh.CalculateBounds()
	return mesh, nil
}

func appendPrimitive(doc *gltf.Document, prim *gltf.Primitive, mesh *Mesh) error {
	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return nil
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return fmt.Errorf("read positions: %w", err)
	}

	base := len(mesh.Vertices)
	for _, p := range positions {
		mesh.AddVertex(math3d.V3(float64(p[0]), float64(p[1]), float64(p[2])))
	}

	if prim.Indices == nil {
		for i := 0; i+2 < len(positions); i += 3 {
			mesh.AddFace(base+i, base+i+1, base+i+2)
		}
		return nil
	}

	indices, err := modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
	if err != nil {
		return fmt.Errorf("read indices: %w", err)
	}
	for i := 0; i+2 < len(indices); i += 3 {
		a, b, c := int(indices[i]), int(indices[i+1]), int(indices[i+2])
		if a >= len(positions) || b >= len(positions) || c >= len(positions) {
			return fmt.Errorf("index out of range at face %d", i/3)
		}
		mesh.AddFace(base+a, base+b, base+c)
	}
	return nil
}

func baseColor(doc *gltf.Document, idx int) [4]float64 {
	if idx < 0 || idx >= len(doc.Materials) {
		return [4]float64{}
	}
	pbr := doc.Materials[idx].PBRMetallicRoughness
	if pbr == nil || pbr.BaseColorFactor == nil {
		return [4]float64{1, 1, 1, 1}
	}
	return *pbr.BaseColorFactor
}
