package scene

import (
	"math"
	"math/rand/v2"

	"github.com/taigrr/noel/pkg/math3d"
	"github.com/taigrr/noel/pkg/photo"
)

// Size of a photo hung on the tree.
const (
	SurfaceWidth  = 0.5
	SurfaceHeight = 0.4
)

// surface is one photo hung on the tree, facing the trunk.
type surface struct {
	local   math3d.Mat4 // transform inside the photo group
	texture *photo.Pending
}

func buildSurfaces(rng *rand.Rand, list photo.List, loader *photo.Loader) []surface {
	n := list.Len()
	out := make([]surface, n)
	for i := range n {
		h := rng.Float64()*4 - 0.5
		r := (4 - h) * 0.45
		a := float64(i)/float64(n)*math.Pi*2 + rng.Float64()
		pos := math3d.V3(math.Cos(a)*r, h, math.Sin(a)*r)
		out[i] = surface{
			local:   math3d.Facing(pos, math3d.V3(0, h, 0), math3d.Up()),
			texture: loader.Load(list.At(i)),
		}
	}
	return out
}
