package mesh

import (
	"github.com/df-mc/chunkmesh/server/block/cube"
	"github.com/df-mc/chunkmesh/server/block/model"
	"github.com/df-mc/chunkmesh/server/world/chunk"
)

// faceCell is the visible face of one voxel in a face plane.
type faceCell struct {
	visible bool
	tex     model.FaceTexture
}

// facePlane holds the faces of one layer of a chunk, indexed by
// u + v*chunk.Size.
type facePlane [chunk.Size * chunk.Size]faceCell

// fillPlane computes which faces pointing towards face are visible in the
// layer passed. A face is visible if its voxel has a model and the voxel it
// faces is transparent and of a different type, so that the inside of a body
// of water has no faces. Voxels outside the chunk are sampled through the
// neighbours in ctx.
func fillPlane(plane *facePlane, a chunk.Access, ctx Context, face cube.Face, layer int) error {
	bounds := a.Bounds()
	for v := 0; v < chunk.Size; v++ {
		for u := 0; u < chunk.Size; u++ {
			fp := cube.Pos2{u, v}
			pos := face.Project(fp, layer)
			cell := &plane[u+v*chunk.Size]
			*cell = faceCell{}

			vox, err := a.Get(pos)
			if err != nil {
				return &Error{Face: face, Pos: pos, Err: err}
			}
			if !vox.HasModel {
				continue
			}
			var adjacent chunk.Voxel
			if side := pos.Side(face); bounds.Contains(side) {
				adjacent, err = a.Get(side)
			} else {
				adjacent, err = ctx.Neighbors.Get(face, fp)
			}
			if err != nil {
				return &Error{Face: face, Pos: pos, Err: err}
			}
			if adjacent.ID != vox.ID && ctx.transparent(adjacent.ID) {
				*cell = faceCell{visible: true, tex: vox.Model.Texture(face)}
			}
		}
	}
	return nil
}
