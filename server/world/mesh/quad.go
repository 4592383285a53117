package mesh

import (
	"github.com/df-mc/chunkmesh/server/block/cube"
	"github.com/df-mc/chunkmesh/server/block/model"
	"github.com/go-gl/mathgl/mgl32"
)

// Quad is a rectangle in the face-local plane of a chunk. Min is inclusive,
// Max exclusive, so a quad covering a single cell at (x, y) has
// Min (x, y) and Max (x+1, y+1).
type Quad struct {
	Min, Max cube.Pos2
}

// UnitQuad returns the quad covering the single cell at p.
func UnitQuad(p cube.Pos2) Quad {
	return Quad{Min: p, Max: cube.Pos2{p[0] + 1, p[1] + 1}}
}

// Width returns the extent of the quad along the first face-local axis.
func (q Quad) Width() int { return q.Max[0] - q.Min[0] }

// Height returns the extent of the quad along the second face-local axis.
func (q Quad) Height() int { return q.Max[1] - q.Min[1] }

// corners returns the four corners of the quad in the order
//
//	0---1
//	|   |
//	2---3
func (q Quad) corners() [4]cube.Pos2 {
	return [4]cube.Pos2{
		{q.Min[0], q.Max[1]},
		{q.Max[0], q.Max[1]},
		{q.Min[0], q.Min[1]},
		{q.Max[0], q.Min[1]},
	}
}

// PositionedQuad is a Quad placed on one face of the voxels in a layer of a
// chunk, together with the texture drawn on it.
type PositionedQuad struct {
	Face cube.Face
	// Layer is the chunk-local coordinate, along the face axis, of the
	// voxels the quad belongs to.
	Layer   int
	Quad    Quad
	Texture model.FaceTexture
}

// Magnitude returns the coordinate of the quad's plane along the face axis.
// Faces pointing towards the positive end of their axis lie on the far side
// of the voxel.
func (q PositionedQuad) Magnitude() int {
	if q.Face.Positive() {
		return q.Layer + 1
	}
	return q.Layer
}

// Positions returns the chunk-local positions of the four corners.
func (q PositionedQuad) Positions() [4]mgl32.Vec3 {
	var out [4]mgl32.Vec3
	mag := q.Magnitude()
	for i, c := range q.Quad.corners() {
		p := q.Face.Project(c, mag)
		out[i] = mgl32.Vec3{float32(p[0]), float32(p[1]), float32(p[2])}
	}
	return out
}

// Normal returns the unit normal of the quad.
func (q PositionedQuad) Normal() mgl32.Vec3 {
	n := q.Face.Normal()
	return mgl32.Vec3{float32(n[0]), float32(n[1]), float32(n[2])}
}

// UVs returns the texture coordinates of the four corners. The texture
// repeats once per cell.
func (q PositionedQuad) UVs() [4]mgl32.Vec2 {
	w, h := float32(q.Quad.Width()), float32(q.Quad.Height())
	return [4]mgl32.Vec2{{0, h}, {w, h}, {0, 0}, {w, 0}}
}

// Indices returns the indices of the two triangles of the quad, offset by
// base. The winding is chosen per face so that the front of every triangle
// faces along the normal.
func (q PositionedQuad) Indices(base uint32) [6]uint32 {
	order := [6]uint32{0, 1, 2, 1, 3, 2}
	switch q.Face {
	case cube.FaceDown, cube.FaceEast, cube.FaceSouth:
		order = [6]uint32{0, 2, 1, 1, 2, 3}
	}
	for i := range order {
		order[i] += base
	}
	return order
}

// Bitfields returns the per-vertex shader bitfields. Only the third vertex
// carries the model.Occlusion marker.
func (q PositionedQuad) Bitfields() [4]uint32 {
	bits := q.Texture.Bitfield()
	return [4]uint32{bits, bits, bits | model.Occlusion, bits}
}

// Bits of GpuQuad.Bitfields.
const (
	GpuRotationMask  uint32 = 0b11
	GpuRotationShift uint32 = 0
	GpuFaceMask      uint32 = 0b111
	GpuFaceShift     uint32 = 2
	GpuFlipUVXBit    uint32 = 5
	GpuFlipUVYBit    uint32 = 6
)

// GpuQuad is the compact form of a PositionedQuad, uploaded for renderers
// that expand quads into vertices on the GPU.
type GpuQuad struct {
	Min, Max  mgl32.Vec2
	Magnitude float32
	Texture   uint32
	Bitfields uint32
}

// Gpu packs the quad into a GpuQuad.
func (q PositionedQuad) Gpu() GpuQuad {
	bits := (uint32(q.Texture.Rotation) & GpuRotationMask) << GpuRotationShift
	bits |= (uint32(q.Face) & GpuFaceMask) << GpuFaceShift
	if q.Texture.FlipX {
		bits |= 1 << GpuFlipUVXBit
	}
	if q.Texture.FlipY {
		bits |= 1 << GpuFlipUVYBit
	}
	return GpuQuad{
		Min:       mgl32.Vec2{float32(q.Quad.Min[0]), float32(q.Quad.Min[1])},
		Max:       mgl32.Vec2{float32(q.Quad.Max[0]), float32(q.Quad.Max[1])},
		Magnitude: float32(q.Magnitude()),
		Texture:   uint32(q.Texture.Texture),
		Bitfields: bits,
	}
}

// Face returns the face encoded in the bitfield of the quad.
func (g GpuQuad) Face() cube.Face {
	return cube.Face((g.Bitfields >> GpuFaceShift) & GpuFaceMask)
}
