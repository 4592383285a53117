package mesh

import (
	"fmt"
	"maps"

	"github.com/df-mc/chunkmesh/server/block/cube"
	"github.com/df-mc/chunkmesh/server/block/model"
	"github.com/df-mc/chunkmesh/server/world/chunk"
	"github.com/df-mc/chunkmesh/server/world/registry"
)

// Mesher turns the voxels of a chunk into geometry.
type Mesher interface {
	// Build builds the geometry of the chunk readable through a. Faces on the
	// border of the chunk are culled using ctx.Neighbors.
	Build(a chunk.Access, ctx Context) (*Buffer, error)
	// Material returns the description of the pipeline the geometry produced
	// by the mesher must be rendered with.
	Material() Material
}

// Context holds everything a Mesher needs besides the chunk itself.
type Context struct {
	Neighbors  *Neighbors
	Registries *registry.Registries
}

// transparent reports if faces next to a voxel with the id passed are
// visible. Without registries only Air is transparent.
func (ctx Context) transparent(id registry.VoxelID) bool {
	if ctx.Registries == nil {
		return id == registry.Air
	}
	return ctx.Registries.Transparency(id) == registry.Transparent
}

// Material describes the render pipeline a mesher's output is drawn with.
type Material struct {
	Name   string
	Shader string
	// CullBack is set if back faces may be culled, which relies on the
	// winding produced by PositionedQuad.Indices.
	CullBack bool
	// Defs holds the constants the shader must be specialised with.
	Defs map[string]uint32
}

// Clone returns a deep copy of the material.
func (m Material) Clone() Material {
	m.Defs = maps.Clone(m.Defs)
	return m
}

// shaderDefs returns the bitfield layouts shared by all chunk shaders. The
// unprefixed entries describe GpuQuad.Bitfields, the MISC_ entries hold the
// masks of the per-vertex Buffer.Misc values.
func shaderDefs() map[string]uint32 {
	return map[string]uint32{
		"ROTATION_MASK":      GpuRotationMask,
		"ROTATION_SHIFT":     GpuRotationShift,
		"FACE_MASK":          GpuFaceMask,
		"FACE_SHIFT":         GpuFaceShift,
		"FLIP_UV_X_BIT":      GpuFlipUVXBit,
		"FLIP_UV_Y_BIT":      GpuFlipUVYBit,
		"MISC_ROTATION_MASK": model.RotationMask,
		"MISC_FLIP_UV_X":     model.FlipUVX,
		"MISC_FLIP_UV_Y":     model.FlipUVY,
		"MISC_OCCLUSION":     model.Occlusion,
		"CHUNK_SIZE":         chunk.Size,
	}
}

// Error is returned by a Mesher when reading a voxel fails.
type Error struct {
	Face cube.Face
	// Pos is the chunk-local position of the voxel whose face was being
	// built.
	Pos cube.Pos
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("mesh: %v face of %v: %v", e.Face, e.Pos, e.Err)
}

// Unwrap returns the read error.
func (e *Error) Unwrap() error {
	return e.Err
}
