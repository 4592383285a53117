// Package generator fills chunks with voxels. Generators are content
// producers used by tools and tests; the meshing core only consumes the
// chunks they produce.
package generator

import (
	"fmt"

	"github.com/df-mc/chunkmesh/server/block/cube"
	"github.com/df-mc/chunkmesh/server/world"
	"github.com/df-mc/chunkmesh/server/world/chunk"
)

// Generator generates the voxels of a chunk.
type Generator interface {
	// GenerateChunk fills the chunk at pos through a. It must be safe to
	// call GenerateChunk for different chunks concurrently.
	GenerateChunk(pos world.ChunkPos, a *chunk.WriteAccess) error
}

// Flat is a Generator that fills every voxel below Height with Voxel.
type Flat struct {
	// Height is the world-space Y of the first voxel left empty.
	Height int
	Voxel  chunk.VoxelInput
}

// GenerateChunk fills the part of the chunk below the flat surface.
func (f Flat) GenerateChunk(pos world.ChunkPos, a *chunk.WriteAccess) error {
	origin := pos.Origin()
	top := f.Height - origin[1]
	if top <= 0 {
		return nil
	}
	return a.Fill(cube.Box{Max: cube.Pos{chunk.Size, min(top, chunk.Size), chunk.Size}}, f.Voxel)
}

// Load generates a new chunk at pos and inserts it into realm. The chunk is
// only made visible to the realm once it was fully generated.
func Load(realm *world.Realm, g Generator, pos world.ChunkPos) (world.ChunkRef, error) {
	c := chunk.New()
	var err error
	c.Update(func(a *chunk.WriteAccess) {
		err = g.GenerateChunk(pos, a)
	})
	if err != nil {
		return world.ChunkRef{}, fmt.Errorf("generate chunk %v: %w", pos, err)
	}
	return realm.Insert(pos, c), nil
}
