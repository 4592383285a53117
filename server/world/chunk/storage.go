package chunk

import (
	"sync/atomic"

	"github.com/df-mc/chunkmesh/server/block/cube"
	"github.com/df-mc/chunkmesh/server/block/model"
	"github.com/df-mc/chunkmesh/server/world/registry"
)

// Voxels is a dense container of voxel ids. Every cell is a single atomic
// word, so reads and writes of different cells never contend.
type Voxels struct {
	cells [Volume]atomic.Uint32
}

// Get returns the id stored at pos.
func (v *Voxels) Get(pos cube.Pos) (registry.VoxelID, error) {
	i, ok := index(pos)
	if !ok {
		return 0, outOfBounds(pos)
	}
	return registry.VoxelID(v.cells[i].Load()), nil
}

// Set stores id at pos.
func (v *Voxels) Set(pos cube.Pos, id registry.VoxelID) error {
	i, ok := index(pos)
	if !ok {
		return outOfBounds(pos)
	}
	v.cells[i].Store(uint32(id))
	return nil
}

// Bounds returns the chunk-local bounds of the container.
func (*Voxels) Bounds() cube.Box { return Bounds() }

// Models is a dense container of optional block models. A cell holds either
// nil or a pointer to a model that is never modified after it was stored.
type Models struct {
	cells [Volume]atomic.Pointer[model.Block]
}

// Get returns the model stored at pos, or nil if the cell has none. The
// returned model is shared and must not be modified.
func (m *Models) Get(pos cube.Pos) (*model.Block, error) {
	i, ok := index(pos)
	if !ok {
		return nil, outOfBounds(pos)
	}
	return m.cells[i].Load(), nil
}

// Set stores a copy of b at pos, or clears the cell if b is nil.
func (m *Models) Set(pos cube.Pos, b *model.Block) error {
	i, ok := index(pos)
	if !ok {
		return outOfBounds(pos)
	}
	if b != nil {
		cp := *b
		b = &cp
	}
	m.cells[i].Store(b)
	return nil
}

// Bounds returns the chunk-local bounds of the container.
func (*Models) Bounds() cube.Box { return Bounds() }
