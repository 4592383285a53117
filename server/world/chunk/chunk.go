// Package chunk implements concurrent voxel storage for a single chunk.
//
// A Chunk holds two dense containers, one for voxel ids and one for optional
// block models, indexed by chunk-local position. Every cell is synchronised
// on its own: readers never block each other and a write to one cell never
// waits on a write to another. Access to a Chunk as a whole is granted
// through scoped ReadAccess and WriteAccess values that are only valid for
// the duration of the function they are passed to.
package chunk

import (
	"runtime"
	"sync/atomic"

	"github.com/df-mc/chunkmesh/server/block/cube"
	"github.com/df-mc/chunkmesh/server/block/model"
	"github.com/df-mc/chunkmesh/server/world/registry"
)

const (
	// Size is the edge length of a chunk in voxels.
	Size = 1 << shift
	// Volume is the amount of voxels in a chunk.
	Volume = Size * Size * Size

	shift = 4
	mask  = Size - 1
)

// Bounds returns the box of chunk-local positions, [0, Size) on every axis.
func Bounds() cube.Box {
	return cube.Cube(Size)
}

// index returns the flat index of a chunk-local position, or false if the
// position lies outside the chunk.
func index(pos cube.Pos) (int, bool) {
	if uint(pos[0]) >= Size || uint(pos[1]) >= Size || uint(pos[2]) >= Size {
		return 0, false
	}
	return pos[0] | pos[2]<<shift | pos[1]<<(shift*2), true
}

// Chunk is a cubic section of voxels. The zero value is a chunk filled with
// air and no models. A Chunk must not be copied after first use.
type Chunk struct {
	voxels Voxels
	models Models
	// seq holds a sequence word per cell. It is odd while a combined write to
	// the cell is in progress.
	seq [Volume]atomic.Uint32

	unloaded atomic.Bool
}

// New returns a new chunk filled with air.
func New() *Chunk {
	return &Chunk{}
}

// View calls f with a read-only access to the chunk. The access must not be
// used after f returns.
func (c *Chunk) View(f func(a *ReadAccess)) {
	a := &ReadAccess{c: c}
	defer a.expire()
	f(a)
}

// Update calls f with a read-write access to the chunk. The access must not
// be used after f returns.
func (c *Chunk) Update(f func(a *WriteAccess)) {
	a := &WriteAccess{ReadAccess: ReadAccess{c: c}}
	defer a.expire()
	f(a)
}

// Unload marks the chunk as unloaded. References to an unloaded chunk refuse
// to grant new accesses, although accesses already granted stay usable until
// their scope ends.
func (c *Chunk) Unload() {
	c.unloaded.Store(true)
}

// Unloaded reports if Unload was called on the chunk.
func (c *Chunk) Unloaded() bool {
	return c.unloaded.Load()
}

// load reads the id and model of a cell as one consistent pair.
func (c *Chunk) load(i int) Voxel {
	for {
		s := c.seq[i].Load()
		if s&1 != 0 {
			runtime.Gosched()
			continue
		}
		id := registry.VoxelID(c.voxels.cells[i].Load())
		m := c.models.cells[i].Load()
		if c.seq[i].Load() != s {
			continue
		}
		if m == nil {
			return Voxel{ID: id}
		}
		return Voxel{ID: id, Model: *m, HasModel: true}
	}
}

// store writes the id and model of a cell. A nil model clears the cell's
// model.
func (c *Chunk) store(i int, id registry.VoxelID, m *model.Block) {
	for {
		s := c.seq[i].Load()
		if s&1 == 0 && c.seq[i].CompareAndSwap(s, s+1) {
			break
		}
		runtime.Gosched()
	}
	c.voxels.cells[i].Store(uint32(id))
	c.models.cells[i].Store(m)
	c.seq[i].Add(1)
}
