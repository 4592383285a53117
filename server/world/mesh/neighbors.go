package mesh

import (
	"errors"
	"fmt"

	"github.com/df-mc/chunkmesh/server/block/cube"
	"github.com/df-mc/chunkmesh/server/world"
	"github.com/df-mc/chunkmesh/server/world/chunk"
)

// ErrCentreNeighbour is returned when the centre chunk is registered as a
// neighbour of itself.
var ErrCentreNeighbour = errors.New("mesh: centre chunk cannot be its own neighbour")

const centreSlot = 13

// Neighbors holds read access to the 26 chunks around a centre chunk and
// answers queries for voxels just outside one of the centre chunk's faces.
// Slots without a chunk sample the default voxel. A nil *Neighbors samples
// the zero Voxel everywhere.
type Neighbors struct {
	slots [27]chunk.Access
	def   chunk.Voxel
}

// slot returns the index of the slot holding the chunk at offset, which must
// be in {-1, 0, 1}^3.
func slot(offset cube.Pos) (int, bool) {
	for _, v := range offset {
		if v < -1 || v > 1 {
			return 0, false
		}
	}
	return (offset[0] + 1) + (offset[1]+1)*3 + (offset[2]+1)*9, true
}

// Default returns the voxel sampled for chunks that are not present.
func (n *Neighbors) Default() chunk.Voxel {
	if n == nil {
		return chunk.Voxel{}
	}
	return n.def
}

// Has reports if a chunk is present at the offset passed.
func (n *Neighbors) Has(offset cube.Pos) bool {
	i, ok := slot(offset)
	return ok && n != nil && n.slots[i] != nil
}

// Get returns the voxel just outside face of the centre chunk at the
// face-local position pos. Both components of pos range over
// [-1, chunk.Size+1], reaching one cell into the edge and corner
// neighbours. Positions outside of that range result in
// chunk.ErrOutOfBounds.
func (n *Neighbors) Get(face cube.Face, pos cube.Pos2) (chunk.Voxel, error) {
	for _, v := range pos {
		if v < -1 || v > chunk.Size+1 {
			return chunk.Voxel{}, fmt.Errorf("mesh: sample %v face at %v: %w", face, pos, chunk.ErrOutOfBounds)
		}
	}
	mag := -1
	if face.Positive() {
		mag = chunk.Size
	}
	p := face.Project(pos, mag)
	i, _ := slot(p.DivEuclid(chunk.Size))
	if i == centreSlot {
		return chunk.Voxel{}, fmt.Errorf("mesh: sample %v face at %v: %w", face, pos, chunk.ErrOutOfBounds)
	}
	if n == nil {
		return chunk.Voxel{}, nil
	}
	a := n.slots[i]
	if a == nil {
		return n.def, nil
	}
	return a.Get(p.RemEuclid(chunk.Size))
}

// NeighborsBuilder assembles a Neighbors bundle.
type NeighborsBuilder struct {
	n Neighbors
}

// NewNeighborsBuilder returns a builder for a bundle that samples def where
// no chunk is present.
func NewNeighborsBuilder(def chunk.Voxel) *NeighborsBuilder {
	return &NeighborsBuilder{n: Neighbors{def: def}}
}

// Set registers read access to the chunk at offset from the centre chunk.
// Each component of offset must be -1, 0 or 1, and offset must not be the
// centre.
func (b *NeighborsBuilder) Set(offset cube.Pos, a chunk.Access) error {
	i, ok := slot(offset)
	if !ok {
		return fmt.Errorf("mesh: neighbour offset %v: %w", offset, chunk.ErrOutOfBounds)
	}
	if i == centreSlot {
		return ErrCentreNeighbour
	}
	b.n.slots[i] = a
	return nil
}

// Build returns the bundle assembled so far. The builder may be used to
// build further bundles without affecting the one returned.
func (b *NeighborsBuilder) Build() *Neighbors {
	n := b.n
	return &n
}

// CollectNeighbors builds the bundle for the chunk at pos out of the chunks
// currently loaded in realm.
func CollectNeighbors(realm *world.Realm, pos world.ChunkPos, def chunk.Voxel) *Neighbors {
	b := NewNeighborsBuilder(def)
	for _, off := range world.NeighbourOffsets() {
		if ref, ok := realm.Ref(pos.Offset(off)); ok {
			_ = b.Set(off, ref.Reader())
		}
	}
	return b.Build()
}
