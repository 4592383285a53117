package world

import (
	"fmt"

	"github.com/df-mc/chunkmesh/server/block/cube"
	"github.com/df-mc/chunkmesh/server/world/chunk"
	"github.com/segmentio/fasthash/fnv1a"
)

// ChunkPos holds the position of a chunk in chunk space. The chunk at
// ChunkPos{1, 0, 0} has its origin at block position (16, 0, 0).
type ChunkPos [3]int32

// ChunkPosFromBlock returns the position of the chunk that contains the
// world-space block position passed.
func ChunkPosFromBlock(p cube.Pos) ChunkPos {
	d := p.DivEuclid(chunk.Size)
	return ChunkPos{int32(d[0]), int32(d[1]), int32(d[2])}
}

// Local returns the chunk-local position of a world-space block position.
func Local(p cube.Pos) cube.Pos {
	return p.RemEuclid(chunk.Size)
}

// X returns the X coordinate of the chunk position.
func (p ChunkPos) X() int32 { return p[0] }

// Y returns the Y coordinate of the chunk position.
func (p ChunkPos) Y() int32 { return p[1] }

// Z returns the Z coordinate of the chunk position.
func (p ChunkPos) Z() int32 { return p[2] }

// Origin returns the world-space position of the chunk's local (0, 0, 0).
func (p ChunkPos) Origin() cube.Pos {
	return cube.Pos{int(p[0]) * chunk.Size, int(p[1]) * chunk.Size, int(p[2]) * chunk.Size}
}

// Block converts a chunk-local position within this chunk to world space.
func (p ChunkPos) Block(local cube.Pos) cube.Pos {
	return p.Origin().Add(local)
}

// Offset returns the position of the chunk offset chunks away.
func (p ChunkPos) Offset(offset cube.Pos) ChunkPos {
	return ChunkPos{p[0] + int32(offset[0]), p[1] + int32(offset[1]), p[2] + int32(offset[2])}
}

// Hash returns a hash of the position, used to spread chunks over the shards
// of a Realm.
func (p ChunkPos) Hash() uint64 {
	h := fnv1a.Init64
	for _, v := range p {
		h = fnv1a.AddUint64(h, uint64(uint32(v)))
	}
	return h
}

// String implements fmt.Stringer.
func (p ChunkPos) String() string {
	return fmt.Sprintf("(%d, %d, %d)", p[0], p[1], p[2])
}

// NeighbourOffsets returns the 26 offsets in {-1, 0, 1}^3 other than the
// origin.
func NeighbourOffsets() []cube.Pos {
	offsets := make([]cube.Pos, 0, 26)
	for y := -1; y <= 1; y++ {
		for z := -1; z <= 1; z++ {
			for x := -1; x <= 1; x++ {
				if x == 0 && y == 0 && z == 0 {
					continue
				}
				offsets = append(offsets, cube.Pos{x, y, z})
			}
		}
	}
	return offsets
}
