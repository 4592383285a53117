package world

import (
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/df-mc/chunkmesh/server/block/cube"
	"github.com/df-mc/chunkmesh/server/world/chunk"
	"github.com/google/uuid"
)

const realmShards = 32

// RealmConfig holds the settings of a Realm. The zero value is usable.
type RealmConfig struct {
	// Log is the logger used by the realm. slog.Default() is used if nil.
	Log *slog.Logger
	// ID identifies the realm in logs. A random one is generated if unset.
	ID uuid.UUID
}

func (c RealmConfig) withDefaults() RealmConfig {
	if c.Log == nil {
		c.Log = slog.Default()
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return c
}

// Realm is the set of chunks currently loaded. It owns every loaded chunk
// and its dirty flag and hands out ChunkRefs to them. Realm is safe for
// concurrent use: chunks are spread over shards so that loading one chunk
// does not contend with lookups of chunks in other shards.
type Realm struct {
	conf   RealmConfig
	shards [realmShards]realmShard
}

type realmShard struct {
	mu     sync.RWMutex
	chunks map[ChunkPos]*loadedChunk
}

type loadedChunk struct {
	chunk *chunk.Chunk
	dirty *atomic.Bool
	ref   ChunkRef
}

// NewRealm creates an empty Realm.
func NewRealm(conf RealmConfig) *Realm {
	r := &Realm{conf: conf.withDefaults()}
	for i := range r.shards {
		r.shards[i].chunks = make(map[ChunkPos]*loadedChunk)
	}
	return r
}

// ID returns the unique id of the realm.
func (r *Realm) ID() uuid.UUID {
	return r.conf.ID
}

func (r *Realm) shard(pos ChunkPos) *realmShard {
	return &r.shards[pos.Hash()%realmShards]
}

// Insert loads c at pos and returns a reference to it. A chunk already
// loaded at pos is unloaded first. The new chunk and its loaded neighbours
// are marked dirty, as the faces along their shared borders may have
// changed.
func (r *Realm) Insert(pos ChunkPos, c *chunk.Chunk) ChunkRef {
	lc := &loadedChunk{chunk: c, dirty: new(atomic.Bool)}
	lc.ref = NewChunkRef(pos, c, lc.dirty)
	lc.dirty.Store(true)

	s := r.shard(pos)
	s.mu.Lock()
	old := s.chunks[pos]
	s.chunks[pos] = lc
	s.mu.Unlock()

	if old != nil {
		old.chunk.Unload()
		r.conf.Log.Debug("replaced loaded chunk", "realm", r.conf.ID, "chunk", pos)
	}
	r.markNeighboursDirty(pos)
	return lc.ref
}

// Unload removes the chunk at pos from the realm. References to it fail
// with ErrUnloaded from then on. Unload reports whether a chunk was loaded
// at pos.
func (r *Realm) Unload(pos ChunkPos) bool {
	s := r.shard(pos)
	s.mu.Lock()
	lc, ok := s.chunks[pos]
	delete(s.chunks, pos)
	s.mu.Unlock()
	if !ok {
		return false
	}
	lc.chunk.Unload()
	r.markNeighboursDirty(pos)
	return true
}

// Ref returns a reference to the chunk loaded at pos.
func (r *Realm) Ref(pos ChunkPos) (ChunkRef, bool) {
	s := r.shard(pos)
	s.mu.RLock()
	defer s.mu.RUnlock()
	lc, ok := s.chunks[pos]
	if !ok {
		return ChunkRef{}, false
	}
	return lc.ref, true
}

// Loaded reports if a chunk is loaded at pos.
func (r *Realm) Loaded(pos ChunkPos) bool {
	_, ok := r.Ref(pos)
	return ok
}

// Len returns the amount of loaded chunks.
func (r *Realm) Len() int {
	n := 0
	for i := range r.shards {
		s := &r.shards[i]
		s.mu.RLock()
		n += len(s.chunks)
		s.mu.RUnlock()
	}
	return n
}

// Positions returns the positions of all loaded chunks, sorted by Y, Z and
// then X.
func (r *Realm) Positions() []ChunkPos {
	positions := make([]ChunkPos, 0, r.Len())
	r.each(func(pos ChunkPos, _ *loadedChunk) {
		positions = append(positions, pos)
	})
	slices.SortFunc(positions, compareChunkPos)
	return positions
}

// DirtyChunks returns references to all chunks marked dirty and clears
// their dirty flags. The references are sorted by position.
func (r *Realm) DirtyChunks() []ChunkRef {
	var refs []ChunkRef
	r.each(func(_ ChunkPos, lc *loadedChunk) {
		if lc.dirty.Swap(false) {
			refs = append(refs, lc.ref)
		}
	})
	slices.SortFunc(refs, func(a, b ChunkRef) int {
		return compareChunkPos(a.pos, b.pos)
	})
	return refs
}

// MarkDirty marks the chunk at pos dirty if it is loaded.
func (r *Realm) MarkDirty(pos ChunkPos) {
	if ref, ok := r.Ref(pos); ok {
		_ = ref.TreatAsChanged()
	}
}

// SetBlock writes a voxel at a world-space position. Chunks sharing a border
// with the position are marked dirty too, as the visibility of their faces
// may depend on the new voxel.
func (r *Realm) SetBlock(p cube.Pos, v chunk.VoxelInput) error {
	pos, local := ChunkPosFromBlock(p), Local(p)
	ref, ok := r.Ref(pos)
	if !ok {
		return (ChunkRef{pos: pos}).TreatAsChanged()
	}
	if err := ref.WithWriteAccess(func(a *chunk.WriteAccess) error {
		return a.Set(local, v)
	}); err != nil {
		return err
	}
	for _, off := range borderOffsets(local) {
		r.MarkDirty(pos.Offset(off))
	}
	return nil
}

// Block reads the voxel at a world-space position.
func (r *Realm) Block(p cube.Pos) (chunk.Voxel, error) {
	pos := ChunkPosFromBlock(p)
	ref, ok := r.Ref(pos)
	if !ok {
		ref = ChunkRef{pos: pos}
	}
	return ReadValue(ref, func(a *chunk.ReadAccess) (chunk.Voxel, error) {
		return a.Get(Local(p))
	})
}

func (r *Realm) each(f func(pos ChunkPos, lc *loadedChunk)) {
	for i := range r.shards {
		s := &r.shards[i]
		s.mu.RLock()
		for pos, lc := range s.chunks {
			f(pos, lc)
		}
		s.mu.RUnlock()
	}
}

func (r *Realm) markNeighboursDirty(pos ChunkPos) {
	for _, off := range NeighbourOffsets() {
		r.MarkDirty(pos.Offset(off))
	}
}

// borderOffsets returns the offsets of the chunks whose halo contains the
// chunk-local position passed.
func borderOffsets(local cube.Pos) []cube.Pos {
	var axes [3][]int
	for i, v := range local {
		axes[i] = []int{0}
		switch v {
		case 0:
			axes[i] = append(axes[i], -1)
		case chunk.Size - 1:
			axes[i] = append(axes[i], 1)
		}
	}
	var offsets []cube.Pos
	for _, x := range axes[0] {
		for _, y := range axes[1] {
			for _, z := range axes[2] {
				if x != 0 || y != 0 || z != 0 {
					offsets = append(offsets, cube.Pos{x, y, z})
				}
			}
		}
	}
	return offsets
}

func compareChunkPos(a, b ChunkPos) int {
	for _, i := range [3]int{1, 2, 0} {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}
