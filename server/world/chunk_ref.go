package world

import (
	"errors"
	"fmt"
	"sync/atomic"
	"weak"

	"github.com/df-mc/chunkmesh/server/block/cube"
	"github.com/df-mc/chunkmesh/server/world/chunk"
)

// ErrUnloaded is returned when a chunk is accessed through a ChunkRef after
// it was unloaded.
var ErrUnloaded = errors.New("world: chunk unloaded")

// ChunkRef is a non-owning reference to a loaded chunk and its dirty flag. A
// ChunkRef does not keep the chunk alive: once the chunk is unloaded, every
// access through the reference fails with ErrUnloaded.
//
// ChunkRef values are small and may be copied and shared between goroutines.
type ChunkRef struct {
	pos   ChunkPos
	chunk weak.Pointer[chunk.Chunk]
	dirty weak.Pointer[atomic.Bool]
}

// NewChunkRef returns a reference to c and its dirty flag. Neither is kept
// alive by the reference.
func NewChunkRef(pos ChunkPos, c *chunk.Chunk, dirty *atomic.Bool) ChunkRef {
	return ChunkRef{pos: pos, chunk: weak.Make(c), dirty: weak.Make(dirty)}
}

// Pos returns the position of the referenced chunk.
func (r ChunkRef) Pos() ChunkPos {
	return r.pos
}

// Alive reports if the referenced chunk is still loaded. The result may be
// outdated as soon as it is returned.
func (r ChunkRef) Alive() bool {
	_, _, err := r.upgrade()
	return err == nil
}

// WithWriteAccess marks the chunk dirty and calls f with write access to
// it. The chunk is marked dirty even if f does not change anything. The
// error returned by f is passed through.
func (r ChunkRef) WithWriteAccess(f func(a *chunk.WriteAccess) error) error {
	c, dirty, err := r.upgrade()
	if err != nil {
		return err
	}
	dirty.Store(true)
	c.Update(func(a *chunk.WriteAccess) {
		err = f(a)
	})
	return err
}

// WithReadAccess calls f with read access to the chunk. It does not mark the
// chunk dirty.
func (r ChunkRef) WithReadAccess(f func(a *chunk.ReadAccess) error) error {
	c, _, err := r.upgrade()
	if err != nil {
		return err
	}
	c.View(func(a *chunk.ReadAccess) {
		err = f(a)
	})
	return err
}

// TreatAsChanged marks the chunk dirty without accessing its voxels.
func (r ChunkRef) TreatAsChanged() error {
	_, dirty, err := r.upgrade()
	if err != nil {
		return err
	}
	dirty.Store(true)
	return nil
}

// Reader returns a chunk.Access that upgrades the reference on every call.
// It is used where a read access must outlive a single scope, such as in a
// neighbour bundle handed to a mesh worker.
func (r ChunkRef) Reader() chunk.Access {
	return refReader{ref: r}
}

func (r ChunkRef) upgrade() (*chunk.Chunk, *atomic.Bool, error) {
	c, dirty := r.chunk.Value(), r.dirty.Value()
	if c == nil || dirty == nil || c.Unloaded() {
		return nil, nil, fmt.Errorf("chunk %v: %w", r.pos, ErrUnloaded)
	}
	return c, dirty, nil
}

// ReadValue reads a single value from the chunk referenced by ref.
func ReadValue[T any](ref ChunkRef, f func(a *chunk.ReadAccess) (T, error)) (T, error) {
	var v T
	err := ref.WithReadAccess(func(a *chunk.ReadAccess) (err error) {
		v, err = f(a)
		return err
	})
	return v, err
}

type refReader struct {
	ref ChunkRef
}

func (r refReader) Get(pos cube.Pos) (chunk.Voxel, error) {
	return ReadValue(r.ref, func(a *chunk.ReadAccess) (chunk.Voxel, error) {
		return a.Get(pos)
	})
}

func (refReader) Bounds() cube.Box {
	return chunk.Bounds()
}
