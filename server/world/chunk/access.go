package chunk

import (
	"sync/atomic"

	"github.com/df-mc/chunkmesh/server/block/cube"
	"github.com/df-mc/chunkmesh/server/block/model"
	"github.com/df-mc/chunkmesh/server/world/registry"
)

// Reader is implemented by storage that can be read by chunk-local position.
type Reader[T any] interface {
	Get(pos cube.Pos) (T, error)
}

// Writer is implemented by storage that can be written by chunk-local
// position.
type Writer[T any] interface {
	Set(pos cube.Pos, v T) error
}

// Bounded is implemented by storage that covers a fixed box of positions.
type Bounded interface {
	Bounds() cube.Box
}

// Access is a read capability over the voxels of a chunk. It is what meshers
// consume, independent of how the voxels are stored.
type Access interface {
	Reader[Voxel]
	Bounded
}

// Voxel is the combined content of one cell: its id and, if HasModel is set,
// its block model.
type Voxel struct {
	ID       registry.VoxelID
	Model    model.Block
	HasModel bool
}

// Input returns a VoxelInput that writes v back unchanged.
func (v Voxel) Input() VoxelInput {
	if !v.HasModel {
		return VoxelInput{ID: v.ID}
	}
	return VoxelInput{ID: v.ID, Model: v.Model}
}

// VoxelInput is the value written to a cell. A nil Model clears the model of
// the cell. Model may be a model.Block or a *model.Block; any other model
// results in ErrUnsupportedModel.
type VoxelInput struct {
	ID    registry.VoxelID
	Model model.Model
}

// block resolves the model of the input to the value stored in a Models
// container.
func (in VoxelInput) block() (*model.Block, error) {
	switch m := in.Model.(type) {
	case nil:
		return nil, nil
	case model.Block:
		return &m, nil
	case *model.Block:
		if m == nil {
			return nil, nil
		}
		b := *m
		return &b, nil
	default:
		return nil, unsupportedModel(m)
	}
}

// ExpiredPanicMessage is the value panicked with when an access is used after
// the function it was passed to returned.
const ExpiredPanicMessage = "chunk: use of access after its scope ended is not permitted"

// ReadAccess grants read access to the voxels of a chunk.
type ReadAccess struct {
	c       *Chunk
	expired atomic.Bool
}

func (a *ReadAccess) expire() {
	a.expired.Store(true)
}

func (a *ReadAccess) check() {
	if a.expired.Load() {
		panic(ExpiredPanicMessage)
	}
}

// Get returns the voxel at a chunk-local position.
func (a *ReadAccess) Get(pos cube.Pos) (Voxel, error) {
	a.check()
	i, ok := index(pos)
	if !ok {
		return Voxel{}, outOfBounds(pos)
	}
	return a.c.load(i), nil
}

// ID returns only the voxel id at a chunk-local position.
func (a *ReadAccess) ID(pos cube.Pos) (registry.VoxelID, error) {
	a.check()
	return a.c.voxels.Get(pos)
}

// Bounds returns the chunk-local bounds of the chunk.
func (*ReadAccess) Bounds() cube.Box {
	return Bounds()
}

// WriteAccess grants read and write access to the voxels of a chunk.
type WriteAccess struct {
	ReadAccess
}

// Set writes a voxel at a chunk-local position. The id and model are
// published together: no reader observes the id of one write combined with
// the model of another.
func (a *WriteAccess) Set(pos cube.Pos, v VoxelInput) error {
	a.check()
	i, ok := index(pos)
	if !ok {
		return outOfBounds(pos)
	}
	m, err := v.block()
	if err != nil {
		return &AccessError{Pos: pos, Err: err}
	}
	a.c.store(i, v.ID, m)
	return nil
}

// Fill sets every voxel in the box passed, clipped to the chunk bounds. An
// unsupported model is reported as an *AccessError at box.Min and leaves the
// chunk unchanged.
func (a *WriteAccess) Fill(box cube.Box, v VoxelInput) error {
	a.check()
	m, err := v.block()
	if err != nil {
		return &AccessError{Pos: box.Min, Err: err}
	}
	for i := range box.Min {
		box.Min[i] = max(box.Min[i], 0)
		box.Max[i] = min(box.Max[i], Size)
	}
	box.Range(func(p cube.Pos) bool {
		i, _ := index(p)
		a.c.store(i, v.ID, m)
		return true
	})
	return nil
}
