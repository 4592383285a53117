package chunk

import (
	"errors"
	"fmt"

	"github.com/df-mc/chunkmesh/server/block/cube"
	"github.com/df-mc/chunkmesh/server/block/model"
)

var (
	// ErrOutOfBounds is returned when a position lies outside the valid range
	// of the storage or sampler accessed.
	ErrOutOfBounds = errors.New("chunk: position out of bounds")
	// ErrUnsupportedModel is returned when a voxel is written with a model
	// variant the chunk cannot store.
	ErrUnsupportedModel = errors.New("chunk: unsupported voxel model")
)

// AccessError is returned when accessing a single cell fails.
type AccessError struct {
	Pos cube.Pos
	Err error
}

// Error implements the error interface.
func (e *AccessError) Error() string {
	return fmt.Sprintf("chunk: access %v: %v", e.Pos, e.Err)
}

// Unwrap returns the cause of the error.
func (e *AccessError) Unwrap() error {
	return e.Err
}

func outOfBounds(pos cube.Pos) error {
	return &AccessError{Pos: pos, Err: ErrOutOfBounds}
}

func unsupportedModel(m model.Model) error {
	return fmt.Errorf("%w: %s", ErrUnsupportedModel, m.Kind())
}
