// Package model holds the visual descriptors a voxel may carry. A model
// describes how a voxel looks, not which voxel it is: the voxel id lives in a
// separate container.
package model

import "github.com/df-mc/chunkmesh/server/block/cube"

// Model is a visual description of a voxel. Block is currently the only
// implementation; storage layers must reject any other Model explicitly
// rather than drop it.
type Model interface {
	// Kind returns a short name for the model variant, used in errors.
	Kind() string
}

// Block is a model for a full cube with one texture per face.
type Block struct {
	Faces [6]FaceTexture
}

// Filled returns a Block model with the same texture on every face.
func Filled(tex TextureIndex) Block {
	var b Block
	for i := range b.Faces {
		b.Faces[i] = FaceTexture{Texture: tex}
	}
	return b
}

// Kind returns "block".
func (Block) Kind() string { return "block" }

// Texture returns the texture of the face passed.
func (b Block) Texture(face cube.Face) FaceTexture {
	return b.Faces[face]
}

// WithTexture returns a copy of the Block with the texture of one face
// replaced.
func (b Block) WithTexture(face cube.Face, tex FaceTexture) Block {
	b.Faces[face] = tex
	return b
}
