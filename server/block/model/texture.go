package model

import (
	"fmt"
	"strings"
)

// TextureIndex is the index of a texture in the texture registry.
type TextureIndex uint32

// Rotation is the rotation of a texture on a face, in quarter turns.
type Rotation uint8

const (
	RotationUp Rotation = iota
	RotationDown
	RotationLeft
	RotationRight
)

// ParseRotation parses the name of a Rotation, as returned by its String
// method.
func ParseRotation(s string) (Rotation, error) {
	switch strings.ToLower(s) {
	case "up", "":
		return RotationUp, nil
	case "down":
		return RotationDown, nil
	case "left":
		return RotationLeft, nil
	case "right":
		return RotationRight, nil
	}
	return 0, fmt.Errorf("model: unknown texture rotation %q", s)
}

// String ...
func (r Rotation) String() string {
	switch r {
	case RotationUp:
		return "up"
	case RotationDown:
		return "down"
	case RotationLeft:
		return "left"
	case RotationRight:
		return "right"
	}
	return fmt.Sprintf("Rotation(%d)", uint8(r))
}

// Bits packed into the per-vertex bitfield consumed by the chunk shader.
const (
	RotationMask uint32 = 0b11
	FlipUVX      uint32 = 0b100
	FlipUVY      uint32 = 0b1000
	// Occlusion marks the one vertex of a quad the shader uses to orient
	// ambient occlusion interpolation.
	Occlusion uint32 = 0b10000
)

// FaceTexture is the texture of one face of a Block, together with its
// orientation.
type FaceTexture struct {
	Texture  TextureIndex
	Rotation Rotation
	FlipX    bool
	FlipY    bool
}

// Bitfield packs the orientation of the texture into the shader bitfield.
// The Occlusion bit is never set here.
func (t FaceTexture) Bitfield() uint32 {
	bits := uint32(t.Rotation) & RotationMask
	if t.FlipX {
		bits |= FlipUVX
	}
	if t.FlipY {
		bits |= FlipUVY
	}
	return bits
}
