package model

import (
	"testing"

	"github.com/df-mc/chunkmesh/server/block/cube"
)

func TestFaceTextureBitfield(t *testing.T) {
	tests := []struct {
		tex  FaceTexture
		want uint32
	}{
		{FaceTexture{}, 0},
		{FaceTexture{Rotation: RotationRight}, 0b11},
		{FaceTexture{Rotation: RotationDown, FlipX: true}, 0b101},
		{FaceTexture{Rotation: RotationLeft, FlipX: true, FlipY: true}, 0b1110},
	}
	for _, tt := range tests {
		if got := tt.tex.Bitfield(); got != tt.want {
			t.Fatalf("%+v: bitfield %b, want %b", tt.tex, got, tt.want)
		}
		if tt.tex.Bitfield()&Occlusion != 0 {
			t.Fatalf("%+v: occlusion bit must not be set", tt.tex)
		}
	}
}

func TestBlockWithTexture(t *testing.T) {
	b := Filled(3)
	top := b.WithTexture(cube.FaceUp, FaceTexture{Texture: 9, Rotation: RotationLeft})
	if b.Texture(cube.FaceUp).Texture != 3 {
		t.Fatalf("WithTexture mutated the receiver")
	}
	if top.Texture(cube.FaceUp).Texture != 9 || top.Texture(cube.FaceDown).Texture != 3 {
		t.Fatalf("unexpected textures after WithTexture: %+v", top.Faces)
	}
}

func TestParseRotation(t *testing.T) {
	for _, r := range []Rotation{RotationUp, RotationDown, RotationLeft, RotationRight} {
		got, err := ParseRotation(r.String())
		if err != nil || got != r {
			t.Fatalf("ParseRotation(%q) = %v, %v", r.String(), got, err)
		}
	}
	if _, err := ParseRotation("sideways"); err == nil {
		t.Fatalf("expected error for unknown rotation")
	}
}
