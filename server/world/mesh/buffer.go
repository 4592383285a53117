package mesh

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
	"github.com/go-gl/mathgl/mgl32"
)

// Buffer holds the geometry of one chunk. Vertex attributes are stored in
// parallel slices, four vertices and six indices per quad. Quads holds the
// same geometry in compact per-quad form.
type Buffer struct {
	Positions []mgl32.Vec3
	Normals   []mgl32.Vec3
	UVs       []mgl32.Vec2
	// Misc holds the per-vertex shader bitfields, laid out as described by
	// the MISC_ entries of Material.Defs.
	Misc     []uint32
	Textures []uint32
	Indices  []uint32

	Quads []GpuQuad
}

// NewBuffer returns an empty buffer with room for n quads.
func NewBuffer(n int) *Buffer {
	return &Buffer{
		Positions: make([]mgl32.Vec3, 0, n*4),
		Normals:   make([]mgl32.Vec3, 0, n*4),
		UVs:       make([]mgl32.Vec2, 0, n*4),
		Misc:      make([]uint32, 0, n*4),
		Textures:  make([]uint32, 0, n*4),
		Indices:   make([]uint32, 0, n*6),
		Quads:     make([]GpuQuad, 0, n),
	}
}

// Add appends a quad to the buffer.
func (b *Buffer) Add(q PositionedQuad) {
	base := uint32(len(b.Positions))
	normal := q.Normal()
	tex := uint32(q.Texture.Texture)
	positions, uvs, bits, indices := q.Positions(), q.UVs(), q.Bitfields(), q.Indices(base)

	b.Positions = append(b.Positions, positions[:]...)
	b.Normals = append(b.Normals, normal, normal, normal, normal)
	b.UVs = append(b.UVs, uvs[:]...)
	b.Misc = append(b.Misc, bits[:]...)
	b.Textures = append(b.Textures, tex, tex, tex, tex)
	b.Indices = append(b.Indices, indices[:]...)
	b.Quads = append(b.Quads, q.Gpu())
}

// QuadCount returns the amount of quads in the buffer.
func (b *Buffer) QuadCount() int {
	if b == nil {
		return 0
	}
	return len(b.Quads)
}

// VertexCount returns the amount of vertices in the buffer.
func (b *Buffer) VertexCount() int {
	if b == nil {
		return 0
	}
	return len(b.Positions)
}

// Empty reports if the buffer holds no geometry.
func (b *Buffer) Empty() bool {
	return b.QuadCount() == 0
}

// Digest returns a hash of the geometry in the buffer. Two buffers with the
// same quads in the same order have the same digest, which lets callers skip
// re-uploading a chunk whose rebuild produced identical geometry.
func (b *Buffer) Digest() uint64 {
	if b == nil {
		return xxhash.Sum64(nil)
	}
	d := xxhash.New()
	scratch := make([]byte, 0, 28)
	for _, q := range b.Quads {
		scratch = scratch[:0]
		for _, f := range [5]float32{q.Min[0], q.Min[1], q.Max[0], q.Max[1], q.Magnitude} {
			scratch = binary.LittleEndian.AppendUint32(scratch, math.Float32bits(f))
		}
		scratch = binary.LittleEndian.AppendUint32(scratch, q.Texture)
		scratch = binary.LittleEndian.AppendUint32(scratch, q.Bitfields)
		_, _ = d.Write(scratch)
	}
	return d.Sum64()
}
