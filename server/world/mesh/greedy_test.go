package mesh

import (
	"errors"
	"testing"

	"github.com/df-mc/chunkmesh/server/block/cube"
	"github.com/df-mc/chunkmesh/server/block/model"
	"github.com/df-mc/chunkmesh/server/world"
	"github.com/df-mc/chunkmesh/server/world/chunk"
	"github.com/df-mc/chunkmesh/server/world/registry"
	"github.com/go-gl/mathgl/mgl32"
)

type testRegistries struct {
	reg   *registry.Registries
	stone registry.VoxelID
	glass registry.VoxelID
}

func newTestRegistries(t *testing.T) testRegistries {
	t.Helper()
	l := registry.NewLoader()
	stone, err := l.RegisterVoxel("stone", registry.Opaque)
	if err != nil {
		t.Fatalf("register stone: %v", err)
	}
	glass, err := l.RegisterVoxel("glass", registry.Transparent)
	if err != nil {
		t.Fatalf("register glass: %v", err)
	}
	return testRegistries{reg: l.Build(), stone: stone, glass: glass}
}

func buildChunk(t *testing.T, m Mesher, c *chunk.Chunk, ctx Context) *Buffer {
	t.Helper()
	var (
		buf *Buffer
		err error
	)
	c.View(func(a *chunk.ReadAccess) {
		buf, err = m.Build(a, ctx)
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return buf
}

func quadsOnFace(buf *Buffer, face cube.Face) []GpuQuad {
	var out []GpuQuad
	for _, q := range buf.Quads {
		if q.Face() == face {
			out = append(out, q)
		}
	}
	return out
}

func TestGreedyUniformPlane(t *testing.T) {
	r := newTestRegistries(t)
	c := chunk.New()
	c.Update(func(a *chunk.WriteAccess) {
		box := cube.Box{Max: cube.Pos{chunk.Size, 1, chunk.Size}}
		if err := a.Fill(box, chunk.VoxelInput{ID: r.stone, Model: model.Filled(1)}); err != nil {
			t.Fatalf("fill: %v", err)
		}
	})
	buf := buildChunk(t, Greedy{}, c, Context{Registries: r.reg})

	for _, face := range cube.Faces() {
		quads := quadsOnFace(buf, face)
		if len(quads) != 1 {
			t.Fatalf("%v: expected 1 merged quad, got %d", face, len(quads))
		}
	}
	up := quadsOnFace(buf, cube.FaceUp)[0]
	if w, h := up.Max[0]-up.Min[0], up.Max[1]-up.Min[1]; w != chunk.Size || h != chunk.Size {
		t.Fatalf("expected a %dx%d top quad, got %vx%v", chunk.Size, chunk.Size, w, h)
	}
}

func TestGreedyCheckerboard(t *testing.T) {
	r := newTestRegistries(t)
	c := chunk.New()
	c.Update(func(a *chunk.WriteAccess) {
		for x := 0; x < chunk.Size; x++ {
			for z := 0; z < chunk.Size; z++ {
				tex := model.TextureIndex((x + z) % 2)
				if err := a.Set(cube.Pos{x, 0, z}, chunk.VoxelInput{ID: r.stone, Model: model.Filled(tex)}); err != nil {
					t.Fatalf("set: %v", err)
				}
			}
		}
	})
	buf := buildChunk(t, Greedy{}, c, Context{Registries: r.reg})
	up := quadsOnFace(buf, cube.FaceUp)
	if len(up) != chunk.Size*chunk.Size {
		t.Fatalf("expected %d unit quads on the top face, got %d", chunk.Size*chunk.Size, len(up))
	}
	for _, q := range up {
		if q.Max[0]-q.Min[0] != 1 || q.Max[1]-q.Min[1] != 1 {
			t.Fatalf("expected unit quad, got %+v", q)
		}
	}
}

func TestGreedyRasterOrder(t *testing.T) {
	r := newTestRegistries(t)
	c := chunk.New()
	// An L shape on the top face: row z=0 spans x 0..2, rows z=1,2 only x=0.
	// Raster order finds the full first row before growing downwards, so the
	// row becomes one quad and the remaining column another.
	c.Update(func(a *chunk.WriteAccess) {
		for _, p := range []cube.Pos{{0, 0, 0}, {1, 0, 0}, {2, 0, 0}, {0, 0, 1}, {0, 0, 2}} {
			if err := a.Set(p, chunk.VoxelInput{ID: r.stone, Model: model.Filled(1)}); err != nil {
				t.Fatalf("set: %v", err)
			}
		}
	})
	up := quadsOnFace(buildChunk(t, Greedy{}, c, Context{Registries: r.reg}), cube.FaceUp)
	if len(up) != 2 {
		t.Fatalf("expected 2 quads, got %d", len(up))
	}
	if up[0].Min != (mgl32.Vec2{0, 0}) || up[0].Max != (mgl32.Vec2{3, 1}) {
		t.Fatalf("unexpected first quad %+v", up[0])
	}
	if up[1].Min != (mgl32.Vec2{0, 1}) || up[1].Max != (mgl32.Vec2{1, 3}) {
		t.Fatalf("unexpected second quad %+v", up[1])
	}
}

func TestSingleVoxelSixQuads(t *testing.T) {
	r := newTestRegistries(t)
	for _, m := range []Mesher{Greedy{}, Simple{}} {
		c := chunk.New()
		c.Update(func(a *chunk.WriteAccess) {
			if err := a.Set(cube.Pos{}, chunk.VoxelInput{ID: r.stone, Model: model.Filled(4)}); err != nil {
				t.Fatalf("set: %v", err)
			}
		})
		ctx := Context{Neighbors: NewNeighborsBuilder(chunk.Voxel{ID: registry.Air}).Build(), Registries: r.reg}
		buf := buildChunk(t, m, c, ctx)
		if buf.QuadCount() != 6 {
			t.Fatalf("%T: expected 6 quads, got %d", m, buf.QuadCount())
		}
		for _, face := range cube.Faces() {
			quads := quadsOnFace(buf, face)
			if len(quads) != 1 {
				t.Fatalf("%T: expected one quad on %v, got %d", m, face, len(quads))
			}
			q := quads[0]
			if q.Max[0]-q.Min[0] != 1 || q.Max[1]-q.Min[1] != 1 || q.Texture != 4 {
				t.Fatalf("%T: unexpected quad on %v: %+v", m, face, q)
			}
		}
	}
}

func TestTransparentVoxelsShowFaces(t *testing.T) {
	r := newTestRegistries(t)
	c := chunk.New()
	c.Update(func(a *chunk.WriteAccess) {
		_ = a.Set(cube.Pos{4, 4, 4}, chunk.VoxelInput{ID: r.stone, Model: model.Filled(1)})
		_ = a.Set(cube.Pos{5, 4, 4}, chunk.VoxelInput{ID: r.glass, Model: model.Filled(2)})
		_ = a.Set(cube.Pos{3, 4, 4}, chunk.VoxelInput{ID: r.stone, Model: model.Filled(1)})
	})
	buf := buildChunk(t, Simple{}, c, Context{Registries: r.reg})
	// Glass does not hide the east face of the stone at x=4, while stone
	// hides the west faces of both x=4 and the glass at x=5.
	if n := len(quadsOnFace(buf, cube.FaceEast)); n != 2 {
		t.Fatalf("expected 2 east faces, got %d", n)
	}
	if n := len(quadsOnFace(buf, cube.FaceWest)); n != 1 {
		t.Fatalf("expected 1 west face, got %d", n)
	}
}

func TestAdjacentTransparentVoxelsOfSameType(t *testing.T) {
	r := newTestRegistries(t)
	c := chunk.New()
	c.Update(func(a *chunk.WriteAccess) {
		glass := chunk.VoxelInput{ID: r.glass, Model: model.Filled(2)}
		_ = a.Set(cube.Pos{4, 4, 4}, glass)
		_ = a.Set(cube.Pos{5, 4, 4}, glass)
	})
	ctx := Context{Registries: r.reg}
	if n := buildChunk(t, Simple{}, c, ctx).QuadCount(); n != 10 {
		t.Fatalf("expected the shared face to be culled leaving 10 quads, got %d", n)
	}
	if n := buildChunk(t, Greedy{}, c, ctx).QuadCount(); n != 6 {
		t.Fatalf("expected 6 merged quads, got %d", n)
	}
}

func TestAdjacentSolidChunksShareNoFace(t *testing.T) {
	r := newTestRegistries(t)
	realm := world.NewRealm(world.RealmConfig{})
	solid := chunk.VoxelInput{ID: r.stone, Model: model.Filled(1)}
	for _, pos := range []world.ChunkPos{{0, 0, 0}, {1, 0, 0}} {
		ref := realm.Insert(pos, chunk.New())
		if err := ref.WithWriteAccess(func(a *chunk.WriteAccess) error {
			return a.Fill(chunk.Bounds(), solid)
		}); err != nil {
			t.Fatalf("fill %v: %v", pos, err)
		}
	}

	for _, tt := range []struct {
		pos    world.ChunkPos
		hidden cube.Face
	}{
		{world.ChunkPos{0, 0, 0}, cube.FaceEast},
		{world.ChunkPos{1, 0, 0}, cube.FaceWest},
	} {
		ref, _ := realm.Ref(tt.pos)
		ctx := Context{Neighbors: CollectNeighbors(realm, tt.pos, chunk.Voxel{ID: registry.Air}), Registries: r.reg}
		var buf *Buffer
		err := ref.WithReadAccess(func(a *chunk.ReadAccess) (err error) {
			buf, err = Greedy{}.Build(a, ctx)
			return err
		})
		if err != nil {
			t.Fatalf("build %v: %v", tt.pos, err)
		}
		if n := len(quadsOnFace(buf, tt.hidden)); n != 0 {
			t.Fatalf("%v: expected no quads on the shared %v face, got %d", tt.pos, tt.hidden, n)
		}
		if buf.QuadCount() != 5 {
			t.Fatalf("%v: expected 5 quads, got %d", tt.pos, buf.QuadCount())
		}
	}
}

type failingAccess struct{}

var errRead = errors.New("read failed")

func (failingAccess) Get(cube.Pos) (chunk.Voxel, error) { return chunk.Voxel{}, errRead }
func (failingAccess) Bounds() cube.Box                  { return chunk.Bounds() }

func TestMesherReadError(t *testing.T) {
	_, err := Greedy{}.Build(failingAccess{}, Context{})
	var meshErr *Error
	if !errors.As(err, &meshErr) || !errors.Is(err, errRead) {
		t.Fatalf("expected mesh.Error wrapping the read error, got %v", err)
	}
}
