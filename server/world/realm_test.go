package world

import (
	"errors"
	"runtime"
	"sync/atomic"
	"testing"

	"github.com/df-mc/chunkmesh/server/block/cube"
	"github.com/df-mc/chunkmesh/server/block/model"
	"github.com/df-mc/chunkmesh/server/world/chunk"
)

func TestChunkPosConversion(t *testing.T) {
	tests := []struct {
		block cube.Pos
		chunk ChunkPos
		local cube.Pos
	}{
		{cube.Pos{0, 0, 0}, ChunkPos{0, 0, 0}, cube.Pos{0, 0, 0}},
		{cube.Pos{15, 16, 17}, ChunkPos{0, 1, 1}, cube.Pos{15, 0, 1}},
		{cube.Pos{-1, -16, -17}, ChunkPos{-1, -1, -2}, cube.Pos{15, 0, 15}},
	}
	for _, tt := range tests {
		pos := ChunkPosFromBlock(tt.block)
		if pos != tt.chunk {
			t.Fatalf("ChunkPosFromBlock(%v) = %v, want %v", tt.block, pos, tt.chunk)
		}
		if local := Local(tt.block); local != tt.local {
			t.Fatalf("Local(%v) = %v, want %v", tt.block, local, tt.local)
		}
		if back := pos.Block(tt.local); back != tt.block {
			t.Fatalf("%v.Block(%v) = %v, want %v", pos, tt.local, back, tt.block)
		}
	}
	if (ChunkPos{1, 2, 3}).Hash() == (ChunkPos{3, 2, 1}).Hash() {
		t.Fatalf("expected different hashes for different positions")
	}
	if n := len(NeighbourOffsets()); n != 26 {
		t.Fatalf("expected 26 neighbour offsets, got %d", n)
	}
}

func TestChunkRefDirtySemantics(t *testing.T) {
	c := chunk.New()
	dirty := new(atomic.Bool)
	ref := NewChunkRef(ChunkPos{}, c, dirty)

	if err := ref.WithReadAccess(func(*chunk.ReadAccess) error { return nil }); err != nil {
		t.Fatalf("read access: %v", err)
	}
	if dirty.Load() {
		t.Fatalf("read access must not mark the chunk dirty")
	}

	// Write access marks the chunk dirty even without a mutation.
	if err := ref.WithWriteAccess(func(*chunk.WriteAccess) error { return nil }); err != nil {
		t.Fatalf("write access: %v", err)
	}
	if !dirty.Swap(false) {
		t.Fatalf("write access must mark the chunk dirty")
	}

	if err := ref.TreatAsChanged(); err != nil {
		t.Fatalf("treat as changed: %v", err)
	}
	if !dirty.Load() {
		t.Fatalf("TreatAsChanged must mark the chunk dirty")
	}

	wantErr := errors.New("stop")
	if err := ref.WithWriteAccess(func(*chunk.WriteAccess) error { return wantErr }); !errors.Is(err, wantErr) {
		t.Fatalf("expected closure error to be passed through, got %v", err)
	}
	runtime.KeepAlive(c)
}

func TestChunkRefUnloaded(t *testing.T) {
	c := chunk.New()
	dirty := new(atomic.Bool)
	ref := NewChunkRef(ChunkPos{4, 0, 4}, c, dirty)
	c.Unload()

	called := false
	if err := ref.WithReadAccess(func(*chunk.ReadAccess) error { called = true; return nil }); !errors.Is(err, ErrUnloaded) {
		t.Fatalf("expected ErrUnloaded from read access, got %v", err)
	}
	if err := ref.WithWriteAccess(func(*chunk.WriteAccess) error { called = true; return nil }); !errors.Is(err, ErrUnloaded) {
		t.Fatalf("expected ErrUnloaded from write access, got %v", err)
	}
	if err := ref.TreatAsChanged(); !errors.Is(err, ErrUnloaded) {
		t.Fatalf("expected ErrUnloaded from TreatAsChanged, got %v", err)
	}
	if called || dirty.Load() || ref.Alive() {
		t.Fatalf("unloaded chunk was accessed")
	}
	if _, err := ref.Reader().Get(cube.Pos{}); !errors.Is(err, ErrUnloaded) {
		t.Fatalf("expected ErrUnloaded from reader, got %v", err)
	}
	runtime.KeepAlive(c)
}

func TestChunkRefCollected(t *testing.T) {
	dirty := new(atomic.Bool)
	ref := NewChunkRef(ChunkPos{}, chunk.New(), dirty)
	runtime.GC()
	if err := ref.TreatAsChanged(); !errors.Is(err, ErrUnloaded) {
		t.Fatalf("expected ErrUnloaded after the chunk was collected, got %v", err)
	}
	var zero ChunkRef
	if zero.Alive() {
		t.Fatalf("zero ChunkRef must not be alive")
	}
}

func TestRealmInsertUnload(t *testing.T) {
	r := NewRealm(RealmConfig{})
	a := r.Insert(ChunkPos{0, 0, 0}, chunk.New())
	b := r.Insert(ChunkPos{1, 0, 0}, chunk.New())
	if r.Len() != 2 || !r.Loaded(ChunkPos{1, 0, 0}) {
		t.Fatalf("expected two loaded chunks")
	}

	dirty := r.DirtyChunks()
	if len(dirty) != 2 || dirty[0].Pos() != a.Pos() || dirty[1].Pos() != b.Pos() {
		t.Fatalf("expected both inserted chunks dirty, got %v", dirty)
	}
	if len(r.DirtyChunks()) != 0 {
		t.Fatalf("DirtyChunks must clear dirty flags")
	}

	if !r.Unload(ChunkPos{1, 0, 0}) {
		t.Fatalf("expected chunk to be unloaded")
	}
	if r.Unload(ChunkPos{1, 0, 0}) {
		t.Fatalf("unloading twice must report false")
	}
	if b.Alive() {
		t.Fatalf("reference to an unloaded chunk is still alive")
	}
	if dirty := r.DirtyChunks(); len(dirty) != 1 || dirty[0].Pos() != a.Pos() {
		t.Fatalf("unloading a chunk must mark its neighbours dirty, got %v", dirty)
	}

	replaced := r.Insert(ChunkPos{0, 0, 0}, chunk.New())
	if a.Alive() || !replaced.Alive() {
		t.Fatalf("replacing a chunk must unload the previous one")
	}
}

func TestRealmSetBlockMarksSeams(t *testing.T) {
	r := NewRealm(RealmConfig{})
	for _, pos := range []ChunkPos{{0, 0, 0}, {-1, 0, 0}, {0, -1, 0}, {-1, -1, 0}, {1, 0, 0}} {
		r.Insert(pos, chunk.New())
	}
	r.DirtyChunks()

	in := chunk.VoxelInput{ID: 2, Model: model.Filled(1)}
	if err := r.SetBlock(cube.Pos{0, 0, 5}, in); err != nil {
		t.Fatalf("set block: %v", err)
	}
	v, err := r.Block(cube.Pos{0, 0, 5})
	if err != nil || v.ID != 2 || !v.HasModel {
		t.Fatalf("unexpected block %+v, %v", v, err)
	}

	got := make(map[ChunkPos]bool)
	for _, ref := range r.DirtyChunks() {
		got[ref.Pos()] = true
	}
	for _, pos := range []ChunkPos{{0, 0, 0}, {-1, 0, 0}, {0, -1, 0}, {-1, -1, 0}} {
		if !got[pos] {
			t.Fatalf("expected %v to be dirty, got %v", pos, got)
		}
	}
	if got[ChunkPos{1, 0, 0}] {
		t.Fatalf("chunk not bordering the edit was marked dirty")
	}

	if err := r.SetBlock(cube.Pos{100, 0, 0}, in); !errors.Is(err, ErrUnloaded) {
		t.Fatalf("expected ErrUnloaded for a block in an unloaded chunk, got %v", err)
	}
	if _, err := r.Block(cube.Pos{100, 0, 0}); !errors.Is(err, ErrUnloaded) {
		t.Fatalf("expected ErrUnloaded reading an unloaded chunk, got %v", err)
	}
}
