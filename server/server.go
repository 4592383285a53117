package server

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/df-mc/chunkmesh/server/world"
	"github.com/df-mc/chunkmesh/server/world/generator"
	"github.com/df-mc/chunkmesh/server/world/mesh"
	"github.com/google/uuid"
)

// MeshSink receives the meshes built by a Server. HandleMesh is called from
// Tick, so only one call runs at a time.
type MeshSink interface {
	HandleMesh(pos world.ChunkPos, q mesh.Quality, buf *mesh.Buffer)
}

// NopSink is a MeshSink that discards every mesh.
type NopSink struct{}

func (NopSink) HandleMesh(world.ChunkPos, mesh.Quality, *mesh.Buffer) {}

// MeshForgetter is implemented by a MeshSink that keeps meshes around. The
// Server calls Forget once the chunk at pos is no longer loaded, from Tick or
// Unload.
type MeshForgetter interface {
	Forget(pos world.ChunkPos)
}

// Server keeps the meshes of the chunks in a realm up to date. Every tick it
// queues a build for each chunk that changed since it was last meshed and
// hands finished meshes to the configured MeshSink. A chunk that changes
// while it is being built is built again once the build in flight finished.
type Server struct {
	conf    Config
	realm   *world.Realm
	builder *mesh.Builder

	tickMu   sync.Mutex
	inFlight map[world.ChunkPos]mesh.TaskID

	ticks, delivered, failed atomic.Uint64
	closed                   atomic.Bool
	once                     sync.Once
}

// TickResult describes the work done in a single tick.
type TickResult struct {
	// Queued is the amount of builds queued.
	Queued int
	// Deferred is the amount of dirty chunks left for a later tick, either
	// because a build of the chunk was still in flight or because the build
	// queue was full.
	Deferred int
	// Delivered is the amount of meshes handed to the MeshSink.
	Delivered int
	// Failed is the amount of builds that finished with an error.
	Failed int
	// InFlight is the amount of builds queued but not yet collected after
	// the tick.
	InFlight int
}

// Idle reports if the tick did no work and no build is left in flight.
func (r TickResult) Idle() bool {
	return r.Queued == 0 && r.Deferred == 0 && r.Delivered == 0 && r.Failed == 0 && r.InFlight == 0
}

// Stats is a snapshot of the state of a Server.
type Stats struct {
	Realm     uuid.UUID
	Loaded    int
	InFlight  int
	Ticks     uint64
	Delivered uint64
	Failed    uint64
	Mesh      mesh.MetricsSnapshot
}

// Realm returns the realm holding the chunks of the server.
func (srv *Server) Realm() *world.Realm {
	return srv.realm
}

// Builder returns the mesh builder of the server.
func (srv *Server) Builder() *mesh.Builder {
	return srv.builder
}

// Generate generates the chunk at pos with the configured Generator and loads
// it into the realm. The chunk is meshed on the next tick.
func (srv *Server) Generate(pos world.ChunkPos) (world.ChunkRef, error) {
	return generator.Load(srv.realm, srv.conf.Generator, pos)
}

// Unload unloads the chunk at pos from the realm and drops its mesh from the
// MeshSink if the sink implements MeshForgetter. It reports false if no chunk
// was loaded at pos.
func (srv *Server) Unload(pos world.ChunkPos) bool {
	srv.tickMu.Lock()
	defer srv.tickMu.Unlock()
	ok := srv.realm.Unload(pos)
	srv.forget(pos)
	return ok
}

func (srv *Server) forget(pos world.ChunkPos) {
	if f, ok := srv.conf.Sink.(MeshForgetter); ok {
		f.Forget(pos)
	}
}

// Tick collects the meshes finished since the previous tick and queues builds
// for every dirty chunk. Results are collected first so that chunks whose
// build just finished may be queued again in the same tick.
func (srv *Server) Tick() TickResult {
	srv.tickMu.Lock()
	defer srv.tickMu.Unlock()

	var res TickResult
	srv.ticks.Add(1)
	srv.collect(&res)
	if !srv.closed.Load() {
		srv.queue(&res)
	}
	res.InFlight = len(srv.inFlight)
	return res
}

func (srv *Server) collect(res *TickResult) {
	for _, r := range srv.builder.FinishedMeshes() {
		if id, ok := srv.inFlight[r.Pos]; ok && id == r.ID {
			delete(srv.inFlight, r.Pos)
		}
		if r.Err != nil {
			res.Failed++
			srv.failed.Add(1)
			// A chunk that was unloaded has nothing left to mesh. Any other
			// failure is retried.
			if !errors.Is(r.Err, world.ErrUnloaded) {
				srv.realm.MarkDirty(r.Pos)
			}
		}
		if !srv.realm.Loaded(r.Pos) {
			// Unloaded while building: the sink must not keep its old mesh or
			// receive a new one.
			srv.forget(r.Pos)
			continue
		}
		if r.Err != nil {
			continue
		}
		res.Delivered++
		srv.delivered.Add(1)
		srv.conf.Sink.HandleMesh(r.Pos, r.Quality, r.Buffer)
	}
}

func (srv *Server) queue(res *TickResult) {
	dirty := srv.realm.DirtyChunks()
	for i, ref := range dirty {
		pos := ref.Pos()
		if _, ok := srv.inFlight[pos]; ok {
			srv.realm.MarkDirty(pos)
			res.Deferred++
			continue
		}
		neighbors := mesh.CollectNeighbors(srv.realm, pos, srv.conf.DefaultVoxel)
		id, err := srv.builder.QueueChunkQuality(ref, neighbors, srv.conf.Quality)
		if err != nil {
			// The queue is full or the builder was closed: the remaining
			// chunks stay dirty so that nothing is lost.
			for _, rest := range dirty[i:] {
				srv.realm.MarkDirty(rest.Pos())
			}
			res.Deferred += len(dirty) - i
			if errors.Is(err, mesh.ErrClosed) {
				srv.conf.Log.Debug("Mesh builder closed, not queueing chunks.", "chunks", len(dirty)-i)
			}
			return
		}
		srv.inFlight[pos] = id
		res.Queued++
	}
}

// Run ticks the server every interval until ctx is cancelled or the server
// is closed. If interval is 0 or lower, Config.TickInterval is used.
func (srv *Server) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = srv.conf.TickInterval
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	var warned bool
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			if srv.closed.Load() {
				return nil
			}
			start := time.Now()
			srv.Tick()
			if took := time.Since(start); took > interval {
				if !warned {
					srv.conf.Log.Warn("Tick took longer than the tick interval.", "took", took, "interval", interval)
					warned = true
				}
			} else {
				warned = false
			}
		}
	}
}

// Stats returns a snapshot of the state of the server.
func (srv *Server) Stats() Stats {
	srv.tickMu.Lock()
	inFlight := len(srv.inFlight)
	srv.tickMu.Unlock()

	return Stats{
		Realm:     srv.realm.ID(),
		Loaded:    srv.realm.Len(),
		InFlight:  inFlight,
		Ticks:     srv.ticks.Load(),
		Delivered: srv.delivered.Load(),
		Failed:    srv.failed.Load(),
		Mesh:      srv.builder.Metrics().Snapshot(),
	}
}

// Close stops the mesh builder. Builds already queued are finished and
// handed to the MeshSink before Close returns. Close may be called more than
// once.
func (srv *Server) Close() error {
	srv.once.Do(func() {
		srv.closed.Store(true)
		srv.builder.Shutdown()

		srv.tickMu.Lock()
		var res TickResult
		srv.collect(&res)
		srv.tickMu.Unlock()

		srv.conf.Log.Debug("Server closed.", "realm", srv.realm.ID(), "delivered", srv.delivered.Load())
	})
	return nil
}
