package mesh

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/df-mc/chunkmesh/server/internal/accessguard"
	"github.com/df-mc/chunkmesh/server/world"
	"github.com/df-mc/chunkmesh/server/world/chunk"
	"github.com/df-mc/chunkmesh/server/world/registry"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrQueueFull is returned by QueueChunk when Config.MaxPending tasks are
	// already pending.
	ErrQueueFull = errors.New("mesh: build queue full")
	// ErrClosed is returned by QueueChunk after Shutdown was called.
	ErrClosed = errors.New("mesh: builder shut down")
	// ErrBuildFailed is wrapped by the error of a Result whose build
	// panicked.
	ErrBuildFailed = errors.New("mesh: build failed")
)

// TaskID identifies a pending build. Ids are reused once the result of the
// build was collected.
type TaskID uint32

// Quality selects which of the builder's meshers builds a chunk.
type Quality uint8

const (
	QualityHigh Quality = iota
	QualityLow
)

func (q Quality) String() string {
	if q == QualityLow {
		return "low"
	}
	return "high"
}

// Result is the outcome of a build. Exactly one of Buffer and Err is set.
type Result struct {
	ID       TaskID
	Pos      world.ChunkPos
	Quality  Quality
	Buffer   *Buffer
	Err      error
	Duration time.Duration
}

// Builder builds chunk meshes on a fixed pool of worker goroutines. Chunks
// are queued with QueueChunk and the finished meshes collected with
// FinishedMeshes, neither of which block. Results are not ordered: workers
// race and a chunk queued later may finish first.
type Builder struct {
	conf   Config
	hq, lq Mesher
	reg    *registry.Registries

	commands chan workerCommand
	results  chan Result
	workers  errgroup.Group

	mu      sync.Mutex
	pending map[TaskID]struct{}
	closed  bool

	queueSaturation        atomic.Uint64
	lastQueueSaturationLog atomic.Uint64
}

// NewBuilder starts a Builder with conf.Workers workers. hq builds chunks
// queued with QualityHigh and lq those queued with QualityLow. reg is shared
// by all workers and must not be modified afterwards.
func NewBuilder(conf Config, hq, lq Mesher, reg *registry.Registries) *Builder {
	conf = conf.withDefaults()
	b := &Builder{
		conf:    conf,
		hq:      hq,
		lq:      lq,
		reg:     reg,
		pending: make(map[TaskID]struct{}),
		// At most MaxPending builds and one shutdown command per worker are
		// ever queued, so sends never block.
		commands: make(chan workerCommand, conf.MaxPending+conf.Workers),
		results:  make(chan Result, conf.MaxPending),
	}
	for i := 0; i < conf.Workers; i++ {
		b.workers.Go(func() error {
			b.work(i)
			return nil
		})
	}
	return b
}

// QueueChunk queues a high quality build of the chunk referenced. A copy of
// neighbors is taken, so the bundle may be reused by the caller. QueueChunk
// never blocks. It returns ErrQueueFull if too many tasks are pending and
// ErrClosed after Shutdown.
func (b *Builder) QueueChunk(ref world.ChunkRef, neighbors *Neighbors) (TaskID, error) {
	return b.QueueChunkQuality(ref, neighbors, QualityHigh)
}

// QueueChunkQuality queues a build of the chunk referenced using the mesher
// of the quality passed.
func (b *Builder) QueueChunkQuality(ref world.ChunkRef, neighbors *Neighbors, q Quality) (TaskID, error) {
	cmd := buildCommand{ref: ref, quality: q}
	if neighbors != nil {
		cmd.neighbors = *neighbors
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return 0, ErrClosed
	}
	if len(b.pending) >= b.conf.MaxPending {
		b.conf.Metrics.IncRejected()
		b.handleQueueBackpressure()
		return 0, ErrQueueFull
	}
	cmd.id = b.allocate()
	b.pending[cmd.id] = struct{}{}
	b.commands <- cmd
	b.conf.Metrics.IncQueued()
	return cmd.id, nil
}

// allocate returns the smallest id not currently pending. b.mu must be held.
func (b *Builder) allocate() TaskID {
	var id TaskID
	for {
		if _, ok := b.pending[id]; !ok {
			return id
		}
		id++
	}
}

// FinishedMeshes returns the results of all builds finished since the last
// call and releases their task ids. It returns immediately, with an empty
// slice if no build finished.
func (b *Builder) FinishedMeshes() []Result {
	var out []Result
	for {
		select {
		case res := <-b.results:
			out = append(out, res)
		default:
			if len(out) > 0 {
				b.mu.Lock()
				for _, res := range out {
					delete(b.pending, res.ID)
				}
				b.mu.Unlock()
			}
			return out
		}
	}
}

// Pending returns the amount of tasks queued or finished but not yet
// collected.
func (b *Builder) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}

// Shutdown stops the builder. Builds already queued are still run and their
// results remain available through FinishedMeshes. Shutdown blocks until
// every worker has stopped. Calling Shutdown more than once is a no-op apart
// from waiting for the workers.
func (b *Builder) Shutdown() {
	b.mu.Lock()
	if !b.closed {
		b.closed = true
		for i := 0; i < b.conf.Workers; i++ {
			b.commands <- shutdownCommand{}
		}
	}
	b.mu.Unlock()
	_ = b.workers.Wait()
}

// HQMaterial returns the material of the high quality mesher.
func (b *Builder) HQMaterial() Material {
	return b.hq.Material()
}

// LQMaterial returns the material of the low quality mesher.
func (b *Builder) LQMaterial() Material {
	return b.lq.Material()
}

// Metrics returns the metrics the builder reports to.
func (b *Builder) Metrics() *Metrics {
	return b.conf.Metrics
}

func (b *Builder) work(n int) {
	b.conf.Log.Debug("mesh worker started", "worker", n)
	for cmd := range b.commands {
		if !cmd.execute(b) {
			break
		}
	}
	b.conf.Log.Debug("mesh worker stopped", "worker", n)
}

// build runs a single build. A panicking mesher results in a failed Result
// rather than a dead worker.
func (b *Builder) build(cmd buildCommand) (res Result) {
	start := time.Now()
	res = Result{ID: cmd.id, Pos: cmd.ref.Pos(), Quality: cmd.quality}
	defer func() {
		if r := recover(); r != nil {
			res.Buffer = nil
			res.Err = fmt.Errorf("%w: panic: %v", ErrBuildFailed, r)
		}
		res.Duration = time.Since(start)
		if res.Err != nil {
			b.logFailure(res)
		}
	}()

	mesher := b.hq
	if cmd.quality == QualityLow {
		mesher = b.lq
	}
	ctx := Context{Neighbors: &cmd.neighbors, Registries: b.reg}
	err := cmd.ref.WithReadAccess(func(a *chunk.ReadAccess) error {
		var err error
		if !accessguard.Run(func() { res.Buffer, err = mesher.Build(a, ctx) }) {
			return fmt.Errorf("%w: neighbour access used after its scope ended", ErrBuildFailed)
		}
		return err
	})
	if err != nil {
		res.Buffer, res.Err = nil, err
	} else if res.Buffer == nil {
		res.Buffer = NewBuffer(0)
	}
	return res
}

func (b *Builder) logFailure(res Result) {
	if errors.Is(res.Err, world.ErrUnloaded) {
		b.conf.Log.Debug("mesh build skipped: chunk unloaded", "task", res.ID, "chunk", res.Pos)
		return
	}
	b.conf.Log.Error("mesh build failed", "task", res.ID, "chunk", res.Pos, "err", res.Err)
}

// handleQueueBackpressure counts rejected tasks and emits a warning at most
// once per minute while the queue stays saturated.
func (b *Builder) handleQueueBackpressure() {
	count := b.queueSaturation.Add(1)
	now := uint64(time.Now().UnixNano())
	last := b.lastQueueSaturationLog.Load()

	if last != 0 && time.Duration(now-last) < time.Minute {
		return
	}
	if !b.lastQueueSaturationLog.CompareAndSwap(last, now) {
		return
	}
	b.conf.Log.Warn(
		"mesh build queue saturated: results are not collected fast enough.",
		"rejected_tasks", count,
		"max_pending", b.conf.MaxPending,
		"workers", b.conf.Workers,
	)
}

type workerCommand interface {
	execute(b *Builder) bool
}

type buildCommand struct {
	id        TaskID
	ref       world.ChunkRef
	neighbors Neighbors
	quality   Quality
}

func (cmd buildCommand) execute(b *Builder) bool {
	res := b.build(cmd)
	b.conf.Metrics.AddResult(res)
	b.results <- res
	return true
}

type shutdownCommand struct{}

func (shutdownCommand) execute(*Builder) bool {
	return false
}
