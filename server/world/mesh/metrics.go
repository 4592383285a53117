package mesh

import (
	"sync"
	"time"
)

// Metrics tracks counters of a Builder for observability.
type Metrics struct {
	mu sync.Mutex

	queued    uint64
	rejected  uint64
	built     uint64
	failed    uint64
	quads     uint64
	buildTime time.Duration
}

// MetricsSnapshot is a point-in-time copy of the counters in Metrics.
type MetricsSnapshot struct {
	Queued    uint64
	Rejected  uint64
	Built     uint64
	Failed    uint64
	Quads     uint64
	BuildTime time.Duration
}

// NewMetrics creates an empty metrics registry.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// IncQueued increments the counter of tasks queued.
func (m *Metrics) IncQueued() {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.queued++
	m.mu.Unlock()
}

// IncRejected increments the counter of tasks rejected because the queue
// was full.
func (m *Metrics) IncRejected() {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.rejected++
	m.mu.Unlock()
}

// AddResult records a finished build.
func (m *Metrics) AddResult(res Result) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if res.Err != nil {
		m.failed++
		return
	}
	m.built++
	m.quads += uint64(res.Buffer.QuadCount())
	m.buildTime += res.Duration
}

// Snapshot returns the current values of all counters.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return MetricsSnapshot{
		Queued:    m.queued,
		Rejected:  m.rejected,
		Built:     m.built,
		Failed:    m.failed,
		Quads:     m.quads,
		BuildTime: m.buildTime,
	}
}
