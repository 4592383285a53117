package mesh

import (
	"log/slog"
	"runtime"
)

// Config holds the settings of a Builder. The zero value is usable; defaults
// are applied by withDefaults.
type Config struct {
	// Log is the logger worker failures and queue saturation are reported
	// to. slog.Default() is used if nil.
	Log *slog.Logger
	// Workers is the amount of worker goroutines building meshes. It
	// defaults to runtime.NumCPU().
	Workers int
	// MaxPending is the maximum amount of tasks that may be queued or
	// finished but not yet collected. QueueChunk returns ErrQueueFull once
	// it is reached. It defaults to 4096 and is capped at MaxPendingLimit.
	// The task and result queues are allocated up front with room for
	// MaxPending entries each, costing roughly 100 bytes per pending task.
	MaxPending int
	// Metrics receives counters of the work done by the builder. A new
	// Metrics is created if nil.
	Metrics *Metrics
}

// MaxPendingLimit is the highest MaxPending a Builder accepts.
const MaxPendingLimit = 1 << 16

func (c Config) withDefaults() Config {
	if c.Log == nil {
		c.Log = slog.Default()
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.MaxPending <= 0 {
		c.MaxPending = 4096
	}
	c.MaxPending = min(c.MaxPending, MaxPendingLimit)
	if c.Metrics == nil {
		c.Metrics = NewMetrics()
	}
	return c
}
