// Package checkpoint models a run's durable key-value snapshot: a small
// store with optimistic serialization (write-when-dirty), decoupled from
// the orchestrator's own in-memory maps per the teacher's registry cache
// idiom, generalized from a status cache to arbitrary run state.
package checkpoint

import (
	"sync"
	"time"

	"github.com/oronts/datahub/internal/domain/record"
)

// PipelineStatsKey is the well-known key holding the running error/success
// tally a THRESHOLD gate consults.
const PipelineStatsKey = "__pipelineStats"

// GateKey returns the well-known key under which a paused gate's state is
// stored.
func GateKey(stepKey string) string {
	return "__gate:" + stepKey
}

// GateTimeoutKey returns the well-known key under which a TIMEOUT gate's
// expiry is stored.
func GateTimeoutKey(stepKey string) string {
	return "__gateTimeout:" + stepKey
}

// PipelineStats is the running error/success tally consulted by a THRESHOLD
// gate.
type PipelineStats struct {
	ErrorCount   int
	SuccessCount int
}

// GatePause is the checkpoint payload written when a GATE step pauses a run.
type GatePause struct {
	StepKey            string
	ApprovalType       string
	PendingRecordCount int
	PendingRecords     []record.Record
	PausedAt           time.Time
}

// GateTimeout is the checkpoint payload written for a TIMEOUT gate.
type GateTimeout struct {
	StepKey   string
	ExpiresAt time.Time
}

// Checkpoint is the durable key-value snapshot associated with one run. It
// is created on first write and persisted by an infrastructure adapter
// whenever Dirty is true; the adapter clears Dirty after a successful write.
// Bounded-parallel execution means multiple step goroutines (and the Gate
// Controller, evaluated inline with a step) can read and write the same
// Checkpoint concurrently, so every access is guarded by mu.
type Checkpoint struct {
	mu    sync.Mutex
	Data  map[string]interface{}
	Dirty bool
}

// New returns an empty, clean checkpoint.
func New() *Checkpoint {
	return &Checkpoint{Data: make(map[string]interface{})}
}

// Get returns the value stored under key and whether it is present.
func (c *Checkpoint) Get(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.Data[key]
	return v, ok
}

// Set stores value under key and marks the checkpoint dirty.
func (c *Checkpoint) Set(key string, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Data == nil {
		c.Data = make(map[string]interface{})
	}
	c.Data[key] = value
	c.Dirty = true
}

// Delete removes key and marks the checkpoint dirty if it was present.
func (c *Checkpoint) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.Data[key]; ok {
		delete(c.Data, key)
		c.Dirty = true
	}
}

// MarkDirty flags the checkpoint for persistence without changing any data;
// idempotent, matching the concurrency model's guarantee that concurrent
// markCheckpointDirty calls are safe.
func (c *Checkpoint) MarkDirty() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Dirty = true
}

// ClearDirty is called by the persistence adapter after a successful write.
func (c *Checkpoint) ClearDirty() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Dirty = false
}

// GatePause returns the stored GatePause for stepKey, if any.
func (c *Checkpoint) GatePause(stepKey string) (GatePause, bool) {
	v, ok := c.Get(GateKey(stepKey))
	if !ok {
		return GatePause{}, false
	}
	gp, ok := v.(GatePause)
	return gp, ok
}

// SetGatePause persists a GatePause under its well-known key.
func (c *Checkpoint) SetGatePause(gp GatePause) {
	c.Set(GateKey(gp.StepKey), gp)
}

// ClearGatePause removes a paused gate's checkpoint entry, as done on
// approve/reject.
func (c *Checkpoint) ClearGatePause(stepKey string) {
	c.Delete(GateKey(stepKey))
}

// Stats returns the running pipeline stats, defaulting to zero values when
// absent (no records processed yet).
func (c *Checkpoint) Stats() PipelineStats {
	v, ok := c.Get(PipelineStatsKey)
	if !ok {
		return PipelineStats{}
	}
	stats, ok := v.(PipelineStats)
	if !ok {
		return PipelineStats{}
	}
	return stats
}

// SetStats persists the running pipeline stats.
func (c *Checkpoint) SetStats(stats PipelineStats) {
	c.Set(PipelineStatsKey, stats)
}

// AddStats folds succeeded/failed counts into the running pipeline stats in
// one locked read-modify-write, so concurrent callers (parallel-mode steps)
// never lose an update the way a separate Stats()+SetStats() pair would.
func (c *Checkpoint) AddStats(succeeded, failed int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	stats := PipelineStats{}
	if v, ok := c.Data[PipelineStatsKey]; ok {
		if existing, ok := v.(PipelineStats); ok {
			stats = existing
		}
	}
	stats.SuccessCount += succeeded
	stats.ErrorCount += failed
	if c.Data == nil {
		c.Data = make(map[string]interface{})
	}
	c.Data[PipelineStatsKey] = stats
	c.Dirty = true
}
