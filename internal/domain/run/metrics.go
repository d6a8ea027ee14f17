package run

import "github.com/oronts/datahub/internal/domain/pipeline"

// Counters tallies per-kind record throughput across a run.
type Counters struct {
	Extracted   int
	Transformed int
	Validated   int
	Enriched    int
	Routed      int
	Loaded      int
	Rejected    int
	Gated       int
}

// StepDetail is one row appended to RunMetrics.Details when a step
// completes.
type StepDetail struct {
	StepKey     string
	Type        pipeline.StepKind
	AdapterCode string
	OK          int
	Fail        int
	Out         int
	DurationMs  int64
	Branches    map[string]int
	Paused      bool
	ShouldPause bool
	Error       string
}

// Metrics aggregates run-wide counters and per-step detail rows.
type Metrics struct {
	Processed     int
	Succeeded     int
	Failed        int
	Counters      Counters
	Details       []StepDetail
	Paused        bool
	PausedAtStep  string
}

// AddDetail appends a StepDetail and folds its outcome into the aggregate
// counters.
func (m *Metrics) AddDetail(detail StepDetail) {
	m.Details = append(m.Details, detail)
	m.Succeeded += detail.OK
	m.Failed += detail.Fail
	if detail.ShouldPause {
		m.Paused = true
		m.PausedAtStep = detail.StepKey
	}
}
