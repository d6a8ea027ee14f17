package run

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/oronts/datahub/internal/application/engine"
	"github.com/oronts/datahub/internal/application/gate"
	"github.com/oronts/datahub/internal/domain/pipeline"
	"github.com/oronts/datahub/internal/ports"
)

// Dependencies bundles every collaborator the command service needs. All
// fields are wired once at process start; Graph/Linear are the orchestrators
// built over the same OrchestratorDeps the engine package documents.
type Dependencies struct {
	Runs        ports.RunStore
	Consumers   ports.ConsumerStore
	Errors      ports.RecordErrorStore
	Checkpoints ports.CheckpointStore
	Configs     ports.ConfigLoader
	Broker      ports.MessageBroker
	Events      ports.EventPublisher
	Logger      ports.Logger
	Gate        *gate.Controller
	Graph       *engine.GraphOrchestrator
	Linear      *engine.LinearOrchestrator

	// NewID generates an identifier for a new run, error, or audit row.
	// Defaults to uuid.NewString if nil.
	NewID func() string
	// Now returns the current time. Defaults to time.Now if nil.
	Now func() time.Time
}

// liveRun is the in-process execution state for a run that is currently
// RUNNING or PAUSED: its executor context (carrying the per-step output
// history a GATE resume needs, spec §4.4) and the definition it is
// executing against.
type liveRun struct {
	execCtx *engine.ExecutorContext
	def     *pipeline.PipelineDefinition
}

// Service implements the operational command set against Dependencies.
// RunPipeline blocks its caller for the run's duration; a supervisory layer
// is expected to invoke it from its own goroutine and drive
// CancelRun/ApproveGate/RejectGate concurrently from the same Service
// instance (spec §5 "cooperative cancellation").
type Service struct {
	deps Dependencies

	mu              sync.Mutex
	live            map[string]*liveRun
	cancelFlags     map[string]*int32
	consumerCancels map[string]func()
}

// NewService constructs a Service over deps.
func NewService(deps Dependencies) *Service {
	if deps.NewID == nil {
		deps.NewID = defaultNewID
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Service{
		deps:            deps,
		live:            make(map[string]*liveRun),
		cancelFlags:     make(map[string]*int32),
		consumerCancels: make(map[string]func()),
	}
}

func (s *Service) newCancelFlag(runID string) *int32 {
	flag := new(int32)
	s.mu.Lock()
	s.cancelFlags[runID] = flag
	s.mu.Unlock()
	return flag
}

func (s *Service) setLive(runID string, lr *liveRun) {
	s.mu.Lock()
	s.live[runID] = lr
	s.mu.Unlock()
}

func (s *Service) getLive(runID string) (*liveRun, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	lr, ok := s.live[runID]
	return lr, ok
}

func (s *Service) clearLive(runID string) {
	s.mu.Lock()
	delete(s.live, runID)
	delete(s.cancelFlags, runID)
	s.mu.Unlock()
}

func (s *Service) requestCancel(runID string) bool {
	s.mu.Lock()
	flag, ok := s.cancelFlags[runID]
	s.mu.Unlock()
	if !ok {
		return false
	}
	atomic.StoreInt32(flag, 1)
	return true
}

func (s *Service) cancelRequested(flag *int32) func() bool {
	return func() bool {
		return atomic.LoadInt32(flag) == 1
	}
}
