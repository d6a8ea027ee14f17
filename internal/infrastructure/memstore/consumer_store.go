package memstore

import (
	"context"
	"sync"

	"github.com/oronts/datahub/internal/domain/run"
	"github.com/oronts/datahub/internal/ports"
)

// ConsumerStore is an in-memory ports.ConsumerStore keyed by pipeline code.
type ConsumerStore struct {
	mu        sync.Mutex
	consumers map[string]*run.Consumer
}

// NewConsumerStore constructs an empty ConsumerStore.
func NewConsumerStore() *ConsumerStore {
	return &ConsumerStore{consumers: make(map[string]*run.Consumer)}
}

// Get returns the consumer for pipelineCode, creating an inactive one on
// first use so StartConsumer/StopConsumer never need a separate registration
// step.
func (s *ConsumerStore) Get(_ context.Context, pipelineCode string) (*run.Consumer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.consumers[pipelineCode]
	if !ok {
		c = &run.Consumer{PipelineCode: pipelineCode}
		s.consumers[pipelineCode] = c
	}
	clone := *c
	return &clone, nil
}

// Save persists c's current state.
func (s *ConsumerStore) Save(_ context.Context, c *run.Consumer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *c
	s.consumers[c.PipelineCode] = &clone
	return nil
}

var _ ports.ConsumerStore = (*ConsumerStore)(nil)
