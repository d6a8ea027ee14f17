package memstore

import (
	"fmt"
	"sync"

	"github.com/oronts/datahub/internal/ports"
)

// ExecutorRegistry is an in-memory ports.ExecutorRegistry keyed by adapter
// code, mirroring the teacher's plugin registry (internal/infrastructure/
// plugin/registry.go) keyed on step type instead of adapter code: adapters
// here are external collaborators a strategy resolves by config, not
// plugins with declared dependencies, so the dependency-graph machinery
// the teacher's registry carries has no counterpart.
type ExecutorRegistry struct {
	mu        sync.RWMutex
	executors map[string]ports.StepExecutor
}

// NewExecutorRegistry constructs an empty ExecutorRegistry.
func NewExecutorRegistry() *ExecutorRegistry {
	return &ExecutorRegistry{executors: make(map[string]ports.StepExecutor)}
}

// Register stores executor under adapterCode, failing if the code is
// already taken or either argument is empty/nil.
func (r *ExecutorRegistry) Register(adapterCode string, executor ports.StepExecutor) error {
	if adapterCode == "" {
		return fmt.Errorf("memstore: adapter code is required")
	}
	if executor == nil {
		return fmt.Errorf("memstore: executor for %q is nil", adapterCode)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.executors[adapterCode]; exists {
		return fmt.Errorf("memstore: executor for adapter %q already registered", adapterCode)
	}
	r.executors[adapterCode] = executor
	return nil
}

// Get returns the StepExecutor registered for adapterCode.
func (r *ExecutorRegistry) Get(adapterCode string) (ports.StepExecutor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	executor, ok := r.executors[adapterCode]
	if !ok {
		return nil, fmt.Errorf("memstore: no executor registered for adapter %q", adapterCode)
	}
	return executor, nil
}

var _ ports.ExecutorRegistry = (*ExecutorRegistry)(nil)

// LoaderRegistry is an in-memory ports.LoaderRegistry keyed by adapter
// code, the LOAD-step counterpart to ExecutorRegistry.
type LoaderRegistry struct {
	mu      sync.RWMutex
	loaders map[string]ports.EntityLoader
}

// NewLoaderRegistry constructs an empty LoaderRegistry.
func NewLoaderRegistry() *LoaderRegistry {
	return &LoaderRegistry{loaders: make(map[string]ports.EntityLoader)}
}

// Register stores loader under adapterCode, failing if the code is
// already taken or either argument is empty/nil.
func (r *LoaderRegistry) Register(adapterCode string, loader ports.EntityLoader) error {
	if adapterCode == "" {
		return fmt.Errorf("memstore: adapter code is required")
	}
	if loader == nil {
		return fmt.Errorf("memstore: loader for %q is nil", adapterCode)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.loaders[adapterCode]; exists {
		return fmt.Errorf("memstore: loader for adapter %q already registered", adapterCode)
	}
	r.loaders[adapterCode] = loader
	return nil
}

// Get returns the EntityLoader registered for adapterCode.
func (r *LoaderRegistry) Get(adapterCode string) (ports.EntityLoader, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	loader, ok := r.loaders[adapterCode]
	if !ok {
		return nil, fmt.Errorf("memstore: no loader registered for adapter %q", adapterCode)
	}
	return loader, nil
}

var _ ports.LoaderRegistry = (*LoaderRegistry)(nil)
