package lifecycle

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/gnames/lnsdesign/pkg/config"
	"github.com/gnames/lnsdesign/pkg/message"
)

// Worker is a domain-specific worker driven by the message transport.
type Worker interface {
	// Initialize prepares the worker on INIT.
	Initialize(
		ctx context.Context,
		cfg *config.Config,
		ch message.Channel,
		msg message.Init,
	) error

	// StartLoading is called on LOAD.
	StartLoading(
		ctx context.Context,
		cfg *config.Config,
		ch message.Channel,
		msg message.Load,
	) error

	// StartExecution is called on EXECUTE. It returns when the worker
	// finished its job.
	StartExecution(
		ctx context.Context,
		cfg *config.Config,
		ch message.Channel,
		msg message.Execute,
	) error
}

// WorkerConstructor creates a fresh worker.
type WorkerConstructor func() Worker

// Registry maps benchmark names to worker constructors.
// It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	ctors map[string]WorkerConstructor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{ctors: make(map[string]WorkerConstructor)}
}

// Register adds a constructor under a benchmark name, replacing a
// previous one with the same name.
func (r *Registry) Register(name string, ctor WorkerConstructor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ctors[name] = ctor
}

// New creates a worker for a benchmark name.
func (r *Registry) New(name string) (Worker, error) {
	r.mu.RLock()
	ctor, ok := r.ctors[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no worker registered for benchmark %q", name)
	}
	return ctor(), nil
}

// Names returns sorted registered benchmark names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.ctors))
}
