package kernel

import "sync"

// Registry is the process-wide kernel_id -> *Supervisor map the admin
// surface and the heartbeat watchdog both consult, grounded on
// original_source/core.py's in-memory spawn_kernel dict. Kernels are
// spawned and run as goroutines inside the admin process, never as
// child OS processes.
type Registry struct {
	mu      sync.RWMutex
	kernels map[string]*Supervisor
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{kernels: map[string]*Supervisor{}}
}

// DefaultRegistry is the registry cmd/ignition-kernel and the admin
// server share in the single-process deployment this repo builds.
var DefaultRegistry = NewRegistry()

// Insert registers a running supervisor under its kernel ID.
func (r *Registry) Insert(s *Supervisor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.kernels[s.KernelID] = s
}

// Remove drops a kernel from the registry, e.g. after teardown.
func (r *Registry) Remove(kernelID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.kernels, kernelID)
}

// Get looks up a kernel by ID.
func (r *Registry) Get(kernelID string) (*Supervisor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.kernels[kernelID]
	return s, ok
}

// List returns every registered kernel ID.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.kernels))
	for id := range r.kernels {
		ids = append(ids, id)
	}
	return ids
}

// RemoveAll tears down and removes every registered kernel, returning
// the IDs that were scrammed. Used by the admin surface's DELETE
// /kernel (scram-all) route.
func (r *Registry) RemoveAll() []string {
	r.mu.Lock()
	kernels := make([]*Supervisor, 0, len(r.kernels))
	ids := make([]string, 0, len(r.kernels))
	for id, s := range r.kernels {
		kernels = append(kernels, s)
		ids = append(ids, id)
		delete(r.kernels, id)
	}
	r.mu.Unlock()

	for _, s := range kernels {
		s.TearDown()
	}
	return ids
}
