package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/weft/pkg/domain"
)

// Registry manages the programs messages can be addressed to.
// Programs are immutable once registered and shared read-only by all workers.
type Registry struct {
	mu       sync.RWMutex
	programs map[string]*domain.Program
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		programs: make(map[string]*domain.Program),
	}
}

// Register validates a program and adds it to the registry.
// If a program with the same name exists, it is replaced.
func (r *Registry) Register(p *domain.Program) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("failed to register program: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.programs[p.Name] = p
	return nil
}

// Unregister removes a program. Requests already running keep their reference.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.programs, name)
}

// Program looks up a program by name.
func (r *Registry) Program(name string) (*domain.Program, error) {
	r.mu.RLock()
	p, ok := r.programs[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrProgramNotFound, name)
	}
	return p, nil
}

// Programs returns the registered names, sorted.
func (r *Registry) Programs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.programs))
	for name := range r.programs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
