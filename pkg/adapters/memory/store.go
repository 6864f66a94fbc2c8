package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/weft/pkg/domain"
)

// ResultStore implements ports.ResultStore in memory.
// Safe for concurrent use.
type ResultStore struct {
	data map[string]domain.Result
	mu   sync.RWMutex
}

// NewResultStore creates a new in-memory result store.
func NewResultStore() *ResultStore {
	return &ResultStore{
		data: make(map[string]domain.Result),
	}
}

// Save persists the result in memory.
func (s *ResultStore) Save(ctx context.Context, result domain.Result) error {
	result.Bindings = copyBindings(result.Bindings)
	if result.Failure != nil {
		f := *result.Failure
		result.Failure = &f
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[result.MessageID] = result
	return nil
}

// Load retrieves a copy of the result.
func (s *ResultStore) Load(ctx context.Context, messageID string) (domain.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result, ok := s.data[messageID]
	if !ok {
		return domain.Result{}, domain.ErrResultNotFound
	}

	// Copy on read so callers can't mutate stored bindings or failure.
	result.Bindings = copyBindings(result.Bindings)
	if result.Failure != nil {
		f := *result.Failure
		result.Failure = &f
	}
	return result, nil
}

// Delete removes the result.
func (s *ResultStore) Delete(ctx context.Context, messageID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, messageID)
	return nil
}

// List returns the stored message IDs, sorted.
func (s *ResultStore) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func copyBindings(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
