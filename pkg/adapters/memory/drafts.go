package memory

import (
	"context"
	"sync"

	"github.com/aretw0/canvas/pkg/domain"
)

// DraftStore implements ports.DraftStore in memory.
// Safe for concurrent use.
type DraftStore struct {
	data map[string]*domain.Draft
	mu   sync.RWMutex
}

// NewDraftStore creates a new in-memory draft store.
func NewDraftStore() *DraftStore {
	return &DraftStore{
		data: make(map[string]*domain.Draft),
	}
}

func copyDraft(d *domain.Draft) *domain.Draft {
	c := *d
	c.Tree = d.Tree.Clone()
	return &c
}

// Save persists a copy of the draft.
func (s *DraftStore) Save(ctx context.Context, key string, draft *domain.Draft) error {
	// Copy so the caller cannot mutate stored state through its pointer.
	copied := copyDraft(draft)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = copied
	return nil
}

// Load returns a copy of the stored draft.
func (s *DraftStore) Load(ctx context.Context, key string) (*domain.Draft, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	draft, ok := s.data[key]
	if !ok {
		return nil, domain.ErrDraftNotFound
	}
	return copyDraft(draft), nil
}

// Delete removes the draft.
func (s *DraftStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// List returns the keys of stored drafts.
func (s *DraftStore) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	return keys, nil
}
