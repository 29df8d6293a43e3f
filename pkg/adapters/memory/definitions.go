package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/canvas/pkg/domain"
)

// DefinitionStore implements ports.ComponentDefinitionProvider in memory.
// Safe for concurrent use.
type DefinitionStore struct {
	mu   sync.RWMutex
	defs map[string]*domain.ComponentDefinition
}

// NewDefinitionStore creates a store seeded with the given definitions.
func NewDefinitionStore(defs ...*domain.ComponentDefinition) *DefinitionStore {
	s := &DefinitionStore{defs: make(map[string]*domain.ComponentDefinition)}
	for _, d := range defs {
		s.defs[d.ID] = d
	}
	return s
}

// Put stores or replaces a whole definition.
func (s *DefinitionStore) Put(def *domain.ComponentDefinition) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.defs[def.ID] = def
}

// AddVersion appends a version to an existing definition and activates it,
// keeping the previous active version as a past version.
func (s *DefinitionStore) AddVersion(id string, v *domain.ComponentVersion) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	def, ok := s.defs[id]
	if !ok {
		return fmt.Errorf("%s: %w", id, domain.ErrComponentNotFound)
	}
	def.AddVersion(v)
	return nil
}

// Get returns a snapshot of the definition with the given id. Versions
// added later do not show up in it.
func (s *DefinitionStore) Get(ctx context.Context, id string) (*domain.ComponentDefinition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	def, ok := s.defs[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, domain.ErrComponentNotFound)
	}
	return def.Clone(), nil
}

// GetVersion returns a specific version, or the active one.
func (s *DefinitionStore) GetVersion(ctx context.Context, id, version string) (*domain.ComponentVersion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	def, ok := s.defs[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, domain.ErrComponentNotFound)
	}
	return def.Version(version)
}

// List returns all ids, sorted.
func (s *DefinitionStore) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.defs))
	for id := range s.defs {
		ids = append(ids, id)
	}
	sort.Strings(ids) // Deterministic order
	return ids, nil
}
