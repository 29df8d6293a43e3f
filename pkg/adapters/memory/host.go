package memory

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/aretw0/canvas/pkg/domain"
	"github.com/aretw0/canvas/pkg/ports"
)

// Entity is a map-backed host entity.
// Fields map field names to values; nested maps and slices are traversed by
// FieldValue, so "field_image.0.alt" reads Fields["field_image"][0]["alt"].
type Entity struct {
	Type   string
	ID     string
	Path   string
	Fields map[string]any
	Tree   domain.ComponentTree
}

var _ ports.HostEntity = (*Entity)(nil)

func (e *Entity) HostType() string { return e.Type }
func (e *Entity) HostID() string   { return e.ID }

func (e *Entity) ComponentTree() domain.ComponentTree { return e.Tree }

func (e *Entity) SetComponentTree(tree domain.ComponentTree) { e.Tree = tree }

// CanonicalURL returns Path, or "/<type>/<id>" when Path is empty.
func (e *Entity) CanonicalURL() string {
	if e.Path != "" {
		return e.Path
	}
	return "/" + e.Type + "/" + e.ID
}

// FieldValue walks path through Fields.
func (e *Entity) FieldValue(path []string) (any, error) {
	if len(path) == 0 {
		return nil, fmt.Errorf("empty field path")
	}
	var current any = e.Fields
	for i, segment := range path {
		next, err := step(current, segment)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", strings.Join(path[:i+1], "."), err)
		}
		current = next
	}
	return current, nil
}

func step(current any, segment string) (any, error) {
	switch v := current.(type) {
	case map[string]any:
		next, ok := v[segment]
		if !ok {
			return nil, fmt.Errorf("no such property")
		}
		return next, nil
	case []any:
		idx, err := strconv.Atoi(segment)
		if err != nil || idx < 0 || idx >= len(v) {
			return nil, fmt.Errorf("no such delta")
		}
		return v[idx], nil
	default:
		return nil, fmt.Errorf("cannot traverse %T", current)
	}
}

func (e *Entity) clone() *Entity {
	c := *e
	c.Tree = e.Tree.Clone()
	return &c
}

// HostStore implements ports.HostProvider in memory.
type HostStore struct {
	mu       sync.RWMutex
	entities map[string]*Entity
}

// NewHostStore creates a store seeded with the given entities.
func NewHostStore(entities ...*Entity) *HostStore {
	s := &HostStore{entities: make(map[string]*Entity)}
	for _, e := range entities {
		s.entities[domain.DraftKey(e.Type, e.ID)] = e
	}
	return s
}

// Load returns a copy of the stored entity.
func (s *HostStore) Load(ctx context.Context, hostType, id string) (ports.HostEntity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entities[domain.DraftKey(hostType, id)]
	if !ok {
		return nil, fmt.Errorf("%s %s: %w", hostType, id, domain.ErrHostNotFound)
	}
	return e.clone(), nil
}

// Save stores host. Only *Entity values are accepted.
func (s *HostStore) Save(ctx context.Context, host ports.HostEntity) error {
	e, ok := host.(*Entity)
	if !ok {
		return fmt.Errorf("memory host store cannot save %T", host)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entities[domain.DraftKey(e.Type, e.ID)] = e.clone()
	return nil
}
