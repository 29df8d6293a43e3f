package shape

import (
	"fmt"
	"sync"

	"github.com/aretw0/canvas/pkg/schema"
)

// Cardinality values.
const (
	CardinalitySingle    = 1
	CardinalityUnlimited = -1
)

// StorablePropShape describes how values of a prop shape are stored.
type StorablePropShape struct {
	Shape                 schema.PropShape
	FieldType             string
	FieldWidget           string
	Cardinality           int
	FieldStorageSettings  map[string]any
	FieldInstanceSettings map[string]any
}

// Mapper offers a storable shape for s, or reports false.
type Mapper func(s schema.PropShape) (StorablePropShape, bool)

type namedMapper struct {
	name string
	fn   Mapper
}

// Matcher finds storage for prop shapes.
type Matcher struct {
	mu      sync.RWMutex
	mappers []namedMapper
}

// NewMatcher returns a Matcher with the default mappers registered.
func NewMatcher() *Matcher {
	m := NewEmptyMatcher()
	m.mappers = append(m.mappers, defaults...)
	return m
}

// NewEmptyMatcher returns a Matcher without any mappers.
func NewEmptyMatcher() *Matcher {
	return &Matcher{}
}

// Register appends a mapper. Registering a name twice is an error.
func (m *Matcher) Register(name string, fn Mapper) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.mappers {
		if existing.name == name {
			return fmt.Errorf("shape mapper %q already registered", name)
		}
	}
	m.mappers = append(m.mappers, namedMapper{name: name, fn: fn})
	return nil
}

// Names lists registered mappers in evaluation order.
func (m *Matcher) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, len(m.mappers))
	for i, nm := range m.mappers {
		names[i] = nm.name
	}
	return names
}

// Find returns the first storable shape any mapper offers for s.
func (m *Matcher) Find(s schema.PropShape) (StorablePropShape, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, nm := range m.mappers {
		if out, ok := nm.fn(s); ok {
			out.Shape = s
			if out.Cardinality == 0 {
				out.Cardinality = CardinalitySingle
			}
			return out, true
		}
	}
	return StorablePropShape{}, false
}
