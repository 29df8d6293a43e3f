package dsl

import (
	"fmt"
	"strings"

	"github.com/aretw0/canvas/pkg/adapters/memory"
	"github.com/aretw0/canvas/pkg/domain"
	"github.com/aretw0/canvas/pkg/propsource"
)

// TreeBuilder manages component tree construction.
type TreeBuilder struct {
	items []*ItemBuilder
}

// NewTree creates a new tree builder.
func NewTree() *TreeBuilder {
	return &TreeBuilder{}
}

// Add creates a root component instance.
// If an instance with uuid already exists, it returns the existing builder.
func (b *TreeBuilder) Add(uuid, componentID string) *ItemBuilder {
	for _, ib := range b.items {
		if ib.item.UUID == uuid {
			return ib
		}
	}
	ib := &ItemBuilder{
		item:    domain.ComponentTreeItem{UUID: uuid, ComponentID: componentID, Inputs: map[string]any{}},
		builder: b,
	}
	b.items = append(b.items, ib)
	return ib
}

// Build returns the tree in the order instances were added.
func (b *TreeBuilder) Build() domain.ComponentTree {
	out := make(domain.ComponentTree, 0, len(b.items))
	for _, ib := range b.items {
		item := ib.item
		if item.Inputs != nil {
			inputs := make(map[string]any, len(item.Inputs))
			for k, v := range item.Inputs {
				inputs[k] = v
			}
			item.Inputs = inputs
		}
		out = append(out, item)
	}
	return out
}

// Library collects component definitions.
type Library struct {
	components []*ComponentBuilder
}

// NewLibrary creates an empty library.
func NewLibrary() *Library {
	return &Library{}
}

// Component starts a definition with the given id. The source plugin is
// read from the id prefix ("sdc.", "js.", "block.").
// If the component already exists, it returns the existing builder.
func (l *Library) Component(id, label string) *ComponentBuilder {
	for _, cb := range l.components {
		if cb.id == id {
			return cb
		}
	}
	cb := &ComponentBuilder{id: id, label: label, status: true}
	l.components = append(l.components, cb)
	return cb
}

// Build compiles the library into a DefinitionStore.
func (l *Library) Build() (*memory.DefinitionStore, error) {
	defs := make([]*domain.ComponentDefinition, 0, len(l.components))
	for _, cb := range l.components {
		def, err := cb.Build()
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return memory.NewDefinitionStore(defs...), nil
}

// ComponentBuilder provides a fluent API for one component definition.
type ComponentBuilder struct {
	id       string
	label    string
	category string
	source   domain.ComponentSource
	status   bool
	version  string
	props    domain.Ordered[*domain.PropSchema]
	required []string
	slots    domain.Ordered[domain.SlotDefinition]
	fields   map[string]domain.PropFieldDefinition
	noProps  bool
}

// Category sets the component category.
func (c *ComponentBuilder) Category(category string) *ComponentBuilder {
	c.category = category
	return c
}

// Source overrides the source inferred from the id.
func (c *ComponentBuilder) Source(source domain.ComponentSource) *ComponentBuilder {
	c.source = source
	return c
}

// Disabled marks the definition as disabled.
func (c *ComponentBuilder) Disabled() *ComponentBuilder {
	c.status = false
	return c
}

// Version pins the version identifier. By default it is derived from the
// props, slots and fields.
func (c *ComponentBuilder) Version(version string) *ComponentBuilder {
	c.version = version
	return c
}

// Prop declares a prop. Declaration order is kept.
func (c *ComponentBuilder) Prop(name string, schema domain.PropSchema) *ComponentBuilder {
	s := schema
	c.props.Set(name, &s)
	return c
}

// Required marks props as required.
func (c *ComponentBuilder) Required(names ...string) *ComponentBuilder {
	c.required = append(c.required, names...)
	return c
}

// Field sets the default static prop source of a prop.
func (c *ComponentBuilder) Field(prop, fieldType, widget string) *ComponentBuilder {
	return c.FieldDefinition(prop, domain.PropFieldDefinition{FieldType: fieldType, FieldWidget: widget, Expression: "value"})
}

// FieldDefinition sets a complete default static prop source.
func (c *ComponentBuilder) FieldDefinition(prop string, def domain.PropFieldDefinition) *ComponentBuilder {
	if c.fields == nil {
		c.fields = make(map[string]domain.PropFieldDefinition)
	}
	c.fields[prop] = def
	return c
}

// Slot declares a slot. Declaration order is kept.
func (c *ComponentBuilder) Slot(name, title string) *ComponentBuilder {
	c.slots.Set(name, domain.SlotDefinition{Title: title})
	return c
}

// WithoutPropsSchema builds a definition that has no props schema at all.
func (c *ComponentBuilder) WithoutPropsSchema() *ComponentBuilder {
	c.noProps = true
	return c
}

// Build returns the component definition.
func (c *ComponentBuilder) Build() (*domain.ComponentDefinition, error) {
	source := c.source
	if source == "" {
		prefix, _, _ := strings.Cut(c.id, ".")
		source = domain.ComponentSource(prefix)
	}
	if !source.Valid() {
		return nil, fmt.Errorf("component %s: unknown source %q", c.id, source)
	}

	md := domain.ComponentMetadata{Name: c.label, Group: c.category, Slots: c.slots}
	if !c.noProps {
		md.Props = &domain.PropsSchema{Type: "object", Required: c.required, Properties: c.props}
	}
	settings := domain.VersionSettings{PropFieldDefinitions: c.fields}

	version := c.version
	if version == "" {
		hash, err := propsource.Hash(domain.ComponentVersion{Metadata: md, Settings: settings})
		if err != nil {
			return nil, fmt.Errorf("component %s: %w", c.id, err)
		}
		version = hash
	}

	def := &domain.ComponentDefinition{
		ID:       c.id,
		Label:    c.label,
		Category: c.category,
		Source:   source,
		Status:   c.status,
	}
	def.AddVersion(&domain.ComponentVersion{Version: version, Metadata: md, Settings: settings})
	return def, nil
}
