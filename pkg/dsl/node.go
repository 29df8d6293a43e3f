package dsl

import "github.com/aretw0/canvas/pkg/domain"

// ItemBuilder provides a fluent API for configuring a component instance.
type ItemBuilder struct {
	item    domain.ComponentTreeItem
	builder *TreeBuilder
}

// Version pins the component version of the instance.
func (n *ItemBuilder) Version(version string) *ItemBuilder {
	n.item.ComponentVersion = version
	return n
}

// Label sets the instance label.
func (n *ItemBuilder) Label(label string) *ItemBuilder {
	n.item.Label = label
	return n
}

// In places the instance in a slot of parent.
func (n *ItemBuilder) In(parentUUID, slot string) *ItemBuilder {
	n.item.ParentUUID = parentUUID
	n.item.Slot = slot
	return n
}

// Child adds a new instance placed in the given slot of this one.
func (n *ItemBuilder) Child(uuid, componentID, slot string) *ItemBuilder {
	return n.builder.Add(uuid, componentID).In(n.item.UUID, slot)
}

// Input stores a collapsed (static) input value.
func (n *ItemBuilder) Input(prop string, value any) *ItemBuilder {
	n.ensureInputs()
	n.item.Inputs[prop] = value
	return n
}

// Static stores an expanded static prop source.
func (n *ItemBuilder) Static(prop, fieldType string, value any) *ItemBuilder {
	return n.Source(prop, domain.PropSource{
		SourceType: domain.DefaultStaticSourcePrefix + fieldType,
		Value:      value,
		Expression: "value",
	})
}

// Dynamic stores a dynamic prop source reading expression from the host.
func (n *ItemBuilder) Dynamic(prop, expression string) *ItemBuilder {
	return n.Source(prop, domain.PropSource{SourceType: string(domain.SourceKindDynamic), Expression: expression})
}

// Source stores an arbitrary expanded prop source.
func (n *ItemBuilder) Source(prop string, src domain.PropSource) *ItemBuilder {
	n.ensureInputs()
	n.item.Inputs[prop] = src.Map()
	return n
}

// NoInputs drops the "inputs" key entirely.
func (n *ItemBuilder) NoInputs() *ItemBuilder {
	n.item.Inputs = nil
	return n
}

func (n *ItemBuilder) ensureInputs() {
	if n.item.Inputs == nil {
		n.item.Inputs = make(map[string]any)
	}
}
