package tree

import (
	"context"
	"fmt"

	"github.com/aretw0/canvas/pkg/domain"
	"github.com/aretw0/canvas/pkg/ports"
)

// SlotResolver determines which named slots a component instance supports.
type SlotResolver struct {
	definitions ports.ComponentDefinitionProvider
}

// NewSlotResolver creates a resolver backed by the given definitions.
func NewSlotResolver(definitions ports.ComponentDefinitionProvider) *SlotResolver {
	return &SlotResolver{definitions: definitions}
}

// Slots returns the slots of the item's component version in declared order.
// An item without component_version resolves against the active version.
func (r *SlotResolver) Slots(ctx context.Context, item domain.ComponentTreeItem) (domain.Ordered[domain.SlotDefinition], error) {
	v, err := r.definitions.GetVersion(ctx, item.ComponentID, item.ComponentVersion)
	if err != nil {
		return domain.Ordered[domain.SlotDefinition]{}, fmt.Errorf("resolving slots of %s: %w", item.UUID, err)
	}
	return v.Metadata.Slots, nil
}

// SlotNames is a convenience wrapper returning only the names.
func (r *SlotResolver) SlotNames(ctx context.Context, item domain.ComponentTreeItem) ([]string, error) {
	slots, err := r.Slots(ctx, item)
	if err != nil {
		return nil, err
	}
	return slots.Keys(), nil
}
