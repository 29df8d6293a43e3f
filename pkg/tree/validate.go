package tree

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/aretw0/canvas/pkg/domain"
	"github.com/aretw0/canvas/pkg/validation"
)

// slotNamePattern: alphanumeric at both ends, hyphens/underscores inside.
var slotNamePattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_-]*[a-zA-Z0-9]$`)

const minSlotNameLength = 3

// bannedSlotNames are rejected regardless of the pattern.
var bannedSlotNames = []string{domain.ReservedSlotNameChildren}

// Messages reported by Validate.
const (
	MsgNotUnique       = "Not all component instance UUIDs in this component tree are unique."
	MsgBlank           = "This value should not be blank."
	MsgInputsRequired  = `The "inputs" key is required.`
	MsgSelfParent      = "Invalid component tree item with UUID %s. A component instance cannot be its own parent."
	MsgInvalidParent   = "Invalid component tree item with UUID %s references an invalid parent %s."
	MsgSlotRequired    = "Invalid component tree item with UUID %s. A slot name must be present if a parent uuid is provided."
	MsgBannedSlot      = `Invalid slot name %q: the slot name "children" is reserved.`
	MsgSlotPattern     = "Invalid slot name %q: slot names must be at least 3 alphanumeric characters, optionally using internal hyphens or underscores."
	MsgNoSlots         = "Invalid component subtree. A component subtree must only exist for components with >=1 slot, but the component %s has no slots, yet a subtree exists for the instance with UUID %s."
	MsgUndefinedSlot   = "Invalid component subtree. This component subtree contains an invalid slot name for component %s: %s. Valid slot names are: %s."
	MsgUnknownParentID = "Invalid component tree item with UUID %s: the component %s of its parent could not be loaded."
)

// Option configures Validate.
type Option func(*options)

type options struct {
	template domain.ComponentTree
}

// WithTemplateTree lets parent references resolve against an associated
// template's tree, used when validating the exposed portion of a content
// template.
func WithTemplateTree(t domain.ComponentTree) Option {
	return func(o *options) {
		o.template = t
	}
}

// Validator performs structural validation.
type Validator struct {
	slots *SlotResolver
}

// NewValidator creates a structural validator that resolves parent slots
// through r.
func NewValidator(r *SlotResolver) *Validator {
	return &Validator{slots: r}
}

// Validate checks the tree and adds every violation to vctx. Paths are
// "<index>.<field>" relative to vctx's base path.
// It returns an error only for caller defects (nil context) or when a
// definition provider fails for reasons other than a missing component.
func (v *Validator) Validate(ctx context.Context, t domain.ComponentTree, vctx *validation.Context, opts ...Option) error {
	if vctx == nil {
		return fmt.Errorf("tree: nil validation context")
	}
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	checkRequiredFields(t, vctx)
	checkUnique(t, vctx)

	for i, item := range t {
		if item.ParentUUID == "" {
			continue
		}
		if err := v.checkParent(ctx, i, item, t, o.template, vctx); err != nil {
			return err
		}
	}
	return nil
}

func indexPath(i int, field string) string {
	return validation.Join(strconv.Itoa(i), field)
}

func checkRequiredFields(t domain.ComponentTree, vctx *validation.Context) {
	for i, item := range t {
		if item.UUID == "" {
			vctx.AddViolation(indexPath(i, "uuid"), MsgBlank, nil)
		}
		if item.ComponentID == "" {
			vctx.AddViolation(indexPath(i, "component_id"), MsgBlank, nil)
		}
		if item.Inputs == nil {
			vctx.AddViolation(indexPath(i, "inputs"), MsgInputsRequired, nil)
		}
	}
}

// checkUnique reports a single violation for the whole tree when any UUID
// is used more than once. Comparison is case-sensitive.
func checkUnique(t domain.ComponentTree, vctx *validation.Context) {
	seen := make(map[string]bool, len(t))
	var duplicates []string
	for _, item := range t {
		if item.UUID == "" {
			continue
		}
		if seen[item.UUID] {
			duplicates = append(duplicates, item.UUID)
			continue
		}
		seen[item.UUID] = true
	}
	if len(duplicates) > 0 {
		vctx.AddViolation("", MsgNotUnique, map[string]any{"duplicates": duplicates})
	}
}

func (v *Validator) checkParent(ctx context.Context, i int, item domain.ComponentTreeItem, t, template domain.ComponentTree, vctx *validation.Context) error {
	var (
		parent domain.ComponentTreeItem
		ok     bool
	)
	if item.ParentUUID == item.UUID {
		vctx.AddViolation(indexPath(i, "parent_uuid"), fmt.Sprintf(MsgSelfParent, item.UUID), nil)
	} else {
		parent, ok = t.Get(item.ParentUUID)
		if !ok && template != nil {
			parent, ok = template.Get(item.ParentUUID)
		}
		if !ok {
			vctx.AddViolation(indexPath(i, "parent_uuid"), fmt.Sprintf(MsgInvalidParent, item.UUID, item.ParentUUID), nil)
		}
	}

	// A slot name is required whenever a parent is named, resolved or not.
	if item.Slot == "" {
		vctx.AddViolation(indexPath(i, "slot"), fmt.Sprintf(MsgSlotRequired, item.UUID), nil)
		return nil
	}
	if !ok {
		return nil
	}

	if !checkSlotName(item.Slot, indexPath(i, "slot"), vctx) {
		return nil
	}

	slots, err := v.slots.Slots(ctx, parent)
	if err != nil {
		if errors.Is(err, domain.ErrComponentNotFound) || errors.Is(err, domain.ErrVersionNotFound) {
			vctx.AddViolation(indexPath(i, "parent_uuid"), fmt.Sprintf(MsgUnknownParentID, item.UUID, parent.ComponentID), nil)
			return nil
		}
		return err
	}

	if slots.Len() == 0 {
		vctx.AddViolation(indexPath(i, "slot"), fmt.Sprintf(MsgNoSlots, parent.ComponentID, parent.UUID), nil)
		return nil
	}

	if !slots.Has(item.Slot) {
		vctx.AddViolation(indexPath(i, "slot"),
			fmt.Sprintf(MsgUndefinedSlot, parent.ComponentID, item.Slot, strings.Join(slots.Keys(), ", ")),
			map[string]any{"valid_slot_names": slots.Keys()})
	}
	return nil
}

// checkSlotName applies the ban list first, then the pattern.
func checkSlotName(slot, path string, vctx *validation.Context) bool {
	for _, banned := range bannedSlotNames {
		if slot == banned {
			vctx.AddViolation(path, fmt.Sprintf(MsgBannedSlot, slot), nil)
			return false
		}
	}
	if len(slot) < minSlotNameLength || !slotNamePattern.MatchString(slot) {
		vctx.AddViolation(path, fmt.Sprintf(MsgSlotPattern, slot), nil)
		return false
	}
	return true
}

// ValidSlotName reports whether name is a usable slot name.
func ValidSlotName(name string) bool {
	return checkSlotName(name, "", validation.NewContext(""))
}
