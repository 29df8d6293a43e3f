package domain

// ComponentTreeItem is a single component instance placed in a tree.
// Inputs is nil when the "inputs" key was absent, and empty when it was
// present without values.
type ComponentTreeItem struct {
	UUID             string         `json:"uuid" yaml:"uuid" mapstructure:"uuid"`
	ComponentID      string         `json:"component_id" yaml:"component_id" mapstructure:"component_id"`
	ComponentVersion string         `json:"component_version,omitempty" yaml:"component_version,omitempty" mapstructure:"component_version"`
	ParentUUID       string         `json:"parent_uuid,omitempty" yaml:"parent_uuid,omitempty" mapstructure:"parent_uuid"`
	Slot             string         `json:"slot,omitempty" yaml:"slot,omitempty" mapstructure:"slot"`
	Label            string         `json:"label,omitempty" yaml:"label,omitempty" mapstructure:"label"`
	Inputs           map[string]any `json:"inputs" yaml:"inputs" mapstructure:"inputs"`
}

// IsRoot reports whether the item has no parent.
func (i ComponentTreeItem) IsRoot() bool {
	return i.ParentUUID == ""
}

// ComponentTree is a flat list of items forming a forest of parent/slot
// relationships. Order is irrelevant for structure; identity is the UUID.
type ComponentTree []ComponentTreeItem

// Get returns the first item with the given UUID.
func (t ComponentTree) Get(uuid string) (ComponentTreeItem, bool) {
	for _, item := range t {
		if item.UUID == uuid {
			return item, true
		}
	}
	return ComponentTreeItem{}, false
}

// Index returns the position of the item with the given UUID, or -1.
func (t ComponentTree) Index(uuid string) int {
	for i, item := range t {
		if item.UUID == uuid {
			return i
		}
	}
	return -1
}

// Roots returns the items that have no parent, in tree order.
func (t ComponentTree) Roots() []ComponentTreeItem {
	var out []ComponentTreeItem
	for _, item := range t {
		if item.IsRoot() {
			out = append(out, item)
		}
	}
	return out
}

// Children returns the items placed in the given slot of a parent.
// An empty slot name matches every slot of the parent.
func (t ComponentTree) Children(parentUUID, slot string) []ComponentTreeItem {
	var out []ComponentTreeItem
	for _, item := range t {
		if item.ParentUUID != parentUUID || parentUUID == "" {
			continue
		}
		if slot != "" && item.Slot != slot {
			continue
		}
		out = append(out, item)
	}
	return out
}

// UUIDs returns all item UUIDs in tree order.
func (t ComponentTree) UUIDs() []string {
	out := make([]string, len(t))
	for i, item := range t {
		out[i] = item.UUID
	}
	return out
}

// ComponentIDs returns the distinct component ids used, in first-use order.
func (t ComponentTree) ComponentIDs() []string {
	seen := make(map[string]bool)
	var out []string
	for _, item := range t {
		if !seen[item.ComponentID] {
			seen[item.ComponentID] = true
			out = append(out, item.ComponentID)
		}
	}
	return out
}

// Inputs returns the stored inputs of an item. The boolean is false when the
// item does not exist or has no inputs key at all.
func (t ComponentTree) Inputs(uuid string) (map[string]any, bool) {
	item, ok := t.Get(uuid)
	if !ok || item.Inputs == nil {
		return nil, false
	}
	return item.Inputs, true
}

// RequireInputs returns an item's inputs. When they are absent and the
// component tolerates empty input, an empty map is returned; otherwise a
// *MissingInputsError.
func (t ComponentTree) RequireInputs(uuid string, tolerateEmpty bool) (map[string]any, error) {
	if inputs, ok := t.Inputs(uuid); ok {
		return inputs, nil
	}
	if tolerateEmpty {
		return map[string]any{}, nil
	}
	item, _ := t.Get(uuid)
	return nil, &MissingInputsError{UUID: uuid, ComponentID: item.ComponentID}
}

// Clone returns a deep-enough copy: items and their input maps are copied,
// input values are shared.
func (t ComponentTree) Clone() ComponentTree {
	if t == nil {
		return nil
	}
	out := make(ComponentTree, len(t))
	for i, item := range t {
		out[i] = item
		if item.Inputs != nil {
			out[i].Inputs = make(map[string]any, len(item.Inputs))
			for k, v := range item.Inputs {
				out[i].Inputs[k] = v
			}
		}
	}
	return out
}
