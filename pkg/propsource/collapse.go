package propsource

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/canvas/pkg/domain"
	"github.com/aretw0/canvas/pkg/validation"
	"github.com/cespare/xxhash/v2"
	"github.com/mitchellh/mapstructure"
)

// MsgNotCollapsed is reported for inputs stored in expanded form although
// they use the default static prop source.
const MsgNotCollapsed = "When using the default static prop source for a component input, you must use the collapsed input syntax."

// Collapse returns a copy of inputs where every input using its prop's
// default static source is replaced by its bare value. Collapsing an
// already collapsed map returns an equal map. A nil map stays nil.
func Collapse(inputs map[string]any, version *domain.ComponentVersion) (map[string]any, error) {
	if inputs == nil {
		return nil, nil
	}
	out := make(map[string]any, len(inputs))
	for prop, raw := range inputs {
		if !IsExpanded(raw) {
			out[prop] = raw
			continue
		}
		ps, err := decode(raw)
		if err != nil {
			return nil, fmt.Errorf("input %q: %w", prop, err)
		}
		if collapsible(ps, defaultSource(version, prop)) {
			out[prop] = ps.Value
		} else {
			out[prop] = raw
		}
	}
	return out, nil
}

// Expand returns a copy of inputs where every collapsed input is replaced by
// its tagged default static source.
func Expand(inputs map[string]any, version *domain.ComponentVersion) (map[string]any, error) {
	if inputs == nil {
		return nil, nil
	}
	out := make(map[string]any, len(inputs))
	for prop, raw := range inputs {
		if IsExpanded(raw) {
			out[prop] = raw
			continue
		}
		def := defaultSource(version, prop)
		if def == nil {
			return nil, fmt.Errorf("input %q: collapsed input has no default static prop source", prop)
		}
		out[prop] = map[string]any{
			"sourceType": def.SourceType(),
			"value":      raw,
			"expression": def.Expression,
		}
	}
	return out, nil
}

// CollapseTree collapses the inputs of every item in tree. versions maps
// item UUIDs to the component version each item uses; items without an
// entry are left untouched.
func CollapseTree(tree domain.ComponentTree, versions map[string]*domain.ComponentVersion) (domain.ComponentTree, error) {
	out := tree.Clone()
	for i := range out {
		v, ok := versions[out[i].UUID]
		if !ok {
			continue
		}
		collapsed, err := Collapse(out[i].Inputs, v)
		if err != nil {
			return nil, fmt.Errorf("component instance %s: %w", out[i].UUID, err)
		}
		out[i].Inputs = collapsed
	}
	return out, nil
}

// Hash returns the xxhash64 of the canonical JSON encoding of v, as 16 hex
// digits. Map keys are sorted, so equal inputs hash equally.
func Hash(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("hashing inputs: %w", err)
	}
	return fmt.Sprintf("%016x", xxhash.Sum64(raw)), nil
}

// ValidateCollapsed reports a violation at "inputs.<prop>" for every input
// of item stored in expanded form although it could be collapsed. vctx is
// expected to be rooted at the item.
func ValidateCollapsed(item domain.ComponentTreeItem, version *domain.ComponentVersion, vctx *validation.Context) {
	for _, prop := range propNames(item, version) {
		raw, ok := item.Inputs[prop]
		if !ok || !IsExpanded(raw) {
			continue
		}
		ps, err := decode(raw)
		if err != nil {
			continue
		}
		if collapsible(ps, defaultSource(version, prop)) {
			vctx.AddViolation(validation.Join("inputs", prop), MsgNotCollapsed, nil)
		}
	}
}

func collapsible(ps domain.PropSource, def *domain.PropFieldDefinition) bool {
	if def == nil || ps.Kind() != domain.SourceKindStatic {
		return false
	}
	if ps.SourceType != def.SourceType() || len(ps.SourceTypeSettings) > 0 {
		return false
	}
	return ps.Expression == "" || ps.Expression == def.Expression
}

func decode(raw any) (domain.PropSource, error) {
	var ps domain.PropSource
	if err := mapstructure.Decode(raw, &ps); err != nil {
		return ps, fmt.Errorf("decoding prop source: %w", err)
	}
	return ps, nil
}
