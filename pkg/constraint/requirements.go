package constraint

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/aretw0/canvas/pkg/domain"
	"github.com/aretw0/canvas/pkg/ports"
	"github.com/aretw0/canvas/pkg/propsource"
	"github.com/aretw0/canvas/pkg/tree"
	"github.com/aretw0/canvas/pkg/validation"
	"github.com/mitchellh/mapstructure"
)

// Violation messages of MeetsRequirements.
const (
	MsgComponentAbsent  = "The component %s must not be used in this component tree."
	MsgComponentPresent = "The component %s must be used at least once in this component tree."
	MsgInterfaceAbsent  = "Components implementing %s must not be used in this component tree."
	MsgInterfacePresent = "At least one component implementing %s must be used in this component tree."
	MsgSourceAbsent     = "The prop source type %s must not be used."
	MsgSourcePresent    = "At least one input must use a prop source type starting with %s."
	MsgInputSource      = "The %q input must use a prop source type starting with one of: %s."
)

// Requirements lists what must be absent or present across a whole tree.
type Requirements struct {
	ComponentIDs        []string `mapstructure:"component_ids"`
	ComponentInterfaces []string `mapstructure:"component_interfaces"`
	PropSourcePrefixes  []string `mapstructure:"prop_source_prefixes"`
}

// InputRequirements restricts the prop source of every single input.
type InputRequirements struct {
	PropSourcePrefixes []string `mapstructure:"prop_source_prefixes"`
}

// RequirementSet is the configuration of component_tree_meets_requirements.
type RequirementSet struct {
	Tree struct {
		Absence  Requirements `mapstructure:"absence"`
		Presence Requirements `mapstructure:"presence"`
	} `mapstructure:"tree"`
	Inputs struct {
		Absence  InputRequirements `mapstructure:"absence"`
		Presence InputRequirements `mapstructure:"presence"`
	} `mapstructure:"inputs"`
}

// DecodeRequirementSet decodes config. Unknown keys, and values required to
// be both absent and present, are errors.
func DecodeRequirementSet(config map[string]any) (RequirementSet, error) {
	var set RequirementSet
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused: true,
		Result:      &set,
	})
	if err != nil {
		return set, err
	}
	if err := dec.Decode(config); err != nil {
		return set, fmt.Errorf("invalid requirement set: %w", err)
	}

	conflicts := []struct {
		key               string
		absence, presence []string
	}{
		{"tree.component_ids", set.Tree.Absence.ComponentIDs, set.Tree.Presence.ComponentIDs},
		{"tree.component_interfaces", set.Tree.Absence.ComponentInterfaces, set.Tree.Presence.ComponentInterfaces},
		{"tree.prop_source_prefixes", set.Tree.Absence.PropSourcePrefixes, set.Tree.Presence.PropSourcePrefixes},
		{"inputs.prop_source_prefixes", set.Inputs.Absence.PropSourcePrefixes, set.Inputs.Presence.PropSourcePrefixes},
	}
	for _, c := range conflicts {
		for _, v := range c.absence {
			if slices.Contains(c.presence, v) {
				return set, fmt.Errorf("invalid requirement set: %s %q is both absent and present", c.key, v)
			}
		}
	}
	return set, nil
}

// MeetsRequirements checks a tree against a RequirementSet.
type MeetsRequirements struct {
	definitions ports.ComponentDefinitionProvider
	set         RequirementSet
}

// NewMeetsRequirements creates the validator.
func NewMeetsRequirements(definitions ports.ComponentDefinitionProvider, set RequirementSet) *MeetsRequirements {
	return &MeetsRequirements{definitions: definitions, set: set}
}

type usedInput struct {
	index      int
	prop       string
	sourceType string
}

func (m *MeetsRequirements) Validate(ctx context.Context, value any, vctx *validation.Context) error {
	t, err := tree.Of(value)
	if err != nil {
		return err
	}

	seenIDs := map[string]bool{}
	seenInterfaces := map[string]bool{}
	var inputs []usedInput

	for i, item := range t {
		if item.ComponentID == "" {
			continue
		}
		seenIDs[item.ComponentID] = true

		def, err := m.definitions.Get(ctx, item.ComponentID)
		if errors.Is(err, domain.ErrComponentNotFound) {
			continue
		}
		if err != nil {
			return fmt.Errorf("loading %s: %w", item.ComponentID, err)
		}
		for _, iface := range def.Interfaces() {
			seenInterfaces[iface] = true
			if slices.Contains(m.set.Tree.Absence.ComponentInterfaces, iface) {
				vctx.AddViolation(validation.Join(strconv.Itoa(i), "component_id"), fmt.Sprintf(MsgInterfaceAbsent, iface), nil)
			}
		}
		if slices.Contains(m.set.Tree.Absence.ComponentIDs, item.ComponentID) {
			vctx.AddViolation(validation.Join(strconv.Itoa(i), "component_id"), fmt.Sprintf(MsgComponentAbsent, item.ComponentID), nil)
		}

		version, err := def.Version(item.ComponentVersion)
		if err != nil {
			continue
		}
		inputs = append(inputs, sourceTypes(i, item, version)...)
	}

	for _, id := range m.set.Tree.Presence.ComponentIDs {
		if !seenIDs[id] {
			vctx.AddViolation("", fmt.Sprintf(MsgComponentPresent, id), nil)
		}
	}
	for _, iface := range m.set.Tree.Presence.ComponentInterfaces {
		if !seenInterfaces[iface] {
			vctx.AddViolation("", fmt.Sprintf(MsgInterfacePresent, iface), nil)
		}
	}

	absent := append(slices.Clone(m.set.Tree.Absence.PropSourcePrefixes), m.set.Inputs.Absence.PropSourcePrefixes...)
	for _, in := range inputs {
		path := validation.Join(strconv.Itoa(in.index), "inputs", in.prop)
		if prefix, ok := matchPrefix(in.sourceType, absent); ok {
			vctx.AddViolation(path, fmt.Sprintf(MsgSourceAbsent, prefix), nil)
		}
		required := m.set.Inputs.Presence.PropSourcePrefixes
		if len(required) > 0 {
			if _, ok := matchPrefix(in.sourceType, required); !ok {
				vctx.AddViolation(path, fmt.Sprintf(MsgInputSource, in.prop, strings.Join(required, ", ")), nil)
			}
		}
	}
	for _, prefix := range m.set.Tree.Presence.PropSourcePrefixes {
		if !slices.ContainsFunc(inputs, func(in usedInput) bool { return strings.HasPrefix(in.sourceType, prefix) }) {
			vctx.AddViolation("", fmt.Sprintf(MsgSourcePresent, prefix), nil)
		}
	}
	return nil
}

// sourceTypes lists the source type of every input of item, in prop order.
// Collapsed inputs use their prop's default static source type.
func sourceTypes(i int, item domain.ComponentTreeItem, version *domain.ComponentVersion) []usedInput {
	var names []string
	if version.Metadata.Props != nil {
		for _, name := range version.Metadata.Props.Properties.Keys() {
			if _, ok := item.Inputs[name]; ok {
				names = append(names, name)
			}
		}
	}
	var out []usedInput
	for _, name := range names {
		raw := item.Inputs[name]
		var sourceType string
		if propsource.IsExpanded(raw) {
			sourceType = raw.(map[string]any)["sourceType"].(string)
		} else if def, ok := version.Settings.PropFieldDefinitions[name]; ok {
			sourceType = def.SourceType()
		} else {
			sourceType = string(domain.SourceKindStatic) + domain.SourceTypeSeparator
		}
		out = append(out, usedInput{index: i, prop: name, sourceType: sourceType})
	}
	return out
}

func matchPrefix(sourceType string, prefixes []string) (string, bool) {
	for _, p := range prefixes {
		if strings.HasPrefix(sourceType, p) {
			return p, true
		}
	}
	return "", false
}
