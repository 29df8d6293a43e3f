package requirements

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/aretw0/canvas/pkg/domain"
	"github.com/aretw0/canvas/pkg/ports"
	"github.com/aretw0/canvas/pkg/schema"
	"github.com/aretw0/canvas/pkg/shape"
)

// Check verifies that metadata describes a usable component. required lists
// the required prop names. A nil matcher uses shape.NewMatcher().
func Check(metadata domain.ComponentMetadata, required []string, matcher *shape.Matcher) error {
	if metadata.Props == nil {
		return &ComponentDoesNotMeetRequirementsError{Messages: []string{"Component has no props schema."}}
	}
	if matcher == nil {
		matcher = shape.NewMatcher()
	}

	var msgs []string
	if metadata.Group == domain.ReservedCategoryElements {
		msgs = append(msgs, fmt.Sprintf("Component uses the reserved %q category.", domain.ReservedCategoryElements))
	}
	metadata.Slots.Each(func(name string, slot domain.SlotDefinition) {
		if strings.TrimSpace(slot.Title) == "" {
			msgs = append(msgs, fmt.Sprintf("Slot %q must have title.", name))
		}
	})

	// Props with structural problems are not checked for storability.
	broken := map[string]bool{}
	metadata.Props.Properties.Each(func(name string, prop *domain.PropSchema) {
		if prop == nil {
			msgs = append(msgs, fmt.Sprintf("Prop %q must have title.", name))
			broken[name] = true
			return
		}
		problems, fatal := checkProp(name, prop, slices.Contains(required, name))
		msgs = append(msgs, problems...)
		if fatal {
			broken[name] = true
		}
	})

	metadata.Props.Properties.Each(func(name string, prop *domain.PropSchema) {
		if broken[name] {
			return
		}
		s := schema.Shape(prop)
		if _, ok := matcher.Find(s); !ok {
			msgs = append(msgs, fmt.Sprintf("No field type/widget is known to populate the %q prop, with the shape %s.", name, s))
		}
	})

	if len(msgs) == 0 {
		return nil
	}
	return &ComponentDoesNotMeetRequirementsError{Messages: msgs}
}

func checkProp(name string, prop *domain.PropSchema, required bool) (msgs []string, broken bool) {
	fail := func(msg string) {
		msgs = append(msgs, msg)
		broken = true
	}

	if hasEmptyEnumValue(prop.Enum) {
		fail(fmt.Sprintf("Prop %q has an empty enum value.", name))
	}
	if prop.Type == "object" && prop.Ref == "" {
		fail(fmt.Sprintf("Prop %q is of type object without a $ref, which is not supported.", name))
	}
	if len(prop.Examples) == 0 {
		if required {
			fail(fmt.Sprintf("Prop %q is required, but does not have example value.", name))
		}
	} else if err := schema.ValidateExample(name, prop, prop.Examples[0]); err != nil {
		fail(err.Error())
	}
	if strings.TrimSpace(prop.Title) == "" {
		msgs = append(msgs, fmt.Sprintf("Prop %q must have title.", name))
	}

	if len(prop.Enum) > 0 && len(prop.MetaEnum) > 0 {
		keys := make([]string, 0, len(prop.MetaEnum))
		for k := range prop.MetaEnum {
			keys = append(keys, k)
		}
		if slices.ContainsFunc(keys, func(k string) bool { return strings.Contains(k, ".") }) {
			fail(fmt.Sprintf("The \"meta:enum\" keys for the %q prop must not contain dots.", name))
		} else if missing, extra := diffEnumKeys(prop.Enum, prop.MetaEnum); len(missing) > 0 || len(extra) > 0 {
			msg := fmt.Sprintf("The \"meta:enum\" keys for the %q prop do not match its enum values.", name)
			if len(missing) > 0 {
				msg += fmt.Sprintf(" Missing keys: %s.", strings.Join(missing, ", "))
			}
			if len(extra) > 0 {
				msg += fmt.Sprintf(" Unexpected keys: %s.", strings.Join(extra, ", "))
			}
			fail(msg)
		}
	}
	return msgs, broken
}

func hasEmptyEnumValue(enum []any) bool {
	for _, v := range enum {
		if s, ok := v.(string); ok && s == "" {
			return true
		}
	}
	return false
}

// diffEnumKeys compares the label keys against the keys expected for enum.
// missing follows enum order and extra is sorted. Numeric values use
// underscores for the decimal point.
func diffEnumKeys(enum []any, labels map[string]string) (missing, extra []string) {
	expected := make(map[string]bool, len(enum))
	for _, v := range enum {
		key := EnumKey(v)
		expected[key] = true
		if _, ok := labels[key]; !ok {
			missing = append(missing, key)
		}
	}
	for k := range labels {
		if !expected[k] {
			extra = append(extra, k)
		}
	}
	slices.Sort(extra)
	return missing, extra
}

// EnumKey returns the meta:enum key for an enum value.
func EnumKey(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strings.ReplaceAll(strconv.FormatFloat(x, 'f', -1, 64), ".", "_")
	case float32:
		return strings.ReplaceAll(strconv.FormatFloat(float64(x), 'f', -1, 32), ".", "_")
	}
	return strings.ReplaceAll(fmt.Sprint(v), ".", "_")
}

// ForDefinition checks the active version of the component with the given id.
func ForDefinition(ctx context.Context, provider ports.ComponentDefinitionProvider, id string, matcher *shape.Matcher) error {
	def, err := provider.Get(ctx, id)
	if err != nil {
		return err
	}
	version, err := def.Version("")
	if err != nil {
		return err
	}
	if err := Check(version.Metadata, version.RequiredProps(), matcher); err != nil {
		if reqErr, ok := err.(*ComponentDoesNotMeetRequirementsError); ok {
			reqErr.ComponentID = id
		}
		return err
	}
	return nil
}
