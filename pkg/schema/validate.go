package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/aretw0/canvas/pkg/domain"
	"github.com/getkin/kin-openapi/openapi3"
)

// ValidateExample validates an example value for the named prop.
// It returns a *ValidationError whose Reason is the full diagnostic, or nil.
func ValidateExample(prop string, s *domain.PropSchema, example any) error {
	return validate(fmt.Sprintf("Example value for %q does not match the prop schema.", prop), prop, s, example)
}

// ValidateValue validates a stored input value for the named prop.
func ValidateValue(prop string, s *domain.PropSchema, value any) error {
	return validate(fmt.Sprintf("The value for the %q prop does not match the prop schema.", prop), prop, s, value)
}

func validate(prefix, prop string, s *domain.PropSchema, value any) error {
	if s == nil {
		return nil
	}
	normalized, err := Normalize(value)
	if err != nil {
		return &ValidationError{Key: prop, Value: value, Reason: fmt.Sprintf("%s %v", prefix, err)}
	}

	if mismatch := typeMismatch(s, normalized); mismatch != "" {
		return &ValidationError{Key: prop, Value: value, Reason: prefix + " " + mismatch, Causes: []string{mismatch}}
	}

	causes := constraintFailures(ToOpenAPI(s), normalized)
	if len(causes) == 0 {
		return nil
	}
	return &ValidationError{
		Key:    prop,
		Value:  value,
		Reason: prefix + " " + strings.Join(causes, "; ") + ".",
		Causes: causes,
	}
}

// Normalize passes v through a JSON round trip so that numbers become
// float64 and maps become map[string]any.
func Normalize(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("value is not JSON-encodable: %w", err)
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// JSONType returns the JSON Schema type name of a normalized value.
func JSONType(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case string:
		return "string"
	case float64:
		if x == math.Trunc(x) && !math.IsInf(x, 0) {
			return "integer"
		}
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	}
	return fmt.Sprintf("%T", v)
}

func typeMismatch(s *domain.PropSchema, v any) string {
	want := s.Type
	if want == "" && s.Ref != "" {
		want = "object"
	}
	if want == "" {
		return ""
	}
	got := JSONType(v)
	if got == want || (want == "number" && got == "integer") {
		return ""
	}
	found := strings.ToUpper(got[:1]) + got[1:]
	if want == "object" {
		return fmt.Sprintf("%s value found, but an object is required.", found)
	}
	return fmt.Sprintf("%s value found, but %s %s or an object is required.", found, article(want), want)
}

func article(word string) string {
	if strings.ContainsRune("aeiou", rune(word[0])) {
		return "an"
	}
	return "a"
}

func constraintFailures(s *openapi3.Schema, v any) []string {
	if err := s.VisitJSON(v, openapi3.MultiErrors()); err != nil {
		return describe(err)
	}
	return nil
}

func describe(err error) []string {
	var multi openapi3.MultiError
	if errors.As(err, &multi) {
		var out []string
		for _, e := range multi {
			out = append(out, describe(e)...)
		}
		return out
	}
	var se *openapi3.SchemaError
	if errors.As(err, &se) {
		reason := strings.TrimSuffix(se.Reason, ".")
		if ptr := se.JSONPointer(); len(ptr) > 0 {
			return []string{"/" + strings.Join(ptr, "/") + ": " + reason}
		}
		return []string{reason}
	}
	return []string{err.Error()}
}

// ToOpenAPI converts a prop schema into an openapi3 schema.
// Registered $ref targets are inlined; unknown refs validate as open objects.
func ToOpenAPI(s *domain.PropSchema) *openapi3.Schema {
	out := &openapi3.Schema{
		Format:  s.Format,
		Pattern: s.Pattern,
		Min:     s.Minimum,
		Max:     s.Maximum,
	}
	typ := s.Type
	if typ == "" && s.Ref != "" {
		typ = "object"
	}
	if typ != "" {
		out.Type = &openapi3.Types{typ}
	}
	if len(s.Enum) > 0 {
		if enum, err := Normalize(s.Enum); err == nil {
			out.Enum, _ = enum.([]any)
		}
	}
	if s.MinLength != nil && *s.MinLength > 0 {
		out.MinLength = uint64(*s.MinLength)
	}
	if s.MaxLength != nil && *s.MaxLength >= 0 {
		limit := uint64(*s.MaxLength)
		out.MaxLength = &limit
	}
	if s.Items != nil {
		out.Items = openapi3.NewSchemaRef("", ToOpenAPI(s.Items))
	}
	if s.Ref != "" {
		if obj, ok := LookupRef(s.Ref); ok {
			out.Required = obj.Required
			out.Properties = make(openapi3.Schemas, obj.Properties.Len())
			obj.Properties.Each(func(name string, p *domain.PropSchema) {
				out.Properties[name] = openapi3.NewSchemaRef("", ToOpenAPI(p))
			})
		}
	}
	return out
}
