package schema

import (
	"encoding/json"

	"github.com/aretw0/canvas/pkg/domain"
)

// PropShape is the storage-relevant part of a prop schema. Documentation
// keys (title, description, examples, meta:enum, default) are dropped so
// that two props with the same shape compare equal.
type PropShape struct {
	Type              string
	Format            string
	Ref               string
	ContentMediaType  string
	FormattingContext string
	Pattern           string
	Enum              []any
	MinLength         *int
	MaxLength         *int
	Minimum           *float64
	Maximum           *float64
	Items             *PropShape
}

// Shape returns the normalized shape of s.
func Shape(s *domain.PropSchema) PropShape {
	if s == nil {
		return PropShape{}
	}
	out := PropShape{
		Type:              s.Type,
		Format:            s.Format,
		Ref:               s.Ref,
		ContentMediaType:  s.ContentMediaType,
		FormattingContext: s.FormattingContext,
		Pattern:           s.Pattern,
		MinLength:         s.MinLength,
		MaxLength:         s.MaxLength,
		Minimum:           s.Minimum,
		Maximum:           s.Maximum,
	}
	if out.Type == "" && out.Ref != "" {
		out.Type = "object"
	}
	if len(s.Enum) > 0 {
		if enum, err := Normalize(s.Enum); err == nil {
			out.Enum, _ = enum.([]any)
		}
	}
	if s.Items != nil {
		items := Shape(s.Items)
		out.Items = &items
	}
	return out
}

// HasEnum reports whether the shape restricts values to an enumeration.
func (p PropShape) HasEnum() bool { return len(p.Enum) > 0 }

func (p PropShape) toMap() map[string]any {
	m := map[string]any{}
	set := func(k, v string) {
		if v != "" {
			m[k] = v
		}
	}
	set("type", p.Type)
	set("format", p.Format)
	set("$ref", p.Ref)
	set("contentMediaType", p.ContentMediaType)
	set("x-formatting-context", p.FormattingContext)
	set("pattern", p.Pattern)
	if len(p.Enum) > 0 {
		m["enum"] = p.Enum
	}
	if p.MinLength != nil {
		m["minLength"] = *p.MinLength
	}
	if p.MaxLength != nil {
		m["maxLength"] = *p.MaxLength
	}
	if p.Minimum != nil {
		m["minimum"] = *p.Minimum
	}
	if p.Maximum != nil {
		m["maximum"] = *p.Maximum
	}
	if p.Items != nil {
		m["items"] = p.Items.toMap()
	}
	return m
}

// String returns the canonical JSON encoding of the shape (sorted keys).
// It is the shape's identity: equal shapes have equal strings.
func (p PropShape) String() string {
	raw, err := json.Marshal(p.toMap())
	if err != nil {
		return "{}"
	}
	return string(raw)
}
