package domain

import "strings"

// SourceKind is the closed set of input source kinds.
type SourceKind string

const (
	SourceKindStatic             SourceKind = "static"
	SourceKindDynamic            SourceKind = "dynamic"
	SourceKindAdapted            SourceKind = "adapter"
	SourceKindDefaultRelativeURL SourceKind = "default-relative-url"
	SourceKindHostEntityURL      SourceKind = "host-entity-url"
)

// SourceTypeSeparator separates the kind prefix from the rest of a source type.
const SourceTypeSeparator = ":"

// PropSource is the expanded, tagged representation of a single input.
// SourceType carries the kind as its prefix, e.g. "static:field_item:string",
// "dynamic", "adapter:day_count".
type PropSource struct {
	SourceType         string                `json:"sourceType" yaml:"sourceType" mapstructure:"sourceType"`
	Value              any                   `json:"value,omitempty" yaml:"value,omitempty" mapstructure:"value"`
	Expression         string                `json:"expression,omitempty" yaml:"expression,omitempty" mapstructure:"expression"`
	SourceTypeSettings map[string]any        `json:"sourceTypeSettings,omitempty" yaml:"sourceTypeSettings,omitempty" mapstructure:"sourceTypeSettings"`
	AdapterInputs      map[string]PropSource `json:"adapterInputs,omitempty" yaml:"adapterInputs,omitempty" mapstructure:"adapterInputs"`
}

// Kind maps the source type prefix onto SourceKind. Unknown prefixes are
// returned verbatim so callers can report them.
func (s PropSource) Kind() SourceKind {
	prefix, _, _ := strings.Cut(s.SourceType, SourceTypeSeparator)
	return SourceKind(prefix)
}

// Known reports whether Kind is one of the closed set.
func (k SourceKind) Known() bool {
	switch k {
	case SourceKindStatic, SourceKindDynamic, SourceKindAdapted, SourceKindDefaultRelativeURL, SourceKindHostEntityURL:
		return true
	}
	return false
}

// Plugin returns the part of the source type after the kind, e.g. "day_count"
// for "adapter:day_count" or "field_item:string" for a static source.
func (s PropSource) Plugin() string {
	_, rest, _ := strings.Cut(s.SourceType, SourceTypeSeparator)
	return rest
}

// Map returns the source in the form stored in tree item inputs.
func (s PropSource) Map() map[string]any {
	m := map[string]any{"sourceType": s.SourceType}
	if s.Value != nil {
		m["value"] = s.Value
	}
	if s.Expression != "" {
		m["expression"] = s.Expression
	}
	if len(s.SourceTypeSettings) > 0 {
		m["sourceTypeSettings"] = s.SourceTypeSettings
	}
	if len(s.AdapterInputs) > 0 {
		inputs := make(map[string]any, len(s.AdapterInputs))
		for name, in := range s.AdapterInputs {
			inputs[name] = in.Map()
		}
		m["adapterInputs"] = inputs
	}
	return m
}
