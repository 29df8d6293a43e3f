package propsource

import (
	"fmt"
	"sort"

	"github.com/aretw0/canvas/pkg/domain"
)

// Source is one parsed input. The set of implementations is closed.
type Source interface {
	Kind() domain.SourceKind
	// Expanded returns the tagged representation of the source.
	Expanded() domain.PropSource
	isSource()
}

// Static is a stored literal, stored in a field of type FieldType.
type Static struct {
	SourceType string
	Value      any
	Expression string
	Settings   map[string]any
}

// Dynamic reads Expression, a dot-separated property path, from the host entity.
type Dynamic struct {
	Expression string
}

// Adapted applies Adapter to the evaluated Inputs.
type Adapted struct {
	Adapter string
	Inputs  map[string]Source
}

// DefaultRelativeURL resolves Value, a site-relative path, against the base URL.
type DefaultRelativeURL struct {
	Value any
}

// HostEntityURL is the host entity's canonical URL.
type HostEntityURL struct {
	Absolute bool
}

func (Static) Kind() domain.SourceKind             { return domain.SourceKindStatic }
func (Dynamic) Kind() domain.SourceKind            { return domain.SourceKindDynamic }
func (Adapted) Kind() domain.SourceKind            { return domain.SourceKindAdapted }
func (DefaultRelativeURL) Kind() domain.SourceKind { return domain.SourceKindDefaultRelativeURL }
func (HostEntityURL) Kind() domain.SourceKind      { return domain.SourceKindHostEntityURL }

func (Static) isSource()             {}
func (Dynamic) isSource()            {}
func (Adapted) isSource()            {}
func (DefaultRelativeURL) isSource() {}
func (HostEntityURL) isSource()      {}

func (s Static) Expanded() domain.PropSource {
	return domain.PropSource{SourceType: s.SourceType, Value: s.Value, Expression: s.Expression, SourceTypeSettings: s.Settings}
}

func (s Dynamic) Expanded() domain.PropSource {
	return domain.PropSource{SourceType: string(domain.SourceKindDynamic), Expression: s.Expression}
}

func (s Adapted) Expanded() domain.PropSource {
	inputs := make(map[string]domain.PropSource, len(s.Inputs))
	for name, in := range s.Inputs {
		inputs[name] = in.Expanded()
	}
	return domain.PropSource{
		SourceType:    string(domain.SourceKindAdapted) + domain.SourceTypeSeparator + s.Adapter,
		AdapterInputs: inputs,
	}
}

func (s DefaultRelativeURL) Expanded() domain.PropSource {
	return domain.PropSource{SourceType: string(domain.SourceKindDefaultRelativeURL), Value: s.Value}
}

func (s HostEntityURL) Expanded() domain.PropSource {
	ps := domain.PropSource{SourceType: string(domain.SourceKindHostEntityURL)}
	if s.Absolute {
		ps.SourceTypeSettings = map[string]any{"absolute": true}
	}
	return ps
}

// IsExpanded reports whether raw is a tagged prop source rather than a
// collapsed value.
func IsExpanded(raw any) bool {
	m, ok := raw.(map[string]any)
	if !ok {
		return false
	}
	_, ok = m["sourceType"].(string)
	return ok
}

// Parse turns a stored input into a Source. Collapsed values expand using
// def, the prop's default static source; def may be nil only for expanded
// inputs.
func Parse(raw any, def *domain.PropFieldDefinition) (Source, error) {
	if !IsExpanded(raw) {
		if def == nil {
			return nil, fmt.Errorf("collapsed input has no default static prop source")
		}
		return Static{SourceType: def.SourceType(), Value: raw, Expression: def.Expression}, nil
	}

	ps, err := decode(raw)
	if err != nil {
		return nil, err
	}
	return FromPropSource(ps)
}

// FromPropSource converts a tagged prop source into a Source.
func FromPropSource(ps domain.PropSource) (Source, error) {
	switch ps.Kind() {
	case domain.SourceKindStatic:
		return Static{SourceType: ps.SourceType, Value: ps.Value, Expression: ps.Expression, Settings: ps.SourceTypeSettings}, nil
	case domain.SourceKindDynamic:
		if ps.Expression == "" {
			return nil, fmt.Errorf("dynamic prop source without expression")
		}
		return Dynamic{Expression: ps.Expression}, nil
	case domain.SourceKindAdapted:
		id := ps.Plugin()
		if id == "" {
			return nil, fmt.Errorf("adapter prop source %q without adapter id", ps.SourceType)
		}
		names := make([]string, 0, len(ps.AdapterInputs))
		for name := range ps.AdapterInputs {
			names = append(names, name)
		}
		sort.Strings(names)
		inputs := make(map[string]Source, len(names))
		for _, name := range names {
			in, err := FromPropSource(ps.AdapterInputs[name])
			if err != nil {
				return nil, fmt.Errorf("adapter input %q: %w", name, err)
			}
			inputs[name] = in
		}
		return Adapted{Adapter: id, Inputs: inputs}, nil
	case domain.SourceKindDefaultRelativeURL:
		return DefaultRelativeURL{Value: ps.Value}, nil
	case domain.SourceKindHostEntityURL:
		absolute, _ := ps.SourceTypeSettings["absolute"].(bool)
		return HostEntityURL{Absolute: absolute}, nil
	}
	return nil, fmt.Errorf("unknown prop source type %q", ps.SourceType)
}
