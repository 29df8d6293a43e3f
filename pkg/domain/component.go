package domain

import (
	"fmt"
	"sort"
)

// ComponentSource identifies the plugin that provides a component.
type ComponentSource string

const (
	// SourceSDC is a server-defined (single directory) component.
	SourceSDC ComponentSource = "sdc"
	// SourceJS is a component authored in JavaScript inside the editor.
	SourceJS ComponentSource = "js"
	// SourceBlock wraps a block plugin.
	SourceBlock ComponentSource = "block"
)

// Plugin interfaces a component source implements.
// The requirement-set constraint matches against these names.
const (
	InterfaceComponentSource = "ComponentSourceInterface"
	InterfaceComponentPlugin = "ComponentPluginInterface"
	InterfaceCodeComponent   = "CodeComponentInterface"
	InterfaceBlockPlugin     = "BlockPluginInterface"
	InterfaceConfigurable    = "ConfigurableInterface"
	InterfaceContextAware    = "ContextAwarePluginInterface"
	InterfaceSlotSupport     = "SlotSupportInterface"
)

const (
	// ReservedCategoryElements may not be used by components.
	ReservedCategoryElements = "Elements"
	// ReservedSlotNameChildren may never be used as a slot name.
	ReservedSlotNameChildren = "children"
	// DefaultStaticSourcePrefix prefixes the source type of static prop sources.
	DefaultStaticSourcePrefix = "static:field_item:"
)

var sourceInterfaces = map[ComponentSource][]string{
	SourceSDC:   {InterfaceComponentSource, InterfaceComponentPlugin, InterfaceSlotSupport},
	SourceJS:    {InterfaceComponentSource, InterfaceCodeComponent, InterfaceSlotSupport},
	SourceBlock: {InterfaceComponentSource, InterfaceBlockPlugin, InterfaceConfigurable, InterfaceContextAware},
}

// Interfaces returns the plugin interfaces implemented by the source, sorted.
func (s ComponentSource) Interfaces() []string {
	out := append([]string(nil), sourceInterfaces[s]...)
	sort.Strings(out)
	return out
}

// Valid reports whether s is a known source.
func (s ComponentSource) Valid() bool {
	_, ok := sourceInterfaces[s]
	return ok
}

// SlotDefinition describes a named child position declared by a component.
type SlotDefinition struct {
	Title       string `json:"title,omitempty" yaml:"title,omitempty" mapstructure:"title"`
	Description string `json:"description,omitempty" yaml:"description,omitempty" mapstructure:"description"`
	Examples    []any  `json:"examples,omitempty" yaml:"examples,omitempty" mapstructure:"examples"`
}

// PropSchema is the subset of JSON Schema used to declare a component input.
type PropSchema struct {
	Type              string            `json:"type,omitempty" yaml:"type,omitempty"`
	Title             string            `json:"title,omitempty" yaml:"title,omitempty"`
	Description       string            `json:"description,omitempty" yaml:"description,omitempty"`
	Examples          []any             `json:"examples,omitempty" yaml:"examples,omitempty"`
	Enum              []any             `json:"enum,omitempty" yaml:"enum,omitempty"`
	MetaEnum          map[string]string `json:"meta:enum,omitempty" yaml:"meta:enum,omitempty"`
	Ref               string            `json:"$ref,omitempty" yaml:"$ref,omitempty"`
	Format            string            `json:"format,omitempty" yaml:"format,omitempty"`
	ContentMediaType  string            `json:"contentMediaType,omitempty" yaml:"contentMediaType,omitempty"`
	FormattingContext string            `json:"x-formatting-context,omitempty" yaml:"x-formatting-context,omitempty"`
	Pattern           string            `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	MinLength         *int              `json:"minLength,omitempty" yaml:"minLength,omitempty"`
	MaxLength         *int              `json:"maxLength,omitempty" yaml:"maxLength,omitempty"`
	Minimum           *float64          `json:"minimum,omitempty" yaml:"minimum,omitempty"`
	Maximum           *float64          `json:"maximum,omitempty" yaml:"maximum,omitempty"`
	Items             *PropSchema       `json:"items,omitempty" yaml:"items,omitempty"`
	Default           any               `json:"default,omitempty" yaml:"default,omitempty"`
}

// PropsSchema is the top-level "props" object of a component.
type PropsSchema struct {
	Type       string               `json:"type,omitempty" yaml:"type,omitempty"`
	Required   []string             `json:"required,omitempty" yaml:"required,omitempty"`
	Properties Ordered[*PropSchema] `json:"properties" yaml:"properties"`
}

// IsRequired reports whether the named prop is listed as required.
func (p *PropsSchema) IsRequired(name string) bool {
	if p == nil {
		return false
	}
	for _, r := range p.Required {
		if r == name {
			return true
		}
	}
	return false
}

// ComponentMetadata is the resolved metadata of one component version.
type ComponentMetadata struct {
	MachineName string                  `json:"machineName" yaml:"machineName"`
	Name        string                  `json:"name" yaml:"name"`
	Group       string                  `json:"group,omitempty" yaml:"group,omitempty"`
	Status      string                  `json:"status,omitempty" yaml:"status,omitempty"`
	NoUI        bool                    `json:"noUi,omitempty" yaml:"noUi,omitempty"`
	Props       *PropsSchema            `json:"props,omitempty" yaml:"props,omitempty"`
	Slots       Ordered[SlotDefinition] `json:"slots" yaml:"slots"`
}

// PropFieldDefinition is the default static prop source for one prop:
// the field type and widget that store its value, plus the default value.
type PropFieldDefinition struct {
	FieldType             string         `json:"field_type" yaml:"field_type" mapstructure:"field_type"`
	FieldWidget           string         `json:"field_widget" yaml:"field_widget" mapstructure:"field_widget"`
	Expression            string         `json:"expression" yaml:"expression" mapstructure:"expression"`
	DefaultValue          any            `json:"default_value,omitempty" yaml:"default_value,omitempty" mapstructure:"default_value"`
	FieldStorageSettings  map[string]any `json:"field_storage_settings,omitempty" yaml:"field_storage_settings,omitempty" mapstructure:"field_storage_settings"`
	FieldInstanceSettings map[string]any `json:"field_instance_settings,omitempty" yaml:"field_instance_settings,omitempty" mapstructure:"field_instance_settings"`
	Cardinality           int            `json:"cardinality,omitempty" yaml:"cardinality,omitempty" mapstructure:"cardinality"`
}

// SourceType returns the static source type string, e.g. "static:field_item:string".
func (d PropFieldDefinition) SourceType() string {
	return DefaultStaticSourcePrefix + d.FieldType
}

// VersionSettings holds the per-version settings of a component.
type VersionSettings struct {
	PropFieldDefinitions map[string]PropFieldDefinition `json:"prop_field_definitions,omitempty" yaml:"prop_field_definitions,omitempty"`
}

// ComponentVersion is an immutable snapshot of a component definition.
type ComponentVersion struct {
	Version  string            `json:"version" yaml:"version"`
	Metadata ComponentMetadata `json:"metadata" yaml:"metadata"`
	Settings VersionSettings   `json:"settings" yaml:"settings"`
}

// RequiredProps returns the names of required props in declared order.
func (v *ComponentVersion) RequiredProps() []string {
	props := v.Metadata.Props
	if props == nil {
		return nil
	}
	var out []string
	for _, name := range props.Properties.Keys() {
		if props.IsRequired(name) {
			out = append(out, name)
		}
	}
	return out
}

// HasSlots reports whether the version declares at least one slot.
func (v *ComponentVersion) HasSlots() bool {
	return v.Metadata.Slots.Len() > 0
}

// ComponentDefinition is the config object describing a usable component.
// Versions is append-mostly: AddVersion activates the new version and keeps
// every earlier one as a past version.
type ComponentDefinition struct {
	ID            string                       `json:"id" yaml:"id"`
	Label         string                       `json:"label" yaml:"label"`
	Category      string                       `json:"category,omitempty" yaml:"category,omitempty"`
	Source        ComponentSource              `json:"source" yaml:"source"`
	Status        bool                         `json:"status" yaml:"status"`
	ActiveVersion string                       `json:"active_version" yaml:"active_version"`
	Versions      map[string]*ComponentVersion `json:"versions" yaml:"versions"`
}

// Version returns the requested version, or the active one when version is empty.
func (d *ComponentDefinition) Version(version string) (*ComponentVersion, error) {
	if version == "" {
		version = d.ActiveVersion
	}
	v, ok := d.Versions[version]
	if !ok {
		return nil, fmt.Errorf("component %s version %q: %w", d.ID, version, ErrVersionNotFound)
	}
	return v, nil
}

// AddVersion stores v and makes it the active version.
// Adding a version identical in identifier to an existing one replaces nothing
// and only re-activates it.
func (d *ComponentDefinition) AddVersion(v *ComponentVersion) {
	if d.Versions == nil {
		d.Versions = make(map[string]*ComponentVersion)
	}
	if _, exists := d.Versions[v.Version]; !exists {
		d.Versions[v.Version] = v
	}
	d.ActiveVersion = v.Version
}

// Clone returns a copy of d with its own Versions map. The versions
// themselves are shared.
func (d *ComponentDefinition) Clone() *ComponentDefinition {
	c := *d
	if d.Versions != nil {
		c.Versions = make(map[string]*ComponentVersion, len(d.Versions))
		for id, v := range d.Versions {
			c.Versions[id] = v
		}
	}
	return &c
}

// PastVersions returns all non-active version identifiers, sorted.
func (d *ComponentDefinition) PastVersions() []string {
	var out []string
	for id := range d.Versions {
		if id != d.ActiveVersion {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

// Interfaces returns the plugin interfaces of the definition's source.
func (d *ComponentDefinition) Interfaces() []string {
	return d.Source.Interfaces()
}
