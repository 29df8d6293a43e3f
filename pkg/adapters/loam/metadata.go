package loam

// ComponentMetadata is the frontmatter (or JSON/YAML body) of a component
// definition file. Props and slots are lists so their declared order
// survives decoding.
type ComponentMetadata struct {
	ID       string `json:"id" mapstructure:"id"`
	Label    string `json:"label" mapstructure:"label"`
	Category string `json:"category" mapstructure:"category"`
	Source   string `json:"source" mapstructure:"source"`
	// Status defaults to enabled when omitted.
	Status *bool `json:"status" mapstructure:"status"`

	// Version pins the active version identifier.
	// When empty it is derived from the props and slots.
	Version string `json:"version" mapstructure:"version"`

	MachineName     string `json:"machine_name" mapstructure:"machine_name"`
	Name            string `json:"name" mapstructure:"name"`
	Group           string `json:"group" mapstructure:"group"`
	ComponentStatus string `json:"component_status" mapstructure:"component_status"`
	NoUI            bool   `json:"no_ui" mapstructure:"no_ui"`

	Required []string         `json:"required" mapstructure:"required"`
	Props    []map[string]any `json:"props" mapstructure:"props"`
	Slots    []SlotEntry      `json:"slots" mapstructure:"slots"`

	PastVersions []VersionEntry `json:"past_versions" mapstructure:"past_versions"`
}

// SlotEntry is one slot declaration.
type SlotEntry struct {
	Name        string `json:"name" mapstructure:"name"`
	Title       string `json:"title" mapstructure:"title"`
	Description string `json:"description" mapstructure:"description"`
	Examples    []any  `json:"examples" mapstructure:"examples"`
}

// VersionEntry keeps the props and slots of an earlier version so trees
// pinned to it still validate.
type VersionEntry struct {
	Version  string           `json:"version" mapstructure:"version"`
	Required []string         `json:"required" mapstructure:"required"`
	Props    []map[string]any `json:"props" mapstructure:"props"`
	Slots    []SlotEntry      `json:"slots" mapstructure:"slots"`
}
