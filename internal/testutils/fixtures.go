package testutils

import (
	"github.com/aretw0/canvas/pkg/domain"
)

// Fixture component ids.
const (
	HeadingID   = "sdc.canvas.heading"
	TwoColumnID = "sdc.canvas.two_column"
	ImageID     = "sdc.canvas.image"
	BrandingID  = "block.system_branding_block"
	SpacerID    = "sdc.canvas.spacer"
	CardID      = "js.card"
)

// ImageRef is the schema reference used by image props.
const ImageRef = "json-schema-definitions://canvas.module/image"

func ptrInt(i int) *int { return &i }

// Definitions returns fresh copies of the fixture component definitions.
func Definitions() []*domain.ComponentDefinition {
	return []*domain.ComponentDefinition{
		Heading(), TwoColumn(), Image(), Branding(), Spacer(), Card(),
	}
}

func definition(id, label string, source domain.ComponentSource, v *domain.ComponentVersion) *domain.ComponentDefinition {
	def := &domain.ComponentDefinition{ID: id, Label: label, Source: source, Status: true, Category: "Content"}
	def.AddVersion(v)
	return def
}

// Heading has a required string prop and an enum prop, and no slots.
func Heading() *domain.ComponentDefinition {
	props := &domain.PropsSchema{Type: "object", Required: []string{"text"}}
	props.Properties.Set("text", &domain.PropSchema{
		Type: "string", Title: "Text", Examples: []any{"Hello, world!"}, MaxLength: ptrInt(255),
	})
	props.Properties.Set("level", &domain.PropSchema{
		Type: "string", Title: "Level", Enum: []any{"h1", "h2", "h3"},
		MetaEnum: map[string]string{"h1": "Heading 1", "h2": "Heading 2", "h3": "Heading 3"},
		Examples: []any{"h2"},
	})
	return definition(HeadingID, "Heading", domain.SourceSDC, &domain.ComponentVersion{
		Version: "a1b2c3d4",
		Metadata: domain.ComponentMetadata{
			MachineName: "heading", Name: "Heading", Group: "Content", Props: props,
		},
		Settings: domain.VersionSettings{PropFieldDefinitions: map[string]domain.PropFieldDefinition{
			"text":  {FieldType: "string", FieldWidget: "string_textfield", Expression: "value", DefaultValue: []any{map[string]any{"value": "Hello, world!"}}},
			"level": {FieldType: "list_string", FieldWidget: "options_select", Expression: "value", DefaultValue: []any{map[string]any{"value": "h2"}}},
		}},
	})
}

// TwoColumn declares two titled slots.
func TwoColumn() *domain.ComponentDefinition {
	props := &domain.PropsSchema{Type: "object"}
	props.Properties.Set("width", &domain.PropSchema{
		Type: "integer", Title: "Column width", Examples: []any{50}, Enum: []any{25, 33, 50, 66, 75},
		MetaEnum: map[string]string{"25": "25%", "33": "33%", "50": "50%", "66": "66%", "75": "75%"},
	})
	meta := domain.ComponentMetadata{MachineName: "two_column", Name: "Two column", Group: "Layout", Props: props}
	meta.Slots.Set("column_one", domain.SlotDefinition{Title: "Column One"})
	meta.Slots.Set("column_two", domain.SlotDefinition{Title: "Column Two"})
	return definition(TwoColumnID, "Two column", domain.SourceSDC, &domain.ComponentVersion{
		Version:  "e5f6a7b8",
		Metadata: meta,
		Settings: domain.VersionSettings{PropFieldDefinitions: map[string]domain.PropFieldDefinition{
			"width": {FieldType: "list_integer", FieldWidget: "options_select", Expression: "value", DefaultValue: []any{map[string]any{"value": 50}}},
		}},
	})
}

// Image has an object prop with a schema reference.
func Image() *domain.ComponentDefinition {
	props := &domain.PropsSchema{Type: "object", Required: []string{"image"}}
	props.Properties.Set("image", &domain.PropSchema{
		Type: "object", Title: "Image", Ref: ImageRef,
		Examples: []any{map[string]any{"src": "/cat.jpg", "alt": "A cat", "width": 640, "height": 480}},
	})
	return definition(ImageID, "Image", domain.SourceSDC, &domain.ComponentVersion{
		Version:  "c0ffee00",
		Metadata: domain.ComponentMetadata{MachineName: "image", Name: "Image", Group: "Media", Props: props},
		Settings: domain.VersionSettings{PropFieldDefinitions: map[string]domain.PropFieldDefinition{
			"image": {FieldType: "image", FieldWidget: "image_image", Expression: "src_with_alternate_widths,alt,width,height"},
		}},
	})
}

// Branding is a block component without props or slots.
func Branding() *domain.ComponentDefinition {
	return definition(BrandingID, "Site branding", domain.SourceBlock, &domain.ComponentVersion{
		Version: "b10c0001",
		Metadata: domain.ComponentMetadata{
			MachineName: "system_branding_block", Name: "Site branding", Group: "System",
			Props: &domain.PropsSchema{Type: "object"},
		},
	})
}

// Spacer has no required props at all.
func Spacer() *domain.ComponentDefinition {
	props := &domain.PropsSchema{Type: "object"}
	props.Properties.Set("size", &domain.PropSchema{Type: "number", Title: "Size", Examples: []any{1.5}})
	return definition(SpacerID, "Spacer", domain.SourceSDC, &domain.ComponentVersion{
		Version:  "5face000",
		Metadata: domain.ComponentMetadata{MachineName: "spacer", Name: "Spacer", Group: "Layout", Props: props},
		Settings: domain.VersionSettings{PropFieldDefinitions: map[string]domain.PropFieldDefinition{
			"size": {FieldType: "float", FieldWidget: "number", Expression: "value"},
		}},
	})
}

// Card is a code component with a single slot and a link prop.
func Card() *domain.ComponentDefinition {
	props := &domain.PropsSchema{Type: "object"}
	props.Properties.Set("href", &domain.PropSchema{Type: "string", Format: "uri-reference", Title: "Link", Examples: []any{"/about"}})
	meta := domain.ComponentMetadata{MachineName: "card", Name: "Card", Group: "Content", Props: props}
	meta.Slots.Set("body", domain.SlotDefinition{Title: "Body"})
	return definition(CardID, "Card", domain.SourceJS, &domain.ComponentVersion{
		Version:  "ca4d0001",
		Metadata: meta,
		Settings: domain.VersionSettings{PropFieldDefinitions: map[string]domain.PropFieldDefinition{
			"href": {FieldType: "link", FieldWidget: "link_default", Expression: "url"},
		}},
	})
}
