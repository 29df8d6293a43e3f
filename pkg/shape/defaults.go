package shape

import (
	"github.com/aretw0/canvas/pkg/schema"
)

var scalars = []namedMapper{
	{"string_enum", stringEnum},
	{"integer_enum", integerEnum},
	{"link", link},
	{"email", email},
	{"date", date},
	{"date_time", dateTime},
	{"formatted_text", formattedText},
	{"string", plainString},
	{"integer", integer},
	{"number", number},
	{"boolean", boolean},
	{"image", image},
	{"video", video},
}

var defaults = append([]namedMapper{{"array", arrayMapper}}, scalars...)

func field(fieldType, widget string) StorablePropShape {
	return StorablePropShape{FieldType: fieldType, FieldWidget: widget}
}

func stringEnum(s schema.PropShape) (StorablePropShape, bool) {
	if s.Type != "string" || !s.HasEnum() {
		return StorablePropShape{}, false
	}
	out := field("list_string", "options_select")
	out.FieldStorageSettings = map[string]any{"allowed_values": s.Enum}
	return out, true
}

func integerEnum(s schema.PropShape) (StorablePropShape, bool) {
	if s.Type != "integer" || !s.HasEnum() {
		return StorablePropShape{}, false
	}
	out := field("list_integer", "options_select")
	out.FieldStorageSettings = map[string]any{"allowed_values": s.Enum}
	return out, true
}

func link(s schema.PropShape) (StorablePropShape, bool) {
	if s.Type != "string" {
		return StorablePropShape{}, false
	}
	switch s.Format {
	case "uri", "iri":
		out := field("link", "link_default")
		out.FieldInstanceSettings = map[string]any{"link_type": "external"}
		return out, true
	case "uri-reference", "iri-reference":
		out := field("link", "link_default")
		out.FieldInstanceSettings = map[string]any{"link_type": "generic"}
		return out, true
	}
	return StorablePropShape{}, false
}

func email(s schema.PropShape) (StorablePropShape, bool) {
	if s.Type != "string" || (s.Format != "email" && s.Format != "idn-email") {
		return StorablePropShape{}, false
	}
	return field("email", "email_default"), true
}

func date(s schema.PropShape) (StorablePropShape, bool) {
	if s.Type != "string" || s.Format != "date" {
		return StorablePropShape{}, false
	}
	out := field("datetime", "datetime_default")
	out.FieldStorageSettings = map[string]any{"datetime_type": "date"}
	return out, true
}

func dateTime(s schema.PropShape) (StorablePropShape, bool) {
	if s.Type != "string" || s.Format != "date-time" {
		return StorablePropShape{}, false
	}
	out := field("datetime", "datetime_default")
	out.FieldStorageSettings = map[string]any{"datetime_type": "datetime"}
	return out, true
}

func formattedText(s schema.PropShape) (StorablePropShape, bool) {
	if s.Type != "string" || s.ContentMediaType != "text/html" {
		return StorablePropShape{}, false
	}
	context := s.FormattingContext
	if context == "" {
		context = "block"
	}
	if context != "block" && context != "inline" {
		return StorablePropShape{}, false
	}
	out := field("text_long", "text_textarea")
	out.FieldInstanceSettings = map[string]any{"allowed_formats": []string{"canvas_html_" + context}}
	return out, true
}

func plainString(s schema.PropShape) (StorablePropShape, bool) {
	// Unknown formats and media types are not plain strings.
	if s.Type != "string" || s.Format != "" || s.ContentMediaType != "" {
		return StorablePropShape{}, false
	}
	return field("string", "string_textfield"), true
}

func integer(s schema.PropShape) (StorablePropShape, bool) {
	if s.Type != "integer" {
		return StorablePropShape{}, false
	}
	return field("integer", "number"), true
}

func number(s schema.PropShape) (StorablePropShape, bool) {
	if s.Type != "number" {
		return StorablePropShape{}, false
	}
	return field("float", "number"), true
}

func boolean(s schema.PropShape) (StorablePropShape, bool) {
	if s.Type != "boolean" {
		return StorablePropShape{}, false
	}
	return field("boolean", "boolean_checkbox"), true
}

func image(s schema.PropShape) (StorablePropShape, bool) {
	if s.Type != "object" || s.Ref != schema.RefImage {
		return StorablePropShape{}, false
	}
	return field("image", "image_image"), true
}

func video(s schema.PropShape) (StorablePropShape, bool) {
	if s.Type != "object" || s.Ref != schema.RefVideo {
		return StorablePropShape{}, false
	}
	out := field("file", "file_generic")
	out.FieldInstanceSettings = map[string]any{"file_extensions": "mp4 webm"}
	return out, true
}

// arrayMapper resolves the item shape through the default mappers and
// stores it with unlimited cardinality.
func arrayMapper(s schema.PropShape) (StorablePropShape, bool) {
	if s.Type != "array" || s.Items == nil || s.Items.Type == "array" || s.Items.Type == "object" {
		return StorablePropShape{}, false
	}
	for _, d := range scalars {
		if out, ok := d.fn(*s.Items); ok {
			out.Cardinality = CardinalityUnlimited
			return out, true
		}
	}
	return StorablePropShape{}, false
}
