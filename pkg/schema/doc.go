// Package schema validates values against component prop schemas.
//
// Prop schemas are a JSON Schema subset (domain.PropSchema). The package
// performs its own top-level JSON type check, so type mismatches get a
// precise diagnostic, and then delegates the remaining constraints (enum,
// pattern, length and range limits, array items, referenced object shapes)
// to kin-openapi:
//
//	err := schema.ValidateExample("heading", propSchema, 42)
//	// Example value for "heading" does not match the prop schema.
//	// Integer value found, but a string or an object is required.
//
// Values are normalized through a JSON round trip first, so Go ints, YAML
// decoded maps and JSON decoded float64 values are all treated alike.
package schema
