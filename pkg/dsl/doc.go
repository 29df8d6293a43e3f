/*
Package dsl provides a fluent Go API for building component trees and
component definitions in code.

It is an alternative to YAML or JSON fixtures, useful for tests, seeding
and programmatic tree generation.

Example usage:

	lib := dsl.NewLibrary()
	lib.Component("sdc.canvas.heading", "Heading").
		Prop("text", domain.PropSchema{Type: "string", Examples: []any{"Hello"}}).
		Field("text", "string", "string_textfield").
		Required("text")
	lib.Component("sdc.canvas.two_column", "Two column").
		Slot("column_one", "Column One").
		Slot("column_two", "Column Two")

	defs, err := lib.Build() // a *memory.DefinitionStore

	t := dsl.NewTree()
	cols := t.Add("cols", "sdc.canvas.two_column")
	cols.Child("h", "sdc.canvas.heading", "column_one").
		Input("text", "Hi")

	tree := t.Build()
*/
package dsl
