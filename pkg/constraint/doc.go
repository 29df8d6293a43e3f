// Package constraint provides the named validators that hosts attach to
// component tree fields.
//
// Each Kind is built from a Factory held in a Registry. DefaultRegistry
// wires the built-in kinds to a component definition provider:
//
//	component_tree_structure          structural checks only
//	valid_component_tree              structure, definitions, inputs and collapse
//	component_tree_meets_requirements a presence/absence requirement set
//	collapsed_inputs                  collapse check only
//
// Validators add content problems to the validation context and return an
// error only for logic errors: a value without a component tree, a
// malformed configuration, or a failing definition provider.
package constraint
