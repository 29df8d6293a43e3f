// Package tree checks the structural integrity of component trees.
//
// A tree is a flat, UUID-keyed list of component instances. Validate walks it
// once, checks referential integrity (unique UUIDs, parents that exist, slot
// names the parent's component declares) and reports every problem it finds
// to a validation.Context. It never stops at the first violation.
package tree
