// Package validation provides the plumbing shared by every Canvas validator:
// a violation collector with property-path scoping, and helpers to translate
// index-based paths into dot-separated ones.
//
// Validators never return an error for content problems. They add
// violations to a Context and keep going, so that an author sees every
// problem of a save attempt at once:
//
//	vctx := validation.NewContext("tree")
//	tree.Validate(ctx, items, vctx)
//	if err := vctx.Err(); err != nil {
//	    // err is a *validation.ViolationListError
//	}
//
// An error return is reserved for defects in the caller: a nil tree, a
// malformed constraint configuration, or a value of the wrong Go type.
package validation
