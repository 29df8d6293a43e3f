// Package propsource parses and evaluates component inputs.
//
// Each input of a component instance is stored either collapsed (the bare
// value of the prop's default static source) or expanded (a tagged
// domain.PropSource). Parse turns both forms into a Source:
//
//	Static             a stored literal
//	Dynamic            a property path on the host entity
//	Adapted            an adapter applied to other sources
//	DefaultRelativeURL a path resolved against the site base URL
//	HostEntityURL      the host entity's canonical URL
//
// A Resolver evaluates sources. Collapse, Expand and Hash keep the stored
// representation canonical, and ValidateCollapsed reports inputs that are
// not stored in collapsed form.
package propsource
