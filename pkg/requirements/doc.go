// Package requirements decides whether a component version is usable.
//
// A component must declare a props schema whose every prop has a title, a
// valid first example (mandatory for required props), consistent enum
// labels and at least one known storage mapping. Check collects every
// problem it finds into a single *ComponentDoesNotMeetRequirementsError.
package requirements
