// Package shape maps prop shapes onto the field type and widget that can
// store and edit them.
//
// A Matcher holds an ordered list of named Mappers. Find asks each mapper in
// turn and returns the first storable shape offered. NewMatcher registers
// the default mappings; hosts can Register more.
package shape
