package domain

import (
	"errors"
	"fmt"
)

// ErrComponentNotFound is returned when a component definition does not exist.
var ErrComponentNotFound = errors.New("component not found")

// ErrVersionNotFound is returned when a component version does not exist.
var ErrVersionNotFound = errors.New("component version not found")

// ErrHostNotFound is returned when a host entity or config object cannot be loaded.
var ErrHostNotFound = errors.New("host not found")

// ErrDraftNotFound is returned when no auto-save draft exists for a host.
var ErrDraftNotFound = errors.New("draft not found")

// ErrAccessDenied is matched by every *AccessDeniedError.
var ErrAccessDenied = errors.New("access denied")

// ErrMissingInputs is matched by every *MissingInputsError.
var ErrMissingInputs = errors.New("missing component inputs")

// MissingInputsError means a tree item's inputs could not be located at all,
// as opposed to being present but invalid.
type MissingInputsError struct {
	UUID        string
	ComponentID string
}

func (e *MissingInputsError) Error() string {
	return fmt.Sprintf("no inputs found for component instance %s (%s)", e.UUID, e.ComponentID)
}

func (e *MissingInputsError) Is(target error) bool {
	return target == ErrMissingInputs
}

// AccessDeniedError is raised when an operation lacks a required permission.
type AccessDeniedError struct {
	Operation  string
	Permission string
}

func (e *AccessDeniedError) Error() string {
	return fmt.Sprintf("access denied: %s requires permission %q", e.Operation, e.Permission)
}

func (e *AccessDeniedError) Is(target error) bool {
	return target == ErrAccessDenied
}
