package validation

import (
	"errors"
	"fmt"
	"strings"
)

// Violation is a single content problem tied to a property path.
type Violation struct {
	PropertyPath string         `json:"property_path" yaml:"property_path"`
	Message      string         `json:"message" yaml:"message"`
	Params       map[string]any `json:"params,omitempty" yaml:"params,omitempty"`
}

func (v Violation) String() string {
	if v.PropertyPath == "" {
		return v.Message
	}
	return fmt.Sprintf("%s: %s", v.PropertyPath, v.Message)
}

// ViolationListError carries every violation collected in one pass.
type ViolationListError struct {
	Violations []Violation
}

func (e *ViolationListError) Error() string {
	if len(e.Violations) == 1 {
		return e.Violations[0].String()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d violations:\n", len(e.Violations))
	for i, v := range e.Violations {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, v.String())
	}
	return sb.String()
}

// Violations extracts the violation list from err, or nil if err does not
// wrap a *ViolationListError.
func Violations(err error) []Violation {
	var list *ViolationListError
	if errors.As(err, &list) {
		return list.Violations
	}
	return nil
}

// Messages returns only the messages of vs, in order.
func Messages(vs []Violation) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = v.Message
	}
	return out
}
