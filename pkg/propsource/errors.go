package propsource

import (
	"fmt"

	"github.com/aretw0/canvas/pkg/domain"
)

// ResolutionError means an input could not be evaluated.
type ResolutionError struct {
	Prop   string
	Source domain.SourceKind
	Reason string
	Err    error
}

func (e *ResolutionError) Error() string {
	msg := fmt.Sprintf("cannot resolve prop %q from %s source: %s", e.Prop, e.Source, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ResolutionError) Unwrap() error { return e.Err }
