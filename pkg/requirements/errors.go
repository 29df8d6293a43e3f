package requirements

import (
	"fmt"
	"strings"
)

// ComponentDoesNotMeetRequirementsError lists every reason a component is unusable.
type ComponentDoesNotMeetRequirementsError struct {
	ComponentID string
	Messages    []string
}

func (e *ComponentDoesNotMeetRequirementsError) Error() string {
	if e.ComponentID == "" {
		return strings.Join(e.Messages, "\n")
	}
	return fmt.Sprintf("component %s does not meet the requirements:\n%s", e.ComponentID, strings.Join(e.Messages, "\n"))
}
