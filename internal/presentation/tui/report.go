package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/canvas/pkg/validation"
)

// ViolationsReport formats a validation result as markdown.
func ViolationsReport(title string, violations []validation.Violation) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", title)
	if len(violations) == 0 {
		sb.WriteString("The component tree is valid.\n")
		return sb.String()
	}
	fmt.Fprintf(&sb, "Found **%d** violation(s):\n\n", len(violations))
	for _, v := range violations {
		path := v.PropertyPath
		if path == "" {
			path = "(tree)"
		}
		fmt.Fprintf(&sb, "- `%s`: %s\n", path, v.Message)
	}
	return sb.String()
}

// RequirementsReport formats a requirements check as markdown.
func RequirementsReport(componentID string, messages []string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", componentID)
	if len(messages) == 0 {
		sb.WriteString("The component meets the requirements.\n")
		return sb.String()
	}
	sb.WriteString("The component does not meet the requirements:\n\n")
	for _, m := range messages {
		fmt.Fprintf(&sb, "- %s\n", m)
	}
	return sb.String()
}
