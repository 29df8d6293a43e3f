package graph

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aretw0/canvas/pkg/domain"
	"github.com/aretw0/canvas/pkg/validation"
)

// GraphOverlay contains validation state to visualize on the graph.
type GraphOverlay struct {
	InvalidUUIDs []string
	Selected     string
}

// GenerateMermaid produces a Mermaid flowchart syntax string from a component tree.
// It applies semantic styling by component source:
// - Block: [[Subroutine]]
// - Code component (js): [/Parallelogram/]
// - Default: [Rectangle]
// Edges run from parent to child and are labelled with the slot name.
// Edges to parents missing from the tree are dotted.
// It also applies overlay styles (Invalid/Selected) if provided.
func GenerateMermaid(tree domain.ComponentTree, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, item := range tree {
		safeID := sanitizeMermaidID(item.UUID)

		opener, closer := "[", "]"
		prefix, _, _ := strings.Cut(item.ComponentID, ".")
		switch domain.ComponentSource(prefix) {
		case domain.SourceBlock:
			opener, closer = "[[", "]]" // Subroutine
		case domain.SourceJS:
			opener, closer = "[/", "/]" // Parallelogram
		}

		title := item.ComponentID
		if item.Label != "" {
			title = item.Label + " <br/> " + item.ComponentID
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, escape(title), closer))
	}

	for _, item := range tree {
		if item.IsRoot() {
			continue
		}
		arrow := "-->"
		if _, ok := tree.Get(item.ParentUUID); !ok {
			arrow = "-.->"
		}
		if item.Slot != "" {
			arrow = fmt.Sprintf("-- \"%s\" -->", escape(item.Slot))
			if _, ok := tree.Get(item.ParentUUID); !ok {
				arrow = fmt.Sprintf("-. \"%s\" .->", escape(item.Slot))
			}
		}
		sb.WriteString(fmt.Sprintf("    %s %s %s\n", sanitizeMermaidID(item.ParentUUID), arrow, sanitizeMermaidID(item.UUID)))
	}

	// Apply Overlay Styles
	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef invalid fill:#ffebee,stroke:#b71c1c,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef selected fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		invalidSet := make(map[string]bool)
		for _, id := range overlay.InvalidUUIDs {
			safeID := sanitizeMermaidID(id)
			if !invalidSet[safeID] && safeID != "" {
				invalidSet[safeID] = true
				sb.WriteString(fmt.Sprintf("    class %s invalid;\n", safeID))
			}
		}

		if overlay.Selected != "" {
			sb.WriteString(fmt.Sprintf("    class %s selected;\n", sanitizeMermaidID(overlay.Selected)))
		}
	}

	return sb.String()
}

// InvalidUUIDs maps violation paths such as "3.slot" back to the UUID of
// the tree item at that index. Tree-wide violations are skipped.
func InvalidUUIDs(tree domain.ComponentTree, violations []validation.Violation) []string {
	var out []string
	for _, v := range violations {
		head, _, _ := strings.Cut(v.PropertyPath, ".")
		i, err := strconv.Atoi(head)
		if err != nil || i < 0 || i >= len(tree) || tree[i].UUID == "" {
			continue
		}
		out = append(out, tree[i].UUID)
	}
	return out
}

func escape(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	if s != "" && s[0] >= '0' && s[0] <= '9' {
		s = "n" + s
	}
	return s
}
