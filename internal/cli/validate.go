package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/aretw0/canvas"
	"github.com/aretw0/canvas/internal/presentation/graph"
	"github.com/aretw0/canvas/internal/presentation/tui"
	"github.com/aretw0/canvas/pkg/requirements"
	"github.com/aretw0/canvas/pkg/validation"
)

// ValidateResult is the machine readable output of "canvas validate".
type ValidateResult struct {
	Tree       string                 `json:"tree" yaml:"tree"`
	Valid      bool                   `json:"valid" yaml:"valid"`
	Violations []validation.Violation `json:"violations" yaml:"violations"`
}

// RunValidate validates the tree stored at treePath and writes a report.
// It reports whether the tree is valid.
func RunValidate(ctx context.Context, c *canvas.Canvas, treePath, format string, w io.Writer) (bool, error) {
	t, err := LoadTree(treePath)
	if err != nil {
		return false, err
	}
	violations, err := c.Validate(ctx, t)
	if err != nil {
		return false, fmt.Errorf("validation failed: %w", err)
	}
	c.Logger().Debug("tree validated", "tree", treePath, "violations", len(violations))

	res := ValidateResult{Tree: treePath, Valid: len(violations) == 0, Violations: violations}
	if res.Violations == nil {
		res.Violations = []validation.Violation{}
	}
	err = writeResult(w, format, res, func() string {
		return tui.ViolationsReport(treePath, violations)
	})
	return res.Valid, err
}

// RequirementsResult is the outcome for one component.
type RequirementsResult struct {
	ID                string   `json:"id" yaml:"id"`
	MeetsRequirements bool     `json:"meets_requirements" yaml:"meets_requirements"`
	Messages          []string `json:"messages,omitempty" yaml:"messages,omitempty"`
}

// RunRequirements checks the given components, or every component when ids is
// empty. It reports whether all of them meet the requirements.
func RunRequirements(ctx context.Context, c *canvas.Canvas, ids []string, format string, w io.Writer) (bool, error) {
	if len(ids) == 0 {
		all, err := c.Definitions().List(ctx)
		if err != nil {
			return false, err
		}
		ids = append(ids, all...)
		sort.Strings(ids)
	}

	results := make([]RequirementsResult, 0, len(ids))
	ok := true
	for _, id := range ids {
		err := c.CheckRequirements(ctx, id)
		res := RequirementsResult{ID: id, MeetsRequirements: err == nil}
		if err != nil {
			var reqErr *requirements.ComponentDoesNotMeetRequirementsError
			if !errors.As(err, &reqErr) {
				return false, err
			}
			res.Messages = reqErr.Messages
			ok = false
		}
		results = append(results, res)
	}

	err := writeResult(w, format, results, func() string {
		var out string
		for _, r := range results {
			out += tui.RequirementsReport(r.ID, r.Messages) + "\n"
		}
		return out
	})
	return ok, err
}

// RunGraph prints a Mermaid diagram of the tree at treePath. Instances with
// violations are highlighted; selected, when set, marks one instance.
func RunGraph(ctx context.Context, c *canvas.Canvas, treePath, selected string, w io.Writer) error {
	t, err := LoadTree(treePath)
	if err != nil {
		return err
	}
	overlay := &graph.GraphOverlay{Selected: selected}
	if c != nil {
		violations, err := c.Validate(ctx, t)
		if err != nil {
			return err
		}
		overlay.InvalidUUIDs = graph.InvalidUUIDs(t, violations)
	}
	_, err = io.WriteString(w, graph.GenerateMermaid(t, overlay))
	return err
}
