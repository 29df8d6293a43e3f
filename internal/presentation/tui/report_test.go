package tui

import (
	"bytes"
	"testing"

	"github.com/aretw0/canvas/pkg/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViolationsReport(t *testing.T) {
	out := ViolationsReport("page.yaml", nil)
	assert.Contains(t, out, "# page.yaml")
	assert.Contains(t, out, "is valid")

	out = ViolationsReport("page.yaml", []validation.Violation{
		{Message: "Not all component instance UUIDs in this component tree are unique."},
		{PropertyPath: "1.slot", Message: "bad slot"},
	})
	assert.Contains(t, out, "**2** violation(s)")
	assert.Contains(t, out, "- `(tree)`: Not all component")
	assert.Contains(t, out, "- `1.slot`: bad slot")
}

func TestRequirementsReport(t *testing.T) {
	assert.Contains(t, RequirementsReport("sdc.canvas.heading", nil), "meets the requirements")

	out := RequirementsReport("sdc.canvas.broken", []string{"Component has no props schema."})
	assert.Contains(t, out, "does not meet")
	assert.Contains(t, out, "- Component has no props schema.")
}

func TestRendererFor_NonTerminal(t *testing.T) {
	var buf bytes.Buffer
	assert.False(t, IsTerminal(&buf))

	out, err := RendererFor(&buf)("# Title")
	require.NoError(t, err)
	assert.Equal(t, "# Title", out)
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf, "1.2.3\n")
	assert.Contains(t, buf.String(), "v1.2.3")
}
