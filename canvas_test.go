package canvas_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/canvas"
	"github.com/aretw0/canvas/internal/testutils"
	"github.com/aretw0/canvas/pkg/adapters/memory"
	"github.com/aretw0/canvas/pkg/domain"
	"github.com/aretw0/canvas/pkg/requirements"
	"github.com/aretw0/canvas/pkg/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validTree() domain.ComponentTree {
	return domain.ComponentTree{
		{UUID: "cols", ComponentID: testutils.TwoColumnID, Inputs: map[string]any{}},
		{UUID: "h", ComponentID: testutils.HeadingID, ParentUUID: "cols", Slot: "column_one", Inputs: map[string]any{"text": "Hi"}},
	}
}

func newCanvas(t *testing.T) *canvas.Canvas {
	t.Helper()
	c, err := canvas.New("", canvas.WithDefinitions(memory.NewDefinitionStore(testutils.Definitions()...)))
	require.NoError(t, err)
	return c
}

func TestNew_RequiresDirWithoutProvider(t *testing.T) {
	_, err := canvas.New("")
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	c := newCanvas(t)
	ctx := context.Background()

	violations, err := c.Validate(ctx, validTree())
	require.NoError(t, err)
	assert.Empty(t, violations)

	broken := validTree()
	broken[1].ParentUUID = "h"
	violations, err = c.Validate(ctx, broken)
	require.NoError(t, err)
	require.NotEmpty(t, violations)
	assert.Contains(t, validation.Messages(violations)[0], "cannot be its own parent")
}

func TestValidateHost(t *testing.T) {
	c := newCanvas(t)
	host := &memory.Entity{Type: "node", ID: "1", Tree: validTree()}

	violations, err := c.ValidateHost(context.Background(), host)
	require.NoError(t, err)
	assert.Empty(t, violations)
}

func TestCheckRequirements(t *testing.T) {
	c := newCanvas(t)
	ctx := context.Background()

	require.NoError(t, c.CheckRequirements(ctx, testutils.HeadingID))

	err := c.CheckRequirements(ctx, "sdc.canvas.missing")
	assert.ErrorIs(t, err, domain.ErrComponentNotFound)
	var reqErr *requirements.ComponentDoesNotMeetRequirementsError
	assert.NotErrorAs(t, err, &reqErr)
}

func TestWatch_Unsupported(t *testing.T) {
	c := newCanvas(t)
	_, err := c.Watch(context.Background())
	assert.Error(t, err)
}

func TestNew_FromDirectory(t *testing.T) {
	dir := t.TempDir()
	doc := `---
id: sdc.canvas.heading
label: Heading
required: [text]
props:
  - name: text
    type: string
    title: Text
    examples: [Hello]
---
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "heading.md"), []byte(doc), 0644))

	c, err := canvas.New(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Base(dir), c.Name)

	def, err := c.Definitions().Get(context.Background(), "sdc.canvas.heading")
	require.NoError(t, err)
	assert.Equal(t, "Heading", def.Label)
	require.NoError(t, c.CheckRequirements(context.Background(), def.ID))
}

func TestVersion(t *testing.T) {
	assert.NotEmpty(t, canvas.Version)
}
