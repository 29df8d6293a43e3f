package loam

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/loam"
	"github.com/aretw0/loam/pkg/core"

	"github.com/aretw0/canvas/internal/testutils"
	"github.com/aretw0/canvas/pkg/domain"
	"github.com/aretw0/canvas/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const headingDoc = `---
id: sdc.canvas.heading
label: Heading
category: Text
version: abc123
required: [text]
props:
  - name: text
    type: string
    title: Text
    examples: [Hello]
    field:
      field_type: string
      field_widget: string_textfield
      expression: "ℹ︎string␟value"
  - name: level
    type: integer
    title: Level
    enum: [1, 2, 3]
    examples: [2]
---
A section heading.`

func seed(t *testing.T, files map[string]string) *Loader {
	t.Helper()
	tmpDir, repo := testutils.SetupTestRepo(t)
	for filename, content := range files {
		err := os.WriteFile(filepath.Join(tmpDir, filename), []byte(content), 0644)
		require.NoError(t, err)
	}
	return New(loam.NewTypedRepository[ComponentMetadata](repo))
}

func TestLoader_Contract(t *testing.T) {
	_, repo := testutils.SetupTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, core.Document{ID: "sdc.canvas.heading.md", Content: headingDoc}))

	loader := New(loam.NewTypedRepository[ComponentMetadata](repo))

	ports.RunDefinitionProviderContract(t, loader, &domain.ComponentDefinition{
		ID:            "sdc.canvas.heading",
		ActiveVersion: "abc123",
	})
}

func TestLoader_Get_KeepsDeclaredOrder(t *testing.T) {
	loader := seed(t, map[string]string{
		"sdc.canvas.heading.md": headingDoc,
		"sdc.canvas.two_column.json": `{
  "label": "Two column",
  "props": [],
  "slots": [
    {"name": "column_one", "title": "Column One"},
    {"name": "column_two", "title": "Column Two"}
  ]
}`,
	})
	ctx := context.Background()

	def, err := loader.Get(ctx, "sdc.canvas.heading")
	require.NoError(t, err)
	assert.Equal(t, "Heading", def.Label)
	assert.Equal(t, domain.SourceSDC, def.Source)
	assert.True(t, def.Status, "status should default to enabled")

	v, err := def.Version("")
	require.NoError(t, err)
	assert.Equal(t, []string{"text", "level"}, v.Metadata.Props.Properties.Keys())
	assert.Equal(t, []string{"text"}, v.RequiredProps())
	assert.Equal(t, "heading", v.Metadata.MachineName)

	field, ok := v.Settings.PropFieldDefinitions["text"]
	require.True(t, ok)
	assert.Equal(t, "string", field.FieldType)
	assert.Equal(t, "static:field_item:string", field.SourceType())

	level, ok := v.Metadata.Props.Properties.Get("level")
	require.True(t, ok)
	assert.Len(t, level.Enum, 3)

	cols, err := loader.GetVersion(ctx, "sdc.canvas.two_column", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"column_one", "column_two"}, cols.Metadata.Slots.Keys())
	assert.NotEmpty(t, cols.Version, "version should be derived when not pinned")
}

func TestLoader_PastVersions(t *testing.T) {
	loader := seed(t, map[string]string{
		"sdc.canvas.card.yaml": `id: sdc.canvas.card
label: Card
version: v2
props:
  - name: title
    type: string
    examples: [Title]
past_versions:
  - version: v1
    props:
      - name: heading
        type: string
        examples: [Heading]
`,
	})
	ctx := context.Background()

	def, err := loader.Get(ctx, "sdc.canvas.card")
	require.NoError(t, err)
	assert.Equal(t, "v2", def.ActiveVersion)
	assert.Equal(t, []string{"v1"}, def.PastVersions())

	v1, err := loader.GetVersion(ctx, "sdc.canvas.card", "v1")
	require.NoError(t, err)
	assert.True(t, v1.Metadata.Props.Properties.Has("heading"))
}

func TestLoader_DerivedVersionIsStable(t *testing.T) {
	files := map[string]string{
		"sdc.canvas.spacer.md": "---\nlabel: Spacer\nprops:\n  - name: size\n    type: string\n    examples: [small]\n---\n",
	}
	a, err := seed(t, files).GetVersion(context.Background(), "sdc.canvas.spacer", "")
	require.NoError(t, err)
	b, err := seed(t, files).GetVersion(context.Background(), "sdc.canvas.spacer", "")
	require.NoError(t, err)
	assert.Equal(t, a.Version, b.Version)
}

func TestLoader_List_NormalizesIDs(t *testing.T) {
	loader := seed(t, map[string]string{
		"sdc.canvas.heading.md": headingDoc,
		"block.system_branding_block.json": `{
  "id": "block.system_branding_block.json",
  "label": "Site branding"
}`,
		"sdc.canvas.spacer.md": "---\nlabel: Spacer\n---\nID is implied from filename",
	})

	ids, err := loader.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"block.system_branding_block", "sdc.canvas.heading", "sdc.canvas.spacer"}, ids)
}

func TestLoader_List_DetectsCollisions(t *testing.T) {
	loader := seed(t, map[string]string{
		"heading.md":   "---\nid: sdc.canvas.heading\nlabel: A\n---\n",
		"heading.json": `{"id": "sdc.canvas.heading", "label": "B"}`,
	})

	_, err := loader.List(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "collision detected")
	assert.Contains(t, err.Error(), "sdc.canvas.heading")
}

func TestLoader_RejectsInvalidDefinitions(t *testing.T) {
	cases := map[string]string{
		"unknown source": "---\nid: widget.thing\nlabel: Thing\n---\n",
		"unnamed prop":   "---\nid: sdc.canvas.x\nprops:\n  - type: string\n---\n",
		"duplicate slot": "---\nid: sdc.canvas.x\nslots:\n  - name: body\n  - name: body\n---\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			loader := seed(t, map[string]string{"x.md": content})
			_, err := loader.List(context.Background())
			assert.Error(t, err)
		})
	}
}

func TestLoader_Invalidate(t *testing.T) {
	tmpDir, repo := testutils.SetupTestRepo(t)
	loader := New(loam.NewTypedRepository[ComponentMetadata](repo))
	ctx := context.Background()

	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "sdc.canvas.heading.md"), []byte(headingDoc), 0644))
	ids, err := loader.List(ctx)
	require.NoError(t, err)
	assert.Len(t, ids, 1)

	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "sdc.canvas.spacer.md"), []byte("---\nlabel: Spacer\n---\n"), 0644))
	ids, err = loader.List(ctx)
	require.NoError(t, err)
	assert.Len(t, ids, 1, "index is cached until invalidated")

	loader.Invalidate()
	ids, err = loader.List(ctx)
	require.NoError(t, err)
	assert.Len(t, ids, 2)
}

func TestTrimExtension(t *testing.T) {
	assert.Equal(t, "sdc.canvas.heading", trimExtension("sdc.canvas.heading"))
	assert.Equal(t, "sdc.canvas.heading", trimExtension("sdc.canvas.heading.md"))
	assert.Equal(t, "nested/js.card", trimExtension("nested/js.card.yml"))
}
