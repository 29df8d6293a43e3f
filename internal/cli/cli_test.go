package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/canvas"
	"github.com/aretw0/canvas/internal/config"
	"github.com/aretw0/canvas/internal/logging"
	"github.com/aretw0/canvas/internal/testutils"
	"github.com/aretw0/canvas/pkg/adapters/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const treeYAML = `tree:
  - uuid: cols
    component_id: sdc.canvas.two_column
    inputs: {}
  - uuid: h
    component_id: sdc.canvas.heading
    parent_uuid: cols
    slot: column_one
    inputs:
      text: Hi
`

const brokenTreeJSON = `[
  {"uuid": "cols", "component_id": "sdc.canvas.two_column", "inputs": {}},
  {"uuid": "h", "component_id": "sdc.canvas.heading", "parent_uuid": "cols", "slot": "column_three", "inputs": {"text": "Hi"}}
]`

const headingDoc = `---
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

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func newCanvas(t *testing.T) *canvas.Canvas {
	t.Helper()
	c, err := canvas.New("", canvas.WithDefinitions(memory.NewDefinitionStore(testutils.Definitions()...)))
	require.NoError(t, err)
	return c
}

func TestParseTree(t *testing.T) {
	wrapped, err := ParseTree([]byte(treeYAML))
	require.NoError(t, err)
	require.Len(t, wrapped, 2)
	assert.Equal(t, "column_one", wrapped[1].Slot)
	assert.Equal(t, "Hi", wrapped[1].Inputs["text"])

	list, err := ParseTree([]byte(brokenTreeJSON))
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "cols", list[1].ParentUUID)

	empty, err := ParseTree(nil)
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = ParseTree([]byte("tree: [unclosed"))
	assert.Error(t, err)
}

func TestLoadHosts(t *testing.T) {
	path := writeFile(t, "hosts.yaml", `- type: node
  id: "1"
  fields:
    title:
      - value: About
- id: "2"
`)
	_, err := LoadHosts(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "host 1")

	path = writeFile(t, "hosts.yaml", `- type: node
  id: "1"
  path: /about
`)
	hosts, err := LoadHosts(path)
	require.NoError(t, err)
	require.Len(t, hosts, 1)
	assert.Equal(t, "/about", hosts[0].CanonicalURL())
}

func TestRunValidate(t *testing.T) {
	c := newCanvas(t)
	ctx := context.Background()

	var out bytes.Buffer
	valid, err := RunValidate(ctx, c, writeFile(t, "page.yaml", treeYAML), FormatText, &out)
	require.NoError(t, err)
	assert.True(t, valid)
	assert.Contains(t, out.String(), "The component tree is valid.")

	out.Reset()
	valid, err = RunValidate(ctx, c, writeFile(t, "page.json", brokenTreeJSON), FormatJSON, &out)
	require.NoError(t, err)
	assert.False(t, valid)

	var res ValidateResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &res))
	assert.False(t, res.Valid)
	require.Len(t, res.Violations, 1)
	assert.Contains(t, res.Violations[0].Message, "column_three")
}

func TestRunValidate_UnknownFormat(t *testing.T) {
	_, err := RunValidate(context.Background(), newCanvas(t), writeFile(t, "page.yaml", treeYAML), "xml", &bytes.Buffer{})
	assert.Error(t, err)
}

func TestRunRequirements(t *testing.T) {
	c := newCanvas(t)
	var out bytes.Buffer
	ok, err := RunRequirements(context.Background(), c, []string{testutils.HeadingID}, FormatYAML, &out)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Contains(t, out.String(), "meets_requirements: true")

	_, err = RunRequirements(context.Background(), c, []string{"sdc.canvas.missing"}, FormatYAML, &out)
	assert.Error(t, err)
}

func TestRunGraph(t *testing.T) {
	var out bytes.Buffer
	err := RunGraph(context.Background(), newCanvas(t), writeFile(t, "page.json", brokenTreeJSON), "cols", &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "graph TD")
	assert.Contains(t, out.String(), "class h invalid")
}

func TestBuildHandler(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "heading.md"), []byte(headingDoc), 0644))

	cfg := config.DefaultConfig()
	cfg.ComponentsDir = dir
	handler, cleanup, err := BuildHandler(context.Background(), cfg, ServeOptions{}, logging.NewNop())
	require.NoError(t, err)
	defer cleanup()

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/components/sdc.canvas.heading/requirements", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func TestBuildMCPServer(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.ComponentsDir = t.TempDir()
	srv, err := BuildMCPServer(cfg, MCPOptions{}, logging.NewNop())
	require.NoError(t, err)
	assert.NotNil(t, srv.MCPServer())

	err = RunMCP(context.Background(), cfg, MCPOptions{Transport: "carrier-pigeon"}, logging.NewNop())
	assert.Error(t, err)
}
