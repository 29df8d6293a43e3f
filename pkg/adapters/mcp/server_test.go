package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aretw0/canvas/internal/testutils"
	"github.com/aretw0/canvas/pkg/adapters/memory"
	"github.com/aretw0/canvas/pkg/domain"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	defs := memory.NewDefinitionStore(testutils.Definitions()...)
	hosts := memory.NewHostStore(&memory.Entity{
		Type: "node", ID: "1",
		Fields: map[string]any{"title": "Hedy Lamarr"},
		Tree: domain.ComponentTree{{
			UUID: "h", ComponentID: testutils.HeadingID,
			Inputs: map[string]any{"text": map[string]any{"sourceType": "dynamic", "expression": "title"}},
		}},
	})
	return NewServer(defs, hosts, "test", WithUUIDGenerator(func() string { return "new-uuid" }))
}

func call(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

// text decodes the YAML body of a tool result.
func text(t *testing.T, res *mcp.CallToolResult) map[string]any {
	t.Helper()
	require.NotNil(t, res)
	require.Len(t, res.Content, 1)
	content, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", res.Content[0])
	var out map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(content.Text), &out), content.Text)
	return out
}

const validTree = `
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

func TestValidateComponentTree(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	t.Run("valid", func(t *testing.T) {
		res, err := s.handleValidate(ctx, call(map[string]any{"tree": validTree}))
		require.NoError(t, err)
		assert.False(t, res.IsError)
		out := text(t, res)
		assert.Equal(t, true, out["valid"])
	})

	t.Run("json input", func(t *testing.T) {
		res, err := s.handleValidate(ctx, call(map[string]any{
			"tree": `[{"uuid":"a","component_id":"sdc.canvas.heading","inputs":{"text":"Hi"}},{"uuid":"a","component_id":"sdc.canvas.spacer","inputs":{}}]`,
		}))
		require.NoError(t, err)
		out := text(t, res)
		assert.Equal(t, false, out["valid"])
		violations := out["violations"].([]any)
		require.NotEmpty(t, violations)
		first := violations[0].(map[string]any)
		assert.Equal(t, "Not all component instance UUIDs in this component tree are unique.", first["message"])
	})

	t.Run("unparsable", func(t *testing.T) {
		res, err := s.handleValidate(ctx, call(map[string]any{"tree": "uuid: [unclosed"}))
		require.NoError(t, err)
		assert.True(t, res.IsError)
		assert.Contains(t, text(t, res)["error"], "Failed to process component tree data: ")
	})
}

func TestGetComponentRequirements(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	res, err := s.handleRequirements(ctx, call(map[string]any{"component_id": testutils.HeadingID}))
	require.NoError(t, err)
	out := text(t, res)
	assert.Equal(t, true, out["meets_requirements"])

	res, err = s.handleRequirements(ctx, call(map[string]any{"component_id": "sdc.canvas.nope"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, text(t, res)["error"], "Failed to process component data: ")
}

func TestAddComponentInstance(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	t.Run("fills inputs from examples", func(t *testing.T) {
		res, err := s.handleAddInstance(ctx, call(map[string]any{
			"tree":         validTree,
			"component_id": testutils.HeadingID,
			"parent_uuid":  "cols",
			"slot":         "column_two",
		}))
		require.NoError(t, err)
		require.False(t, res.IsError, text(t, res)["error"])

		out := text(t, res)
		assert.Equal(t, "new-uuid", out["uuid"])
		items := out["tree"].([]any)
		require.Len(t, items, 3)
		added := items[2].(map[string]any)
		assert.Equal(t, "column_two", added["slot"])
		assert.Equal(t, "a1b2c3d4", added["component_version"])
		assert.Equal(t, map[string]any{"text": "Hello, world!", "level": "h2"}, added["inputs"])
	})

	t.Run("rejects invalid placement", func(t *testing.T) {
		res, err := s.handleAddInstance(ctx, call(map[string]any{
			"tree":         validTree,
			"component_id": testutils.HeadingID,
			"parent_uuid":  "cols",
			"slot":         "sidebar",
		}))
		require.NoError(t, err)
		assert.True(t, res.IsError)
		msg := text(t, res)["error"].(string)
		assert.Contains(t, msg, "Failed to process component instance data: ")
		assert.Contains(t, msg, "Valid slot names are: column_one, column_two.")
	})

	t.Run("unknown component", func(t *testing.T) {
		res, err := s.handleAddInstance(ctx, call(map[string]any{"component_id": "sdc.canvas.nope"}))
		require.NoError(t, err)
		assert.True(t, res.IsError)
		assert.Contains(t, text(t, res)["error"], "Failed to process component data: ")
	})

	t.Run("explicit inputs", func(t *testing.T) {
		res, err := s.handleAddInstance(ctx, call(map[string]any{
			"component_id": testutils.HeadingID,
			"inputs":       `{"text": "Custom"}`,
		}))
		require.NoError(t, err)
		require.False(t, res.IsError)
		items := text(t, res)["tree"].([]any)
		require.Len(t, items, 1)
		assert.Equal(t, map[string]any{"text": "Custom"}, items[0].(map[string]any)["inputs"])
	})
}

func TestResolveComponentInputs(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	res, err := s.handleResolve(ctx, call(map[string]any{"host_type": "node", "host_id": "1"}))
	require.NoError(t, err)
	require.False(t, res.IsError)
	inputs := text(t, res)["inputs"].(map[string]any)
	assert.Equal(t, "Hedy Lamarr", inputs["h"].(map[string]any)["text"])

	res, err = s.handleResolve(ctx, call(map[string]any{"host_type": "node", "host_id": "2"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, text(t, res)["error"], "Failed to process host data: ")
}

func TestToolsAreRegistered(t *testing.T) {
	s := newTestServer(t)
	resp := s.MCPServer().HandleMessage(context.Background(), []byte(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	body, err := json.Marshal(resp)
	require.NoError(t, err)
	for _, name := range []string{"validate_component_tree", "get_component_requirements", "add_component_instance", "resolve_component_inputs"} {
		assert.Contains(t, string(body), `"name":"`+name+`"`)
	}
}
