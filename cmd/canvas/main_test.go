package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "canvas version ")
}

func TestGraphCommand_NoValidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.yaml")
	tree := `- uuid: root
  component_id: sdc.canvas.two_column
  inputs: {}
`
	require.NoError(t, os.WriteFile(path, []byte(tree), 0644))

	out, err := execute(t, "graph", "--no-validate", path)
	require.NoError(t, err)
	assert.Contains(t, out, "graph TD")
	assert.Contains(t, out, "sdc.canvas.two_column")
}

func TestResolveCommand_BadHost(t *testing.T) {
	_, err := execute(t, "resolve", "--hosts", "hosts.yaml", "node-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "type:id")
}
