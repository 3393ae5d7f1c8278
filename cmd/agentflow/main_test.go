package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFlowFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "flow.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

const validFlowJSON = `{
	"id": "demo",
	"name": "Demo",
	"status": "active",
	"nodes": [
		{"nodeId": "in", "type": "input", "name": "In", "nextNodeId": "out",
		 "input": {"fields": [{"name": "topic", "type": "text", "required": true}]}},
		{"nodeId": "out", "type": "output", "name": "Out",
		 "output": {"outputType": "response", "format": "text"}}
	]
}`

func TestVersionCommand(t *testing.T) {
	out, err := runCommand(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "AgentFlow")
}

func TestValidateCommand(t *testing.T) {
	t.Run("valid flow", func(t *testing.T) {
		out, err := runCommand(t, "validate", writeFlowFile(t, validFlowJSON))
		require.NoError(t, err)
		assert.Contains(t, out, "valid")
	})

	t.Run("invalid flow", func(t *testing.T) {
		bad := `{"id": "demo", "name": "", "nodes": []}`
		_, err := runCommand(t, "validate", writeFlowFile(t, bad))
		require.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := runCommand(t, "validate", filepath.Join(t.TempDir(), "absent.json"))
		require.Error(t, err)
	})
}

func TestLayoutCommand(t *testing.T) {
	out, err := runCommand(t, "layout", writeFlowFile(t, validFlowJSON))
	require.NoError(t, err)

	var doc struct {
		Nodes []struct {
			ID       string `json:"id"`
			Position struct {
				X float64 `json:"x"`
				Y float64 `json:"y"`
			} `json:"position"`
		} `json:"nodes"`
		Edges []struct {
			Source string `json:"source"`
			Target string `json:"target"`
		} `json:"edges"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	require.Len(t, doc.Nodes, 2)
	require.Len(t, doc.Edges, 1)
	assert.Equal(t, "in", doc.Edges[0].Source)
	assert.Equal(t, "out", doc.Edges[0].Target)
	// Successive columns step right.
	assert.Greater(t, doc.Nodes[1].Position.X, doc.Nodes[0].Position.X)
}
