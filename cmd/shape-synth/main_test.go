package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)

	return code, stdout.String(), stderr.String()
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	file := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(file, []byte(content), 0o600))

	return file
}

func TestList(t *testing.T) {
	code, out, _ := runCLI(t, "-list")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Order\n")
	assert.Contains(t, out, "Category")
}

func TestYAMLWithPlan(t *testing.T) {
	plan := writeFile(t, "plan.yaml", `
manipulators:
  - path: id
    set: 7
  - path: items
    size: 2
  - path: items[*].quantity
    set: 3
`)

	code, out, errOut := runCLI(t, "-type", "Order", "-n", "2", "-seed", "5", "-format", "yaml", "-plan", plan)
	require.Equal(t, 0, code, errOut)

	dec := yaml.NewDecoder(strings.NewReader(out))

	for range 2 {
		var doc map[string]any
		require.NoError(t, dec.Decode(&doc))
		assert.Equal(t, 7, doc["id"])

		items, ok := doc["items"].([]any)
		require.True(t, ok)
		assert.Len(t, items, 2)
	}
}

func TestSpewIsDeterministic(t *testing.T) {
	_, first, _ := runCLI(t, "-type", "Customer", "-seed", "11")
	_, second, _ := runCLI(t, "-type", "Customer", "-seed", "11")

	assert.Contains(t, first, "(store.Customer)")
	assert.Equal(t, first, second)
}

func TestParallel(t *testing.T) {
	code, out, errOut := runCLI(t, "-type", "Money", "-n", "4", "-parallel", "-format", "yaml")
	require.Equal(t, 0, code, errOut)
	assert.Equal(t, 4, strings.Count(out, "cents:"))
}

func TestDumpTree(t *testing.T) {
	cfg := writeFile(t, "synth.yaml", "size: {min: 1, max: 1}\nnull_injection: 0\n")

	code, out, errOut := runCLI(t, "-type", "Category", "-config", cfg, "-dump-tree")
	require.Equal(t, 0, code, errOut)
	assert.True(t, strings.HasPrefix(out, "$ store.Category"))
	assert.Contains(t, out, "truncated")
}

func TestErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown type", []string{"-type", "Nope"}, `unknown type "Nope"`},
		{"bad count", []string{"-n", "0"}, "-n must be positive"},
		{"bad format", []string{"-format", "json"}, "-format must be spew or yaml"},
		{"extra args", []string{"Order"}, "unexpected arguments"},
		{"missing plan", []string{"-plan", "/nonexistent/plan.yaml"}, "failed to read plan file"},
		{"missing config", []string{"-config", "/nonexistent/synth.yaml"}, "failed to read config file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, errOut := runCLI(t, tt.args...)
			assert.Equal(t, 1, code)
			assert.Contains(t, errOut, tt.want)
		})
	}
}

func TestStrictPlanFailure(t *testing.T) {
	plan := writeFile(t, "plan.yaml", "manipulators:\n  - path: custmer\n    null: always\n")

	code, _, errOut := runCLI(t, "-type", "Order", "-plan", plan)
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "did you mean Customer?")
}
