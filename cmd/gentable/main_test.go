package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestSchema(t *testing.T, dir string) string {
	t.Helper()
	const schema = `
package = "trace"
name = "slice"
struct = "Slice"

[[columns]]
name = "ts"
type = "int64"
sorted = true

[[columns]]
name = "name"
type = "string"

[[columns]]
name = "dur"
type = "int64"
nullable = true
`
	path := filepath.Join(dir, "slice.toml")
	require.NoError(t, os.WriteFile(path, []byte(schema), 0o644))
	return path
}

func TestRunGeneratesSource(t *testing.T) {
	dir := t.TempDir()
	schemaPath := writeTestSchema(t, dir)
	outPath := filepath.Join(dir, "slice_gen.go")

	cli.Schema = schemaPath
	cli.Out = outPath
	require.NoError(t, run())

	out, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(out), "package trace")
	assert.Contains(t, string(out), "type SliceRow struct")
}
