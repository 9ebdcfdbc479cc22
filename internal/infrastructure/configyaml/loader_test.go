package configyaml_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grochmal/harmonia/internal/infrastructure/configyaml"
)

const sampleDoc = `
name: ner-pipeline
log_provider_factory:
  uri: "file://./logs/{version}/{name}.log"
edges:
  - uri: "file://./in"
  - uri: "file://./{version}/tokens"
    local: true
  - uri: "file://./{version}/entities"
    local: true
processes:
  - node:
      name: tokenize
      cmd: ["tokenize.sh"]
    input_edges: ["file://./in"]
    output_edges: ["file://./{version}/tokens"]
  - node:
      name: extract
      cmd: ["extract.sh"]
    input_edges: ["file://./{version}/tokens"]
    output_edges: ["file://./{version}/entities"]
    options:
      - name: source
        value: "edge:file://./{version}/tokens"
      - name: threshold
        value: "0.5"
`

func writeDoc(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "pipeline.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoaderConvertsValidDocument(t *testing.T) {
	path := writeDoc(t, sampleDoc)
	loader := configyaml.NewLoader()

	g, err := loader.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "ner-pipeline", g.Name)
	require.Len(t, g.Processes, 2)

	inputs, middle, outputs, err := g.FullIO()
	require.NoError(t, err)
	assert.Len(t, inputs, 1)
	assert.Len(t, middle, 1)
	assert.Len(t, outputs, 1)
}

func TestLoaderRejectsUndeclaredEdgeReference(t *testing.T) {
	bad := `
name: broken
log_provider_factory:
  uri: "file://./logs/{version}/{name}.log"
edges:
  - uri: "file://./in"
processes:
  - node:
      name: tokenize
      cmd: ["tokenize.sh"]
    input_edges: ["file://./in"]
    output_edges: ["file://./missing"]
`
	path := writeDoc(t, bad)
	loader := configyaml.NewLoader()
	_, err := loader.Load(path)
	require.Error(t, err)
}

func TestLoaderRejectsMissingRequiredField(t *testing.T) {
	bad := `
log_provider_factory:
  uri: "file://./logs/{version}/{name}.log"
edges:
  - uri: "file://./in"
processes: []
`
	path := writeDoc(t, bad)
	loader := configyaml.NewLoader()
	_, err := loader.Load(path)
	require.Error(t, err)
}
