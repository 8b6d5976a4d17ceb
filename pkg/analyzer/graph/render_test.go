package graph

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cyclicGraph() *DependencyGraph {
	g := New([]string{"src/app/page.tsx", "src/a-b.ts", "src/a_b.ts"})
	g.AddEdge("src/app/page.tsx", "src/a-b.ts")
	g.AddEdge("src/a-b.ts", "src/a_b.ts")
	g.AddEdge("src/a_b.ts", "src/a-b.ts")
	return g.Export([]string{"src/app/page.tsx"})
}

func TestWriteMermaid(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, cyclicGraph().WriteMermaid(&buf))

	want := "```mermaid\n" +
		"graph TD\n" +
		"    n0[\"src/a-b.ts\"]\n" +
		"    n1[\"src/a_b.ts\"]\n" +
		"    n2[\"src/app/page.tsx\"]\n" +
		"    n0 --> n1\n" +
		"    n1 --> n0\n" +
		"    n2 --> n0\n" +
		"```\n"
	assert.Equal(t, want, buf.String())
}

func TestDependencyGraphRenderText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, cyclicGraph().RenderText(&buf, false))

	out := buf.String()
	assert.Contains(t, out, "graph TD")
	assert.Contains(t, out, "Import Cycles")
	assert.Contains(t, out, "src/a-b.ts -> src/a_b.ts")
}

func TestDependencyGraphRenderMarkdownNoCycles(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewDependencyGraph().RenderMarkdown(&buf))

	assert.Contains(t, buf.String(), "## Import Cycles")
	assert.Contains(t, buf.String(), "No import cycles found")
}

func TestDependencyGraphRenderData(t *testing.T) {
	d := cyclicGraph()
	assert.Same(t, d, d.RenderData())
}
