package models

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/panbanda/orphans/internal/output"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReport(t *testing.T) {
	r := NewReport(
		[]string{"src/app/page.tsx", "src/app/globals.css"},
		3, 5,
		[]string{"src/lib/z.ts", "src/lib/a.ts"},
	)

	assert.Equal(t, []string{"src/app/globals.css", "src/app/page.tsx"}, r.Roots)
	assert.Equal(t, []string{"src/lib/a.ts", "src/lib/z.ts"}, r.Unused)
	assert.Equal(t, 2, r.UnusedCount)
	assert.True(t, r.HasUnused())
}

func TestNewReportDoesNotMutateInput(t *testing.T) {
	unused := []string{"b.ts", "a.ts"}
	NewReport(nil, 0, 2, unused)
	assert.Equal(t, []string{"b.ts", "a.ts"}, unused)
}

func TestReportJSONContract(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, output.EncodeJSON(&buf, NewReport(nil, 0, 0, nil)))

	want := `{
  "roots": [],
  "usedCount": 0,
  "candidateCount": 0,
  "unusedCount": 0,
  "unused": []
}
`
	assert.Equal(t, want, buf.String())
}

func TestReportJSONKeyOrder(t *testing.T) {
	data, err := json.Marshal(NewReport([]string{"src/app/page.tsx"}, 2, 3, []string{"src/c.ts"}))
	require.NoError(t, err)

	assert.Equal(t,
		`{"roots":["src/app/page.tsx"],"usedCount":2,"candidateCount":3,"unusedCount":1,"unused":["src/c.ts"]}`,
		string(data))
}

func TestReportRenderText(t *testing.T) {
	var buf bytes.Buffer
	r := NewReport([]string{"src/app/page.tsx"}, 2, 3, []string{"src/c.ts"})
	require.NoError(t, r.RenderText(&buf, false))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "Unused Files\n"))
	assert.Contains(t, out, "2 of 3 files reachable from 1 roots, 1 unused")
	assert.Contains(t, out, "src/c.ts")

	buf.Reset()
	require.NoError(t, NewReport(nil, 1, 1, nil).RenderText(&buf, false))
	assert.Contains(t, buf.String(), "No unused files found")
}

func TestReportRenderMarkdown(t *testing.T) {
	var buf bytes.Buffer
	r := NewReport([]string{"src/app/page.tsx"}, 2, 3, []string{"src/c.ts"})
	require.NoError(t, r.RenderMarkdown(&buf))

	out := buf.String()
	assert.Contains(t, out, "# Unused Files")
	assert.Contains(t, out, "| Unused | 1 |")
	assert.Contains(t, out, "- `src/c.ts`")
}

func TestReportRenderData(t *testing.T) {
	r := NewReport(nil, 0, 0, nil)
	assert.Same(t, r, r.RenderData())
}
