package graph

import (
	"fmt"
	"io"
	"strings"

	"github.com/panbanda/orphans/internal/output"
)

// RenderData implements output.Renderable for JSON/TOON output.
func (d *DependencyGraph) RenderData() any {
	return d
}

// RenderText implements output.Renderable for text output.
func (d *DependencyGraph) RenderText(w io.Writer, colored bool) error {
	if err := d.WriteMermaid(w); err != nil {
		return err
	}
	fmt.Fprintln(w)
	return d.cycleSection().RenderText(w, colored)
}

// RenderMarkdown implements output.Renderable for markdown output.
func (d *DependencyGraph) RenderMarkdown(w io.Writer) error {
	if err := d.WriteMermaid(w); err != nil {
		return err
	}
	fmt.Fprintln(w)
	return d.cycleSection().RenderMarkdown(w)
}

func (d *DependencyGraph) cycleSection() *output.Section {
	s := &output.Section{Title: "Import Cycles"}
	if len(d.Cycles) == 0 {
		s.Content = "No import cycles found"
		return s
	}
	s.Content = fmt.Sprintf("%d import cycles", len(d.Cycles))
	for i, c := range d.Cycles {
		s.Sections = append(s.Sections, output.Section{
			Title:   fmt.Sprintf("Cycle %d", i+1),
			Content: strings.Join(c, " -> "),
		})
	}
	return s
}

// WriteMermaid writes the graph as a fenced Mermaid flowchart. Node IDs are
// positional so distinct paths never collide after sanitizing.
func (d *DependencyGraph) WriteMermaid(w io.Writer) error {
	ids := make(map[string]string, len(d.Nodes))
	var b strings.Builder
	b.WriteString("```mermaid\ngraph TD\n")
	for i, n := range d.Nodes {
		id := fmt.Sprintf("n%d", i)
		ids[n.ID] = id
		fmt.Fprintf(&b, "    %s[\"%s\"]\n", id, strings.ReplaceAll(n.ID, `"`, "#quot;"))
	}
	for _, e := range d.Edges {
		from, okFrom := ids[e.From]
		to, okTo := ids[e.To]
		if !okFrom || !okTo {
			continue
		}
		fmt.Fprintf(&b, "    %s --> %s\n", from, to)
	}
	b.WriteString("```\n")
	_, err := io.WriteString(w, b.String())
	return err
}
