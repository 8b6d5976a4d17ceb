package models

import (
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"
	"github.com/panbanda/orphans/internal/output"
)

// Report is the result of one reachability analysis. Field order is the JSON key order.
type Report struct {
	Roots          []string `json:"roots" toon:"roots"`
	UsedCount      int      `json:"usedCount" toon:"usedCount"`
	CandidateCount int      `json:"candidateCount" toon:"candidateCount"`
	UnusedCount    int      `json:"unusedCount" toon:"unusedCount"`
	Unused         []string `json:"unused" toon:"unused"`
}

// NewReport builds a report with sorted, never-nil lists.
func NewReport(roots []string, used, candidates int, unused []string) *Report {
	r := &Report{
		Roots:          sortedCopy(roots),
		UsedCount:      used,
		CandidateCount: candidates,
		Unused:         sortedCopy(unused),
	}
	r.UnusedCount = len(r.Unused)
	return r
}

func sortedCopy(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	sort.Strings(out)
	return out
}

// HasUnused reports whether any unused file was found.
func (r *Report) HasUnused() bool {
	return r.UnusedCount > 0
}

// RenderData implements output.Renderable for JSON/TOON output.
func (r *Report) RenderData() any {
	return r
}

// RenderText implements output.Renderable for text output.
func (r *Report) RenderText(w io.Writer, colored bool) error {
	summary := fmt.Sprintf("%d of %d files reachable from %d roots, %d unused",
		r.UsedCount, r.CandidateCount, len(r.Roots), r.UnusedCount)
	if colored {
		color.New(color.Bold).Fprintln(w, "Unused Files")
		fmt.Fprintln(w, output.CountColor(r.UnusedCount, summary))
	} else {
		fmt.Fprintln(w, "Unused Files")
		fmt.Fprintln(w, summary)
	}
	fmt.Fprintln(w)

	if r.UnusedCount == 0 {
		fmt.Fprintln(w, "No unused files found")
		return nil
	}

	return output.NewTable("", []string{"File"}, pathRows(r.Unused), nil, nil).RenderText(w, colored)
}

// RenderMarkdown implements output.Renderable for markdown output.
func (r *Report) RenderMarkdown(w io.Writer) error {
	fmt.Fprintf(w, "# Unused Files\n\n")
	fmt.Fprintln(w, "| Metric | Value |")
	fmt.Fprintln(w, "|--------|-------|")
	fmt.Fprintf(w, "| Roots | %d |\n", len(r.Roots))
	fmt.Fprintf(w, "| Used | %d |\n", r.UsedCount)
	fmt.Fprintf(w, "| Candidates | %d |\n", r.CandidateCount)
	fmt.Fprintf(w, "| Unused | %d |\n", r.UnusedCount)
	fmt.Fprintln(w)

	if r.UnusedCount == 0 {
		fmt.Fprintln(w, "No unused files found.")
		return nil
	}

	for _, p := range r.Unused {
		fmt.Fprintf(w, "- `%s`\n", p)
	}
	fmt.Fprintln(w)
	return nil
}

func pathRows(paths []string) [][]string {
	rows := make([][]string, len(paths))
	for i, p := range paths {
		rows[i] = []string{p}
	}
	return rows
}
