package imports

import (
	"regexp"
)

// blockComments matches zero or more /* */ comments, such as webpack magic comments.
const blockComments = `(?:/\*(?s:.*?)\*/\s*)*`

var (
	// import x from 'y', import type { X } from 'y', import 'y'. The clause may
	// hold comments and the quote may follow from directly.
	staticImportRe = regexp.MustCompile(`\bimport\s+(?:type\s+)?(?:[^;'"]*?\bfrom\s*)?['"]([^'"\n]+)['"]`)

	// import('y') and import(`y`) without substitutions, after any /* */ hints
	dynamicImportRe = regexp.MustCompile("\\bimport\\s*\\(\\s*" + blockComments + "(?:['\"]([^'\"\\n]+)['\"]|`([^`$]+)`)")

	// export * from 'y', export * as ns from 'y', export { a, type B } from 'y'
	reExportRe = regexp.MustCompile(`\bexport\s+(?:type\s+)?(?:\*(?:\s+as\s+[\w$]+)?|\{[^}]*\})\s*from\s*['"]([^'"\n]+)['"]`)

	// require('y')
	requireRe = regexp.MustCompile(`\brequire\s*\(\s*` + blockComments + `['"]([^'"\n]+)['"]\s*\)`)

	// @import 'y', @import "y", @import url(y), @import url('y')
	cssImportRe = regexp.MustCompile(`@import\s+(?:url\(\s*)?['"]?([^'")\s;]+)['"]?\s*\)?`)

	// @use 'y' and @forward 'y'
	sassModuleRe = regexp.MustCompile(`@(?:use|forward)\s+['"]([^'"\n]+)['"]`)
)

// RegexScanner is a textual scanner. It misses specifiers built at runtime.
type RegexScanner struct{}

// NewRegexScanner creates a regex scanner.
func NewRegexScanner() *RegexScanner {
	return &RegexScanner{}
}

// Scan implements Scanner.
func (s *RegexScanner) Scan(_ string, content []byte, kind Kind) []string {
	var specs []string
	switch kind {
	case KindScript:
		specs = collect(specs, staticImportRe, content)
		specs = collect(specs, dynamicImportRe, content)
		specs = collect(specs, reExportRe, content)
		specs = collect(specs, requireRe, content)
	case KindStylesheet:
		specs = collect(specs, cssImportRe, content)
		specs = collect(specs, sassModuleRe, content)
	}
	return normalize(specs)
}

// Close implements Scanner.
func (s *RegexScanner) Close() {}

// collect appends the first non-empty capture group of every match.
func collect(dst []string, re *regexp.Regexp, content []byte) []string {
	for _, m := range re.FindAllSubmatch(content, -1) {
		for _, g := range m[1:] {
			if len(g) > 0 {
				dst = append(dst, string(g))
				break
			}
		}
	}
	return dst
}
