package tsconfig

import (
	"path"
	"sort"
	"strings"
)

// Rule is one `paths` entry: a specifier pattern with at most one `*` and the
// project-relative targets it maps to.
type Rule struct {
	Pattern  string
	Prefix   string
	Suffix   string
	Wildcard bool
	Targets  []string
}

// NewRule builds a rule from a pattern and targets already made project-relative.
func NewRule(pattern string, targets []string) Rule {
	r := Rule{Pattern: pattern, Prefix: pattern, Targets: targets}
	if i := strings.IndexByte(pattern, '*'); i >= 0 {
		r.Wildcard = true
		r.Prefix = pattern[:i]
		r.Suffix = pattern[i+1:]
	}
	return r
}

// Match tests spec against the rule and returns the text captured by the wildcard.
func (r Rule) Match(spec string) (string, bool) {
	if !r.Wildcard {
		return "", spec == r.Pattern
	}
	if len(spec) < len(r.Prefix)+len(r.Suffix) {
		return "", false
	}
	if !strings.HasPrefix(spec, r.Prefix) || !strings.HasSuffix(spec, r.Suffix) {
		return "", false
	}
	return spec[len(r.Prefix) : len(spec)-len(r.Suffix)], true
}

// Expand substitutes capture into every target, in configured order.
func (r Rule) Expand(capture string) []string {
	out := make([]string, 0, len(r.Targets))
	for _, t := range r.Targets {
		if r.Wildcard {
			t = strings.Replace(t, "*", capture, 1)
		}
		out = append(out, path.Clean(t))
	}
	return out
}

// sortRules orders exact patterns first, then wildcards by longest prefix.
func sortRules(rules []Rule) {
	sort.SliceStable(rules, func(i, j int) bool {
		a, b := rules[i], rules[j]
		if a.Wildcard != b.Wildcard {
			return !a.Wildcard
		}
		if len(a.Prefix) != len(b.Prefix) {
			return len(a.Prefix) > len(b.Prefix)
		}
		return a.Pattern < b.Pattern
	})
}
