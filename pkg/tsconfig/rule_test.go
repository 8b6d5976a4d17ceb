package tsconfig

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRuleMatch(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		spec    string
		capture string
		ok      bool
	}{
		{"wildcard tail", "@/*", "@/lib/og", "lib/og", true},
		{"wildcard empty capture", "@/*", "@/", "", true},
		{"wildcard no match", "@/*", "react", "", false},
		{"wildcard with suffix", "icons/*.svg", "icons/logo.svg", "logo", true},
		{"suffix mismatch", "icons/*.svg", "icons/logo.png", "", false},
		{"overlapping prefix and suffix", "a*a", "a", "", false},
		{"exact", "config", "config", "", true},
		{"exact no prefix match", "config", "config/x", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			capture, ok := NewRule(tt.pattern, nil).Match(tt.spec)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.capture, capture)
		})
	}
}

func TestRuleExpand(t *testing.T) {
	r := NewRule("@/*", []string{"src/*", "generated/*/index"})
	assert.Equal(t, []string{"src/lib/og", "generated/lib/og/index"}, r.Expand("lib/og"))

	exact := NewRule("config", []string{"src/config.ts"})
	assert.Equal(t, []string{"src/config.ts"}, exact.Expand(""))
}
