package resolve

import (
	"errors"
	"io/fs"
	"os"
	"sync/atomic"
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/panbanda/orphans/pkg/config"
	"github.com/panbanda/orphans/pkg/policy"
	"github.com/panbanda/orphans/pkg/testutil"
	"github.com/panbanda/orphans/pkg/tsconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nextAliases() *tsconfig.Aliases {
	return &tsconfig.Aliases{
		Source: "tsconfig.json",
		Rules:  []tsconfig.Rule{tsconfig.NewRule("@/*", []string{"src/*"})},
	}
}

// countingFS counts Stat calls and can fail them for one path.
type countingFS struct {
	billy.Filesystem
	stats   atomic.Int64
	failFor string
}

func (c *countingFS) Stat(p string) (os.FileInfo, error) {
	c.stats.Add(1)
	if p == c.failFor {
		return nil, fs.ErrPermission
	}
	return c.Filesystem.Stat(p)
}

func TestResolve(t *testing.T) {
	fsys := testutil.Stubs(t,
		"src/app/page.tsx",
		"src/app/globals.css",
		"src/lib/og.ts",
		"src/lib/exact.js",
		"src/components/Button.tsx",
		"src/components/nav/index.tsx",
		"src/icons/logo.svg",
		"src/utils/format.ts",
		"src/lib/both.ts",
		"src/lib/both/index.ts",
	)
	r := New(fsys, nil, nextAliases())

	tests := []struct {
		name string
		from string
		spec string
		want string
		ok   bool
	}{
		{"alias with extension probe", "src/app/page.tsx", "@/lib/og", "src/lib/og.ts", true},
		{"relative sibling", "src/app/page.tsx", "./globals.css", "src/app/globals.css", true},
		{"relative parent", "src/app/page.tsx", "../components/Button", "src/components/Button.tsx", true},
		{"directory index", "src/app/page.tsx", "@/components/nav", "src/components/nav/index.tsx", true},
		{"exact file first", "src/app/page.tsx", "../lib/exact.js", "src/lib/exact.js", true},
		{"file before directory index", "src/app/page.tsx", "@/lib/both", "src/lib/both.ts", true},
		{"emitted extension maps to source", "src/app/page.tsx", "../utils/format.js", "src/utils/format.ts", true},
		{"query suffix stripped", "src/app/page.tsx", "@/icons/logo.svg?url", "src/icons/logo.svg", true},
		{"hash suffix stripped", "src/app/page.tsx", "../lib/og#frag", "src/lib/og.ts", true},
		{"absolute from project root", "src/app/page.tsx", "/src/lib/og", "src/lib/og.ts", true},
		{"package", "src/app/page.tsx", "react", "", false},
		{"scoped package", "src/app/page.tsx", "@vercel/analytics/react", "", false},
		{"node builtin", "src/app/page.tsx", "node:fs", "", false},
		{"bun builtin", "src/app/page.tsx", "bun:test", "", false},
		{"missing relative", "src/app/page.tsx", "./missing", "", false},
		{"missing alias", "src/app/page.tsx", "@/lib/missing", "", false},
		{"escaping root", "src/app/page.tsx", "../../../etc/passwd", "", false},
		{"escaping absolute", "src/app/page.tsx", "/../outside", "", false},
		{"empty", "src/app/page.tsx", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := r.Resolve(tt.from, tt.spec)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveAliasTargetsInOrder(t *testing.T) {
	fsys := testutil.Stubs(t, "src/legacy/Card.tsx", "src/components/Nav.tsx", "src/legacy/Nav.tsx")
	aliases := &tsconfig.Aliases{
		Rules: []tsconfig.Rule{
			tsconfig.NewRule("~/*", []string{"src/components/*", "src/legacy/*"}),
		},
	}
	r := New(fsys, nil, aliases)

	got, ok := r.Resolve("src/app/page.tsx", "~/Nav")
	require.True(t, ok)
	assert.Equal(t, "src/components/Nav.tsx", got, "first target wins")

	got, ok = r.Resolve("src/app/page.tsx", "~/Card")
	require.True(t, ok)
	assert.Equal(t, "src/legacy/Card.tsx", got, "later target used when earlier misses")
}

func TestResolveBaseURL(t *testing.T) {
	fsys := testutil.Stubs(t, "src/lib/og.ts")

	withBase := &tsconfig.Aliases{BaseURL: "src", HasBaseURL: true}
	got, ok := New(fsys, nil, withBase).Resolve("src/app/page.tsx", "lib/og")
	require.True(t, ok)
	assert.Equal(t, "src/lib/og.ts", got)

	_, ok = New(fsys, nil, tsconfig.Empty()).Resolve("src/app/page.tsx", "lib/og")
	assert.False(t, ok, "bare specifiers stay external without baseUrl")
}

func TestResolveAliasFallsBackToBaseURL(t *testing.T) {
	fsys := testutil.Stubs(t, "src/@/lib/og.ts")
	aliases := &tsconfig.Aliases{
		BaseURL:    "src",
		HasBaseURL: true,
		Rules:      []tsconfig.Rule{tsconfig.NewRule("@/*", []string{"nowhere/*"})},
	}

	got, ok := New(fsys, nil, aliases).Resolve("src/app/page.tsx", "@/lib/og")
	require.True(t, ok)
	assert.Equal(t, "src/@/lib/og.ts", got)
}

func TestResolveNilAliases(t *testing.T) {
	fsys := testutil.Stubs(t, "src/lib/og.ts")
	r := New(fsys, nil, nil)

	_, ok := r.Resolve("src/app/page.tsx", "@/lib/og")
	assert.False(t, ok)
	got, ok := r.Resolve("src/app/page.tsx", "../lib/og")
	assert.True(t, ok)
	assert.Equal(t, "src/lib/og.ts", got)
}

func TestClassify(t *testing.T) {
	r := New(memfs.New(), nil, nextAliases())

	tests := []struct {
		spec string
		want Kind
	}{
		{"./a", KindRelative},
		{"../a", KindRelative},
		{".", KindRelative},
		{"..", KindRelative},
		{"/src/a", KindAbsolute},
		{"@/lib/og", KindAlias},
		{"node:fs", KindBuiltin},
		{"bun:sqlite", KindBuiltin},
		{"react", KindPackage},
		{"@scope/pkg", KindPackage},
		{"next/font/google", KindPackage},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Classify(tt.spec))
		})
	}
}

func TestResolveMemoizesProbes(t *testing.T) {
	fsys := &countingFS{Filesystem: testutil.Stubs(t, "src/lib/og.ts")}
	r := New(fsys, nil, nextAliases())

	_, ok := r.Resolve("src/app/a.tsx", "@/lib/og")
	require.True(t, ok)
	first := fsys.stats.Load()

	_, ok = r.Resolve("src/app/b.tsx", "@/lib/og")
	require.True(t, ok)
	assert.Equal(t, first, fsys.stats.Load(), "second resolution should hit the memo")
}

func TestResolveWithoutMemo(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Resolve.MemoSize = 0
	fsys := &countingFS{Filesystem: testutil.Stubs(t, "src/lib/og.ts")}
	r := New(fsys, cfg, nextAliases())

	r.Resolve("src/app/a.tsx", "@/lib/og")
	first := fsys.stats.Load()
	r.Resolve("src/app/a.tsx", "@/lib/og")
	assert.Equal(t, 2*first, fsys.stats.Load())
}

func TestResolveProbeFailure(t *testing.T) {
	t.Run("best effort is no match", func(t *testing.T) {
		fsys := &countingFS{Filesystem: testutil.Stubs(t, "src/lib/og.ts"), failFor: "src/lib/og"}
		r := New(fsys, nil, nextAliases(), WithPolicy(policy.BestEffort(nil)))

		got, ok := r.Resolve("src/app/page.tsx", "@/lib/og")
		assert.True(t, ok)
		assert.Equal(t, "src/lib/og.ts", got)
		assert.Empty(t, r.Errors())
	})

	t.Run("strict records the failure", func(t *testing.T) {
		fsys := &countingFS{Filesystem: testutil.Stubs(t, "src/lib/og.ts"), failFor: "src/lib/og"}
		r := New(fsys, nil, nextAliases(), WithPolicy(policy.StrictMode(nil)))

		_, ok := r.Resolve("src/app/page.tsx", "@/lib/og")
		assert.True(t, ok)

		errs := r.Errors()
		require.Len(t, errs, 1)
		var opErr *policy.OpError
		require.True(t, errors.As(errs[0], &opErr))
		assert.Equal(t, "probe", opErr.Op)
		assert.Equal(t, "src/lib/og", opErr.Path)
	})
}
