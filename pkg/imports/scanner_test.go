package imports

import (
	"errors"
	"io/fs"
	"os"
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/panbanda/orphans/pkg/policy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lockedFS fails every Open.
type lockedFS struct {
	billy.Filesystem
}

func (l lockedFS) Open(string) (billy.File, error) {
	return nil, fs.ErrPermission
}

func (l lockedFS) OpenFile(string, int, os.FileMode) (billy.File, error) {
	return nil, fs.ErrPermission
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		path string
		want Kind
	}{
		{"src/app/page.tsx", KindScript},
		{"src/lib/a.ts", KindScript},
		{"src/lib/a.MJS", KindScript},
		{"src/content/post.mdx", KindScript},
		{"src/app/globals.css", KindStylesheet},
		{"src/styles/theme.scss", KindStylesheet},
		{"src/data.json", KindOther},
		{"README", KindOther},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.path))
		})
	}
	assert.Equal(t, "script", KindScript.String())
	assert.Equal(t, "stylesheet", KindStylesheet.String())
	assert.Equal(t, "other", KindOther.String())
}

func TestNew(t *testing.T) {
	s, err := New("regex")
	require.NoError(t, err)
	assert.IsType(t, &RegexScanner{}, s)

	s, err = New("treesitter")
	require.NoError(t, err)
	assert.IsType(t, &TreeSitterScanner{}, s)
	s.Close()

	_, err = New("babel")
	assert.Error(t, err)
}

func TestExtract(t *testing.T) {
	fsys := memfs.New()
	require.NoError(t, util.WriteFile(fsys, "src/app/page.tsx", []byte(`import { og } from '@/lib/og';`), 0644))
	require.NoError(t, util.WriteFile(fsys, "src/data.json", []byte(`{}`), 0644))

	specs, err := Extract(fsys, "src/app/page.tsx", NewRegexScanner(), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"@/lib/og"}, specs)

	specs, err = Extract(fsys, "src/data.json", NewRegexScanner(), nil)
	require.NoError(t, err)
	assert.Empty(t, specs)
	assert.NotNil(t, specs)
}

func TestExtractReadFailure(t *testing.T) {
	base := memfs.New()
	require.NoError(t, util.WriteFile(base, "src/a.ts", []byte(`import './b';`), 0644))
	fsys := lockedFS{base}

	t.Run("best effort yields no specifiers", func(t *testing.T) {
		specs, err := Extract(fsys, "src/a.ts", NewRegexScanner(), policy.BestEffort(nil))
		require.NoError(t, err)
		assert.Empty(t, specs)
	})

	t.Run("strict returns the error", func(t *testing.T) {
		_, err := Extract(fsys, "src/a.ts", NewRegexScanner(), policy.StrictMode(nil))
		require.Error(t, err)
		var opErr *policy.OpError
		require.True(t, errors.As(err, &opErr))
		assert.Equal(t, "read", opErr.Op)
		assert.ErrorIs(t, err, fs.ErrPermission)
	})
}
