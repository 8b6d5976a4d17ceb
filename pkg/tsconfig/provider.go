package tsconfig

import (
	"errors"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
)

// FS is a koanf.Provider that reads a file from a billy filesystem.
type FS struct {
	fs   billy.Filesystem
	path string
}

// Provider returns a provider for path on fs.
func Provider(fs billy.Filesystem, path string) *FS {
	return &FS{fs: fs, path: path}
}

// ReadBytes reads the file contents.
func (f *FS) ReadBytes() ([]byte, error) {
	return util.ReadFile(f.fs, f.path)
}

// Read is not supported; use ReadBytes with a parser.
func (f *FS) Read() (map[string]interface{}, error) {
	return nil, errors.New("tsconfig provider does not support this method")
}
