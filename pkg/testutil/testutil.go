// Package testutil builds project trees for tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
)

// Stub is the content written for files whose body does not matter.
const Stub = "export {}\n"

// MemFS creates an in-memory filesystem holding files, keyed by slash path.
func MemFS(t *testing.T, files map[string]string) billy.Filesystem {
	t.Helper()
	fsys := memfs.New()
	for name, content := range files {
		if err := util.WriteFile(fsys, name, []byte(content), 0644); err != nil {
			t.Fatalf("WriteFile(%s) error: %v", name, err)
		}
	}
	return fsys
}

// Stubs creates an in-memory filesystem where every path holds Stub.
func Stubs(t *testing.T, paths ...string) billy.Filesystem {
	t.Helper()
	files := make(map[string]string, len(paths))
	for _, p := range paths {
		files[p] = Stub
	}
	return MemFS(t, files)
}

// WriteTree writes files below root on disk, creating directories as needed.
func WriteTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("MkdirAll(%s) error: %v", path, err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("WriteFile(%s) error: %v", path, err)
		}
	}
}

// Project writes files into a fresh temporary directory and returns it.
func Project(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	WriteTree(t, dir, files)
	return dir
}
