package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestValidateFileAcceptsValidConfig(t *testing.T) {
	path := writeConfig(t, "orphans.toml", `
[source]
root = "src"
extensions = [".ts", ".tsx"]

[scanner]
kind = "regex"
workers = 2
`)
	assert.NoError(t, ValidateFile(path))
}

func TestValidateFileRejectsUnknownKey(t *testing.T) {
	path := writeConfig(t, "orphans.toml", `
[source]
rot = "src"
`)
	assert.Error(t, ValidateFile(path))
}

func TestValidateFileRejectsWrongType(t *testing.T) {
	path := writeConfig(t, "orphans.yaml", `
report:
  fail_on_unused: "yes"
`)
	assert.Error(t, ValidateFile(path))
}

func TestValidateFileRejectsBadExtension(t *testing.T) {
	path := writeConfig(t, "orphans.json", `{"source": {"extensions": ["ts"]}}`)
	assert.Error(t, ValidateFile(path))
}

func TestValidateFileMissing(t *testing.T) {
	assert.Error(t, ValidateFile(filepath.Join(t.TempDir(), "missing.toml")))
}
