package fileio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsAbsolute(t *testing.T) {
	assert.True(t, IsAbsolute("/tmp/foo.go"))
	assert.True(t, IsAbsolute(`C:\Users\foo`))
	assert.False(t, IsAbsolute("./a.py"))
	assert.False(t, IsAbsolute("relative/path.go"))
}

func TestReadFileRejectsRelativePath(t *testing.T) {
	_, _, err := ReadFile("relative.go", false)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotAbsolute)
}

func TestReadFileLineNumberRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.go")
	content := "package main\n\nfunc main() {\n\tprintln(\"hi\")\n}\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	plain, _, err := ReadFile(path, false)
	require.NoError(t, err)
	assert.Equal(t, content, plain)

	marked, _, err := ReadFile(path, true)
	require.NoError(t, err)
	assert.Contains(t, marked, "   1│ package main")
	assert.NotContains(t, plain, "│")

	assert.Equal(t, plain, StripLineMarkers(marked))
}

func TestReadFileUnreadableDegradesGracefully(t *testing.T) {
	dir := t.TempDir()
	text, est, err := ReadFile(filepath.Join(dir, "missing.go"), false)
	require.NoError(t, err)
	assert.Contains(t, text, "<read error:")
	assert.Positive(t, est)
}

func TestReadFilesStopsBeforeExceedingBudget(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "b.txt")
	require.NoError(t, os.WriteFile(a, []byte("small"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte(string(make([]byte, 5000))), 0o644))

	text, included, err := ReadFiles([]string{a, b}, 50, false)
	require.NoError(t, err)
	assert.Equal(t, []string{a}, included)
	assert.Contains(t, text, "=== FILE: "+a)
	assert.NotContains(t, text, "=== FILE: "+b)
}

func TestReadFilesRejectsRelativePath(t *testing.T) {
	_, _, err := ReadFiles([]string{"relative.go"}, 1000, false)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotAbsolute)
}
