package fileutil

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFileAtomic(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "match.json")

	require.NoError(t, WriteFileAtomic(path, []byte("hello"), 0o644))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files left behind")
	assert.Equal(t, "match.json", entries[0].Name())
}

func TestWriteFileAtomicOverwrite(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "match.json")
	require.NoError(t, WriteFileAtomic(path, []byte("initial"), 0o644))
	require.NoError(t, WriteFileAtomic(path, []byte("updated"), 0o600))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "updated", string(data))
}

func TestWriteFileAtomicMissingDir(t *testing.T) {
	t.Parallel()

	err := WriteFileAtomic(filepath.Join(t.TempDir(), "missing", "match.json"), []byte("x"), 0o644)
	assert.Error(t, err)
}

func TestJSONRoundTrip(t *testing.T) {
	t.Parallel()

	type doc struct {
		Code  string `json:"code"`
		Round int    `json:"round"`
	}
	path := filepath.Join(t.TempDir(), "doc.json")

	require.NoError(t, WriteJSON(path, doc{Code: "abc", Round: 3}, 0o644))

	var got doc
	require.NoError(t, ReadJSON(path, &got))
	assert.Equal(t, doc{Code: "abc", Round: 3}, got)
}

func TestReadJSONErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	var v map[string]any

	err := ReadJSON(filepath.Join(dir, "missing.json"), &v)
	assert.ErrorIs(t, err, fs.ErrNotExist)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0o644))
	err = ReadJSON(bad, &v)
	require.Error(t, err)
	assert.NotErrorIs(t, err, fs.ErrNotExist)
}
