package write

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshot(t *testing.T, path string) Snapshot {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	s, err := Take(f, path)
	require.NoError(t, err)
	return s
}

func TestSnapshot_CheckUnchanged(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "a.zip")
	require.NoError(t, os.WriteFile(path, []byte("original"), 0o600))
	s := snapshot(t, path)
	require.NotNil(t, s.Info())

	require.NoError(t, s.CheckUnchanged(path))
	require.NoError(t, s.CheckUnchanged(filepath.Join(dir, "other.zip")))
	require.NoError(t, Snapshot{}.CheckUnchanged(path))

	require.NoError(t, os.WriteFile(path, []byte("modified content"), 0o600))
	err := s.CheckUnchanged(path)
	require.ErrorIs(t, err, ErrFileChanged)
	assert.Contains(t, err.Error(), path)
}

func TestSnapshot_ModTime(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "a.zip")
	require.NoError(t, os.WriteFile(path, []byte("same size"), 0o600))
	s := snapshot(t, path)

	later := s.Info().ModTime().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(path, later, later))
	require.ErrorIs(t, s.CheckUnchanged(path), ErrFileChanged)
}

func TestSnapshot_Removed(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "a.zip")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))
	s := snapshot(t, path)
	require.NoError(t, os.Remove(path))
	require.NoError(t, s.CheckUnchanged(path))
}

func TestStat(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "a.zip")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))
	s, err := Stat(path)
	require.NoError(t, err)
	require.NoError(t, s.CheckUnchanged(path))

	_, err = Stat(path + ".missing")
	require.ErrorIs(t, err, os.ErrNotExist)
}
