package zipsig

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	zipcore "github.com/meigma/zipsig/core"
)

func TestClient_Digest(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeArchive(t, dir, "a.zip", "archiver comment")
	c, err := NewClient()
	require.NoError(t, err)

	info, err := c.Digest(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, path, info.Path)
	assert.Empty(t, info.Sidecar)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	want, err := zipcore.New(data).Digest()
	require.NoError(t, err)
	assert.Equal(t, want, info.Digest)

	_, err = os.Stat(c.SidecarPath(path))
	require.ErrorIs(t, err, fs.ErrNotExist)
}

func TestClient_DigestWithExport(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeArchive(t, dir, "a.zip", "")
	c, err := NewClient()
	require.NoError(t, err)

	info, err := c.Digest(context.Background(), path, DigestWithExport(true))
	require.NoError(t, err)
	assert.Equal(t, path+".sig.ps1", info.Sidecar)

	sidecar, err := os.ReadFile(info.Sidecar)
	require.NoError(t, err)
	assert.Equal(t, info.Digest.String(), string(sidecar))
}

func TestClient_DigestErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	notZip := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(notZip, []byte("not an archive"), 0o600))
	big := writeArchive(t, dir, "big.zip", "")

	c, err := NewClient(WithMaxArchiveSize(64))
	require.NoError(t, err)
	ctx := context.Background()

	_, err = c.Digest(ctx, filepath.Join(dir, "missing.zip"))
	require.ErrorIs(t, err, fs.ErrNotExist)

	_, err = c.Digest(ctx, notZip)
	require.ErrorIs(t, err, ErrMalformedArchive)

	_, err = c.Digest(ctx, big)
	require.ErrorIs(t, err, ErrSizeOverflow)

	_, err = c.Digest(ctx, "https://example.com/a.zip", DigestWithExport(true))
	require.ErrorIs(t, err, ErrRemoteReadOnly)

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = c.Digest(canceled, notZip)
	require.ErrorIs(t, err, context.Canceled)
}

func TestClient_FileHash(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeArchive(t, dir, "a.zip", "")
	c, err := NewClient()
	require.NoError(t, err)
	ctx := context.Background()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	sum := sha256.Sum256(data)

	info, err := c.FileHash(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, FileHashInfo{
		Algorithm: "SHA256",
		Hash:      strings.ToUpper(hex.EncodeToString(sum[:])),
		Path:      path,
	}, info)
	assert.Equal(t, "sha256:"+hex.EncodeToString(sum[:]), info.DigestString())

	// The file hash covers the comment; the archive digest does not.
	before, err := c.Digest(ctx, path)
	require.NoError(t, err)
	_, err = c.SetComment(ctx, path, "changed")
	require.NoError(t, err)

	changed, err := c.FileHash(ctx, path)
	require.NoError(t, err)
	assert.NotEqual(t, info.Hash, changed.Hash)
	after, err := c.Digest(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, before.Digest, after.Digest)

	// Any file can be hashed.
	plain := filepath.Join(dir, "plain.txt")
	require.NoError(t, os.WriteFile(plain, []byte("abc"), 0o600))
	h, err := c.FileHash(ctx, plain)
	require.NoError(t, err)
	assert.Equal(t, "BA7816BF8F01CFEA414140DE5DAE2223B00361A396177A9CB410FF61F20015AD", h.Hash)

	_, err = c.FileHash(ctx, filepath.Join(dir, "missing"))
	require.ErrorIs(t, err, fs.ErrNotExist)
}
