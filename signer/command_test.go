package signer

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// appendBlock is a shell snippet that appends a fixed signature block to $1.
const appendBlock = `printf '# SIG # Begin signature block\r\n# QUJD\r\n# SIG # End signature block\r\n' >> "$1"`

func requireShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires sh")
	}
}

func TestCommandSigner_SignFile(t *testing.T) {
	t.Parallel()
	requireShell(t)

	cfg := &Config{Command: []string{"sh", "-c", appendBlock, "sh", "{file}"}}
	require.NoError(t, cfg.Validate())
	s, err := NewCommandSigner(cfg)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "a.zip.sig.ps1")
	require.NoError(t, os.WriteFile(path, []byte("sha256:abc\r\n"), 0o600))

	require.NoError(t, s.SignFile(context.Background(), path))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "sha256:abc\r\n# SIG # Begin signature block\r\n# QUJD\r\n# SIG # End signature block\r\n", string(got))
}

func TestCommandSigner_Failure(t *testing.T) {
	t.Parallel()
	requireShell(t)

	cfg := &Config{Command: []string{"sh", "-c", "echo certificate not found >&2; exit 3", "sh", "{file}"}}
	require.NoError(t, cfg.Validate())
	s, err := NewCommandSigner(cfg)
	require.NoError(t, err)

	err = s.SignFile(context.Background(), "unused")
	require.ErrorIs(t, err, ErrSignFailed)
	assert.Contains(t, err.Error(), "certificate not found")
}

func TestCommandSigner_Canceled(t *testing.T) {
	t.Parallel()
	requireShell(t)

	cfg := &Config{Command: []string{"sh", "-c", "sleep 10", "sh", "{file}"}}
	require.NoError(t, cfg.Validate())
	s, err := NewCommandSigner(cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, s.SignFile(ctx, "unused"), ErrSignFailed)
}

func TestCommandSigner_Env(t *testing.T) {
	t.Parallel()
	requireShell(t)

	cfg := &Config{Command: []string{"sh", "-c", `printf '%s' "$SIGN_PIN" > "$1"`, "sh", "{file}"}}
	require.NoError(t, cfg.Validate())
	s, err := NewCommandSigner(cfg, WithEnv("SIGN_PIN=1234"))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "out")
	require.NoError(t, s.SignFile(context.Background(), path))
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "1234", string(got))
}

func TestCommandVerifier_VerifyCatalog(t *testing.T) {
	t.Parallel()
	requireShell(t)

	// Accepts catalogs whose block contains QUJD and whose file name was kept.
	cfg := &Config{
		Command:       []string{"true", "{file}"},
		VerifyCommand: []string{"sh", "-c", `case "$1" in *.sig.ps1) grep -q '^# QUJD' "$1" ;; *) exit 2 ;; esac`, "sh", "{file}"},
	}
	require.NoError(t, cfg.Validate())
	v, err := NewCommandVerifier(cfg)
	require.NoError(t, err)

	good := "sha256:abc\r\n# SIG # Begin signature block\r\n# QUJD\r\n# SIG # End signature block\r\n"
	require.NoError(t, v.VerifyCatalog(context.Background(), "dir/a.zip.sig.ps1", []byte(good)))

	bad := "sha256:abc\r\n# SIG # Begin signature block\r\n# WFla\r\n# SIG # End signature block\r\n"
	require.ErrorIs(t, v.VerifyCatalog(context.Background(), "a.zip.sig.ps1", []byte(bad)), ErrVerifyFailed)
}

func TestNewCommand_Validation(t *testing.T) {
	t.Parallel()

	_, err := NewCommandSigner(nil)
	require.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewCommandVerifier(&Config{Command: []string{"sign", "{file}"}})
	require.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewCommandSigner(&Config{Command: []string{"sign", "{file}"}}, WithLogger(nil))
	require.Error(t, err)
}

func TestFuncAdapters(t *testing.T) {
	t.Parallel()

	var signed string
	var s Signer = SignerFunc(func(_ context.Context, path string) error {
		signed = path
		return nil
	})
	require.NoError(t, s.SignFile(context.Background(), "x"))
	assert.Equal(t, "x", signed)

	var v Verifier = VerifierFunc(func(_ context.Context, name string, catalog []byte) error {
		assert.Equal(t, "n", name)
		assert.Equal(t, []byte("c"), catalog)
		return ErrVerifyFailed
	})
	require.ErrorIs(t, v.VerifyCatalog(context.Background(), "n", []byte("c")), ErrVerifyFailed)
}
