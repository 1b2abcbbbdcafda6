package zipsig

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"path/filepath"
)

// Verify checks the signature embedded in the archive at path.
//
// The signature line is split into digest and block, the catalog is rebuilt
// and passed to the Verifier when one is configured, and the digest is
// compared with the recomputed archive digest. Verify returns ErrNotSigned
// for unsigned archives and ErrDigestMismatch when the archive changed after
// signing.
func (c *Client) Verify(ctx context.Context, archivePath string) (Signature, error) {
	a, err := c.load(ctx, archivePath)
	if err != nil {
		return Signature{}, err
	}
	env, ok, err := a.Envelope()
	if err != nil {
		return Signature{}, err
	}
	if !ok {
		return Signature{}, fmt.Errorf("%w: %s", ErrNotSigned, archivePath)
	}

	sig := Signature{
		Path:   archivePath,
		Digest: env.Digest,
		Block:  env.Block,
	}
	if c.verifier != nil {
		name := c.catalogName(archivePath)
		if err := c.verifier.VerifyCatalog(ctx, name, []byte(env.Catalog())); err != nil {
			return Signature{}, fmt.Errorf("verify %s: %w", archivePath, err)
		}
		sig.Verified = true
	}
	if err := a.Verify(env); err != nil {
		return Signature{}, err
	}

	c.log().Debug("verified archive",
		slog.String("path", archivePath),
		slog.String("digest", env.Digest),
		slog.Bool("verified", sig.Verified))
	return sig, nil
}

// catalogName returns the base name of the catalog file for archivePath.
func (c *Client) catalogName(archivePath string) string {
	if IsRemote(archivePath) {
		return path.Base(archivePath) + c.sidecarSuffix
	}
	return filepath.Base(archivePath) + c.sidecarSuffix
}
