package zipsig

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	zipcore "github.com/meigma/zipsig/core"
)

// Signature describes the signature embedded in an archive.
type Signature struct {
	// Path is the archive path or URL as given.
	Path string `json:"path"`

	// Digest is the digest covered by the signature.
	Digest string `json:"digest"`

	// Block is the signature block produced by the external signer.
	Block string `json:"-"`

	// Sidecar is the catalog file that was signed. Empty for Verify.
	Sidecar string `json:"sidecar,omitempty"`

	// Verified reports whether a Verifier accepted the signature block.
	// Digest equality alone leaves it false.
	Verified bool `json:"verified"`
}

// Catalog returns the signature in catalog form.
func (s Signature) Catalog() string {
	return zipcore.Envelope{Digest: s.Digest, Block: s.Block}.Catalog()
}

// Sign signs the archive at path.
//
// The bare digest, with no line terminator, is written to the catalog file
// "<path>.sig.ps1". Signers append "\r\n# SIG # Begin signature block", so the
// signed content is exactly what Signature.Catalog rebuilds. The configured
// Signer signs that file in place, and the signed catalog is folded into a
// single "ZipAuthenticode=..." line that replaces the archive comment. The
// catalog file is left in place as a detached signature.
//
// Sign returns ErrNoSigner without a Signer and ErrDigestMismatch if the
// signer changed the digest line.
func (c *Client) Sign(ctx context.Context, path string) (Signature, error) {
	if c.signer == nil {
		return Signature{}, ErrNoSigner
	}
	if err := localOnly(path); err != nil {
		return Signature{}, err
	}

	a, err := c.load(ctx, path)
	if err != nil {
		return Signature{}, err
	}
	d, err := a.DigestString()
	if err != nil {
		return Signature{}, err
	}

	sidecar, err := c.writeSidecar(path, d)
	if err != nil {
		return Signature{}, err
	}

	c.log().Debug("signing catalog", slog.String("path", path), slog.String("sidecar", sidecar))
	if err := c.signer.SignFile(ctx, sidecar); err != nil {
		return Signature{}, fmt.Errorf("sign %s: %w", sidecar, err)
	}

	catalog, err := os.ReadFile(sidecar)
	if err != nil {
		return Signature{}, fmt.Errorf("read signed catalog: %w", err)
	}
	env, err := zipcore.ParseCatalog(string(catalog))
	if err != nil {
		return Signature{}, fmt.Errorf("%s: %w", sidecar, err)
	}
	if env.Digest != d {
		return Signature{}, fmt.Errorf("%w: signed catalog covers %s, archive is %s", ErrDigestMismatch, env.Digest, d)
	}

	// The line must parse back before it replaces the comment.
	if _, err := zipcore.ParseSignatureLine(env.SignatureLine()); err != nil {
		return Signature{}, fmt.Errorf("%s: %w", sidecar, err)
	}
	if _, err := a.Embed(env); err != nil {
		return Signature{}, err
	}
	if err := a.Save(path); err != nil {
		return Signature{}, err
	}

	c.log().Info("signed archive", slog.String("path", path), slog.String("digest", d))
	return Signature{
		Path:    path,
		Digest:  env.Digest,
		Block:   env.Block,
		Sidecar: sidecar,
	}, nil
}
