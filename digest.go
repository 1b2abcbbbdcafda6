package zipsig

import (
	"context"
	"log/slog"

	"github.com/opencontainers/go-digest"
)

// DigestInfo is the canonical digest of one archive.
type DigestInfo struct {
	// Path is the archive path or URL as given.
	Path string `json:"path"`

	// Digest is "sha256:" followed by 64 lowercase hex characters.
	Digest digest.Digest `json:"digest"`

	// Sidecar is the catalog file written by DigestWithExport, if any.
	Sidecar string `json:"sidecar,omitempty"`
}

// DigestOption configures a Digest operation.
type DigestOption func(*digestConfig)

type digestConfig struct {
	export bool
}

// DigestWithExport also writes the digest to the archive's catalog file,
// replacing its content. This prepares the catalog for an external signer.
func DigestWithExport(enabled bool) DigestOption {
	return func(cfg *digestConfig) {
		cfg.export = enabled
	}
}

// Digest computes the canonical digest of the archive at path.
func (c *Client) Digest(ctx context.Context, path string, opts ...DigestOption) (DigestInfo, error) {
	var cfg digestConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.export {
		if err := localOnly(path); err != nil {
			return DigestInfo{}, err
		}
	}

	a, err := c.load(ctx, path)
	if err != nil {
		return DigestInfo{}, err
	}
	d, err := a.Digest()
	if err != nil {
		return DigestInfo{}, err
	}
	info := DigestInfo{Path: path, Digest: d}
	c.log().Debug("computed digest", slog.String("path", path), slog.String("digest", d.String()))

	if cfg.export {
		sidecar, err := c.writeSidecar(path, d.String())
		if err != nil {
			return DigestInfo{}, err
		}
		info.Sidecar = sidecar
	}
	return info, nil
}
