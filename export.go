package zipsig

import (
	"context"
	"fmt"
	"log/slog"
)

// ExportSignature writes the archive's embedded signature to its catalog file
// and returns the catalog path. It returns ErrNotSigned, and writes nothing,
// when the archive is unsigned.
func (c *Client) ExportSignature(ctx context.Context, path string) (string, error) {
	if err := localOnly(path); err != nil {
		return "", err
	}
	a, err := c.load(ctx, path)
	if err != nil {
		return "", err
	}
	env, ok, err := a.Envelope()
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotSigned, path)
	}

	sidecar, err := c.writeSidecar(path, env.Catalog())
	if err != nil {
		return "", err
	}
	c.log().Debug("exported signature", slog.String("path", path), slog.String("sidecar", sidecar))
	return sidecar, nil
}
