package zipsig

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
)

// FileHashAlgorithm is the only algorithm FileHash supports.
const FileHashAlgorithm = "SHA256"

// FileHashInfo is the plain SHA-256 of a whole file, including its comment.
type FileHashInfo struct {
	// Algorithm is always "SHA256".
	Algorithm string `json:"algorithm"`

	// Hash is the uppercase hex digest.
	Hash string `json:"hash"`

	// Path is the file path or URL as given.
	Path string `json:"path"`
}

// DigestString returns the hash as "sha256:<lowercase hex>".
func (h FileHashInfo) DigestString() string {
	return strings.ToLower(h.Algorithm) + ":" + strings.ToLower(h.Hash)
}

// FileHash computes the SHA-256 of every byte of the file at path.
// Unlike Digest, the result changes when the comment changes, and the
// file does not need to be a ZIP archive.
func (c *Client) FileHash(ctx context.Context, path string) (FileHashInfo, error) {
	if err := ctx.Err(); err != nil {
		return FileHashInfo{}, err
	}

	var r io.Reader
	if IsRemote(path) {
		src, err := c.remoteSource(ctx, path)
		if err != nil {
			return FileHashInfo{}, err
		}
		r = io.NewSectionReader(src, 0, src.Size())
	} else {
		f, err := os.Open(path)
		if err != nil {
			return FileHashInfo{}, fmt.Errorf("open file: %w", err)
		}
		defer f.Close()
		r = f
	}

	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return FileHashInfo{}, fmt.Errorf("hash %s: %w", path, err)
	}
	return FileHashInfo{
		Algorithm: FileHashAlgorithm,
		Hash:      strings.ToUpper(hex.EncodeToString(h.Sum(nil))),
		Path:      path,
	}, nil
}
