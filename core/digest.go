package zipsig

import (
	"crypto/sha256"

	"github.com/opencontainers/go-digest"

	"github.com/meigma/zipsig/core/internal/zipfmt"
)

// zeroCommentLength replaces the comment-length field in the canonical input.
var zeroCommentLength = []byte{0, 0}

// ComputeHash returns the SHA-256 of the archive's canonical input: every byte
// up to the end of the fixed EOCD header, with the two comment-length bytes
// treated as zero.
//
// The result does not depend on the comment, so an archive can be hashed,
// have a signature embedded in its comment, and be hashed again with the same
// result.
func (a *Archive) ComputeHash() ([]byte, error) {
	off, err := zipfmt.FindEndOfCentralDir(a.data)
	if err != nil {
		return nil, err
	}
	lengthField := off + zipfmt.CommentLengthOffset

	h := sha256.New()
	_, _ = h.Write(a.data[:lengthField]) //nolint:errcheck // hash writes never fail
	_, _ = h.Write(zeroCommentLength)    //nolint:errcheck // hash writes never fail
	return h.Sum(nil), nil
}

// Digest returns the canonical digest as "sha256:" followed by lowercase hex.
func (a *Archive) Digest() (digest.Digest, error) {
	sum, err := a.ComputeHash()
	if err != nil {
		return "", err
	}
	return digest.NewDigestFromBytes(digest.SHA256, sum), nil
}

// DigestString is Digest formatted as a string.
func (a *Archive) DigestString() (string, error) {
	d, err := a.Digest()
	if err != nil {
		return "", err
	}
	return d.String(), nil
}
