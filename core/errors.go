package zipsig

import (
	"errors"

	"github.com/meigma/zipsig/core/internal/write"
	"github.com/meigma/zipsig/core/internal/zipfmt"
)

// Sentinel errors re-exported from internal/zipfmt.
var (
	// ErrMalformedArchive is returned when the record chain cannot be walked:
	// an unrecognized signature, a record overrunning the buffer, or no EOCD.
	ErrMalformedArchive = zipfmt.ErrMalformedArchive

	// ErrUnsupportedArchive is returned for ZIP64 archives. It matches
	// ErrMalformedArchive with errors.Is.
	ErrUnsupportedArchive = zipfmt.ErrUnsupportedArchive

	// ErrCommentTooLarge is returned when a comment exceeds 65535 bytes.
	ErrCommentTooLarge = zipfmt.ErrCommentTooLarge
)

// Sentinel errors specific to the zipsig package.
var (
	// ErrInvalidSignatureEnvelope is returned when a signature line or catalog
	// fails the length or fixed-prefix checks.
	ErrInvalidSignatureEnvelope = errors.New("zipsig: invalid signature envelope")

	// ErrDigestMismatch is returned when the recomputed archive digest does not
	// equal the digest stored in the signature envelope.
	ErrDigestMismatch = errors.New("zipsig: digest mismatch")

	// ErrSizeOverflow is returned when an archive exceeds the configured size limit.
	ErrSizeOverflow = errors.New("zipsig: size overflow")

	// ErrArchiveChanged is returned by Save when the file an archive was
	// loaded from was modified before the save.
	ErrArchiveChanged = write.ErrFileChanged
)
