package zipsig

import (
	"errors"

	zipcore "github.com/meigma/zipsig/core"
)

// Errors re-exported from core.
var (
	// ErrMalformedArchive is returned when the archive record chain cannot be walked.
	ErrMalformedArchive = zipcore.ErrMalformedArchive

	// ErrUnsupportedArchive is returned for ZIP64 archives.
	ErrUnsupportedArchive = zipcore.ErrUnsupportedArchive

	// ErrCommentTooLarge is returned when a comment exceeds 65535 bytes.
	ErrCommentTooLarge = zipcore.ErrCommentTooLarge

	// ErrInvalidSignatureEnvelope is returned when a signature line or catalog is malformed.
	ErrInvalidSignatureEnvelope = zipcore.ErrInvalidSignatureEnvelope

	// ErrDigestMismatch is returned when the archive does not match its signature digest.
	ErrDigestMismatch = zipcore.ErrDigestMismatch

	// ErrSizeOverflow is returned when an archive exceeds the configured size limit.
	ErrSizeOverflow = zipcore.ErrSizeOverflow

	// ErrArchiveChanged is returned when an archive file changed while being signed or edited.
	ErrArchiveChanged = zipcore.ErrArchiveChanged
)

// Client errors.
var (
	// ErrNotSigned is returned when an archive comment has no signature line.
	ErrNotSigned = errors.New("zipsig: archive is not signed")

	// ErrNoSigner is returned by Sign when the client has no Signer.
	ErrNoSigner = errors.New("zipsig: no signer configured")

	// ErrRemoteReadOnly is returned when a write operation targets a URL.
	ErrRemoteReadOnly = errors.New("zipsig: remote archives are read-only")
)

// PathError records the failure of an operation on one path.
//
// Batch operations join one PathError per failed path with errors.Join;
// use errors.As to recover them.
type PathError struct {
	Op   string
	Path string
	Err  error
}

func (e *PathError) Error() string {
	return e.Op + " " + e.Path + ": " + e.Err.Error()
}

func (e *PathError) Unwrap() error {
	return e.Err
}

// PathErrors returns the PathErrors contained in err, in order.
func PathErrors(err error) []*PathError {
	if err == nil {
		return nil
	}
	var out []*PathError
	var walk func(error)
	walk = func(err error) {
		if pe, ok := err.(*PathError); ok { //nolint:errorlint // walking the join tree by hand
			out = append(out, pe)
			return
		}
		switch x := err.(type) { //nolint:errorlint // walking the join tree by hand
		case interface{ Unwrap() []error }:
			for _, e := range x.Unwrap() {
				walk(e)
			}
		case interface{ Unwrap() error }:
			if inner := x.Unwrap(); inner != nil {
				walk(inner)
			}
		}
	}
	walk(err)
	return out
}
