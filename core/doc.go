// Package zipsig computes a canonical digest for ZIP archives and stores a
// signature envelope in the archive's trailing comment.
//
// The package works on an in-memory copy of the archive:
//   - The structural scanner walks local and central directory records from
//     offset 0 to find the end-of-central-directory (EOCD) record.
//   - The digest covers every byte up to the end of the fixed EOCD header,
//     with the comment-length field zeroed, so rewriting the comment does not
//     change it.
//   - The envelope codec converts between the single-line comment form
//     ("ZipAuthenticode=sha256:<hex>,<block>") and the multi-line catalog form
//     written to ".sig.ps1" sidecar files.
//
// ZIP64 and multi-disk archives are not supported. Nothing here performs
// cryptographic signing; the signature block is treated as opaque text.
package zipsig
