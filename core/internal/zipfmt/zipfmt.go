// Package zipfmt reads and writes the fixed-size ZIP structural records needed
// to find the end-of-central-directory footer.
//
// Only the fields that determine record spans are decoded. Entry contents are
// never inspected, decompressed, or enumerated.
//
// Layouts follow PKWARE APPNOTE.TXT section 4.3.
package zipfmt

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Record signatures.
const (
	LocalFileHeaderSignature    uint32 = 0x04034b50
	CentralDirHeaderSignature   uint32 = 0x02014b50
	EndOfCentralDirSignature    uint32 = 0x06054b50
	Zip64EndOfCentralDirSig     uint32 = 0x06064b50
	Zip64EndOfCentralDirLocator uint32 = 0x07064b50
)

// Fixed header sizes in bytes.
const (
	LocalFileHeaderSize  = 30
	CentralDirHeaderSize = 46
	EndOfCentralDirSize  = 22
	SignatureSize        = 4
)

// MaxCommentLength is the largest comment the 16-bit length field can describe.
const MaxCommentLength = 0xFFFF

// zip64Sentinel marks a 32-bit size whose real value lives in a ZIP64 extra field.
const zip64Sentinel uint32 = 0xFFFFFFFF

// Field offsets within the fixed headers.
const (
	localCompressedSizeOff = 18
	localFileNameLenOff    = 26
	localExtraLenOff       = 28

	centralFileNameLenOff = 28
	centralExtraLenOff    = 30
	centralCommentLenOff  = 32

	eocdDiskNumberOff      = 4
	eocdCentralDiskOff     = 6
	eocdDiskEntriesOff     = 8
	eocdTotalEntriesOff    = 10
	eocdCentralDirSizeOff  = 12
	eocdCentralDirStartOff = 16
	eocdCommentLenOff      = 20
)

// CommentLengthOffset is the offset of the comment-length field relative to
// the start of the EOCD record.
const CommentLengthOffset = eocdCommentLenOff

var (
	// ErrMalformedArchive is returned when the record chain cannot be walked.
	ErrMalformedArchive = errors.New("zipsig: malformed archive")

	// ErrUnsupportedArchive is returned for ZIP64 archives. It wraps
	// ErrMalformedArchive so callers checking for malformed input still match.
	ErrUnsupportedArchive = fmt.Errorf("%w: zip64 not supported", ErrMalformedArchive)

	// ErrCommentTooLarge is returned when a comment does not fit the 16-bit length field.
	ErrCommentTooLarge = errors.New("zipsig: comment too large")
)

// EndOfCentralDir is a decoded copy of the fixed EOCD fields.
type EndOfCentralDir struct {
	DiskNumber       uint16
	CentralDirDisk   uint16
	DiskEntries      uint16
	TotalEntries     uint16
	CentralDirSize   uint32
	CentralDirOffset uint32
	CommentLength    uint16
}

// fits reports whether [off, off+n) lies within a buffer of length size.
func fits(off, n, size int) bool {
	return off >= 0 && n >= 0 && off <= size && n <= size-off
}

// Signature returns the little-endian signature at off.
func Signature(data []byte, off int) (uint32, bool) {
	if !fits(off, SignatureSize, len(data)) {
		return 0, false
	}
	return binary.LittleEndian.Uint32(data[off:]), true
}

// LocalRecordSize returns the span of the local file record starting at off:
// the fixed header, the file name, the extra field, and the compressed data.
func LocalRecordSize(data []byte, off int) (int, error) {
	if !fits(off, LocalFileHeaderSize, len(data)) {
		return 0, fmt.Errorf("%w: truncated local file header at offset %d", ErrMalformedArchive, off)
	}
	hdr := data[off : off+LocalFileHeaderSize]
	compressed := binary.LittleEndian.Uint32(hdr[localCompressedSizeOff:])
	if compressed == zip64Sentinel {
		return 0, fmt.Errorf("%w: local file header at offset %d", ErrUnsupportedArchive, off)
	}
	nameLen := int(binary.LittleEndian.Uint16(hdr[localFileNameLenOff:]))
	extraLen := int(binary.LittleEndian.Uint16(hdr[localExtraLenOff:]))

	size := LocalFileHeaderSize + nameLen + extraLen
	if uint64(compressed) > uint64(len(data)) {
		return 0, fmt.Errorf("%w: local file record at offset %d overruns archive", ErrMalformedArchive, off)
	}
	size += int(compressed)
	if !fits(off, size, len(data)) {
		return 0, fmt.Errorf("%w: local file record at offset %d overruns archive", ErrMalformedArchive, off)
	}
	return size, nil
}

// CentralRecordSize returns the span of the central directory record starting
// at off: the fixed header, the file name, the extra field, and the file comment.
func CentralRecordSize(data []byte, off int) (int, error) {
	if !fits(off, CentralDirHeaderSize, len(data)) {
		return 0, fmt.Errorf("%w: truncated central directory header at offset %d", ErrMalformedArchive, off)
	}
	hdr := data[off : off+CentralDirHeaderSize]
	nameLen := int(binary.LittleEndian.Uint16(hdr[centralFileNameLenOff:]))
	extraLen := int(binary.LittleEndian.Uint16(hdr[centralExtraLenOff:]))
	commentLen := int(binary.LittleEndian.Uint16(hdr[centralCommentLenOff:]))

	size := CentralDirHeaderSize + nameLen + extraLen + commentLen
	if !fits(off, size, len(data)) {
		return 0, fmt.Errorf("%w: central directory record at offset %d overruns archive", ErrMalformedArchive, off)
	}
	return size, nil
}

// ReadEndOfCentralDir decodes the fixed EOCD fields at off.
// The signature is not checked; callers locate the record with FindEndOfCentralDir.
func ReadEndOfCentralDir(data []byte, off int) (EndOfCentralDir, error) {
	if !fits(off, EndOfCentralDirSize, len(data)) {
		return EndOfCentralDir{}, fmt.Errorf("%w: truncated end of central directory at offset %d", ErrMalformedArchive, off)
	}
	hdr := data[off : off+EndOfCentralDirSize]
	return EndOfCentralDir{
		DiskNumber:       binary.LittleEndian.Uint16(hdr[eocdDiskNumberOff:]),
		CentralDirDisk:   binary.LittleEndian.Uint16(hdr[eocdCentralDiskOff:]),
		DiskEntries:      binary.LittleEndian.Uint16(hdr[eocdDiskEntriesOff:]),
		TotalEntries:     binary.LittleEndian.Uint16(hdr[eocdTotalEntriesOff:]),
		CentralDirSize:   binary.LittleEndian.Uint32(hdr[eocdCentralDirSizeOff:]),
		CentralDirOffset: binary.LittleEndian.Uint32(hdr[eocdCentralDirStartOff:]),
		CommentLength:    binary.LittleEndian.Uint16(hdr[eocdCommentLenOff:]),
	}, nil
}

// PutCommentLength writes n into the comment-length field of the EOCD at off.
func PutCommentLength(data []byte, off int, n int) error {
	if n < 0 || n > MaxCommentLength {
		return fmt.Errorf("%w: %d bytes", ErrCommentTooLarge, n)
	}
	if !fits(off, EndOfCentralDirSize, len(data)) {
		return fmt.Errorf("%w: truncated end of central directory at offset %d", ErrMalformedArchive, off)
	}
	binary.LittleEndian.PutUint16(data[off+eocdCommentLenOff:], uint16(n)) //nolint:gosec // range checked above
	return nil
}

// FindEndOfCentralDir walks records from offset 0 and returns the offset of
// the end-of-central-directory record.
//
// Each record's declared lengths determine where the next signature starts,
// so bytes inside entry data are never mistaken for a footer.
func FindEndOfCentralDir(data []byte) (int, error) {
	off := 0
	for {
		sig, ok := Signature(data, off)
		if !ok {
			return 0, fmt.Errorf("%w: no end of central directory record found", ErrMalformedArchive)
		}

		var (
			size int
			err  error
		)
		switch sig {
		case LocalFileHeaderSignature:
			size, err = LocalRecordSize(data, off)
		case CentralDirHeaderSignature:
			size, err = CentralRecordSize(data, off)
		case EndOfCentralDirSignature:
			if !fits(off, EndOfCentralDirSize, len(data)) {
				return 0, fmt.Errorf("%w: truncated end of central directory at offset %d", ErrMalformedArchive, off)
			}
			return off, nil
		case Zip64EndOfCentralDirSig, Zip64EndOfCentralDirLocator:
			return 0, fmt.Errorf("%w: zip64 record at offset %d", ErrUnsupportedArchive, off)
		default:
			return 0, fmt.Errorf("%w: unrecognized record signature 0x%08X at offset %d", ErrMalformedArchive, sig, off)
		}
		if err != nil {
			return 0, err
		}
		off += size
	}
}
