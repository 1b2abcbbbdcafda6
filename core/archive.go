package zipsig

import (
	"fmt"
	"io"
	"os"

	"github.com/meigma/zipsig/core/internal/sizing"
	"github.com/meigma/zipsig/core/internal/write"
	"github.com/meigma/zipsig/core/internal/zipfmt"
)

// EndOfCentralDir holds the fixed fields of the end-of-central-directory record.
type EndOfCentralDir = zipfmt.EndOfCentralDir

// Record layout constants re-exported from internal/zipfmt.
const (
	// EndOfCentralDirSize is the size of the fixed EOCD header.
	EndOfCentralDirSize = zipfmt.EndOfCentralDirSize

	// MaxCommentLength is the largest comment, in bytes, an archive can hold.
	MaxCommentLength = zipfmt.MaxCommentLength
)

// DefaultMaxSize is the default limit applied by Load and Read.
const DefaultMaxSize int64 = 1 << 30 // 1 GiB

// ByteSource provides random access to archive bytes.
//
// Implementations exist for in-memory data and HTTP range requests (see the
// http subpackage). SourceID must return a stable identifier for the content.
type ByteSource interface {
	io.ReaderAt
	Size() int64
	SourceID() string
}

// Archive is an in-memory ZIP archive whose trailing comment can be edited.
//
// Archive owns its buffer. It is not safe for concurrent use; offsets are
// recomputed from the record chain on every call, so edits may be sequenced
// but not interleaved.
type Archive struct {
	data []byte

	// origin identifies the file the archive was loaded from, if any.
	origin write.Snapshot
}

// New returns an Archive that takes ownership of data.
// The caller must not modify data afterwards.
func New(data []byte) *Archive {
	return &Archive{data: data}
}

// Load reads the archive at path into memory.
//
// Save refuses to overwrite path if the file changes after Load; see
// ErrArchiveChanged.
//
// Files larger than the configured maximum (DefaultMaxSize unless overridden
// with WithMaxSize) fail with ErrSizeOverflow. I/O errors are returned wrapped,
// so errors.Is(err, fs.ErrNotExist) still works.
func Load(path string, opts ...Option) (*Archive, error) {
	cfg := newLoadConfig(opts)

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	defer f.Close()

	origin, err := write.Take(f, path)
	if err != nil {
		return nil, fmt.Errorf("stat archive: %w", err)
	}
	size := origin.Info().Size()
	if err := sizing.CheckLimit(size, cfg.maxSize, ErrSizeOverflow); err != nil {
		return nil, fmt.Errorf("%w: %s is %d bytes", err, path, size)
	}

	data, err := sizing.ReadAllWithLimit(f, cfg.maxSize, ErrSizeOverflow)
	if err != nil {
		return nil, fmt.Errorf("read archive: %w", err)
	}
	return &Archive{data: data, origin: origin}, nil
}

// Read copies the full content of src into a new Archive using a single ReadAt.
func Read(src ByteSource, opts ...Option) (*Archive, error) {
	cfg := newLoadConfig(opts)

	size := src.Size()
	if err := sizing.CheckLimit(size, cfg.maxSize, ErrSizeOverflow); err != nil {
		return nil, fmt.Errorf("%w: %s is %d bytes", err, src.SourceID(), size)
	}
	n, err := sizing.ToInt(size, ErrSizeOverflow)
	if err != nil {
		return nil, err
	}

	data := make([]byte, n)
	read, err := src.ReadAt(data, 0)
	if read == n {
		// io.ReaderAt may return io.EOF alongside a full read.
		err = nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", src.SourceID(), err)
	}
	return New(data), nil
}

// Bytes returns the archive buffer. The slice is replaced, not modified, by
// SetComment, so a slice obtained earlier keeps the old content.
func (a *Archive) Bytes() []byte {
	return a.data
}

// Len returns the archive size in bytes.
func (a *Archive) Len() int {
	return len(a.data)
}

// FooterOffset returns the byte offset of the end-of-central-directory record.
func (a *Archive) FooterOffset() (int, error) {
	return zipfmt.FindEndOfCentralDir(a.data)
}

// Footer locates and decodes the end-of-central-directory record.
// It returns the decoded fields and the record's offset.
func (a *Archive) Footer() (EndOfCentralDir, int, error) {
	off, err := zipfmt.FindEndOfCentralDir(a.data)
	if err != nil {
		return EndOfCentralDir{}, 0, err
	}
	eocd, err := zipfmt.ReadEndOfCentralDir(a.data, off)
	if err != nil {
		return EndOfCentralDir{}, 0, err
	}
	return eocd, off, nil
}

// Comment returns the archive comment.
func (a *Archive) Comment() (string, error) {
	eocd, off, err := a.Footer()
	if err != nil {
		return "", err
	}
	return a.commentAt(off, eocd.CommentLength)
}

// commentAt returns the comment of the EOCD at off, checking that the declared
// length stays within the buffer.
func (a *Archive) commentAt(off int, length uint16) (string, error) {
	start := off + zipfmt.EndOfCentralDirSize
	end := start + int(length)
	if end > len(a.data) {
		return "", fmt.Errorf("%w: comment length %d overruns archive", ErrMalformedArchive, length)
	}
	return string(a.data[start:end]), nil
}

// SetComment replaces the archive comment with text and returns the previous
// comment.
//
// Every byte before the comment except the comment-length field is preserved.
// The archive is left untouched when SetComment fails.
func (a *Archive) SetComment(text string) (string, error) {
	eocd, off, err := a.Footer()
	if err != nil {
		return "", err
	}
	prev, err := a.commentAt(off, eocd.CommentLength)
	if err != nil {
		return "", err
	}
	if len(text) > zipfmt.MaxCommentLength {
		return "", fmt.Errorf("%w: %d bytes exceeds %d", ErrCommentTooLarge, len(text), zipfmt.MaxCommentLength)
	}

	head := off + zipfmt.EndOfCentralDirSize
	buf := make([]byte, head+len(text))
	copy(buf, a.data[:head])
	if err := zipfmt.PutCommentLength(buf, off, len(text)); err != nil {
		return "", err
	}
	copy(buf[head:], text)

	a.data = buf
	return prev, nil
}
