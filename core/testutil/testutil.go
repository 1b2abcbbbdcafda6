// Package testutil builds ZIP archives and byte sources for tests.
package testutil

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"hash/crc32"
	"io"
	"testing"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"
)

// Entry describes one file in a test archive.
type Entry struct {
	Name    string
	Data    []byte
	Extra   []byte
	Comment string
}

// Record signatures written by BuildArchive.
const (
	localSig   = 0x04034b50
	centralSig = 0x02014b50
	eocdSig    = 0x06054b50
)

// BuildArchive hand-assembles a stored (uncompressed) ZIP archive with the
// given entries and archive comment. Sizes are always written in the local
// headers, so the record chain can be walked from offset 0.
func BuildArchive(entries []Entry, comment string) []byte {
	var (
		buf     bytes.Buffer
		offsets = make([]uint32, len(entries))
	)
	le := binary.LittleEndian

	for i, e := range entries {
		offsets[i] = uint32(buf.Len()) //nolint:gosec // test archives are small
		crc := crc32.ChecksumIEEE(e.Data)
		hdr := make([]byte, 30)
		le.PutUint32(hdr[0:], localSig)
		le.PutUint16(hdr[4:], 20) // version needed
		le.PutUint32(hdr[14:], crc)
		le.PutUint32(hdr[18:], uint32(len(e.Data))) //nolint:gosec // test archives are small
		le.PutUint32(hdr[22:], uint32(len(e.Data))) //nolint:gosec // test archives are small
		le.PutUint16(hdr[26:], uint16(len(e.Name))) //nolint:gosec // test archives are small
		le.PutUint16(hdr[28:], uint16(len(e.Extra)))
		buf.Write(hdr)
		buf.WriteString(e.Name)
		buf.Write(e.Extra)
		buf.Write(e.Data)
	}

	cdStart := buf.Len()
	for i, e := range entries {
		hdr := make([]byte, 46)
		le.PutUint32(hdr[0:], centralSig)
		le.PutUint16(hdr[4:], 20) // version made by
		le.PutUint16(hdr[6:], 20) // version needed
		le.PutUint32(hdr[16:], crc32.ChecksumIEEE(e.Data))
		le.PutUint32(hdr[20:], uint32(len(e.Data))) //nolint:gosec // test archives are small
		le.PutUint32(hdr[24:], uint32(len(e.Data))) //nolint:gosec // test archives are small
		le.PutUint16(hdr[28:], uint16(len(e.Name))) //nolint:gosec // test archives are small
		le.PutUint16(hdr[30:], uint16(len(e.Extra)))
		le.PutUint16(hdr[32:], uint16(len(e.Comment)))
		le.PutUint32(hdr[42:], offsets[i])
		buf.Write(hdr)
		buf.WriteString(e.Name)
		buf.Write(e.Extra)
		buf.WriteString(e.Comment)
	}
	cdSize := buf.Len() - cdStart

	eocd := make([]byte, 22)
	le.PutUint32(eocd[0:], eocdSig)
	le.PutUint16(eocd[8:], uint16(len(entries)))  //nolint:gosec // test archives are small
	le.PutUint16(eocd[10:], uint16(len(entries))) //nolint:gosec // test archives are small
	le.PutUint32(eocd[12:], uint32(cdSize))       //nolint:gosec // test archives are small
	le.PutUint32(eocd[16:], uint32(cdStart))      //nolint:gosec // test archives are small
	le.PutUint16(eocd[20:], uint16(len(comment))) //nolint:gosec // test archives are small
	buf.Write(eocd)
	buf.WriteString(comment)
	return buf.Bytes()
}

// FooterOffset returns the EOCD offset of an archive produced by BuildArchive
// with the given comment.
func FooterOffset(data []byte, comment string) int {
	return len(data) - 22 - len(comment)
}

// ZipArchive writes a deflate-compressed archive with the zip package.
//
// Entries are written raw with their sizes in the local headers (no data
// descriptors), the layout produced by most archivers.
func ZipArchive(tb testing.TB, entries []Entry, comment string) []byte {
	tb.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		compressed, err := deflate(e.Data)
		if err != nil {
			tb.Fatalf("deflate %s: %v", e.Name, err)
		}
		w, err := zw.CreateRaw(&zip.FileHeader{
			Name:               e.Name,
			Comment:            e.Comment,
			Extra:              e.Extra,
			Method:             zip.Deflate,
			CRC32:              crc32.ChecksumIEEE(e.Data),
			CompressedSize64:   uint64(len(compressed)),
			UncompressedSize64: uint64(len(e.Data)),
		})
		if err != nil {
			tb.Fatalf("create %s: %v", e.Name, err)
		}
		if _, err := w.Write(compressed); err != nil {
			tb.Fatalf("write %s: %v", e.Name, err)
		}
	}
	if err := zw.SetComment(comment); err != nil {
		tb.Fatalf("set comment: %v", err)
	}
	if err := zw.Close(); err != nil {
		tb.Fatalf("close zip writer: %v", err)
	}
	return buf.Bytes()
}

// ReadZip opens data with the zip package and returns the archive comment
// and entry contents keyed by name.
func ReadZip(tb testing.TB, data []byte) (string, map[string][]byte) {
	tb.Helper()

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		tb.Fatalf("open zip: %v", err)
	}
	files := make(map[string][]byte, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			tb.Fatalf("open %s: %v", f.Name, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			tb.Fatalf("read %s: %v", f.Name, err)
		}
		files[f.Name] = content
	}
	return zr.Comment, files
}

func deflate(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	fw, err := flate.NewWriter(&buf, flate.BestCompression)
	if err != nil {
		return nil, err
	}
	if _, err := fw.Write(data); err != nil {
		return nil, err
	}
	if err := fw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MockByteSource implements a simple in-memory byte source for tests.
type MockByteSource struct {
	data     []byte
	sourceID string
	err      error
}

// NewMockByteSource returns a byte source backed by the provided data.
func NewMockByteSource(data []byte) *MockByteSource {
	sum := sha256.Sum256(data)
	return &MockByteSource{
		data:     data,
		sourceID: "mock:" + hex.EncodeToString(sum[:]),
	}
}

// NewFailingByteSource returns a byte source that reports size but fails every read.
func NewFailingByteSource(size int) *MockByteSource {
	return &MockByteSource{
		data:     make([]byte, size),
		sourceID: "mock:failing",
		err:      errors.New("mock read failure"),
	}
}

// ReadAt implements io.ReaderAt semantics over the backing slice.
func (m *MockByteSource) ReadAt(p []byte, off int64) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	if off >= int64(len(m.data)) {
		return 0, io.EOF
	}
	n := copy(p, m.data[off:])
	if off+int64(n) >= int64(len(m.data)) {
		return n, io.EOF
	}
	return n, nil
}

// Size returns the total size of the backing data.
func (m *MockByteSource) Size() int64 {
	return int64(len(m.data))
}

// SourceID returns a stable identifier for the source data.
func (m *MockByteSource) SourceID() string {
	return m.sourceID
}
