package zipfmt

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// local builds a stored local file record.
func local(name string, data []byte) []byte {
	hdr := make([]byte, LocalFileHeaderSize)
	binary.LittleEndian.PutUint32(hdr[0:], LocalFileHeaderSignature)
	binary.LittleEndian.PutUint32(hdr[localCompressedSizeOff:], uint32(len(data)))
	binary.LittleEndian.PutUint16(hdr[localFileNameLenOff:], uint16(len(name)))
	hdr = append(hdr, name...)
	return append(hdr, data...)
}

// central builds a central directory record.
func central(name, comment string) []byte {
	hdr := make([]byte, CentralDirHeaderSize)
	binary.LittleEndian.PutUint32(hdr[0:], CentralDirHeaderSignature)
	binary.LittleEndian.PutUint16(hdr[centralFileNameLenOff:], uint16(len(name)))
	binary.LittleEndian.PutUint16(hdr[centralCommentLenOff:], uint16(len(comment)))
	hdr = append(hdr, name...)
	return append(hdr, comment...)
}

// eocd builds an EOCD record followed by comment.
func eocd(comment string) []byte {
	hdr := make([]byte, EndOfCentralDirSize)
	binary.LittleEndian.PutUint32(hdr[0:], EndOfCentralDirSignature)
	binary.LittleEndian.PutUint16(hdr[eocdCommentLenOff:], uint16(len(comment)))
	return append(hdr, comment...)
}

func concat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func TestFindEndOfCentralDir(t *testing.T) {
	t.Parallel()

	rec := local("a.txt", []byte("hello"))
	cd := central("a.txt", "")

	tests := []struct {
		name string
		data []byte
		want int
	}{
		{
			name: "empty archive",
			data: eocd(""),
			want: 0,
		},
		{
			name: "one entry",
			data: concat(rec, cd, eocd("")),
			want: len(rec) + len(cd),
		},
		{
			name: "archive comment",
			data: concat(rec, cd, eocd("signed")),
			want: len(rec) + len(cd),
		},
		{
			name: "entry comment in central directory",
			data: concat(rec, central("a.txt", "note"), eocd("")),
			want: len(rec) + CentralDirHeaderSize + len("a.txt") + len("note"),
		},
		{
			name: "footer signature inside entry data is skipped",
			data: concat(local("fake", eocd("")), central("fake", ""), eocd("")),
			want: LocalFileHeaderSize + len("fake") + EndOfCentralDirSize + CentralDirHeaderSize + len("fake"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := FindEndOfCentralDir(tt.data)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFindEndOfCentralDir_Rejects(t *testing.T) {
	t.Parallel()

	valid := concat(local("a.txt", []byte("hello")), central("a.txt", ""), eocd(""))
	zip64Local := local("big", nil)
	binary.LittleEndian.PutUint32(zip64Local[localCompressedSizeOff:], zip64Sentinel)
	zip64End := make([]byte, 56)
	binary.LittleEndian.PutUint32(zip64End, Zip64EndOfCentralDirSig)

	tests := []struct {
		name        string
		data        []byte
		unsupported bool
	}{
		{name: "empty buffer", data: nil},
		{name: "fewer than four bytes", data: []byte{0x50, 0x4b, 0x05}},
		{name: "unknown signature", data: []byte("not a zip archive at all")},
		{name: "records without footer", data: concat(local("a.txt", []byte("hello")), central("a.txt", ""))},
		{name: "truncated local header", data: valid[:LocalFileHeaderSize-1]},
		{name: "truncated local data", data: valid[:LocalFileHeaderSize+len("a.txt")+2]},
		{name: "truncated central header", data: valid[:len(valid)-EndOfCentralDirSize-10]},
		{name: "truncated footer", data: valid[:len(valid)-1]},
		{name: "zip64 sizes", data: concat(zip64Local, eocd("")), unsupported: true},
		{name: "zip64 end record", data: concat(zip64End, eocd("")), unsupported: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := FindEndOfCentralDir(tt.data)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedArchive)
			if tt.unsupported {
				assert.ErrorIs(t, err, ErrUnsupportedArchive)
			}
		})
	}
}

func TestFindEndOfCentralDir_EveryTruncation(t *testing.T) {
	t.Parallel()

	valid := concat(local("a.txt", []byte("hello")), local("b.txt", []byte("world!")),
		central("a.txt", ""), central("b.txt", ""), eocd(""))
	for n := range len(valid) {
		_, err := FindEndOfCentralDir(valid[:n])
		require.ErrorIs(t, err, ErrMalformedArchive, "truncated to %d bytes", n)
	}
	_, err := FindEndOfCentralDir(valid)
	require.NoError(t, err)
}

func TestReadEndOfCentralDir(t *testing.T) {
	t.Parallel()

	data := eocd("hi")
	binary.LittleEndian.PutUint16(data[eocdDiskEntriesOff:], 3)
	binary.LittleEndian.PutUint16(data[eocdTotalEntriesOff:], 3)
	binary.LittleEndian.PutUint32(data[eocdCentralDirSizeOff:], 150)
	binary.LittleEndian.PutUint32(data[eocdCentralDirStartOff:], 1024)

	got, err := ReadEndOfCentralDir(data, 0)
	require.NoError(t, err)
	assert.Equal(t, EndOfCentralDir{
		DiskEntries:      3,
		TotalEntries:     3,
		CentralDirSize:   150,
		CentralDirOffset: 1024,
		CommentLength:    2,
	}, got)

	_, err = ReadEndOfCentralDir(data[:EndOfCentralDirSize-1], 0)
	assert.ErrorIs(t, err, ErrMalformedArchive)
}

func TestPutCommentLength(t *testing.T) {
	t.Parallel()

	data := eocd("")
	require.NoError(t, PutCommentLength(data, 0, MaxCommentLength))
	assert.Equal(t, uint16(MaxCommentLength), binary.LittleEndian.Uint16(data[CommentLengthOffset:]))

	assert.ErrorIs(t, PutCommentLength(data, 0, MaxCommentLength+1), ErrCommentTooLarge)
	assert.ErrorIs(t, PutCommentLength(data, 1, 0), ErrMalformedArchive)
}
