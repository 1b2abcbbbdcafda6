package http_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	zipcore "github.com/meigma/zipsig/core"
	ziphttp "github.com/meigma/zipsig/core/http"
	"github.com/meigma/zipsig/core/testutil"
)

func serveBytes(t *testing.T, data []byte, etag string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if etag != "" {
			w.Header().Set("ETag", etag)
		}
		nethttp.ServeContent(w, r, "archive.zip", time.Time{}, bytes.NewReader(data))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestSource_ReadAt(t *testing.T) {
	t.Parallel()

	data := []byte("hello world")
	server := serveBytes(t, data, "")

	src, err := ziphttp.NewSource(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("NewSource() error = %v", err)
	}
	if src.Size() != int64(len(data)) {
		t.Fatalf("Size() = %d, want %d", src.Size(), len(data))
	}

	tests := []struct {
		name    string
		bufSize int
		offset  int64
		wantN   int
		wantErr error
		want    string
	}{
		{
			name:    "read from middle",
			bufSize: 5,
			offset:  6,
			wantN:   5,
			want:    "world",
		},
		{
			name:    "read past end returns EOF",
			bufSize: 10,
			offset:  int64(len(data) - 3),
			wantN:   3,
			wantErr: io.EOF,
			want:    "rld",
		},
		{
			name:    "offset beyond size",
			bufSize: 4,
			offset:  100,
			wantN:   0,
			wantErr: io.EOF,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			buf := make([]byte, tt.bufSize)
			n, err := src.ReadAt(buf, tt.offset)
			if err != tt.wantErr { //nolint:errorlint // exact sentinel expected
				t.Fatalf("ReadAt() error = %v, want %v", err, tt.wantErr)
			}
			if n != tt.wantN {
				t.Fatalf("ReadAt() n = %d, want %d", n, tt.wantN)
			}
			if got := string(buf[:n]); got != tt.want {
				t.Fatalf("ReadAt() got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewSource_RangeUnsupported(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, _ *nethttp.Request) {
		_, _ = w.Write([]byte("range unsupported"))
	}))
	t.Cleanup(server.Close)

	_, err := ziphttp.NewSource(context.Background(), server.URL)
	if !errors.Is(err, ziphttp.ErrRangeUnsupported) {
		t.Fatalf("NewSource() error = %v, want %v", err, ziphttp.ErrRangeUnsupported)
	}
}

func TestNewSource_NotFound(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(nethttp.NotFoundHandler())
	t.Cleanup(server.Close)

	if _, err := ziphttp.NewSource(context.Background(), server.URL); err == nil {
		t.Fatal("expected error")
	}
}

func TestSource_SendsIfMatchAndHeaders(t *testing.T) {
	t.Parallel()

	data := []byte("hello world")
	etag := `"v1"`
	var ifMatch, auth atomic.Int32

	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.Header.Get("If-Match") == etag {
			ifMatch.Add(1)
		}
		if r.Header.Get("Authorization") == "Bearer token" {
			auth.Add(1)
		}
		w.Header().Set("ETag", etag)
		nethttp.ServeContent(w, r, "data", time.Time{}, bytes.NewReader(data))
	}))
	t.Cleanup(server.Close)

	src, err := ziphttp.NewSource(context.Background(), server.URL,
		ziphttp.WithHeader("Authorization", "Bearer token"),
		ziphttp.WithClient(server.Client()),
	)
	if err != nil {
		t.Fatalf("NewSource() error = %v", err)
	}
	if want := "url:" + server.URL + `|etag:"v1"`; src.SourceID() != want {
		t.Fatalf("SourceID() = %q, want %q", src.SourceID(), want)
	}

	buf := make([]byte, 5)
	if _, err := src.ReadAt(buf, 0); err != nil {
		t.Fatalf("ReadAt() error = %v", err)
	}
	if ifMatch.Load() != 1 {
		t.Fatalf("If-Match sent %d times, want 1", ifMatch.Load())
	}
	if auth.Load() != 2 {
		t.Fatalf("Authorization sent %d times, want 2", auth.Load())
	}
}

func TestSource_ReadArchive(t *testing.T) {
	t.Parallel()

	data := testutil.BuildArchive([]testutil.Entry{
		{Name: "remote.txt", Data: []byte("served over http")},
	}, "remote comment")
	server := serveBytes(t, data, `"archive"`)

	src, err := ziphttp.NewSource(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("NewSource() error = %v", err)
	}
	a, err := zipcore.Read(src)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	comment, err := a.Comment()
	if err != nil {
		t.Fatalf("Comment() error = %v", err)
	}
	if comment != "remote comment" {
		t.Fatalf("Comment() = %q, want %q", comment, "remote comment")
	}

	local, err := zipcore.New(data).DigestString()
	if err != nil {
		t.Fatalf("DigestString() error = %v", err)
	}
	remote, err := a.DigestString()
	if err != nil {
		t.Fatalf("DigestString() error = %v", err)
	}
	if local != remote {
		t.Fatalf("remote digest %s, want %s", remote, local)
	}
}
