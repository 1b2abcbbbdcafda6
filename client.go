package zipsig

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	zipcore "github.com/meigma/zipsig/core"
	ziphttp "github.com/meigma/zipsig/core/http"
	"github.com/meigma/zipsig/signer"
)

// Client runs digest, signing and verification operations on archive files.
//
// A Client is safe for concurrent use on distinct paths. Operations on the
// same path must be serialized by the caller.
type Client struct {
	logger        *slog.Logger
	signer        signer.Signer
	verifier      signer.Verifier
	sidecarSuffix string
	maxSize       int64
	concurrency   int
	httpClient    *http.Client
}

// NewClient creates a client with the given options.
//
// Without [WithSigner], Sign returns [ErrNoSigner]. Without [WithVerifier],
// Verify only compares digests.
func NewClient(opts ...Option) (*Client, error) {
	c := &Client{
		sidecarSuffix: DefaultSidecarSuffix,
		maxSize:       zipcore.DefaultMaxSize,
		concurrency:   DefaultConcurrency,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// log returns the logger, falling back to a discard logger if nil.
func (c *Client) log() *slog.Logger {
	if c.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.logger
}

// SidecarPath returns the catalog path used for the archive at path.
func (c *Client) SidecarPath(path string) string {
	return path + c.sidecarSuffix
}

// IsRemote reports whether path is an http or https URL.
func IsRemote(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// load reads the archive at path, from disk or over HTTP.
func (c *Client) load(ctx context.Context, path string) (*zipcore.Archive, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !IsRemote(path) {
		return zipcore.Load(path, zipcore.WithMaxSize(c.maxSize))
	}

	src, err := c.remoteSource(ctx, path)
	if err != nil {
		return nil, err
	}
	c.log().Debug("reading remote archive",
		slog.String("url", path),
		slog.Int64("size", src.Size()))
	return zipcore.Read(src, zipcore.WithMaxSize(c.maxSize))
}

func (c *Client) remoteSource(ctx context.Context, url string) (*ziphttp.Source, error) {
	var opts []ziphttp.Option
	if c.httpClient != nil {
		opts = append(opts, ziphttp.WithClient(c.httpClient))
	}
	src, err := ziphttp.NewSource(ctx, url, opts...)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", url, err)
	}
	return src, nil
}

// localOnly rejects URLs for operations that write.
func localOnly(path string) error {
	if IsRemote(path) {
		return fmt.Errorf("%w: %s", ErrRemoteReadOnly, path)
	}
	return nil
}

// writeSidecar writes text to the catalog file for path.
func (c *Client) writeSidecar(path, text string) (string, error) {
	sidecar := c.SidecarPath(path)
	if err := zipcore.WriteFileAtomic(sidecar, []byte(text)); err != nil {
		return "", fmt.Errorf("write %s: %w", sidecar, err)
	}
	return sidecar, nil
}
