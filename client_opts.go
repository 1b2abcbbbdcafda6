package zipsig

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/meigma/zipsig/signer"
)

// Option configures a Client.
type Option func(*Client) error

// Client defaults.
const (
	// DefaultSidecarSuffix is appended to an archive path to name its catalog file.
	DefaultSidecarSuffix = ".sig.ps1"

	// DefaultConcurrency bounds how many paths batch operations process at once.
	DefaultConcurrency = 4
)

// WithLogger sets a logger for the client.
// If nil, a discard logger is used (default behavior).
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) error {
		c.logger = logger
		return nil
	}
}

// WithSigner sets the signer used by Sign.
func WithSigner(s signer.Signer) Option {
	return func(c *Client) error {
		if s == nil {
			return errors.New("signer must not be nil")
		}
		c.signer = s
		return nil
	}
}

// WithVerifier sets a verifier that Verify runs on the rebuilt catalog.
func WithVerifier(v signer.Verifier) Option {
	return func(c *Client) error {
		if v == nil {
			return errors.New("verifier must not be nil")
		}
		c.verifier = v
		return nil
	}
}

// WithSidecarSuffix sets the suffix of catalog files (default ".sig.ps1").
func WithSidecarSuffix(suffix string) Option {
	return func(c *Client) error {
		if suffix == "" {
			return errors.New("sidecar suffix must not be empty")
		}
		c.sidecarSuffix = suffix
		return nil
	}
}

// WithMaxArchiveSize limits the size of archives read into memory.
// Use 0 to disable the limit.
func WithMaxArchiveSize(limit int64) Option {
	return func(c *Client) error {
		if limit < 0 {
			return errors.New("max archive size must be non-negative")
		}
		c.maxSize = limit
		return nil
	}
}

// WithConcurrency sets how many paths DigestAll and VerifyAll process at once.
func WithConcurrency(n int) Option {
	return func(c *Client) error {
		if n < 1 {
			return errors.New("concurrency must be at least 1")
		}
		c.concurrency = n
		return nil
	}
}

// WithHTTPClient sets the HTTP client used for http and https paths.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) error {
		c.httpClient = client
		return nil
	}
}
