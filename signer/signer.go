package signer

import (
	"context"
	"errors"
)

// ErrSignFailed is returned when an external signing command fails.
var ErrSignFailed = errors.New("signer: signing failed")

// ErrVerifyFailed is returned when an external verification command rejects a catalog.
var ErrVerifyFailed = errors.New("signer: verification failed")

// Signer signs a catalog file in place, appending a signature block.
type Signer interface {
	SignFile(ctx context.Context, path string) error
}

// Verifier checks the signature block of a catalog.
//
// name is the catalog's file name (for example "pkg.zip.sig.ps1"); some
// tools pick the signature format from the extension.
type Verifier interface {
	VerifyCatalog(ctx context.Context, name string, catalog []byte) error
}

// SignerFunc adapts a function to the Signer interface.
type SignerFunc func(ctx context.Context, path string) error

// SignFile calls f(ctx, path).
func (f SignerFunc) SignFile(ctx context.Context, path string) error {
	return f(ctx, path)
}

// VerifierFunc adapts a function to the Verifier interface.
type VerifierFunc func(ctx context.Context, name string, catalog []byte) error

// VerifyCatalog calls f(ctx, name, catalog).
func (f VerifierFunc) VerifyCatalog(ctx context.Context, name string, catalog []byte) error {
	return f(ctx, name, catalog)
}
