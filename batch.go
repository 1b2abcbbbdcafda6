package zipsig

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"
)

// DigestAll computes digests for paths concurrently.
//
// Results are in input order. A failed path leaves a zero DigestInfo, with
// Path set, in its slot and contributes a *PathError to the returned error.
// A path listed more than once is processed once.
func (c *Client) DigestAll(ctx context.Context, paths []string, opts ...DigestOption) ([]DigestInfo, error) {
	return forEach(ctx, c, "digest", paths, func(ctx context.Context, path string) (DigestInfo, error) {
		info, err := c.Digest(ctx, path, opts...)
		info.Path = path
		return info, err
	})
}

// VerifyAll verifies the signatures of paths concurrently, with the same
// ordering and error reporting as DigestAll.
func (c *Client) VerifyAll(ctx context.Context, paths []string) ([]Signature, error) {
	return forEach(ctx, c, "verify", paths, func(ctx context.Context, path string) (Signature, error) {
		sig, err := c.Verify(ctx, path)
		sig.Path = path
		return sig, err
	})
}

// forEach runs fn for every distinct path with at most c.concurrency calls in
// flight. A failing path does not cancel the others.
func forEach[T any](ctx context.Context, c *Client, op string, paths []string, fn func(context.Context, string) (T, error)) ([]T, error) {
	index := make(map[string]int, len(paths))
	var unique []string
	for _, p := range paths {
		if _, ok := index[p]; ok {
			continue
		}
		index[p] = len(unique)
		unique = append(unique, p)
	}

	values := make([]T, len(unique))
	errs := make([]error, len(unique))

	var g errgroup.Group
	g.SetLimit(c.concurrency)
	for i, p := range unique {
		g.Go(func() error {
			v, err := fn(ctx, p)
			values[i] = v
			if err != nil {
				errs[i] = &PathError{Op: op, Path: p, Err: err}
			}
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // workers record errors per path

	out := make([]T, len(paths))
	for i, p := range paths {
		out[i] = values[index[p]]
	}
	return out, errors.Join(errs...)
}
