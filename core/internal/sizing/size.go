// Package sizing provides checked size conversions for loading archives into memory.
package sizing

import (
	"io"
	"math"
)

// ToInt converts an int64 byte count to int, returning overflowErr if it is
// negative or does not fit.
func ToInt(size int64, overflowErr error) (int, error) {
	if size < 0 || uint64(size) > uint64(math.MaxInt) {
		return 0, overflowErr
	}
	return int(size), nil
}

// CheckLimit returns overflowErr when size exceeds maxSize. A maxSize of 0
// disables the limit.
func CheckLimit(size, maxSize int64, overflowErr error) error {
	if size < 0 {
		return overflowErr
	}
	if maxSize > 0 && size > maxSize {
		return overflowErr
	}
	return nil
}

// ReadAllWithLimit reads all of r, returning overflowErr if more than maxSize
// bytes are available. A maxSize of 0 disables the limit.
func ReadAllWithLimit(r io.Reader, maxSize int64, overflowErr error) ([]byte, error) {
	if maxSize <= 0 {
		return io.ReadAll(r)
	}
	if maxSize > math.MaxInt64-1 {
		return nil, overflowErr
	}
	lr := &io.LimitedReader{R: r, N: maxSize + 1}
	data, err := io.ReadAll(lr)
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxSize {
		return nil, overflowErr
	}
	return data, nil
}
