// Package write guards in-place rewrites of files read earlier.
package write

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// ErrFileChanged is returned when a file was modified after it was read.
var ErrFileChanged = errors.New("zipsig: file changed since it was read")

// Snapshot records the identity of a file at read time.
type Snapshot struct {
	path string
	info fs.FileInfo
}

// Take stats f, which must be open on path.
func Take(f *os.File, path string) (Snapshot, error) {
	info, err := f.Stat()
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{path: path, info: info}, nil
}

// Stat records the identity of the file at path.
func Stat(path string) (Snapshot, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{path: path, info: info}, nil
}

// Info returns the recorded file info, or nil for a zero Snapshot.
func (s Snapshot) Info() fs.FileInfo {
	return s.info
}

// CheckUnchanged verifies that target, if it is the snapshotted file, still
// has the size, modification time and permissions recorded at read time.
// Writes to other paths, and zero snapshots, always pass. A target that no
// longer exists passes too; there is nothing left to overwrite.
func (s Snapshot) CheckUnchanged(target string) error {
	if s.info == nil || target != s.path {
		return nil
	}
	after, err := os.Stat(target)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if !os.SameFile(s.info, after) ||
		after.Size() != s.info.Size() ||
		!after.ModTime().Equal(s.info.ModTime()) ||
		after.Mode().Perm() != s.info.Mode().Perm() {
		return fmt.Errorf("%w: %s", ErrFileChanged, target)
	}
	return nil
}
