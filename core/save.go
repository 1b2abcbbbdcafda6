package zipsig

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/meigma/zipsig/core/internal/write"
)

// defaultFileMode is used for files that do not exist yet.
const defaultFileMode fs.FileMode = 0o644

// Save writes the archive to path.
//
// Uses atomic writes (temp file + rename) so a failed save leaves the previous
// file intact. Parent directories are created as needed and the permissions of
// an existing file are kept.
//
// When path is the file the archive was loaded from and that file was
// modified in the meantime, Save returns ErrArchiveChanged and writes nothing.
func (a *Archive) Save(path string) error {
	if err := a.origin.CheckUnchanged(path); err != nil {
		return fmt.Errorf("save archive: %w", err)
	}
	if err := WriteFileAtomic(path, a.data); err != nil {
		return fmt.Errorf("save archive: %w", err)
	}
	if a.origin.Info() != nil {
		if origin, err := write.Stat(path); err == nil {
			a.origin = origin
		}
	}
	return nil
}

// WriteFileAtomic writes data to a temp file in the target directory, then
// renames it over target.
func WriteFileAtomic(target string, data []byte) error {
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	mode := defaultFileMode
	if info, err := os.Stat(target); err == nil {
		mode = info.Mode().Perm()
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".zipsig-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Chmod(mode); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, target); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}
