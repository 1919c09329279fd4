//go:build windows

package filesystem

import (
	"os"
	"path/filepath"
)

// writeFileAtomicImpl writes a sibling temp file and renames it over the target.
// renameio does not support Windows.
func writeFileAtomicImpl(filename string, data []byte, perm os.FileMode) error {
	if info, err := os.Stat(filename); err == nil {
		perm = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(filename), "."+filepath.Base(filename)+".tmp*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return err
	}
	return os.Rename(tmpName, filename)
}
