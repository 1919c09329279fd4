package filesystem

import "os"

// WriteFileAtomic writes data to filename so that readers see either the old
// or the new content, never a truncated file. The mode of an existing file is
// kept; perm applies to new files only.
func WriteFileAtomic(filename string, data []byte, perm os.FileMode) error {
	return writeFileAtomicImpl(filename, data, perm)
}
