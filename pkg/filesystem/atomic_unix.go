//go:build !windows

package filesystem

import (
	"os"

	"github.com/google/renameio/v2"
)

// writeFileAtomicImpl uses renameio on Unix systems: temp file in the same
// directory, fsync, then rename over the target.
func writeFileAtomicImpl(filename string, data []byte, perm os.FileMode) error {
	return renameio.WriteFile(filename, data, perm, renameio.WithExistingPermissions())
}
