// Package remover deletes a variable's definition block from a vars file.
package remover

import (
	"os"
	"strings"
	"time"

	errUtils "github.com/andreatomassetti/ansible-variables/errors"
	"github.com/andreatomassetti/ansible-variables/pkg/filesystem"
	log "github.com/andreatomassetti/ansible-variables/pkg/logger"
	"github.com/andreatomassetti/ansible-variables/pkg/textscan"
)

const (
	defaultLockRetries    = 50
	defaultLockRetryDelay = 10 * time.Millisecond
	defaultFileMode       = 0o644
)

// Remover rewrites vars files without their first top-level block for a variable.
type Remover struct {
	fs             filesystem.FileSystem
	lock           bool
	lockRetries    int
	lockRetryDelay time.Duration
}

// Option configures a Remover.
type Option func(*Remover)

// WithFileSystem replaces the host file system.
func WithFileSystem(fs filesystem.FileSystem) Option {
	return func(r *Remover) {
		r.fs = fs
	}
}

// WithLock enables or disables the advisory <file>.lock lock.
func WithLock(enabled bool) Option {
	return func(r *Remover) {
		r.lock = enabled
	}
}

// WithLockRetries sets how many times lock acquisition is attempted.
func WithLockRetries(retries int) Option {
	return func(r *Remover) {
		if retries > 0 {
			r.lockRetries = retries
		}
	}
}

// New creates a Remover. Locking is disabled unless WithLock(true) is given.
func New(opts ...Option) *Remover {
	r := &Remover{
		fs:             filesystem.NewOSFileSystem(),
		lockRetries:    defaultLockRetries,
		lockRetryDelay: defaultLockRetryDelay,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Remove deletes the first top-level block defining name from the file at path.
// The file is always rewritten, even when no block matches; the rewrite
// replaces the whole file or leaves it untouched.
func (r *Remover) Remove(path, name string) error {
	if !r.lock {
		return r.rewrite(path, name)
	}

	// The lock file is left in place. Deleting it after unlocking would let a
	// run waiting on the old inode and a run creating a new file both hold it.
	lock := newFileLock(path, r.lockRetries, r.lockRetryDelay)
	return lock.WithLock(func() error { return r.rewrite(path, name) })
}

func (r *Remover) rewrite(path, name string) error {
	data, err := r.fs.ReadFile(path)
	if err != nil {
		return errUtils.Wrapf(errUtils.ErrRemoval, "read %s", path).
			WithFile(path).
			WithVariable(name).
			WithExplanation(err.Error()).
			Err()
	}

	perm := os.FileMode(defaultFileMode)
	if info, err := r.fs.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}

	kept, removed := RemoveBlock(textscan.SplitLines(data), name)

	if err := r.fs.WriteFileAtomic(path, []byte(strings.Join(kept, "")), perm); err != nil {
		return errUtils.Wrapf(errUtils.ErrRemoval, "write %s", path).
			WithFile(path).
			WithVariable(name).
			WithExplanation(err.Error()).
			Err()
	}

	if removed > 0 {
		log.Debug("Removed variable block", "file", path, "variable", name, "lines", removed)
	} else {
		log.Debug("Variable block not found, file rewritten unchanged", "file", path, "variable", name)
	}
	return nil
}

// scanState is the state of the block removal scan.
type scanState int

const (
	stateOutside scanState = iota
	stateInsideBlock
)

// RemoveBlock drops the first block defining name from lines and returns the
// kept lines and the number of dropped lines. Only the first matching block
// is dropped; a later block for the same key is kept.
func RemoveBlock(lines []string, name string) ([]string, int) {
	kept := make([]string, 0, len(lines))
	state := stateOutside
	done := false
	removed := 0

	for _, line := range lines {
		if state == stateInsideBlock {
			if textscan.IsContinuation(line) {
				removed++
				continue
			}
			// Re-evaluated below as if freshly seen outside a block.
			state = stateOutside
			done = true
		}

		if !done && textscan.IsDefinitionStart(line, name) {
			state = stateInsideBlock
			removed++
			continue
		}

		kept = append(kept, line)
	}

	return kept, removed
}
