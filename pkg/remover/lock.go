package remover

import (
	"time"

	"github.com/gofrs/flock"

	errUtils "github.com/andreatomassetti/ansible-variables/errors"
	log "github.com/andreatomassetti/ansible-variables/pkg/logger"
)

// fileLock is an advisory lock on a sibling <path>.lock file.
// The lock file is separate from the target so the lock survives the
// rename that replaces the target.
type fileLock struct {
	lockPath   string
	retries    int
	retryDelay time.Duration
}

func newFileLock(path string, retries int, retryDelay time.Duration) *fileLock {
	return &fileLock{
		lockPath:   path + ".lock",
		retries:    retries,
		retryDelay: retryDelay,
	}
}

// WithLock executes fn while holding an exclusive lock.
func (f *fileLock) WithLock(fn func() error) error {
	lock := flock.New(f.lockPath)

	var locked bool
	var err error
	for i := 0; i < f.retries; i++ {
		locked, err = lock.TryLock()
		if err != nil {
			return errUtils.Wrapf(errUtils.ErrFileLocked, "lock %s", f.lockPath).
				WithSentinel(errUtils.ErrRemoval).
				WithFile(f.lockPath).
				WithExplanation(err.Error()).
				Err()
		}
		if locked {
			break
		}
		time.Sleep(f.retryDelay)
	}

	if !locked {
		return errUtils.Wrapf(errUtils.ErrFileLocked, "%s", f.lockPath).
			WithSentinel(errUtils.ErrRemoval).
			WithHint("Make sure no other ansible-variables run is removing duplicates in the same files").
			Err()
	}

	defer func() {
		if err := lock.Unlock(); err != nil {
			log.Trace("Failed to unlock file", "err", err, "file", f.lockPath)
		}
	}()

	return fn()
}
