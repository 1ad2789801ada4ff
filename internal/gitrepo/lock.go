package gitrepo

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// DefaultLockTimeout bounds how long a run waits for another aimerge
// process to release the repository.
const DefaultLockTimeout = 5 * time.Second

// WithMergeLock holds an exclusive per-repository lock while fn runs, so
// two concurrent merge runs never interleave writes in one working tree.
func (r *Repo) WithMergeLock(timeout time.Duration, fn func() error) error {
	lockPath := filepath.Join(r.root, ".git", "aimerge.lock")
	fileLock := flock.New(lockPath)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	locked, err := fileLock.TryLockContext(ctx, 100*time.Millisecond)
	if err != nil {
		return fmt.Errorf("acquiring merge lock on %s: %w", lockPath, err)
	}
	if !locked {
		return fmt.Errorf("another aimerge run holds the lock on %s", lockPath)
	}
	defer fileLock.Unlock()

	return fn()
}
