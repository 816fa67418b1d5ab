// Package filelock provides advisory file locks that serialize snapshot
// writers running in different processes.
package filelock

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"
)

const lockFileMode = 0o600

// retryInterval is how long Acquire waits between attempts while another
// process holds the lock.
const retryInterval = 5 * time.Millisecond

// errWouldBlock is returned by tryLockFile when the lock is held elsewhere.
var errWouldBlock = errors.New("lock held by another process")

// Lock is a held advisory lock. Release must be called exactly once.
type Lock struct {
	f *os.File
}

// Acquire takes an exclusive advisory lock on the file at path, creating it
// if needed. It polls until the lock is free or ctx is done, so a stuck
// writer never blocks its caller past the caller's own deadline.
func Acquire(ctx context.Context, path string) (*Lock, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, lockFileMode) //nolint:gosec // lock path derived from a validated store key
	if err != nil {
		return nil, err
	}

	for {
		err := tryLockFile(f)
		if err == nil {
			return &Lock{f: f}, nil
		}
		if !errors.Is(err, errWouldBlock) {
			_ = f.Close()
			return nil, err
		}

		select {
		case <-ctx.Done():
			_ = f.Close()
			return nil, fmt.Errorf("acquiring %s: %w", path, ctx.Err())
		case <-time.After(retryInterval):
		}
	}
}

// Release unlocks and closes the lock file.
func (l *Lock) Release() error {
	unlockErr := unlockFile(l.f)
	closeErr := l.f.Close()
	if unlockErr != nil {
		return unlockErr
	}
	return closeErr
}
