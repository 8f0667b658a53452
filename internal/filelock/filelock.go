// Package filelock provides the advisory lock that serializes board
// mutations across processes sharing one board directory.
package filelock

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"
)

const (
	lockFileMode      = 0o600
	lockRetryInterval = 5 * time.Millisecond
)

// errWouldBlock is returned by tryLockFile when another handle holds the lock.
var errWouldBlock = errors.New("lock held elsewhere")

// Lock acquires an exclusive advisory lock on the file at path, creating it
// if it does not exist. It polls until the lock is free or ctx is done. The
// returned function releases the lock.
func Lock(ctx context.Context, path string) (unlock func() error, err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, lockFileMode) //nolint:gosec // lock file path from trusted board dir
	if err != nil {
		return nil, fmt.Errorf("opening lock file: %w", err)
	}

	for {
		err := tryLockFile(f)
		if err == nil {
			break
		}
		if !errors.Is(err, errWouldBlock) {
			_ = f.Close()
			return nil, fmt.Errorf("locking %s: %w", path, err)
		}
		select {
		case <-ctx.Done():
			_ = f.Close()
			return nil, fmt.Errorf("waiting for lock %s: %w", path, ctx.Err())
		case <-time.After(lockRetryInterval):
		}
	}

	return func() error {
		unlockErr := unlockFile(f)
		closeErr := f.Close()
		if unlockErr != nil {
			return unlockErr
		}
		return closeErr
	}, nil
}

// WithLock runs fn while holding the lock at path.
func WithLock(ctx context.Context, path string, fn func() error) error {
	unlock, err := Lock(ctx, path)
	if err != nil {
		return err
	}
	fnErr := fn()
	if err := unlock(); err != nil && fnErr == nil {
		return fmt.Errorf("releasing lock %s: %w", path, err)
	}
	return fnErr
}
