package fs

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"
)

// LockFile is the name of the cross-process rollover lock inside the system directory.
const LockFile = "rollover.lock"

// Lock acquires an exclusive lock on the vault using an O_EXCL lock file.
// It waits until the lock is released, ctx is done or LockTimeout elapses.
// A lock file older than StaleLockAge is considered abandoned and removed.
func (r *Repository) Lock(ctx context.Context) (func(), error) {
	if err := r.checkWritable(); err != nil {
		return nil, err
	}
	lockPath := r.SystemPath(LockFile)
	if err := os.MkdirAll(r.systemPath(), 0755); err != nil {
		return nil, fmt.Errorf("failed to create system directory: %w", err)
	}

	deadline := time.NewTimer(r.config.LockTimeout)
	defer deadline.Stop()

	for {
		f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
		if err == nil {
			_, _ = f.WriteString(strconv.Itoa(os.Getpid()))
			_ = f.Close()
			r.config.Logger.Debug("vault lock acquired", "path", lockPath)
			return func() {
				if err := os.Remove(lockPath); err != nil && !os.IsNotExist(err) {
					r.config.Logger.Warn("failed to release vault lock", "path", lockPath, "error", err)
				}
			}, nil
		}
		if !os.IsExist(err) {
			return nil, fmt.Errorf("failed to create lock file: %w", err)
		}

		if info, statErr := os.Stat(lockPath); statErr == nil && time.Since(info.ModTime()) > r.config.StaleLockAge {
			r.config.Logger.Warn("breaking stale vault lock", "path", lockPath, "age", time.Since(info.ModTime()))
			_ = os.Remove(lockPath)
			continue
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-deadline.C:
			return nil, fmt.Errorf("timeout waiting for vault lock %s", lockPath)
		case <-time.After(10 * time.Millisecond):
		}
	}
}
