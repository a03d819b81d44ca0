// Package lockfile serializes vault writes across processes. Writers take
// an exclusive flock on a lock file inside the vault directory; readers
// never lock. The lock file also carries holder metadata for diagnostics.
package lockfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const LockFileName = "vault.lock"

// DefaultAcquireTimeout bounds how long Acquire waits for a busy lock.
const DefaultAcquireTimeout = 10 * time.Second

// ErrLockBusy is returned when the lock is held by another process.
var ErrLockBusy = errors.New("vault lock held by another process")

// LockInfo is the metadata written into the lock file by the holder.
type LockInfo struct {
	PID       int       `json:"pid"`
	Vault     string    `json:"vault"`
	Version   string    `json:"version,omitempty"`
	StartedAt time.Time `json:"started_at"`
}

// Lock is a held vault writer lock. Release it when the write completes.
type Lock struct {
	f    *os.File
	path string
}

func newAcquireBackoff(maxElapsed time.Duration) backoff.BackOff {
	// BackOff implementations are stateful; always return a fresh instance.
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 10 * time.Millisecond
	bo.MaxInterval = 250 * time.Millisecond
	bo.MaxElapsedTime = maxElapsed
	return bo
}

// Acquire takes the exclusive writer lock for the vault at vaultDir. A busy
// lock is retried with exponential backoff until timeout elapses, then
// ErrLockBusy is returned. timeout <= 0 uses DefaultAcquireTimeout.
func Acquire(ctx context.Context, vaultDir string, timeout time.Duration) (*Lock, error) {
	if timeout <= 0 {
		timeout = DefaultAcquireTimeout
	}

	path := filepath.Join(vaultDir, LockFileName)
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0600) // #nosec G304 - controlled path inside vault
	if err != nil {
		return nil, fmt.Errorf("opening lock file: %w", err)
	}

	bo := newAcquireBackoff(timeout)
	err = backoff.Retry(func() error {
		err := FlockExclusiveNonBlock(f)
		if errors.Is(err, ErrLockBusy) {
			return err // Retryable - backoff will retry
		}
		if err != nil {
			return backoff.Permanent(err) // Non-retryable - stop immediately
		}
		return nil
	}, backoff.WithContext(bo, ctx))
	if err != nil {
		_ = f.Close()
		if errors.Is(err, ErrLockBusy) {
			return nil, ErrLockBusy
		}
		return nil, fmt.Errorf("acquiring vault lock: %w", err)
	}

	lock := &Lock{f: f, path: path}
	if err := lock.writeInfo(vaultDir); err != nil {
		// The flock is what protects the vault; the metadata is advisory.
		fmt.Fprintf(os.Stderr, "Warning: failed to record lock holder: %v\n", err)
	}
	return lock, nil
}

func (l *Lock) writeInfo(vaultDir string) error {
	info := LockInfo{
		PID:       os.Getpid(),
		Vault:     vaultDir,
		StartedAt: time.Now().UTC(),
	}
	data, err := json.Marshal(info)
	if err != nil {
		return err
	}
	if err := l.f.Truncate(0); err != nil {
		return err
	}
	if _, err := l.f.WriteAt(data, 0); err != nil {
		return err
	}
	return l.f.Sync()
}

// Release drops the lock. The lock file is left in place; the flock on it
// is what matters. Safe to call on a nil or already-released lock.
func (l *Lock) Release() error {
	if l == nil || l.f == nil {
		return nil
	}
	unlockErr := FlockUnlock(l.f)
	closeErr := l.f.Close()
	l.f = nil
	if unlockErr != nil {
		return unlockErr
	}
	return closeErr
}

// ReadLockInfo reads the holder metadata for the vault at vaultDir. It does
// not check whether the lock is actually held.
func ReadLockInfo(vaultDir string) (*LockInfo, error) {
	data, err := os.ReadFile(filepath.Join(vaultDir, LockFileName)) // #nosec G304 - controlled path inside vault
	if err != nil {
		return nil, err
	}
	var info LockInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("parsing lock file: %w", err)
	}
	return &info, nil
}

// Holder probes whether the vault lock is currently held, and by which pid
// when that can be determined. Stale metadata from a dead process reports
// pid 0.
func Holder(vaultDir string) (held bool, pid int) {
	path := filepath.Join(vaultDir, LockFileName)
	f, err := os.OpenFile(path, os.O_RDWR, 0600) // #nosec G304 - controlled path inside vault
	if err != nil {
		return false, 0
	}
	defer func() { _ = f.Close() }()

	if err := FlockExclusiveNonBlock(f); err == nil {
		_ = FlockUnlock(f)
		return false, 0
	} else if !errors.Is(err, ErrLockBusy) {
		return false, 0
	}

	info, err := ReadLockInfo(vaultDir)
	if err != nil || !isProcessRunning(info.PID) {
		return true, 0
	}
	return true, info.PID
}
