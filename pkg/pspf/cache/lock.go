package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/hashicorp/go-hclog"

	pspferrors "github.com/provide-io/pspf/pkg/pspf/errors"
)

// IsProcessRunning reports whether pid names a live process, using the
// POSIX Signal(0) liveness probe ported from the teacher's locking.go.
func IsProcessRunning(pid int) bool {
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return process.Signal(syscall.Signal(0)) == nil
}

// TryAcquireLock attempts to acquire the extraction lock for paths. It
// first reclaims a stale lock (owned by a dead PID), removing both the
// lock file and that PID's scratch directory, per spec §4.5's stale-lock
// reclamation rule. Returns true if this call acquired the lock.
func TryAcquireLock(paths *Paths, logger hclog.Logger) (bool, error) {
	if err := os.MkdirAll(paths.Extract(), 0o755); err != nil {
		return false, pspferrors.NewIOError("create extract directory", err)
	}

	lockPath := paths.LockFile()
	if data, err := os.ReadFile(lockPath); err == nil {
		contents := strings.TrimSpace(string(data))
		oldPid, parseErr := strconv.Atoi(contents)
		switch {
		case parseErr != nil:
			logger.Info("🧹 removing unparseable lock file")
			os.Remove(lockPath)
		case !IsProcessRunning(oldPid):
			logger.Info("🧹 reclaiming stale lock", "pid", oldPid)
			os.Remove(lockPath)
			stale := paths.TempExtraction(oldPid)
			if err := os.RemoveAll(stale); err != nil {
				logger.Debug("failed to remove stale scratch directory", "path", stale, "error", err)
			}
		default:
			logger.Debug("🔒 lock held by live process", "pid", oldPid)
			return false, nil
		}
	}

	file, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return false, nil
		}
		return false, pspferrors.NewIOError("create lock file", err)
	}
	defer file.Close()

	if _, err := fmt.Fprintf(file, "%d\n", os.Getpid()); err != nil {
		os.Remove(lockPath)
		return false, pspferrors.NewIOError("write lock file", err)
	}

	logger.Debug("🔒 acquired extraction lock", "pid", os.Getpid())
	return true, nil
}

// ReleaseLock removes the extraction lock file.
func ReleaseLock(paths *Paths, logger hclog.Logger) {
	if err := os.Remove(paths.LockFile()); err != nil && !os.IsNotExist(err) {
		logger.Debug("failed to release lock", "error", err)
		return
	}
	logger.Debug("🔓 released extraction lock")
}

// WaitForExtraction polls for the lock file to disappear, signalling that
// a concurrent extractor has finished (or crashed and been reclaimed by
// a later caller). Returns a LockTimeout error if timeout elapses first.
func WaitForExtraction(paths *Paths, timeout time.Duration, logger hclog.Logger) error {
	lockPath := paths.LockFile()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if _, err := os.Stat(lockPath); os.IsNotExist(err) {
			time.Sleep(100 * time.Millisecond)
			return nil
		}
		time.Sleep(100 * time.Millisecond)
	}
	return pspferrors.NewLockTimeoutError(fmt.Sprintf("timed out after %s waiting for extraction lock", timeout))
}

// MarkExtractionComplete touches the completion marker. This must be the
// last write of the commit sequence (spec §4.5 step 6): a crash before
// this call is re-detected as "incomplete" on the next run.
func MarkExtractionComplete(paths *Paths) error {
	if err := os.MkdirAll(paths.Extract(), 0o755); err != nil {
		return pspferrors.NewIOError("create extract directory", err)
	}
	f, err := os.Create(paths.CompleteFile())
	if err != nil {
		return pspferrors.NewIOError("create completion marker", err)
	}
	defer f.Close()
	_, err = fmt.Fprintf(f, "%d\n", os.Getpid())
	return err
}

// IsExtractionComplete reports whether the completion marker exists.
func IsExtractionComplete(paths *Paths) bool {
	_, err := os.Stat(paths.CompleteFile())
	return err == nil
}

// CleanupStaleExtractions removes any tmp/<pid>/ scratch directory whose
// owning PID is no longer alive.
func CleanupStaleExtractions(paths *Paths, logger hclog.Logger) error {
	entries, err := os.ReadDir(paths.Tmp())
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		pid, err := strconv.Atoi(entry.Name())
		if err != nil || IsProcessRunning(pid) {
			continue
		}
		stale := filepath.Join(paths.Tmp(), entry.Name())
		logger.Info("🧹 cleaning up stale extraction directory", "pid", pid)
		if err := os.RemoveAll(stale); err != nil {
			logger.Debug("failed to remove stale directory", "path", stale, "error", err)
		}
	}
	return nil
}
