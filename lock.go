package serial

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// DefaultLockDir is where UUCP-style lock files live on most Linux systems.
const DefaultLockDir = "/var/lock"

const lockPrefix = "LCK.."

var errBadLockFile = errors.New("unparsable lock file")

// LockPath returns the lock file used for device inside dir.
func LockPath(dir, device string) string {
	return filepath.Join(dir, lockPrefix+filepath.Base(device))
}

// deviceLock is an advisory, PID-stamped claim on a device.
type deviceLock struct {
	path string
	file *os.File
}

// acquireLock claims device by creating its lock file. A lock file whose PID
// is no longer alive (or cannot be parsed) is stale and gets replaced; one
// that cannot be read at all is left alone.
func acquireLock(dir, device string, alive func(pid int) bool, log zerolog.Logger) (*deviceLock, error) {
	path := LockPath(dir, device)

	pid, err := readLockPID(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil && !errors.Is(err, errBadLockFile):
		return nil, &OpError{Op: "lock", Device: device, Err: err}
	case err == nil && alive(pid):
		return nil, ErrLocked
	default:
		log.Warn().Str("lock", path).Int("pid", pid).Msg("removing stale lock file")
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, &OpError{Op: "lock", Device: device, Err: err}
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if errors.Is(err, os.ErrExist) {
		// Another process won the race between our check and create.
		return nil, ErrLocked
	}
	if err != nil {
		return nil, &OpError{Op: "lock", Device: device, Err: err}
	}
	if _, err := f.WriteString(strconv.Itoa(os.Getpid()) + "\n"); err != nil {
		f.Close()
		os.Remove(path)
		return nil, &OpError{Op: "lock", Device: device, Err: err}
	}

	log.Debug().Str("lock", path).Msg("device locked")
	return &deviceLock{path: path, file: f}, nil
}

func readLockPID(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("%w %s: %v", errBadLockFile, path, err)
	}
	return pid, nil
}

// release closes and removes the lock file. Safe on a nil or released lock.
func (l *deviceLock) release() error {
	if l == nil || l.file == nil {
		return nil
	}
	err := l.file.Close()
	if rmErr := os.Remove(l.path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) && err == nil {
		err = rmErr
	}
	l.file = nil
	return err
}
