package flock

import (
	"os"

	swerrors "github.com/mrz1836/stepwire/internal/errors"
)

// Lock is a held lock on a lock file.
type Lock struct {
	file *os.File
}

// TryLock creates path if needed and takes an exclusive lock on it. It
// fails with ErrFileLocked when another holder has the lock.
func TryLock(path string) (*Lock, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600) // #nosec G304 -- caller-chosen lock path
	if err != nil {
		return nil, swerrors.Wrapf(err, "open lock file %s", path)
	}
	if err := lockFile(f); err != nil {
		_ = f.Close()
		return nil, swerrors.Wrapf(swerrors.ErrFileLocked, "%s: %v", path, err)
	}
	return &Lock{file: f}, nil
}

// Path returns the lock file's path.
func (l *Lock) Path() string {
	return l.file.Name()
}

// Release unlocks and closes the lock file. The file is left in place.
func (l *Lock) Release() error {
	unlockErr := unlockFile(l.file)
	closeErr := l.file.Close()
	if unlockErr != nil {
		return swerrors.Wrapf(unlockErr, "unlock %s", l.file.Name())
	}
	return closeErr
}
