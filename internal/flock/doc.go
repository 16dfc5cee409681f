// Package flock provides cross-platform advisory file locks.
//
// Locks are exclusive and non-blocking: a second holder fails at once
// instead of waiting. stepwire uses them so that concurrent runs sharing a
// metrics textfile never overwrite each other mid-write.
//
// Usage:
//
//	lock, err := flock.TryLock(path + ".lock")
//	if err != nil {
//	    // another process holds the lock
//	}
//	defer func() { _ = lock.Release() }()
package flock
