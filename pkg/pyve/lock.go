// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package pyve

import (
	"fmt"
	"os"
)

// LockStatus is the derived freshness of a dependency lock file
// relative to its specification file. Computed at the moment of the
// check, never cached.
type LockStatus string

const (
	LockFresh   LockStatus = "fresh"
	LockStale   LockStatus = "stale"
	LockMissing LockStatus = "missing"
)

// LockPolicy decides how a non-fresh lock is surfaced.
type LockPolicy int

const (
	// LockPolicyWarn logs a warning and proceeds.
	LockPolicyWarn LockPolicy = iota
	// LockPolicyStrict escalates stale/missing to a hard failure.
	LockPolicyStrict
)

// CheckLockStatus compares modification times of a specification file
// and its derived lock file. A missing lock file is LockMissing; a spec
// file newer than the lock is LockStale; otherwise LockFresh. The spec
// file itself must exist.
func CheckLockStatus(specFile, lockFile string) (LockStatus, error) {
	specInfo, err := os.Stat(specFile)
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", specFile, err)
	}
	lockInfo, err := os.Stat(lockFile)
	if os.IsNotExist(err) {
		return LockMissing, nil
	}
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", lockFile, err)
	}
	if specInfo.ModTime().After(lockInfo.ModTime()) {
		return LockStale, nil
	}
	return LockFresh, nil
}

// enforceLockPolicy applies policy to a computed status. Returns a
// *StaleLockError under strict policy for stale/missing; otherwise logs
// and returns nil. Prompting for confirmation happens at the
// orchestration boundary, not here.
func enforceLockPolicy(status LockStatus, specFile, lockFile string, policy LockPolicy) error {
	if status == LockFresh {
		return nil
	}
	if policy == LockPolicyStrict {
		return &StaleLockError{SpecFile: specFile, LockFile: lockFile, Status: status}
	}
	logf("warning: lock file %s is %s relative to %s", lockFile, status, specFile)
	return nil
}
