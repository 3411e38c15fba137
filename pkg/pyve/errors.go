// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package pyve

import (
	"errors"
	"fmt"
)

// ErrConflictPending signals that one or more user-owned artifacts have
// diverged and the operator declined (or was never asked for)
// confirmation. It is a normal outcome, not a defect; the CLI maps it
// to its own exit code.
var ErrConflictPending = errors.New("user-modified artifacts pending review")

// ValidationError reports a rejected input value together with the
// priority-chain source it arrived from, so the operator can tell a bad
// flag from a bad config entry.
type ValidationError struct {
	Field  string // logical field, e.g. "env_name" or "backend"
	Value  string // the offending input
	Source string // e.g. "--name flag", ".pyve/config", "environment.yml"
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("invalid %s %q (from %s): %s", e.Field, e.Value, e.Source, e.Reason)
	}
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// CorruptedStateError reports a ConfigRecord that exists but cannot be
// parsed for a required field. Update semantics must fail loudly on
// this; only an explicit rebuild recovers. Guessing a plausible value
// instead is disallowed.
type CorruptedStateError struct {
	File  string
	Field string
	Value string
}

func (e *CorruptedStateError) Error() string {
	return fmt.Sprintf("corrupted state: %s field %q has unusable value %q (run a forced rebuild to recover)",
		e.File, e.Field, e.Value)
}

// StaleLockError is returned when a stale or missing lock file blocks
// the run: strict lock policy, or an interactive operator declining to
// continue past the warning.
type StaleLockError struct {
	SpecFile string
	LockFile string
	Status   LockStatus
}

func (e *StaleLockError) Error() string {
	return fmt.Sprintf("lock file %s is %s relative to %s", e.LockFile, e.Status, e.SpecFile)
}
