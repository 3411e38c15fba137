// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

//go:build e2e

// End-to-end lifecycle tests against a real venv backend. These need a
// python3 on PATH and are excluded from the default test run:
//
//	go test -tags e2e ./tests/e2e/
package e2e_test

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/pyve/pkg/pyve"
)

func requirePython3(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("python3"); err != nil {
		t.Skip("python3 not on PATH")
	}
}

func newEngine(t *testing.T, dir string) *pyve.Engine {
	t.Helper()
	off := false
	return pyve.New(pyve.Config{
		ProjectDir:     dir,
		NonInteractive: true,
		RunDirenvAllow: &off,
	})
}

// TestLifecycle_SetupStatusTeardown walks a fresh project through the
// full setup / re-run / status / teardown cycle with a real virtual
// environment.
func TestLifecycle_SetupStatusTeardown(t *testing.T) {
	requirePython3(t)
	dir := t.TempDir()
	eng := newEngine(t, dir)

	report, err := eng.Setup()
	require.NoError(t, err)
	assert.Equal(t, pyve.BackendVenv, report.Backend)

	// The interpreter really exists.
	_, err = os.Stat(filepath.Join(dir, ".venv", "pyvenv.cfg"))
	require.NoError(t, err, "expected a real virtual environment")

	// Re-running a converged project is a no-op.
	report, err = eng.Setup()
	require.NoError(t, err)
	assert.Equal(t, pyve.StateUpToDate, report.State)

	status, err := eng.Status()
	require.NoError(t, err)
	assert.Equal(t, pyve.StateUpToDate, status.State)

	require.NoError(t, eng.Teardown())
	_, err = os.Stat(filepath.Join(dir, ".venv"))
	assert.True(t, os.IsNotExist(err), ".venv should be removed")
	_, err = os.Stat(filepath.Join(dir, ".pyve"))
	assert.True(t, os.IsNotExist(err), ".pyve should be removed")
	_, err = os.Stat(filepath.Join(dir, ".envrc"))
	assert.NoError(t, err, "user-owned .envrc survives teardown")
}

// TestLifecycle_ConflictIsNonDestructive verifies that a user-edited
// .envrc blocks reconciliation without touching any file.
func TestLifecycle_ConflictIsNonDestructive(t *testing.T) {
	requirePython3(t)
	dir := t.TempDir()
	eng := newEngine(t, dir)

	_, err := eng.Setup()
	require.NoError(t, err)

	envrc := filepath.Join(dir, ".envrc")
	custom := []byte("source_env ..\nsource .pyve/activate.sh\n")
	require.NoError(t, os.WriteFile(envrc, custom, 0o644))

	_, err = eng.Setup()
	require.True(t, errors.Is(err, pyve.ErrConflictPending), "got %v", err)

	data, err := os.ReadFile(envrc)
	require.NoError(t, err)
	assert.Equal(t, custom, data, "user edit must survive the aborted run")
}
