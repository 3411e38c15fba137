// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package pyve

import (
	"testing"
)

// classifyIn resolves and classifies a project directory with the
// given explicit options.
func classifyIn(t *testing.T, dir string, opts Options) Classification {
	t.Helper()
	cs, err := LoadConfigStore(configPath(dir))
	if err != nil {
		t.Fatal(err)
	}
	rc, err := Resolve(opts, cs, dir)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	artifacts, err := DesiredArtifacts(dir, rc)
	if err != nil {
		t.Fatal(err)
	}
	cls, err := Classify(dir, rc, cs, artifacts)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	return cls
}

func TestClassify_FreshProjectUninitialized(t *testing.T) {
	cls := classifyIn(t, t.TempDir(), Options{})
	if cls.State != StateUninitialized {
		t.Errorf("got %s, want uninitialized", cls.State)
	}
}

func TestClassify_CorruptedBackend(t *testing.T) {
	dir := t.TempDir()
	storeWith(t, dir, map[string]string{"backend": "pipenv", "pyve_version": Version})

	// The explicit flag bypasses the record in resolution, but the
	// classifier still flags the unreadable required field.
	cls := classifyIn(t, dir, Options{Backend: "venv"})
	if cls.State != StateCorrupted {
		t.Fatalf("got %s, want corrupted", cls.State)
	}
	if cls.Corrupted == nil || cls.Corrupted.Field != "backend" {
		t.Errorf("corrupted detail = %+v, want backend field", cls.Corrupted)
	}
}

func TestClassify_MissingVersionCorrupted(t *testing.T) {
	dir := t.TempDir()
	storeWith(t, dir, map[string]string{"backend": "venv"})

	cls := classifyIn(t, dir, Options{})
	if cls.State != StateCorrupted {
		t.Fatalf("got %s, want corrupted", cls.State)
	}
	if cls.Corrupted == nil || cls.Corrupted.Field != "pyve_version" {
		t.Errorf("corrupted detail = %+v, want pyve_version field", cls.Corrupted)
	}
}

func TestClassify_UnparsableVersionCorrupted(t *testing.T) {
	dir := t.TempDir()
	storeWith(t, dir, map[string]string{"backend": "venv", "pyve_version": "one.two"})

	cls := classifyIn(t, dir, Options{})
	if cls.State != StateCorrupted {
		t.Errorf("got %s, want corrupted (never a guessed valid state)", cls.State)
	}
}

func TestClassify_VersionDriftNeedsReconciliation(t *testing.T) {
	dir := t.TempDir()

	// Converge once so all artifacts exist, then rewind the recorded
	// version to simulate a tool upgrade.
	eng := newTestEngine(t, dir, Options{})
	if _, err := eng.Setup(); err != nil {
		t.Fatalf("Setup: %v", err)
	}
	cs, err := LoadConfigStore(configPath(dir))
	if err != nil {
		t.Fatal(err)
	}
	cs.Set("pyve_version", "1.5.3")
	if err := cs.Save(); err != nil {
		t.Fatal(err)
	}

	cls := classifyIn(t, dir, Options{})
	if cls.State != StateNeedsReconcile {
		t.Errorf("got %s, want needs-reconciliation", cls.State)
	}
	if cls.RecordedVersion != "1.5.3" {
		t.Errorf("recorded version = %q", cls.RecordedVersion)
	}
}

func TestClassify_EquivalentVersionSpellingUpToDate(t *testing.T) {
	dir := t.TempDir()
	eng := newTestEngine(t, dir, Options{})
	if _, err := eng.Setup(); err != nil {
		t.Fatalf("Setup: %v", err)
	}

	// A zero-padded spelling of the same version is not drift.
	cs, err := LoadConfigStore(configPath(dir))
	if err != nil {
		t.Fatal(err)
	}
	cs.Set("pyve_version", "1.06.00")
	if err := cs.Save(); err != nil {
		t.Fatal(err)
	}

	cls := classifyIn(t, dir, Options{})
	if cls.State != StateUpToDate {
		t.Errorf("got %s (reasons: %v), want up-to-date", cls.State, cls.Reasons)
	}
}
