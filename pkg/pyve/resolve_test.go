// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package pyve

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeProjectFile is a small helper for seeding heuristic files.
func writeProjectFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// storeWith builds a saved ConfigStore in dir with the given dotted
// key/value pairs.
func storeWith(t *testing.T, dir string, pairs map[string]string) *ConfigStore {
	t.Helper()
	cs, err := LoadConfigStore(configPath(dir))
	if err != nil {
		t.Fatal(err)
	}
	if len(pairs) == 0 {
		return cs
	}
	for k, v := range pairs {
		cs.Set(k, v)
	}
	if err := cs.Save(); err != nil {
		t.Fatal(err)
	}
	return cs
}

// --- backend priority chain ---

func TestResolveBackend_FlagBeatsEverything(t *testing.T) {
	dir := t.TempDir()
	writeProjectFile(t, dir, fileEnvSpec, "name: specenv\n")
	writeProjectFile(t, dir, fileRequirements, "requests\n")
	cs := storeWith(t, dir, map[string]string{"backend": "micromamba"})

	rc, err := Resolve(Options{Backend: "venv"}, cs, dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rc.Backend != BackendVenv || rc.BackendSource != SourceFlag {
		t.Errorf("got backend=%s source=%s, want venv from flag", rc.Backend, rc.BackendSource)
	}
}

func TestResolveBackend_ConfigBeatsHeuristics(t *testing.T) {
	dir := t.TempDir()
	writeProjectFile(t, dir, fileRequirements, "requests\n")
	cs := storeWith(t, dir, map[string]string{"backend": "micromamba"})

	rc, err := Resolve(Options{}, cs, dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rc.Backend != BackendMicromamba || rc.BackendSource != SourceConfig {
		t.Errorf("got backend=%s source=%s, want micromamba from config record", rc.Backend, rc.BackendSource)
	}
}

func TestResolveBackend_SpecFileWinsOverRequirements(t *testing.T) {
	dir := t.TempDir()
	writeProjectFile(t, dir, fileEnvSpec, "name: specenv\n")
	writeProjectFile(t, dir, fileRequirements, "requests\n")
	cs := storeWith(t, dir, nil)

	rc, err := Resolve(Options{}, cs, dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rc.Backend != BackendMicromamba || rc.BackendSource != SourceFileScan {
		t.Errorf("got backend=%s source=%s, want micromamba from file heuristic", rc.Backend, rc.BackendSource)
	}
}

func TestResolveBackend_RequirementsImpliesVenv(t *testing.T) {
	dir := t.TempDir()
	writeProjectFile(t, dir, fileRequirements, "requests\n")
	cs := storeWith(t, dir, nil)

	rc, err := Resolve(Options{}, cs, dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rc.Backend != BackendVenv || rc.BackendSource != SourceFileScan {
		t.Errorf("got backend=%s source=%s, want venv from file heuristic", rc.Backend, rc.BackendSource)
	}
}

func TestResolveBackend_DefaultVenv(t *testing.T) {
	dir := t.TempDir()
	cs := storeWith(t, dir, nil)

	rc, err := Resolve(Options{}, cs, dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rc.Backend != BackendVenv || rc.BackendSource != SourceDefault {
		t.Errorf("got backend=%s source=%s, want venv default", rc.Backend, rc.BackendSource)
	}
}

func TestResolveBackend_InvalidFlagFatal(t *testing.T) {
	dir := t.TempDir()
	cs := storeWith(t, dir, nil)

	_, err := Resolve(Options{Backend: "pipenv"}, cs, dir)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Source != "--backend flag" {
		t.Errorf("error source = %q, want --backend flag", verr.Source)
	}
}

func TestResolveBackend_CorruptedRecordNotReinferred(t *testing.T) {
	dir := t.TempDir()
	// The heuristic would say venv, but the recorded value must never
	// be silently replaced by a guess.
	writeProjectFile(t, dir, fileRequirements, "requests\n")
	cs := storeWith(t, dir, map[string]string{"backend": "pipenv"})

	_, err := Resolve(Options{}, cs, dir)
	var cerr *CorruptedStateError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected CorruptedStateError, got %v", err)
	}
	if cerr.Field != "backend" {
		t.Errorf("corrupted field = %q, want backend", cerr.Field)
	}
}

// --- env name priority chain ---

func TestResolveEnvName_PriorityOrder(t *testing.T) {
	dir := t.TempDir()
	writeProjectFile(t, dir, fileEnvSpec, "name: Spec Env\n")
	cs := storeWith(t, dir, map[string]string{
		"backend":             "micromamba",
		"micromamba.env_name": "recorded-env",
	})

	// Flag present: flag wins.
	rc, err := Resolve(Options{EnvName: "Flag Env"}, cs, dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rc.EnvName != "flag-env" || rc.EnvNameSource != SourceFlag {
		t.Errorf("got %q from %s, want flag-env from flag", rc.EnvName, rc.EnvNameSource)
	}

	// Flag removed: config record wins.
	rc, err = Resolve(Options{}, cs, dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rc.EnvName != "recorded-env" || rc.EnvNameSource != SourceConfig {
		t.Errorf("got %q from %s, want recorded-env from config record", rc.EnvName, rc.EnvNameSource)
	}

	// Record removed: spec file name wins.
	cs.Delete("micromamba.env_name")
	if err := cs.Save(); err != nil {
		t.Fatal(err)
	}
	rc, err = Resolve(Options{}, cs, dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rc.EnvName != "spec-env" || rc.EnvNameSource != SourceSpecFile {
		t.Errorf("got %q from %s, want spec-env from environment.yml", rc.EnvName, rc.EnvNameSource)
	}
}

func TestResolveEnvName_FallsBackToDirname(t *testing.T) {
	parent := t.TempDir()
	dir := filepath.Join(parent, "My Data Project")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	cs := storeWith(t, dir, nil)

	rc, err := Resolve(Options{}, cs, dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rc.EnvName != "my-data-project" || rc.EnvNameSource != SourceDirname {
		t.Errorf("got %q from %s, want my-data-project from directory name", rc.EnvName, rc.EnvNameSource)
	}
}

func TestResolveEnvName_InvalidFlagNotSkipped(t *testing.T) {
	dir := t.TempDir()
	cs := storeWith(t, dir, nil)

	// An explicit reserved name must fail with the flag named as the
	// source, not fall through to the directory basename.
	_, err := Resolve(Options{EnvName: "base"}, cs, dir)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Source != "--name flag" {
		t.Errorf("error source = %q, want --name flag", verr.Source)
	}
}

// --- python version ---

func TestResolvePython_VersionFile(t *testing.T) {
	dir := t.TempDir()
	writeProjectFile(t, dir, ".python-version", "3.11.4\n")
	cs := storeWith(t, dir, nil)

	rc, err := Resolve(Options{}, cs, dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rc.PythonVersion != "3.11.4" || rc.PythonSource != SourceVersionF {
		t.Errorf("got %q from %s, want 3.11.4 from .python-version", rc.PythonVersion, rc.PythonSource)
	}
}

// --- paths ---

func TestResolvePaths(t *testing.T) {
	dir := t.TempDir()
	cs := storeWith(t, dir, nil)
	rc, err := Resolve(Options{}, cs, dir)
	if err != nil {
		t.Fatal(err)
	}
	if rc.Paths.EnvDir != filepath.Join(dir, dirVenv) {
		t.Errorf("EnvDir = %q", rc.Paths.EnvDir)
	}
	if !strings.HasSuffix(rc.Paths.ConfigFile, filepath.Join(dirPyve, fileConfig)) {
		t.Errorf("ConfigFile = %q", rc.Paths.ConfigFile)
	}
}
