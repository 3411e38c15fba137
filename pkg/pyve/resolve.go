// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package pyve

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Backend is the strategy for realizing an isolated package
// environment. The two are mutually exclusive per project.
type Backend string

const (
	BackendUnset      Backend = ""
	BackendVenv       Backend = "venv"
	BackendMicromamba Backend = "micromamba"
)

// ParseBackend validates a backend string from any source.
func ParseBackend(s string) (Backend, error) {
	switch Backend(strings.ToLower(strings.TrimSpace(s))) {
	case BackendVenv:
		return BackendVenv, nil
	case BackendMicromamba:
		return BackendMicromamba, nil
	default:
		return BackendUnset, &ValidationError{Field: "backend", Value: s, Reason: "must be venv or micromamba"}
	}
}

// Source identifies where a resolved value came from in the priority
// chain. Reported in errors and by `pyve status`.
type Source string

const (
	SourceFlag     Source = "flag"
	SourceConfig   Source = "config record"
	SourceSpecFile Source = "environment.yml"
	SourceFileScan Source = "file heuristic"
	SourceDirname  Source = "project directory name"
	SourceVersionF Source = ".python-version"
	SourceDefault  Source = "default"
)

// Paths groups the on-disk locations a resolved configuration implies.
type Paths struct {
	EnvDir        string
	ConfigFile    string
	LockStatusDir string
}

// ResolvedConfig is the fully-resolved configuration for one
// invocation. It is built fresh every run and threaded explicitly
// through every component; no component re-derives any field on its
// own. Persisted fields are written individually into the ConfigRecord,
// never the struct as a whole.
type ResolvedConfig struct {
	Backend       Backend
	BackendSource Source
	EnvName       string
	EnvNameSource Source
	PythonVersion string
	PythonSource  Source
	Paths         Paths
}

// Resolve runs the backend and identity priority chains against flag
// values, the ConfigRecord, and the project directory. A value arriving
// from any source is validated in place; a bad value is fatal and
// reported with its source rather than skipped, so explicitness never
// masks an operator error.
func Resolve(opts Options, cs *ConfigStore, projectDir string) (*ResolvedConfig, error) {
	rc := &ResolvedConfig{}

	backend, src, err := resolveBackend(opts, cs, projectDir)
	if err != nil {
		return nil, err
	}
	rc.Backend = backend
	rc.BackendSource = src

	name, src, err := resolveEnvName(opts, cs, projectDir, backend)
	if err != nil {
		return nil, err
	}
	rc.EnvName = name
	rc.EnvNameSource = src

	rc.PythonVersion, rc.PythonSource = resolvePythonVersion(opts, cs, projectDir)
	rc.Paths = resolvePaths(projectDir, backend)
	return rc, nil
}

// resolveBackend walks the backend priority chain: explicit flag,
// recorded config, file-presence heuristics, default venv. A recorded
// backend that fails to parse is corrupted state: once explicitly
// recorded, the backend is never silently re-inferred.
func resolveBackend(opts Options, cs *ConfigStore, projectDir string) (Backend, Source, error) {
	if opts.Backend != "" {
		b, err := ParseBackend(opts.Backend)
		if err != nil {
			var verr *ValidationError
			if errors.As(err, &verr) {
				verr.Source = "--backend flag"
			}
			return BackendUnset, "", err
		}
		return b, SourceFlag, nil
	}

	if recorded, ok := cs.Get("backend"); ok {
		b, err := ParseBackend(recorded)
		if err != nil {
			return BackendUnset, "", &CorruptedStateError{File: cs.Path(), Field: "backend", Value: recorded}
		}
		return b, SourceConfig, nil
	}

	// File-presence heuristics. environment.yml is the more specific
	// signal and wins over requirements.txt when both exist.
	if _, err := os.Stat(envSpecPath(projectDir)); err == nil {
		return BackendMicromamba, SourceFileScan, nil
	}
	if _, err := os.Stat(requirementsPath(projectDir)); err == nil {
		return BackendVenv, SourceFileScan, nil
	}

	return BackendVenv, SourceDefault, nil
}

// resolveEnvName walks the identity priority chain: explicit flag,
// recorded config, name embedded in environment.yml (micromamba only),
// sanitized project directory basename. Every candidate goes through
// SanitizeName; the first source that yields a candidate decides, and a
// candidate that fails sanitization is fatal with that source named.
func resolveEnvName(opts Options, cs *ConfigStore, projectDir string, backend Backend) (string, Source, error) {
	sanitize := func(raw string, src Source, loc string) (string, Source, error) {
		name, err := SanitizeName(raw)
		if err != nil {
			var verr *ValidationError
			if errors.As(err, &verr) {
				verr.Source = loc
			}
			return "", "", err
		}
		return name, src, nil
	}

	if opts.EnvName != "" {
		return sanitize(opts.EnvName, SourceFlag, "--name flag")
	}

	if recorded, ok := cs.Get(string(backend) + ".env_name"); ok && recorded != "" {
		return sanitize(recorded, SourceConfig, cs.Path())
	}

	if backend == BackendMicromamba {
		spec, err := loadEnvSpec(envSpecPath(projectDir))
		if err != nil {
			return "", "", err
		}
		if spec != nil && spec.Name != "" {
			return sanitize(spec.Name, SourceSpecFile, envSpecPath(projectDir))
		}
	}

	abs, err := filepath.Abs(projectDir)
	if err != nil {
		return "", "", fmt.Errorf("resolving project directory: %w", err)
	}
	return sanitize(filepath.Base(abs), SourceDirname, "project directory name")
}

// resolvePythonVersion walks flag, recorded config, then a
// .python-version file. An empty result means "whatever the backend
// selects"; it is not an error.
func resolvePythonVersion(opts Options, cs *ConfigStore, projectDir string) (string, Source) {
	if opts.PythonVersion != "" {
		return opts.PythonVersion, SourceFlag
	}
	if recorded, ok := cs.Get("python_version"); ok && recorded != "" {
		return recorded, SourceConfig
	}
	if data, err := os.ReadFile(filepath.Join(projectDir, ".python-version")); err == nil {
		if v := strings.TrimSpace(string(data)); v != "" {
			return v, SourceVersionF
		}
	}
	return "", SourceDefault
}

// resolvePaths derives the on-disk layout implied by the backend.
// Micromamba owns its named environments, so EnvDir is empty there.
func resolvePaths(projectDir string, backend Backend) Paths {
	p := Paths{
		ConfigFile:    configPath(projectDir),
		LockStatusDir: lockStatusDir(projectDir),
	}
	if backend == BackendVenv {
		p.EnvDir = venvDir(projectDir)
	}
	return p
}

// specAndLockPaths returns the dependency specification file and its
// derived lock file for the backend, or ok=false when the backend has
// no specification file on disk.
func specAndLockPaths(projectDir string, backend Backend) (specFile, lockFile string, ok bool) {
	switch backend {
	case BackendMicromamba:
		specFile = envSpecPath(projectDir)
		lockFile = filepath.Join(lockStatusDir(projectDir), fileEnvSpecLock)
	case BackendVenv:
		specFile = requirementsPath(projectDir)
		lockFile = filepath.Join(projectDir, fileReqLock)
	default:
		return "", "", false
	}
	if _, err := os.Stat(specFile); err != nil {
		return "", "", false
	}
	return specFile, lockFile, true
}
