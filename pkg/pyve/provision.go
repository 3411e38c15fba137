// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package pyve

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EnvProvisioner is the collaborator contract for actually creating and
// removing isolated environments. Implementations shell out to the
// backend tools; pyve treats them as opaque and only inspects
// success/failure plus captured diagnostic text.
type EnvProvisioner interface {
	// Create realizes the environment described by rc. For venv the
	// environment lands at rc.Paths.EnvDir; for micromamba it is a
	// named environment owned by micromamba itself.
	Create(rc *ResolvedConfig) error

	// Remove tears the environment down. Missing environments are not
	// an error.
	Remove(rc *ResolvedConfig) error

	// Exists reports whether the environment is already realized.
	Exists(rc *ResolvedConfig) bool

	// ResolveInterpreter maps a requested interpreter version string to
	// an installed toolchain, returning the version actually selected.
	ResolveInterpreter(version string) (string, error)
}

// venvProvisioner drives "python -m venv", selecting the interpreter
// through pyenv when available.
type venvProvisioner struct {
	projectDir string
}

// micromambaProvisioner drives "micromamba create/remove" against the
// project's environment.yml.
type micromambaProvisioner struct {
	projectDir string
}

// NewProvisioner returns the subprocess-backed provisioner for the
// resolved backend.
func NewProvisioner(backend Backend, projectDir string) (EnvProvisioner, error) {
	switch backend {
	case BackendVenv:
		return &venvProvisioner{projectDir: projectDir}, nil
	case BackendMicromamba:
		return &micromambaProvisioner{projectDir: projectDir}, nil
	default:
		return nil, fmt.Errorf("no provisioner for backend %q", backend)
	}
}

func (p *venvProvisioner) Create(rc *ResolvedConfig) error {
	logf("provision: creating venv at %s", rc.Paths.EnvDir)
	interpreter := binPython
	if rc.PythonVersion != "" && haveBinary(binPyenv) {
		if out, err := runCaptured(p.projectDir, binPyenv, "local", rc.PythonVersion); err != nil {
			return fmt.Errorf("pinning python %s via pyenv: %w (%s)", rc.PythonVersion, err, out)
		}
		// pyenv shims dispatch python3 to the pinned version.
	}
	if out, err := runCaptured(p.projectDir, interpreter, "-m", "venv", rc.Paths.EnvDir); err != nil {
		return fmt.Errorf("creating venv: %w (%s)", err, out)
	}
	return nil
}

func (p *venvProvisioner) Remove(rc *ResolvedConfig) error {
	logf("provision: removing venv at %s", rc.Paths.EnvDir)
	if err := os.RemoveAll(rc.Paths.EnvDir); err != nil {
		return fmt.Errorf("removing venv: %w", err)
	}
	return nil
}

func (p *venvProvisioner) Exists(rc *ResolvedConfig) bool {
	// pyvenv.cfg marks a directory as an actual venv, not a leftover dir.
	_, err := os.Stat(filepath.Join(rc.Paths.EnvDir, "pyvenv.cfg"))
	return err == nil
}

func (p *venvProvisioner) ResolveInterpreter(version string) (string, error) {
	if version == "" || !haveBinary(binPyenv) {
		out, err := runCaptured(p.projectDir, binPython, "--version")
		if err != nil {
			return "", fmt.Errorf("resolving system python: %w", err)
		}
		return strings.TrimPrefix(out, "Python "), nil
	}
	out, err := runCaptured(p.projectDir, binPyenv, "latest", "--known", version)
	if err != nil {
		return "", fmt.Errorf("resolving python %s via pyenv: %w (%s)", version, err, out)
	}
	return strings.TrimSpace(out), nil
}

func (p *micromambaProvisioner) Create(rc *ResolvedConfig) error {
	logf("provision: creating micromamba env %s", rc.EnvName)
	args := []string{"create", "-y", "-n", rc.EnvName}
	spec := envSpecPath(p.projectDir)
	if _, err := os.Stat(spec); err == nil {
		args = append(args, "-f", spec)
	} else if rc.PythonVersion != "" {
		args = append(args, "python="+rc.PythonVersion)
	}
	if out, err := runCaptured(p.projectDir, binMicromamba, args...); err != nil {
		return fmt.Errorf("creating micromamba env: %w (%s)", err, out)
	}
	return nil
}

func (p *micromambaProvisioner) Remove(rc *ResolvedConfig) error {
	logf("provision: removing micromamba env %s", rc.EnvName)
	out, err := runCaptured(p.projectDir, binMicromamba, "env", "remove", "-y", "-n", rc.EnvName)
	if err != nil && !strings.Contains(out, "No environment") {
		return fmt.Errorf("removing micromamba env: %w (%s)", err, out)
	}
	return nil
}

func (p *micromambaProvisioner) Exists(rc *ResolvedConfig) bool {
	out, err := runCaptured(p.projectDir, binMicromamba, "env", "list")
	if err != nil {
		return false
	}
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) > 0 && fields[0] == rc.EnvName {
			return true
		}
	}
	return false
}

func (p *micromambaProvisioner) ResolveInterpreter(version string) (string, error) {
	// micromamba solves the interpreter from the spec itself.
	return version, nil
}

// stubProvisioner records calls without touching any external tool.
// Tests inject it through Config.Provisioner.
type stubProvisioner struct {
	created   []string
	removed   []string
	existing  map[string]bool
	createErr error
}

func (s *stubProvisioner) Create(rc *ResolvedConfig) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.created = append(s.created, rc.EnvName)
	if s.existing == nil {
		s.existing = map[string]bool{}
	}
	s.existing[rc.EnvName] = true
	return nil
}

func (s *stubProvisioner) Remove(rc *ResolvedConfig) error {
	s.removed = append(s.removed, rc.EnvName)
	delete(s.existing, rc.EnvName)
	return nil
}

func (s *stubProvisioner) Exists(rc *ResolvedConfig) bool {
	return s.existing[rc.EnvName]
}

func (s *stubProvisioner) ResolveInterpreter(version string) (string, error) {
	return orDefault(version, "3.12.0"), nil
}
