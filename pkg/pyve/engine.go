// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package pyve

import (
	"errors"
	"fmt"
	"os"
)

// Engine drives one invocation: resolve, classify, confirm, provision,
// reconcile, record. All file operations are sequential and each write
// is atomic; an interrupted run is completed by the next one.
type Engine struct {
	cfg Config
}

// New returns an Engine for cfg with defaults applied.
func New(cfg Config) *Engine {
	cfg.applyDefaults()
	return &Engine{cfg: cfg}
}

// ArtifactStatus is one artifact's disposition in a Report.
type ArtifactStatus struct {
	Name        string      `yaml:"name"`
	Path        string      `yaml:"path"`
	Disposition Disposition `yaml:"disposition"`
}

// LockReport is the staleness check result in a Report.
type LockReport struct {
	SpecFile string     `yaml:"spec_file"`
	LockFile string     `yaml:"lock_file"`
	Status   LockStatus `yaml:"status"`
}

// Report summarizes an invocation for the operator. `pyve status`
// renders it styled or as YAML.
type Report struct {
	State           ProjectState     `yaml:"state"`
	Backend         Backend          `yaml:"backend"`
	BackendSource   Source           `yaml:"backend_source"`
	EnvName         string           `yaml:"env_name"`
	EnvNameSource   Source           `yaml:"env_name_source"`
	PythonVersion   string           `yaml:"python_version,omitempty"`
	RecordedVersion string           `yaml:"recorded_version,omitempty"`
	CurrentVersion  string           `yaml:"current_version"`
	Artifacts       []ArtifactStatus `yaml:"artifacts,omitempty"`
	Conflicts       []string         `yaml:"conflicts,omitempty"`
	ConflictCopies  []string         `yaml:"conflict_copies,omitempty"`
	Lock            *LockReport      `yaml:"lock,omitempty"`
}

// confirm asks the operator a yes/no question. Non-interactive mode and
// a missing Confirm hook both answer no: the default is always to abort
// rather than act on data the user touched.
func (e *Engine) confirm(prompt string) bool {
	if e.cfg.NonInteractive || e.cfg.Confirm == nil {
		return false
	}
	return e.cfg.Confirm(prompt)
}

// provisioner returns the configured provisioner, falling back to the
// subprocess-backed one for the backend.
func (e *Engine) provisioner(backend Backend) (EnvProvisioner, error) {
	if e.cfg.Provisioner != nil {
		return e.cfg.Provisioner, nil
	}
	return NewProvisioner(backend, e.cfg.ProjectDir)
}

// Setup converges the project to the desired state. Safe to re-run:
// a converged project is a no-op.
func (e *Engine) Setup() (*Report, error) {
	setPhase("setup")
	defer clearPhase()
	return e.converge(e.cfg.Force)
}

// Rebuild is the forced full-rebuild path: the recovery route from a
// corrupted config record. The environment is recreated and tool-owned
// artifacts regenerated; user-owned files keep their protections.
func (e *Engine) Rebuild() (*Report, error) {
	setPhase("rebuild")
	defer clearPhase()
	return e.converge(true)
}

func (e *Engine) converge(force bool) (*Report, error) {
	root := e.cfg.ProjectDir

	// 1. Load the config record and run the priority chains.
	cs, err := LoadConfigStore(configPath(root))
	if err != nil {
		return nil, err
	}
	rc, err := Resolve(e.cfg.Options, cs, root)
	if err != nil {
		var corrupt *CorruptedStateError
		if !errors.As(err, &corrupt) || !force {
			return nil, err
		}
		// Forced rebuild discards the unreadable record instead of
		// guessing a value for it.
		logf("discarding corrupted config record: %v", corrupt)
		if err := cs.Remove(); err != nil {
			return nil, err
		}
		if rc, err = Resolve(e.cfg.Options, cs, root); err != nil {
			return nil, err
		}
	}
	logf("resolved backend=%s (%s) env=%s (%s)", rc.Backend, rc.BackendSource, rc.EnvName, rc.EnvNameSource)

	// 2. Classify the project state.
	artifacts, err := DesiredArtifacts(root, rc)
	if err != nil {
		return nil, err
	}
	cls, err := Classify(root, rc, cs, artifacts)
	if err != nil {
		return nil, err
	}
	if cls.State == StateCorrupted {
		if !force {
			return nil, cls.Corrupted
		}
		logf("discarding corrupted config record: %v", cls.Corrupted)
		if err := cs.Remove(); err != nil {
			return nil, err
		}
		if cls, err = Classify(root, rc, cs, artifacts); err != nil {
			return nil, err
		}
	}
	logf("classified state=%s", cls.State)

	report := &Report{
		State:           cls.State,
		Backend:         rc.Backend,
		BackendSource:   rc.BackendSource,
		EnvName:         rc.EnvName,
		EnvNameSource:   rc.EnvNameSource,
		PythonVersion:   rc.PythonVersion,
		RecordedVersion: cls.RecordedVersion,
		CurrentVersion:  Version,
		Conflicts:       cls.Conflicts,
	}

	// 3. Validate the dependency lock when a spec file is in play.
	if specFile, lockFile, ok := specAndLockPaths(root, rc.Backend); ok {
		status, err := CheckLockStatus(specFile, lockFile)
		if err != nil {
			return nil, err
		}
		report.Lock = &LockReport{SpecFile: specFile, LockFile: lockFile, Status: status}
		if err := enforceLockPolicy(status, specFile, lockFile, e.cfg.lockPolicy()); err != nil {
			return report, err
		}
		// Under the warn policy an interactive operator still gets to
		// stop here; non-interactive runs proceed on the logged warning.
		if status != LockFresh && e.cfg.lockPolicy() != LockPolicyStrict &&
			!e.cfg.NonInteractive && e.cfg.Confirm != nil {
			prompt := fmt.Sprintf("Lock file %s is %s relative to %s. Continue anyway?", lockFile, status, specFile)
			if !e.cfg.Confirm(prompt) {
				return report, &StaleLockError{SpecFile: specFile, LockFile: lockFile, Status: status}
			}
		}
	}

	// 4. Surface conflicts before anything is written. Every affected
	//    path is listed; proceeding needs explicit confirmation.
	if len(cls.Conflicts) > 0 {
		logf("%d user-modified artifact(s) diverge from their baseline:", len(cls.Conflicts))
		for _, p := range cls.Conflicts {
			logf("  %s", p)
		}
		prompt := fmt.Sprintf("Leave these files untouched and write updated content to .pyve-%s siblings?", Version)
		if !e.confirm(prompt) {
			return report, fmt.Errorf("%d user-modified artifact(s): %w", len(cls.Conflicts), ErrConflictPending)
		}
	}

	// 5. Seed environment.yml for a fresh micromamba project.
	if rc.Backend == BackendMicromamba {
		if _, err := os.Stat(envSpecPath(root)); os.IsNotExist(err) {
			seed, err := renderEnvSpecSeed(rc)
			if err != nil {
				return nil, err
			}
			if err := writeFileAtomic(envSpecPath(root), seed, 0o644); err != nil {
				return nil, err
			}
			logf("seeded %s", envSpecPath(root))
		}
	}

	// 6. Realize the environment.
	prov, err := e.provisioner(rc.Backend)
	if err != nil {
		return nil, err
	}
	if force && prov.Exists(rc) {
		if err := prov.Remove(rc); err != nil {
			return nil, err
		}
	}
	if !prov.Exists(rc) {
		if rc.PythonVersion != "" {
			resolved, err := prov.ResolveInterpreter(rc.PythonVersion)
			if err != nil {
				return nil, err
			}
			logf("interpreter %s resolved to %s", rc.PythonVersion, resolved)
			rc.PythonVersion = resolved
			report.PythonVersion = resolved
		}
		if err := prov.Create(rc); err != nil {
			return nil, err
		}
	}

	// 7. Converge the artifacts.
	for _, plan := range cls.Plans {
		sibling, err := ApplyPlan(root, plan)
		if err != nil {
			return nil, err
		}
		if sibling != "" {
			logf("wrote %s for manual review", sibling)
			report.ConflictCopies = append(report.ConflictCopies, sibling)
		}
		report.Artifacts = append(report.Artifacts, ArtifactStatus{
			Name:        plan.Desc.Name,
			Path:        plan.Desc.Path,
			Disposition: plan.Disposition,
		})
	}
	if err := RewriteManagedSection(gitignorePath(root), rc.Backend); err != nil {
		return nil, err
	}

	// 8. Hook shell auto-activation (best-effort).
	if e.cfg.direnvEnabled() {
		direnvAllow(root)
	}

	// 9. Record the resolved configuration and tool version. Only a
	//    fully successful reconciliation reaches this point.
	cs.Set("backend", string(rc.Backend))
	cs.Set("pyve_version", Version)
	cs.Set(string(rc.Backend)+".env_name", rc.EnvName)
	if rc.PythonVersion != "" {
		cs.Set("python_version", rc.PythonVersion)
	}
	if err := cs.Save(); err != nil {
		return nil, err
	}

	logf("converged (env=%s backend=%s)", rc.EnvName, rc.Backend)
	return report, nil
}

// Status classifies the project and reports without mutating anything.
func (e *Engine) Status() (*Report, error) {
	setPhase("status")
	defer clearPhase()
	root := e.cfg.ProjectDir

	cs, err := LoadConfigStore(configPath(root))
	if err != nil {
		return nil, err
	}
	rc, err := Resolve(e.cfg.Options, cs, root)
	if err != nil {
		var corrupt *CorruptedStateError
		if errors.As(err, &corrupt) {
			return &Report{State: StateCorrupted, CurrentVersion: Version}, nil
		}
		return nil, err
	}

	artifacts, err := DesiredArtifacts(root, rc)
	if err != nil {
		return nil, err
	}
	cls, err := Classify(root, rc, cs, artifacts)
	if err != nil {
		return nil, err
	}

	report := &Report{
		State:           cls.State,
		Backend:         rc.Backend,
		BackendSource:   rc.BackendSource,
		EnvName:         rc.EnvName,
		EnvNameSource:   rc.EnvNameSource,
		PythonVersion:   rc.PythonVersion,
		RecordedVersion: cls.RecordedVersion,
		CurrentVersion:  Version,
		Conflicts:       cls.Conflicts,
	}
	for _, plan := range cls.Plans {
		report.Artifacts = append(report.Artifacts, ArtifactStatus{
			Name:        plan.Desc.Name,
			Path:        plan.Desc.Path,
			Disposition: plan.Disposition,
		})
	}
	if specFile, lockFile, ok := specAndLockPaths(root, rc.Backend); ok {
		status, err := CheckLockStatus(specFile, lockFile)
		if err != nil {
			return nil, err
		}
		report.Lock = &LockReport{SpecFile: specFile, LockFile: lockFile, Status: status}
	}
	return report, nil
}

// CheckLock runs the staleness validator alone under the configured
// policy. ok is false when the backend has no spec file on disk.
func (e *Engine) CheckLock() (rep *LockReport, ok bool, err error) {
	setPhase("lock")
	defer clearPhase()
	root := e.cfg.ProjectDir

	cs, err := LoadConfigStore(configPath(root))
	if err != nil {
		return nil, false, err
	}
	rc, err := Resolve(e.cfg.Options, cs, root)
	if err != nil {
		return nil, false, err
	}
	specFile, lockFile, ok := specAndLockPaths(root, rc.Backend)
	if !ok {
		return nil, false, nil
	}
	status, err := CheckLockStatus(specFile, lockFile)
	if err != nil {
		return nil, false, err
	}
	rep = &LockReport{SpecFile: specFile, LockFile: lockFile, Status: status}
	return rep, true, enforceLockPolicy(status, specFile, lockFile, e.cfg.lockPolicy())
}

// Teardown removes the environment, the pyve state directory, and the
// managed gitignore section. User-owned artifacts stay in place. It is
// deliberately tolerant: a corrupted record does not block teardown.
func (e *Engine) Teardown() error {
	setPhase("teardown")
	defer clearPhase()
	root := e.cfg.ProjectDir

	cs, err := LoadConfigStore(configPath(root))
	if err != nil {
		return err
	}
	rc, err := Resolve(e.cfg.Options, cs, root)
	if err != nil {
		var corrupt *CorruptedStateError
		if !errors.As(err, &corrupt) {
			return err
		}
		logf("config record is corrupted, removing local state only")
		rc = nil
	}

	if rc != nil {
		prov, err := e.provisioner(rc.Backend)
		if err != nil {
			return err
		}
		if prov.Exists(rc) {
			if err := prov.Remove(rc); err != nil {
				return err
			}
		}
	}

	if err := RemoveManagedSection(gitignorePath(root)); err != nil {
		return err
	}
	if err := os.RemoveAll(venvDir(root)); err != nil {
		return fmt.Errorf("removing %s: %w", venvDir(root), err)
	}
	if err := os.RemoveAll(pyveDir(root)); err != nil {
		return fmt.Errorf("removing %s: %w", pyveDir(root), err)
	}
	logf("teardown complete (user files left in place)")
	return nil
}
