// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package pyve

// Options carries the explicit flag values feeding the priority
// chains. An empty field means "not set"; the chain falls through to
// the next source.
type Options struct {
	Backend       string
	EnvName       string
	PythonVersion string
}

// Config holds all engine settings for one invocation. The CLI
// constructs a Config from flags and environment toggles and passes it
// to New().
type Config struct {
	// ProjectDir is the project root being provisioned (default ".").
	ProjectDir string

	// Options are the explicit flag values for the priority chains.
	Options Options

	// NonInteractive suppresses every prompt. Any decision that would
	// have been asked defaults to "abort rather than destroy data".
	NonInteractive bool

	// StrictLock escalates a stale or missing dependency lock file to
	// a hard failure instead of a warning.
	StrictLock bool

	// Force enables the full-rebuild path: the only way out of a
	// corrupted config record.
	Force bool

	// Confirm asks the operator a yes/no question. Nil behaves like
	// NonInteractive for that question.
	Confirm func(prompt string) bool

	// Provisioner overrides the subprocess-backed environment
	// provisioner. Tests inject a stub here.
	Provisioner EnvProvisioner

	// RunDirenvAllow controls the best-effort `direnv allow` after
	// writing .envrc (default true). Pointer so tests can disable it
	// without fighting the default.
	RunDirenvAllow *bool
}

// direnvEnabled handles the nil-pointer case for the default (true).
func (c *Config) direnvEnabled() bool {
	if c.RunDirenvAllow == nil {
		return true
	}
	return *c.RunDirenvAllow
}

func (c *Config) applyDefaults() {
	if c.ProjectDir == "" {
		c.ProjectDir = "."
	}
}

// lockPolicy maps the strict toggle onto the validator policy.
func (c *Config) lockPolicy() LockPolicy {
	if c.StrictLock {
		return LockPolicyStrict
	}
	return LockPolicyWarn
}
