// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package pyve

import "fmt"

// ProjectState is the closed classification of a project's recorded
// state versus the current tool. String-typed ad-hoc states are exactly
// the bug class this enum replaces: unrecognized input maps to
// StateCorrupted, never to a guessed valid state.
type ProjectState string

const (
	StateUninitialized   ProjectState = "uninitialized"
	StateUpToDate        ProjectState = "up-to-date"
	StateNeedsReconcile  ProjectState = "needs-reconciliation"
	StateCorrupted       ProjectState = "corrupted"
	StateConflictPending ProjectState = "conflict-pending"
)

// Classification is the computed state plus everything the operator
// needs to act on it. Classification never mutates the project; it only
// computes the next required action.
type Classification struct {
	State           ProjectState
	RecordedVersion string
	// Reasons explains, one line each, what drove a non-up-to-date
	// classification.
	Reasons []string
	// Conflicts lists destination paths of user-modified artifacts.
	Conflicts []string
	// Plans carries the per-artifact dispositions so the engine does
	// not recompute them after classification.
	Plans []ArtifactPlan
	// Corrupted is set when State is StateCorrupted.
	Corrupted *CorruptedStateError
}

// Classify inspects the ConfigRecord, the recorded tool version, and
// the on-disk artifacts to place the project in one of the five states.
func Classify(projectDir string, rc *ResolvedConfig, cs *ConfigStore, artifacts []ArtifactDescriptor) (Classification, error) {
	var c Classification

	if !cs.Exists() {
		c.State = StateUninitialized
		c.Reasons = append(c.Reasons, "no config record at "+cs.Path())
		// Plans are still computed so the engine can surface a
		// pre-existing user file that differs from the fresh seed.
		for _, desc := range artifacts {
			plan, err := PlanArtifact(projectDir, desc)
			if err != nil {
				return c, err
			}
			c.Plans = append(c.Plans, plan)
			if plan.Disposition == DispositionConflict {
				c.Conflicts = append(c.Conflicts, desc.Path)
			}
		}
		return c, nil
	}

	// Required fields must parse. A record that exists but cannot be
	// read for backend or version is corrupted, full stop; update
	// semantics refuse it and only a forced rebuild recovers.
	if recorded, ok := cs.Get("backend"); ok {
		if _, err := ParseBackend(recorded); err != nil {
			c.State = StateCorrupted
			c.Corrupted = &CorruptedStateError{File: cs.Path(), Field: "backend", Value: recorded}
			return c, nil
		}
	} else {
		c.State = StateCorrupted
		c.Corrupted = &CorruptedStateError{File: cs.Path(), Field: "backend", Value: "(missing)"}
		return c, nil
	}

	recordedVersion, ok := cs.Get("pyve_version")
	if !ok {
		c.State = StateCorrupted
		c.Corrupted = &CorruptedStateError{File: cs.Path(), Field: "pyve_version", Value: "(missing)"}
		return c, nil
	}
	c.RecordedVersion = recordedVersion

	cmp, err := CompareVersions(recordedVersion, Version)
	if err != nil {
		c.State = StateCorrupted
		c.Corrupted = &CorruptedStateError{File: cs.Path(), Field: "pyve_version", Value: recordedVersion}
		return c, nil
	}

	needsWork := false
	if cmp != Equal {
		needsWork = true
		c.Reasons = append(c.Reasons,
			fmt.Sprintf("recorded version %s differs from current %s", recordedVersion, Version))
	}

	for _, desc := range artifacts {
		plan, err := PlanArtifact(projectDir, desc)
		if err != nil {
			return c, err
		}
		c.Plans = append(c.Plans, plan)
		switch plan.Disposition {
		case DispositionConflict:
			c.Conflicts = append(c.Conflicts, desc.Path)
		case DispositionCreate:
			needsWork = true
			c.Reasons = append(c.Reasons, desc.Name+" is missing")
		case DispositionUpdate:
			needsWork = true
			c.Reasons = append(c.Reasons, desc.Name+" is outdated")
		}
	}

	switch {
	case len(c.Conflicts) > 0:
		c.State = StateConflictPending
	case needsWork:
		c.State = StateNeedsReconcile
	default:
		c.State = StateUpToDate
	}
	return c, nil
}
