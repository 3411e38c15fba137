// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package pyve

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
)

// Ownership classifies who controls an artifact after creation.
type Ownership int

const (
	// ToolOwned artifacts are regenerated unconditionally.
	ToolOwned Ownership = iota
	// UserOwned artifacts are created once and then protected by
	// three-way reconciliation against the recorded baseline.
	UserOwned
)

// ArtifactDescriptor pairs desired content with a destination. Not
// persisted; recomputed each run from the current template set.
type ArtifactDescriptor struct {
	// Name is the baseline key and display name, e.g. ".envrc".
	Name      string
	Path      string
	Content   []byte
	Ownership Ownership
}

// Disposition is the action reconciliation will take for one artifact.
type Disposition string

const (
	DispositionUpToDate Disposition = "up-to-date"
	DispositionCreate   Disposition = "create"
	DispositionUpdate   Disposition = "update"
	// DispositionConflict means the user modified the artifact since
	// the last reconciliation; the new desired content goes to a
	// version-suffixed sibling instead of the destination.
	DispositionConflict Disposition = "conflict"
)

// ArtifactPlan is the computed action for one artifact. Planning never
// writes; the engine collects plans, surfaces conflicts, then applies.
type ArtifactPlan struct {
	Desc        ArtifactDescriptor
	Disposition Disposition
}

// baselinePath returns where the prior desired content for an artifact
// is recorded.
func baselinePath(root, name string) string {
	return filepath.Join(baselineDir(root), filepath.Base(name))
}

// loadBaseline reads the recorded baseline for an artifact. ok is false
// when no baseline exists (fresh project or pre-baseline tool version).
func loadBaseline(root, name string) (data []byte, ok bool, err error) {
	data, err = os.ReadFile(baselinePath(root, name))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading baseline for %s: %w", name, err)
	}
	return data, true, nil
}

// saveBaseline records content as the artifact's baseline for the next
// reconciliation.
func saveBaseline(root, name string, content []byte) error {
	if err := writeFileAtomic(baselinePath(root, name), content, 0o644); err != nil {
		return fmt.Errorf("recording baseline for %s: %w", name, err)
	}
	return nil
}

// PlanArtifact computes the three-way disposition for one artifact:
// the recorded baseline (prior desired content), the current on-disk
// content, and the new desired content.
//
//   - destination missing            -> create
//   - tool-owned, content differs    -> update (no baseline comparison)
//   - on-disk equals new desired     -> up-to-date
//   - on-disk equals baseline        -> update (user never touched it)
//   - otherwise                      -> conflict (user modified it)
//
// With no recorded baseline the comparison is conservative: anything
// that differs from the new desired content counts as user-modified.
func PlanArtifact(root string, desc ArtifactDescriptor) (ArtifactPlan, error) {
	plan := ArtifactPlan{Desc: desc}
	onDisk, err := os.ReadFile(desc.Path)
	if os.IsNotExist(err) {
		plan.Disposition = DispositionCreate
		return plan, nil
	}
	if err != nil {
		return plan, fmt.Errorf("reading %s: %w", desc.Path, err)
	}

	if bytes.Equal(onDisk, desc.Content) {
		plan.Disposition = DispositionUpToDate
		return plan, nil
	}
	if desc.Ownership == ToolOwned {
		plan.Disposition = DispositionUpdate
		return plan, nil
	}

	baseline, haveBaseline, err := loadBaseline(root, desc.Name)
	if err != nil {
		return plan, err
	}
	if haveBaseline && bytes.Equal(onDisk, baseline) {
		plan.Disposition = DispositionUpdate
		return plan, nil
	}
	plan.Disposition = DispositionConflict
	return plan, nil
}

// conflictSiblingPath is the version-suffixed path that receives new
// desired content when the destination is user-modified.
func conflictSiblingPath(path string) string {
	return path + ".pyve-" + Version
}

// ApplyPlan executes a computed plan. Writes are atomic. Applying the
// same plan twice produces byte-identical results: up-to-date artifacts
// are not rewritten and an existing identical conflict sibling is left
// alone. Every applied artifact (including up-to-date ones) has its
// baseline refreshed to the new desired content, except conflicts,
// whose baseline must keep describing what the user diverged from.
func ApplyPlan(root string, plan ArtifactPlan) (conflictPath string, err error) {
	desc := plan.Desc
	switch plan.Disposition {
	case DispositionCreate, DispositionUpdate:
		if err := writeFileAtomic(desc.Path, desc.Content, 0o644); err != nil {
			return "", err
		}
	case DispositionUpToDate:
		// Nothing to write; fall through to baseline refresh.
	case DispositionConflict:
		sibling := conflictSiblingPath(desc.Path)
		if onDisk, err := os.ReadFile(sibling); err == nil && bytes.Equal(onDisk, desc.Content) {
			return sibling, nil
		}
		if err := writeFileAtomic(sibling, desc.Content, 0o644); err != nil {
			return "", err
		}
		return sibling, nil
	default:
		return "", fmt.Errorf("unknown disposition %q for %s", plan.Disposition, desc.Name)
	}
	if desc.Ownership == UserOwned {
		if err := saveBaseline(root, desc.Name, desc.Content); err != nil {
			return "", err
		}
	}
	return "", nil
}
