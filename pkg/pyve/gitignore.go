// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package pyve

import (
	"fmt"
	"os"
	"strings"
)

// managedGroup is one logical group of the gitignore managed section:
// a fixed comment header followed by its entries.
type managedGroup struct {
	Header  string
	Entries []string
}

// managedGroups returns the current managed section for a backend. The
// venv environment directory is only ignored when the venv backend is
// in play; micromamba keeps environments outside the project tree.
func managedGroups(backend Backend) []managedGroup {
	env := managedGroup{Header: "# pyve: environment", Entries: []string{dirPyve + "/"}}
	if backend == BackendVenv {
		env.Entries = append([]string{dirVenv + "/"}, env.Entries...)
	}
	return []managedGroup{
		env,
		{Header: "# pyve: local secrets", Entries: []string{fileDotEnv}},
		{Header: "# pyve: reconciliation artifacts", Entries: []string{"*.pyve-*"}},
	}
}

// historicalManagedLines lists every line any past pyve release has
// ever written into the managed section. Lines matching this set are
// absorbed into the fresh managed section instead of being preserved as
// user content, so upgrades do not strand stale entries.
var historicalManagedLines = []string{
	".venv",
	".direnv/",
	".python-version",
	"# pyve managed",
	"# pyve: micromamba",
}

// knownManagedSet builds the full recognition set: current headers and
// entries for both backends plus all historically-managed lines.
func knownManagedSet() map[string]bool {
	known := map[string]bool{}
	for _, backend := range []Backend{BackendVenv, BackendMicromamba} {
		for _, g := range managedGroups(backend) {
			known[g.Header] = true
			for _, e := range g.Entries {
				known[e] = true
			}
		}
	}
	for _, l := range historicalManagedLines {
		known[l] = true
	}
	return known
}

// RewriteManagedSection regenerates the managed section at the top of
// the gitignore file, preserving everything else verbatim (ordering and
// user comments intact). Lines recognized as managed, from this release
// or any earlier one, are absorbed rather than duplicated; runs of more
// than one blank line in the user section collapse to one. The rewrite
// is idempotent: feeding its own output back produces identical bytes.
func RewriteManagedSection(path string, backend Backend) error {
	var existing []string
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err == nil {
		existing = splitLines(string(data))
	}

	known := knownManagedSet()
	var preserved []string
	for _, line := range existing {
		if known[strings.TrimSpace(line)] {
			continue
		}
		preserved = append(preserved, line)
	}
	preserved = collapseBlankRuns(preserved)

	var b strings.Builder
	for _, g := range managedGroups(backend) {
		b.WriteString(g.Header + "\n")
		for _, e := range g.Entries {
			b.WriteString(e + "\n")
		}
	}
	if len(preserved) > 0 {
		b.WriteString("\n")
		for _, line := range preserved {
			b.WriteString(line + "\n")
		}
	}
	if b.String() == string(data) {
		return nil
	}
	return writeFileAtomic(path, []byte(b.String()), 0o644)
}

// RemoveManagedSection strips every recognized managed line from the
// gitignore file, leaving user content untouched. An emptied file is
// deleted. Used by teardown; a missing file is a no-op.
func RemoveManagedSection(path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	known := knownManagedSet()
	var preserved []string
	for _, line := range splitLines(string(data)) {
		if known[strings.TrimSpace(line)] {
			continue
		}
		preserved = append(preserved, line)
	}
	preserved = collapseBlankRuns(preserved)
	if len(preserved) == 0 {
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("removing %s: %w", path, err)
		}
		return nil
	}
	return writeFileAtomic(path, []byte(strings.Join(preserved, "\n")+"\n"), 0o644)
}

// InsertEntry adds a single entry to the logical group named by marker
// (a managed header line). No-op if the entry is already present
// anywhere in the file; appends at end-of-file if the marker is absent.
func InsertEntry(path, marker, entry string) error {
	var existing []string
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err == nil {
		existing = splitLines(string(data))
	}

	for _, line := range existing {
		if strings.TrimSpace(line) == entry {
			return nil
		}
	}

	inserted := false
	out := make([]string, 0, len(existing)+1)
	for _, line := range existing {
		out = append(out, line)
		if !inserted && strings.TrimSpace(line) == marker {
			out = append(out, entry)
			inserted = true
		}
	}
	if !inserted {
		out = append(out, entry)
	}
	return writeFileAtomic(path, []byte(strings.Join(out, "\n")+"\n"), 0o644)
}

// splitLines splits file content into lines without a trailing phantom
// element for the final newline.
func splitLines(s string) []string {
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

// collapseBlankRuns trims leading/trailing blank lines and squeezes
// interior runs of blank lines down to one.
func collapseBlankRuns(lines []string) []string {
	var out []string
	blankPending := false
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			blankPending = len(out) > 0
			continue
		}
		if blankPending {
			out = append(out, "")
			blankPending = false
		}
		out = append(out, line)
	}
	return out
}
