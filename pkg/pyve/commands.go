// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package pyve

import (
	"bytes"
	"fmt"
	"os/exec"
	"strings"
)

// Binary names.
const (
	binPython     = "python3"
	binPyenv      = "pyenv"
	binMicromamba = "micromamba"
	binDirenv     = "direnv"
	binGit        = "git"
)

// orDefault returns val if non-empty, otherwise fallback.
func orDefault(val, fallback string) string {
	if val == "" {
		return fallback
	}
	return val
}

// runCaptured executes a binary in dir (empty means process CWD) and
// returns combined stdout+stderr. The captured text is diagnostic only;
// pyve never parses collaborator output beyond success/failure.
func runCaptured(dir, bin string, arg ...string) (string, error) {
	cmd := exec.Command(bin, arg...)
	if dir != "" {
		cmd.Dir = dir
	}
	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf
	err := cmd.Run()
	out := strings.TrimSpace(buf.String())
	if err != nil {
		return out, fmt.Errorf("%s %s: %w", bin, strings.Join(arg, " "), err)
	}
	return out, nil
}

// haveBinary reports whether bin is on PATH.
func haveBinary(bin string) bool {
	_, err := exec.LookPath(bin)
	return err == nil
}

// direnvAllow approves the project's .envrc when direnv is installed.
// Best-effort: a missing binary or failure is logged, never fatal.
func direnvAllow(dir string) {
	if !haveBinary(binDirenv) {
		logf("direnv not found on PATH, skipping allow")
		return
	}
	if out, err := runCaptured(dir, binDirenv, "allow"); err != nil {
		logf("direnv allow failed: %v (%s)", err, out)
		return
	}
	logf("direnv allow: ok")
}
