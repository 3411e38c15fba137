// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package pyve

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Package-level log state. pyve is single-threaded by design, but the
// mutex keeps the sink safe if tests run helpers in parallel.
var (
	logMu    sync.Mutex
	logSink  *os.File
	logPhase string
)

// setPhase sets the prefix used by logf for subsequent lines.
func setPhase(phase string) {
	logMu.Lock()
	defer logMu.Unlock()
	logPhase = phase
}

// clearPhase resets the logf prefix.
func clearPhase() {
	setPhase("")
}

// openLogSink starts mirroring logf output to the file at path,
// creating parent directories as needed. A previously open sink is
// closed first.
func openLogSink(path string) error {
	logMu.Lock()
	defer logMu.Unlock()
	if logSink != nil {
		logSink.Close()
		logSink = nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening log sink: %w", err)
	}
	logSink = f
	return nil
}

// closeLogSink stops mirroring logf output to a file.
func closeLogSink() {
	logMu.Lock()
	defer logMu.Unlock()
	if logSink != nil {
		logSink.Close()
		logSink = nil
	}
}

// logf writes a single prefixed line to stderr and, when open, the log
// sink. Lower-level components never call logf; only orchestration
// narrates its steps.
func logf(format string, args ...any) {
	logMu.Lock()
	defer logMu.Unlock()
	prefix := "pyve"
	if logPhase != "" {
		prefix = "pyve:" + logPhase
	}
	line := fmt.Sprintf("[%s] %s\n", prefix, fmt.Sprintf(format, args...))
	fmt.Fprint(os.Stderr, line)
	if logSink != nil {
		logSink.WriteString(line)
	}
}
