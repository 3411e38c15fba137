// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/pyve/pkg/pyve"
)

// printReport renders a report in the selected output format.
func printReport(r *pyve.Report) {
	if flagOutput == "yaml" {
		data, err := yaml.Marshal(r)
		if err != nil {
			fmt.Fprintf(os.Stderr, "marshaling report: %v\n", err)
			return
		}
		os.Stdout.Write(data)
		return
	}

	fmt.Println(styleTitle.Render("project state: ") + stateStyle(string(r.State)).Render(string(r.State)))
	fmt.Printf("  backend:  %s %s\n", r.Backend, styleMuted.Render("(from "+string(r.BackendSource)+")"))
	fmt.Printf("  env name: %s %s\n", r.EnvName, styleMuted.Render("(from "+string(r.EnvNameSource)+")"))
	if r.PythonVersion != "" {
		fmt.Printf("  python:   %s\n", r.PythonVersion)
	}
	if r.RecordedVersion != "" && r.RecordedVersion != r.CurrentVersion {
		fmt.Printf("  version:  recorded %s, current %s\n", r.RecordedVersion, r.CurrentVersion)
	} else {
		fmt.Printf("  version:  %s\n", r.CurrentVersion)
	}
	for _, a := range r.Artifacts {
		style := styleMuted
		switch a.Disposition {
		case pyve.DispositionConflict:
			style = styleError
		case pyve.DispositionCreate, pyve.DispositionUpdate:
			style = styleWarning
		}
		fmt.Printf("  %-12s %s\n", a.Name, style.Render(string(a.Disposition)))
	}
	for _, p := range r.ConflictCopies {
		fmt.Println("  " + styleWarning.Render("review: "+p))
	}
	if r.Lock != nil {
		printLockReport(r.Lock)
	}
}

// printLockReport renders a lock staleness result.
func printLockReport(l *pyve.LockReport) {
	style := styleSuccess
	if l.Status != pyve.LockFresh {
		style = styleWarning
	}
	fmt.Printf("  lock:     %s %s\n", style.Render(string(l.Status)),
		styleMuted.Render(l.LockFile+" vs "+l.SpecFile))
}
