// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Command pyve provisions and reconciles a per-project Python
// execution environment: interpreter pin, isolated package environment
// (venv or micromamba), direnv auto-activation, a .env file, and the
// gitignore hygiene entries, deterministically across re-runs and tool
// upgrades.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mesh-intelligence/pyve/pkg/pyve"
)

// Exit codes. 0 means fully converged.
const (
	exitOK         = 0
	exitValidation = 1
	exitConflict   = 2
	exitCorrupted  = 3
	exitFailure    = 4
)

var (
	flagProjectDir     string
	flagBackend        string
	flagEnvName        string
	flagPython         string
	flagNonInteractive bool
	flagStrictLock     bool
	flagForce          bool
	flagOutput         string
)

var rootCmd = &cobra.Command{
	Use:           "pyve",
	Short:         "Deterministic per-project Python environment provisioning",
	Long: `pyve resolves a backend (venv or micromamba) and an environment
identity from a strict priority chain, classifies the project state,
and idempotently converges the generated artifacts without ever
overwriting a file you have modified.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return validateOutput(flagOutput)
	},
}

// validateOutput rejects report formats printReport cannot render.
func validateOutput(format string) error {
	switch format {
	case "text", "yaml":
		return nil
	default:
		return &pyve.ValidationError{
			Field:  "output format",
			Value:  format,
			Source: "--output flag",
			Reason: "must be text or yaml",
		}
	}
}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create or reconcile the project environment",
	RunE: func(cmd *cobra.Command, args []string) error {
		report, err := engine().Setup()
		if report != nil {
			printReport(report)
		}
		return err
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Classify the project state without changing anything",
	RunE: func(cmd *cobra.Command, args []string) error {
		report, err := engine().Status()
		if err != nil {
			return err
		}
		printReport(report)
		return nil
	},
}

var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Force a full rebuild (the recovery path from a corrupted record)",
	RunE: func(cmd *cobra.Command, args []string) error {
		report, err := engine().Rebuild()
		if report != nil {
			printReport(report)
		}
		return err
	},
}

var teardownCmd = &cobra.Command{
	Use:   "teardown",
	Short: "Remove the environment and pyve state, keeping your files",
	RunE: func(cmd *cobra.Command, args []string) error {
		return engine().Teardown()
	},
}

var lockCmd = &cobra.Command{
	Use:   "lock",
	Short: "Check dependency lock freshness",
	RunE: func(cmd *cobra.Command, args []string) error {
		rep, ok, err := engine().CheckLock()
		if !ok && err == nil {
			fmt.Println(styleMuted.Render("no dependency specification file for the resolved backend"))
			return nil
		}
		if rep != nil {
			printLockReport(rep)
		}
		return err
	},
}

// engine builds the pyve engine from flags and environment toggles.
func engine() *pyve.Engine {
	return pyve.New(pyve.Config{
		ProjectDir: flagProjectDir,
		Options: pyve.Options{
			Backend:       flagBackend,
			EnvName:       flagEnvName,
			PythonVersion: flagPython,
		},
		NonInteractive: flagNonInteractive || !stdinIsTTY(),
		StrictLock:     flagStrictLock,
		Force:          flagForce,
		Confirm:        confirmPrompt,
	})
}

// exitCodeFor maps the engine error taxonomy onto exit codes.
func exitCodeFor(err error) int {
	var validation *pyve.ValidationError
	var corrupted *pyve.CorruptedStateError
	var stale *pyve.StaleLockError
	switch {
	case err == nil:
		return exitOK
	case errors.As(err, &validation):
		return exitValidation
	case errors.Is(err, pyve.ErrConflictPending):
		return exitConflict
	case errors.As(err, &corrupted):
		return exitCorrupted
	case errors.As(err, &stale):
		return exitValidation
	default:
		return exitFailure
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flagProjectDir, "dir", "C", ".", "project directory to operate on")
	pf.StringVar(&flagBackend, "backend", "", "environment backend: venv or micromamba")
	pf.StringVar(&flagEnvName, "name", "", "environment name (sanitized identifier)")
	pf.StringVar(&flagPython, "python", "", "python interpreter version to pin")
	pf.BoolVar(&flagNonInteractive, "non-interactive", false, "never prompt; abort instead of acting on modified files")
	pf.BoolVar(&flagStrictLock, "strict-lock", false, "treat a stale or missing lock file as a failure")
	pf.StringVarP(&flagOutput, "output", "o", "text", "output format for reports: text or yaml")
	setupCmd.Flags().BoolVar(&flagForce, "force", false, "force a full rebuild of the environment")
	lockCmd.Flags().BoolVar(&flagStrictLock, "strict", false, "fail when the lock file is stale or missing")

	// PYVE_BACKEND, PYVE_NON_INTERACTIVE, and PYVE_STRICT_LOCK override
	// the corresponding flags when the flags are unset.
	viper.SetEnvPrefix("pyve")
	viper.AutomaticEnv()
	cobra.OnInitialize(func() {
		if flagBackend == "" {
			flagBackend = viper.GetString("backend")
		}
		if !flagNonInteractive {
			flagNonInteractive = viper.GetBool("non_interactive")
		}
		if !flagStrictLock {
			flagStrictLock = viper.GetBool("strict_lock")
		}
	})

	rootCmd.AddCommand(setupCmd, statusCmd, rebuildCmd, teardownCmd, lockCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, styleError.Render("error: ")+err.Error())
		os.Exit(exitCodeFor(err))
	}
}
