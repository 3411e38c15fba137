// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package pyve

import "path/filepath"

// Directory and file name constants.
const (
	dirPyve     = ".pyve"
	dirBaseline = "baseline"
	dirLock     = "lock"
	dirVenv     = ".venv"

	fileConfig       = "config"
	fileEnvSpec      = "environment.yml"
	fileRequirements = "requirements.txt"
	fileReqLock      = "requirements.lock"
	fileEnvSpecLock  = "environment.lock.yml"
	fileEnvrc        = ".envrc"
	fileDotEnv       = ".env"
	fileGitignore    = ".gitignore"
)

// pyveDir returns the project's pyve state directory.
func pyveDir(root string) string { return filepath.Join(root, dirPyve) }

func configPath(root string) string { return filepath.Join(pyveDir(root), fileConfig) }

func baselineDir(root string) string { return filepath.Join(pyveDir(root), dirBaseline) }

func lockStatusDir(root string) string { return filepath.Join(pyveDir(root), dirLock) }

func venvDir(root string) string { return filepath.Join(root, dirVenv) }

func envSpecPath(root string) string { return filepath.Join(root, fileEnvSpec) }

func requirementsPath(root string) string { return filepath.Join(root, fileRequirements) }

func gitignorePath(root string) string { return filepath.Join(root, fileGitignore) }
