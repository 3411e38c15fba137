// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package pyve

import (
	_ "embed"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"
)

//go:embed templates/activate.sh.tmpl
var activateTemplate string

//go:embed templates/envrc.tmpl
var envrcTemplate string

//go:embed templates/dotenv.tmpl
var dotenvTemplate string

//go:embed templates/environment.yml.tmpl
var envSpecTemplate string

// SeedData is the template data passed to artifact templates.
type SeedData struct {
	EnvName       string
	EnvDir        string
	Backend       string
	PythonVersion string
	PyveVersion   string
}

// seedData builds template data from a resolved configuration.
func seedData(rc *ResolvedConfig) SeedData {
	return SeedData{
		EnvName:       rc.EnvName,
		EnvDir:        rc.Paths.EnvDir,
		Backend:       string(rc.Backend),
		PythonVersion: rc.PythonVersion,
		PyveVersion:   Version,
	}
}

// renderTemplate executes a named artifact template with data.
func renderTemplate(name, text string, data SeedData) ([]byte, error) {
	tmpl, err := template.New(name).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parsing %s template: %w", name, err)
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return nil, fmt.Errorf("rendering %s template: %w", name, err)
	}
	return []byte(b.String()), nil
}

// DesiredArtifacts returns the full artifact set for a resolved
// configuration: the tool-owned activation script plus the user-owned
// .envrc and .env. Recomputed fresh each run from the current template
// set; never persisted.
func DesiredArtifacts(projectDir string, rc *ResolvedConfig) ([]ArtifactDescriptor, error) {
	data := seedData(rc)

	activate, err := renderTemplate("activate.sh", activateTemplate, data)
	if err != nil {
		return nil, err
	}
	envrc, err := renderTemplate("envrc", envrcTemplate, data)
	if err != nil {
		return nil, err
	}
	dotenv, err := renderTemplate("dotenv", dotenvTemplate, data)
	if err != nil {
		return nil, err
	}

	return []ArtifactDescriptor{
		{
			Name:      "activate.sh",
			Path:      filepath.Join(pyveDir(projectDir), "activate.sh"),
			Content:   activate,
			Ownership: ToolOwned,
		},
		{
			Name:      fileEnvrc,
			Path:      filepath.Join(projectDir, fileEnvrc),
			Content:   envrc,
			Ownership: UserOwned,
		},
		{
			Name:      fileDotEnv,
			Path:      filepath.Join(projectDir, fileDotEnv),
			Content:   dotenv,
			Ownership: UserOwned,
		},
	}, nil
}

// renderEnvSpecSeed renders the minimal environment.yml written when
// the micromamba backend is selected and no spec file exists yet.
func renderEnvSpecSeed(rc *ResolvedConfig) ([]byte, error) {
	return renderTemplate("environment.yml", envSpecTemplate, seedData(rc))
}
