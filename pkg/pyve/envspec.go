// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package pyve

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// EnvSpec models the subset of environment.yml that pyve reads. The
// file belongs to micromamba; pyve only extracts the embedded name for
// identity resolution and seeds a minimal spec on fresh setups.
type EnvSpec struct {
	Name         string   `yaml:"name"`
	Channels     []string `yaml:"channels,omitempty"`
	Dependencies []string `yaml:"dependencies,omitempty"`
}

// loadEnvSpec parses environment.yml at path. Returns nil without error
// when the file does not exist.
func loadEnvSpec(path string) (*EnvSpec, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var spec EnvSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &spec, nil
}
