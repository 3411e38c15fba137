// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package pyve

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"
)

// ConfigStore reads and writes the project's ConfigRecord at
// .pyve/config. The format is deliberately minimal and line-oriented:
// top-level "key: value" pairs, plus exactly one level of nesting
// expressed as a bare parent key line followed by two-space-indented
// child pairs. Lookup is by dotted path ("micromamba.env_name"). Deep
// nesting, lists, and quoting beyond surrounding-quote stripping are
// unsupported on purpose.
type ConfigStore struct {
	path   string
	top    map[string]string
	nested map[string]map[string]string
	exists bool
}

// LoadConfigStore reads the ConfigRecord at path. A missing file is not
// an error: the returned store is empty and Exists reports false.
func LoadConfigStore(path string) (*ConfigStore, error) {
	cs := &ConfigStore{
		path:   path,
		top:    map[string]string{},
		nested: map[string]map[string]string{},
	}
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return cs, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	cs.exists = true

	var parent string
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		raw := scanner.Text()
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		indented := strings.HasPrefix(raw, "  ") || strings.HasPrefix(raw, "\t")
		key, value, hasValue := cutKeyValue(trimmed)
		switch {
		case indented && parent != "":
			if !hasValue {
				return nil, fmt.Errorf("%s:%d: nested key %q has no value", path, lineNo, key)
			}
			cs.nested[parent][key] = value
		case !indented && !hasValue:
			// Bare key opens a nesting group.
			parent = key
			if cs.nested[parent] == nil {
				cs.nested[parent] = map[string]string{}
			}
		case !indented:
			parent = ""
			cs.top[key] = value
		default:
			return nil, fmt.Errorf("%s:%d: indented line outside a group", path, lineNo)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return cs, nil
}

// cutKeyValue splits a "key: value" line. hasValue is false for a bare
// "key:" line (a nesting parent). Surrounding single or double quotes
// on the value are stripped.
func cutKeyValue(line string) (key, value string, hasValue bool) {
	key, value, found := strings.Cut(line, ":")
	key = strings.TrimSpace(key)
	value = strings.TrimSpace(value)
	if !found || value == "" {
		return key, "", false
	}
	return key, unquote(value), true
}

// unquote strips one layer of matching surrounding quotes.
func unquote(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

// Exists reports whether the ConfigRecord file was present on load.
func (cs *ConfigStore) Exists() bool { return cs.exists }

// Path returns the on-disk location of the ConfigRecord.
func (cs *ConfigStore) Path() string { return cs.path }

// Get looks up a value by dotted path. The second return is false when
// the key is absent.
func (cs *ConfigStore) Get(dotted string) (string, bool) {
	parent, child, nested := strings.Cut(dotted, ".")
	if !nested {
		v, ok := cs.top[dotted]
		return v, ok
	}
	group, ok := cs.nested[parent]
	if !ok {
		return "", false
	}
	v, ok := group[child]
	return v, ok
}

// Set stores a value at a dotted path, creating the nesting group as
// needed. Changes are in-memory until Save.
func (cs *ConfigStore) Set(dotted, value string) {
	parent, child, nested := strings.Cut(dotted, ".")
	if !nested {
		cs.top[dotted] = value
		return
	}
	if cs.nested[parent] == nil {
		cs.nested[parent] = map[string]string{}
	}
	cs.nested[parent][child] = value
}

// Delete removes a dotted-path key. Deleting the last child of a group
// removes the group line as well.
func (cs *ConfigStore) Delete(dotted string) {
	parent, child, nested := strings.Cut(dotted, ".")
	if !nested {
		delete(cs.top, dotted)
		return
	}
	if group, ok := cs.nested[parent]; ok {
		delete(group, child)
		if len(group) == 0 {
			delete(cs.nested, parent)
		}
	}
}

// Save writes the record atomically. Keys are emitted in sorted order
// so repeated saves of the same state are byte-identical.
func (cs *ConfigStore) Save() error {
	var b strings.Builder
	topKeys := make([]string, 0, len(cs.top))
	for k := range cs.top {
		topKeys = append(topKeys, k)
	}
	sort.Strings(topKeys)
	for _, k := range topKeys {
		fmt.Fprintf(&b, "%s: %q\n", k, cs.top[k])
	}

	parents := make([]string, 0, len(cs.nested))
	for k := range cs.nested {
		parents = append(parents, k)
	}
	sort.Strings(parents)
	for _, p := range parents {
		fmt.Fprintf(&b, "%s:\n", p)
		children := make([]string, 0, len(cs.nested[p]))
		for k := range cs.nested[p] {
			children = append(children, k)
		}
		sort.Strings(children)
		for _, c := range children {
			fmt.Fprintf(&b, "  %s: %q\n", c, cs.nested[p][c])
		}
	}

	if err := writeFileAtomic(cs.path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("saving config record: %w", err)
	}
	cs.exists = true
	return nil
}

// Remove deletes the ConfigRecord file. Used only by explicit teardown
// and forced rebuild; a missing file is not an error.
func (cs *ConfigStore) Remove() error {
	if err := os.Remove(cs.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing %s: %w", cs.path, err)
	}
	cs.exists = false
	cs.top = map[string]string{}
	cs.nested = map[string]map[string]string{}
	return nil
}
