// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package pyve

import (
	"strings"
	"unicode"
)

// maxNameLen caps sanitized environment names.
const maxNameLen = 255

// reservedNames are environment names that collide with the backends'
// own namespaces (conda/mamba reserve base and root) or are too
// ambiguous to be useful. Matched case-insensitively against the
// sanitized result.
var reservedNames = map[string]bool{
	"base":       true,
	"root":       true,
	"default":    true,
	"conda":      true,
	"mamba":      true,
	"micromamba": true,
	"venv":       true,
	"pyve":       true,
}

// SanitizeName canonicalizes free-form text (a directory basename, a
// flag value, a name from environment.yml) into a valid environment
// identifier: lowercase, runs of whitespace and special characters
// collapsed to single hyphens, leading/trailing hyphens stripped,
// first character forced to a letter or underscore, truncated to 255
// characters. Sanitization is idempotent. Returns a *ValidationError
// when the result is empty or matches a reserved name; the caller fills
// in the Source field.
func SanitizeName(raw string) (string, error) {
	var b strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(raw) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
		case r == '-' || unicode.IsSpace(r) || isSpecial(r):
			pendingHyphen = true
		default:
			// Non-ASCII letters and anything else collapse like specials.
			pendingHyphen = true
		}
	}
	name := b.String()
	if len(name) > maxNameLen {
		name = strings.Trim(name[:maxNameLen], "-")
	}
	if name == "" {
		return "", &ValidationError{Field: "env_name", Value: raw, Reason: "no usable characters"}
	}
	if first := name[0]; !(first >= 'a' && first <= 'z') && first != '_' {
		name = "_" + name
		if len(name) > maxNameLen {
			name = name[:maxNameLen]
		}
	}
	if reservedNames[name] {
		return "", &ValidationError{Field: "env_name", Value: raw, Reason: "name is reserved"}
	}
	return name, nil
}

// isSpecial reports whether r is a punctuation or symbol rune that
// should collapse into a hyphen.
func isSpecial(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSymbol(r)
}
