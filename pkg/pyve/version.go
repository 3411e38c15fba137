// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package pyve

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is the current pyve release. It is recorded into each
// project's ConfigRecord on successful reconciliation and compared on
// every subsequent invocation.
const Version = "1.6.0"

// Ordering is the result of comparing two version strings.
type Ordering int

const (
	Less Ordering = iota - 1
	Equal
	Greater
)

func (o Ordering) String() string {
	switch o {
	case Less:
		return "less"
	case Greater:
		return "greater"
	default:
		return "equal"
	}
}

// CompareVersions orders two dotted numeric version strings. Components
// are compared left to right as non-negative integers; the shorter
// version is right-padded with zeros, so "1.0" and "1.0.0" compare
// equal. Returns an error for empty or non-numeric components.
func CompareVersions(a, b string) (Ordering, error) {
	av, err := parseVersion(a)
	if err != nil {
		return Equal, err
	}
	bv, err := parseVersion(b)
	if err != nil {
		return Equal, err
	}
	for len(av) < len(bv) {
		av = append(av, 0)
	}
	for len(bv) < len(av) {
		bv = append(bv, 0)
	}
	for i := range av {
		switch {
		case av[i] < bv[i]:
			return Less, nil
		case av[i] > bv[i]:
			return Greater, nil
		}
	}
	return Equal, nil
}

// parseVersion splits a dotted version string into integer components.
func parseVersion(v string) ([]int, error) {
	if strings.TrimSpace(v) == "" {
		return nil, &ValidationError{Field: "version", Value: v, Reason: "empty version string"}
	}
	parts := strings.Split(strings.TrimSpace(v), ".")
	nums := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return nil, &ValidationError{
				Field:  "version",
				Value:  v,
				Reason: fmt.Sprintf("component %q is not a non-negative integer", p),
			}
		}
		nums = append(nums, n)
	}
	return nums, nil
}
