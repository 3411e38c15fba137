// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import "github.com/charmbracelet/lipgloss"

// Semantic styles for operator-facing output.
var (
	styleSuccess = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	styleWarning = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	styleError   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	styleMuted   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	styleTitle   = lipgloss.NewStyle().Bold(true)
)

// stateStyle picks a style for a project state string.
func stateStyle(state string) lipgloss.Style {
	switch state {
	case "up-to-date":
		return styleSuccess
	case "corrupted", "conflict-pending":
		return styleError
	case "uninitialized":
		return styleMuted
	default:
		return styleWarning
	}
}
