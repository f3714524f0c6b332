// Package ui holds the color helpers shared by the CLI commands.
package ui

import (
	"github.com/fatih/color"
	"github.com/goblinsan/gh-project-gantt/pkg/types"
)

// Sprint color functions for building styled strings.
var (
	Bold   = color.New(color.Bold).SprintFunc()
	Dim    = color.New(color.Faint).SprintFunc()
	Cyan   = color.New(color.FgCyan).SprintFunc()
	Green  = color.New(color.FgGreen).SprintFunc()
	Red    = color.New(color.FgRed).SprintFunc()
	Yellow = color.New(color.FgYellow).SprintFunc()
)

// StatusIcon returns a colored marker for compact table display.
func StatusIcon(s types.Status) string {
	switch s {
	case types.StatusDone:
		return Green("✓")
	case types.StatusInProgress:
		return Cyan("●")
	case types.StatusTodo:
		return Dim("◌")
	default:
		return Yellow("?")
	}
}

// StatusLabel returns the status name colored to match its icon.
func StatusLabel(s types.Status) string {
	switch s {
	case types.StatusDone:
		return Green(string(s))
	case types.StatusInProgress:
		return Cyan(string(s))
	case types.StatusTodo:
		return Dim(string(s))
	default:
		return Yellow(string(s))
	}
}
