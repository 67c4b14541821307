package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/osintwatch/vigil/internal/alert"
)

// Colors used in the application.
var (
	colorCritical  = lipgloss.Color("196") // Red
	colorHigh      = lipgloss.Color("208") // Orange
	colorMedium    = lipgloss.Color("220") // Yellow
	colorSecondary = lipgloss.Color("241") // Gray
	colorMuted     = lipgloss.Color("240") // Darker gray
	colorHighlight = lipgloss.Color("212") // Pink
)

// SelectedItem style for the currently highlighted alert.
var SelectedItem = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("255")).
	Background(lipgloss.Color("62")).
	Padding(0, 1)

// NormalItem style for unselected, unread alerts.
var NormalItem = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Padding(0, 1)

// ReadItem style for alerts that have been read.
var ReadItem = lipgloss.NewStyle().
	Foreground(colorSecondary).
	Padding(0, 1)

// PanelTitle style for the alert panel header.
var PanelTitle = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorHighlight).
	Padding(0, 1)

// UnreadBadge style for the unread counter.
var UnreadBadge = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("255")).
	Background(colorCritical).
	Padding(0, 1)

// MutedBadge style for the mute indicator.
var MutedBadge = lipgloss.NewStyle().
	Foreground(colorMuted).
	Padding(0, 1)

// StatusBar style for the bottom status bar.
var StatusBar = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Background(lipgloss.Color("236")).
	Padding(0, 1)

// StatusBarKey style for key hints in status bar.
var StatusBarKey = lipgloss.NewStyle().
	Foreground(colorHighlight).
	Bold(true)

// StatusBarText style for descriptive text in status bar.
var StatusBarText = lipgloss.NewStyle().
	Foreground(colorSecondary)

// Toast style for the transient alert banner.
var Toast = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("255")).
	Background(lipgloss.Color("236")).
	Padding(0, 1)

// ErrorStyle for displaying errors.
var ErrorStyle = lipgloss.NewStyle().
	Foreground(colorCritical).
	Bold(true).
	Padding(0, 1)

// HelpStyle for help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(colorMuted).
	Padding(1, 2)

// DescStyle for the expanded alert description line.
var DescStyle = lipgloss.NewStyle().
	Foreground(colorSecondary).
	Padding(0, 3)

// severityStyle returns the badge style for a severity level.
func severityStyle(s alert.Severity) lipgloss.Style {
	switch s {
	case alert.SeverityCritical:
		return lipgloss.NewStyle().Bold(true).Foreground(colorCritical)
	case alert.SeverityHigh:
		return lipgloss.NewStyle().Bold(true).Foreground(colorHigh)
	default:
		return lipgloss.NewStyle().Foreground(colorMedium)
	}
}
