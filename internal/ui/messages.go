// Package ui provides the Bubble Tea TUI for Vigil.
package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/osintwatch/vigil/internal/alert"
)

// ToastMsg is sent when a new alert should flash across the top bar.
type ToastMsg struct {
	Alert alert.Alert
}

// toastExpired clears the toast banner.
type toastExpired struct {
	id string
}

// ageTick redraws relative timestamps once a minute.
type ageTick struct{}

func ageTickCmd() tea.Cmd {
	return tea.Tick(time.Minute, func(time.Time) tea.Msg {
		return ageTick{}
	})
}

// toastDuration is how long the banner stays up.
const toastDuration = 5 * time.Second

func toastExpireCmd(id string) tea.Cmd {
	return tea.Tick(toastDuration, func(time.Time) tea.Msg {
		return toastExpired{id: id}
	})
}
