// Package notify turns generated alerts into side effects: a UI toast, a
// severity-coded terminal bell, and push sinks (ntfy, the SQLite archive).
// Everything here is fire-and-forget; errors are logged and dropped so the
// engine never sees them.
package notify

import (
	"io"
	"strings"
	"sync"

	"github.com/osintwatch/vigil/internal/alert"
	"github.com/osintwatch/vigil/internal/logging"
)

// Pusher delivers an alert to an out-of-process channel.
type Pusher interface {
	Push(a alert.Alert) error
}

// beepCount maps severity to bell count, mirroring the dashboard's
// audio cue: one beep for medium, two for high, three for critical.
func beepCount(s alert.Severity) int {
	switch s {
	case alert.SeverityCritical:
		return 3
	case alert.SeverityHigh:
		return 2
	}
	return 1
}

// Hub fans alert side effects out to whichever channels are configured.
// It implements alert.Notifier. Zero-value channels are skipped.
type Hub struct {
	mu      sync.Mutex
	toast   func(alert.Alert)
	bell    io.Writer
	pushers []Pusher
}

// NewHub creates a hub with no channels attached.
func NewHub() *Hub {
	return &Hub{}
}

// SetToast attaches the visual channel, typically a closure around
// tea.Program.Send.
func (h *Hub) SetToast(fn func(alert.Alert)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.toast = fn
}

// SetBell attaches the audio channel. The writer should reach the
// user's terminal.
func (h *Hub) SetBell(w io.Writer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.bell = w
}

// AddPusher attaches a push sink.
func (h *Hub) AddPusher(p Pusher) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.pushers = append(h.pushers, p)
}

// Show displays the alert as a transient toast.
func (h *Hub) Show(a alert.Alert) {
	h.mu.Lock()
	toast := h.toast
	h.mu.Unlock()

	if toast != nil {
		toast(a)
	}
}

// Play rings the terminal bell, once per severity step.
func (h *Hub) Play(s alert.Severity) {
	h.mu.Lock()
	bell := h.bell
	h.mu.Unlock()

	if bell == nil {
		return
	}
	if _, err := bell.Write([]byte(strings.Repeat("\a", beepCount(s)))); err != nil {
		logging.Debug("bell write failed", "error", err)
	}
}

// Push delivers the alert to every push sink. Failures are logged,
// never returned.
func (h *Hub) Push(a alert.Alert) {
	h.mu.Lock()
	pushers := make([]Pusher, len(h.pushers))
	copy(pushers, h.pushers)
	h.mu.Unlock()

	for _, p := range pushers {
		if err := p.Push(a); err != nil {
			logging.Warn("push notification failed", "alert", a.ID, "error", err)
		}
	}
}
