package alert

import (
	"sync"
	"time"

	"github.com/osintwatch/vigil/internal/logging"
)

// MaxAlerts bounds the log; inserting beyond capacity evicts the oldest.
const MaxAlerts = 50

// Notifier turns a generated alert into a side effect. The log decides
// that and what to notify, never how: implementations own presentation.
// All three calls are best-effort; the log swallows panics and never
// lets a notifier failure surface through Add.
type Notifier interface {
	// Show displays a transient visual message.
	Show(a Alert)
	// Play emits a severity-coded audio cue. Not called while muted.
	Play(s Severity)
	// Push issues an OS-level / remote notification.
	Push(a Alert)
}

// Log is the append-only, capacity-bounded, read/unread alert ledger.
// Safe for concurrent use: the poller goroutines append while the UI
// goroutine reads and mutates read state.
type Log struct {
	mu        sync.Mutex
	notifier  Notifier
	alerts    []Alert // newest first
	unread    int
	muted     bool
	panelOpen bool
	counter   uint64
}

// NewLog creates an empty log. notifier may be nil.
func NewLog(notifier Notifier) *Log {
	return &Log{notifier: notifier}
}

// Add assigns id, timestamp, and unread state to the partial alert,
// prepends it, evicts beyond capacity, and fires the notifier exactly
// once. Mute gates only the audio cue; visual and push still happen.
func (l *Log) Add(a Alert) Alert {
	l.mu.Lock()
	l.counter++
	a.ID = newID(l.counter)
	a.Timestamp = time.Now()
	a.Read = false

	l.alerts = append([]Alert{a}, l.alerts...)
	if len(l.alerts) > MaxAlerts {
		evicted := l.alerts[MaxAlerts:]
		for _, old := range evicted {
			if !old.Read {
				l.unread--
			}
		}
		l.alerts = l.alerts[:MaxAlerts]
	}
	l.unread++
	muted := l.muted
	l.mu.Unlock()

	logging.Info("alert generated", "id", a.ID, "severity", a.Severity, "source", a.Source, "title", a.Title)

	if l.notifier != nil {
		notify(func() { l.notifier.Show(a) })
		if !muted {
			notify(func() { l.notifier.Play(a.Severity) })
		}
		notify(func() { l.notifier.Push(a) })
	}
	return a
}

// notify runs one notifier call, swallowing any panic. Sound devices and
// push endpoints failing must never break alert generation.
func notify(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logging.Warn("notifier failed", "panic", r)
		}
	}()
	fn()
}

// MarkAsRead flips one alert to read. Unknown ids are no-ops, and
// re-reading an already-read alert does not touch the unread count.
func (l *Log) MarkAsRead(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i := range l.alerts {
		if l.alerts[i].ID == id {
			if !l.alerts[i].Read {
				l.alerts[i].Read = true
				l.unread--
			}
			return
		}
	}
}

// MarkAllAsRead flips every alert to read and zeroes the unread count.
func (l *Log) MarkAllAsRead() {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i := range l.alerts {
		l.alerts[i].Read = true
	}
	l.unread = 0
}

// Dismiss removes an alert from the log. Unknown ids are no-ops.
func (l *Log) Dismiss(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i := range l.alerts {
		if l.alerts[i].ID == id {
			if !l.alerts[i].Read {
				l.unread--
			}
			l.alerts = append(l.alerts[:i], l.alerts[i+1:]...)
			return
		}
	}
}

// ToggleMute flips the audio mute flag and returns the new state.
func (l *Log) ToggleMute() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.muted = !l.muted
	return l.muted
}

// SetMuted sets the mute flag directly (used for the start-muted config).
func (l *Log) SetMuted(muted bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.muted = muted
}

// TogglePanel flips the panel-open flag and returns the new state.
func (l *Log) TogglePanel() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.panelOpen = !l.panelOpen
	return l.panelOpen
}

// ClosePanel closes the panel regardless of current state.
func (l *Log) ClosePanel() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.panelOpen = false
}

// Alerts returns a copy of the log, newest first.
func (l *Log) Alerts() []Alert {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Alert, len(l.alerts))
	copy(out, l.alerts)
	return out
}

// UnreadCount returns the count of unread alerts currently in the log.
// It is maintained incrementally and always matches the list contents.
func (l *Log) UnreadCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.unread
}

// IsMuted reports the audio mute flag.
func (l *Log) IsMuted() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.muted
}

// IsPanelOpen reports the panel-open flag.
func (l *Log) IsPanelOpen() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.panelOpen
}
