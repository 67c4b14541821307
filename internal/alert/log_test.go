package alert

import (
	"fmt"
	"testing"
)

// recordingNotifier captures side effects for assertions.
type recordingNotifier struct {
	shown  []Alert
	played []Severity
	pushed []Alert
}

func (n *recordingNotifier) Show(a Alert)    { n.shown = append(n.shown, a) }
func (n *recordingNotifier) Play(s Severity) { n.played = append(n.played, s) }
func (n *recordingNotifier) Push(a Alert)    { n.pushed = append(n.pushed, a) }

// panickyNotifier fails on every call; Add must survive it.
type panickyNotifier struct{}

func (panickyNotifier) Show(Alert)    { panic("no display") }
func (panickyNotifier) Play(Severity) { panic("no audio device") }
func (panickyNotifier) Push(Alert)    { panic("permission revoked") }

func addN(l *Log, n int) []Alert {
	var added []Alert
	for i := 0; i < n; i++ {
		added = append(added, l.Add(Alert{
			Title:    fmt.Sprintf("alert %d", i),
			Severity: SeverityMedium,
			Source:   SourceEvent,
		}))
	}
	return added
}

// checkUnreadInvariant asserts unreadCount equals the actual count of
// unread alerts in the list.
func checkUnreadInvariant(t *testing.T, l *Log) {
	t.Helper()
	unread := 0
	for _, a := range l.Alerts() {
		if !a.Read {
			unread++
		}
	}
	if got := l.UnreadCount(); got != unread {
		t.Errorf("UnreadCount() = %d, but list holds %d unread", got, unread)
	}
}

func TestAddAssignsIdentity(t *testing.T) {
	l := NewLog(nil)
	a := l.Add(Alert{Title: "t", Severity: SeverityHigh, Source: SourceSocial})

	if a.ID == "" {
		t.Error("Add must assign an id")
	}
	if a.Timestamp.IsZero() {
		t.Error("Add must assign a timestamp")
	}
	if a.Read {
		t.Error("new alerts start unread")
	}
	if l.UnreadCount() != 1 {
		t.Errorf("UnreadCount() = %d, want 1", l.UnreadCount())
	}
}

func TestAddIDsDistinct(t *testing.T) {
	l := NewLog(nil)
	seen := make(map[string]bool)
	for _, a := range addN(l, 20) {
		if seen[a.ID] {
			t.Fatalf("duplicate id %q", a.ID)
		}
		seen[a.ID] = true
	}
}

func TestCapacityEviction(t *testing.T) {
	l := NewLog(nil)
	added := addN(l, 60)

	alerts := l.Alerts()
	if len(alerts) != MaxAlerts {
		t.Fatalf("log holds %d alerts, want %d", len(alerts), MaxAlerts)
	}
	// Newest first: head is the 60th added, tail is the 11th.
	if alerts[0].ID != added[59].ID {
		t.Errorf("head = %q, want newest %q", alerts[0].ID, added[59].ID)
	}
	if alerts[MaxAlerts-1].ID != added[10].ID {
		t.Errorf("tail = %q, want %q (older ones evicted)", alerts[MaxAlerts-1].ID, added[10].ID)
	}
	checkUnreadInvariant(t, l)
}

func TestMarkAsRead(t *testing.T) {
	l := NewLog(nil)
	added := addN(l, 3)

	l.MarkAsRead(added[1].ID)
	if l.UnreadCount() != 2 {
		t.Errorf("UnreadCount() = %d, want 2", l.UnreadCount())
	}
	// Re-reading the same alert must not double-decrement.
	l.MarkAsRead(added[1].ID)
	if l.UnreadCount() != 2 {
		t.Errorf("UnreadCount() after re-read = %d, want 2", l.UnreadCount())
	}
	checkUnreadInvariant(t, l)
}

func TestMarkAsReadUnknownIDNoop(t *testing.T) {
	l := NewLog(nil)
	addN(l, 2)
	l.MarkAsRead("alert-0-0")
	if l.UnreadCount() != 2 {
		t.Errorf("UnreadCount() = %d, want 2", l.UnreadCount())
	}
}

func TestMarkAllAsRead(t *testing.T) {
	l := NewLog(nil)
	addN(l, 5)
	l.MarkAllAsRead()

	if l.UnreadCount() != 0 {
		t.Errorf("UnreadCount() = %d, want 0", l.UnreadCount())
	}
	for _, a := range l.Alerts() {
		if !a.Read {
			t.Errorf("alert %q still unread after MarkAllAsRead", a.ID)
		}
	}
}

func TestDismiss(t *testing.T) {
	l := NewLog(nil)
	added := addN(l, 3)

	l.Dismiss(added[0].ID)
	if len(l.Alerts()) != 2 {
		t.Fatalf("log holds %d alerts, want 2", len(l.Alerts()))
	}
	if l.UnreadCount() != 2 {
		t.Errorf("UnreadCount() = %d, want 2", l.UnreadCount())
	}

	// Dismissing a read alert does not change the unread count.
	l.MarkAsRead(added[1].ID)
	l.Dismiss(added[1].ID)
	if l.UnreadCount() != 1 {
		t.Errorf("UnreadCount() = %d, want 1", l.UnreadCount())
	}

	// Unknown id is a no-op.
	l.Dismiss("nope")
	if len(l.Alerts()) != 1 {
		t.Errorf("log holds %d alerts, want 1", len(l.Alerts()))
	}
	checkUnreadInvariant(t, l)
}

func TestUnreadAccountingUnderMixedOps(t *testing.T) {
	l := NewLog(nil)
	added := addN(l, 10)

	l.MarkAsRead(added[2].ID)
	l.MarkAsRead(added[7].ID)
	l.Dismiss(added[2].ID) // read
	l.Dismiss(added[4].ID) // unread
	addN(l, 3)
	l.MarkAsRead("unknown")
	l.Dismiss("unknown")

	checkUnreadInvariant(t, l)
}

func TestToggles(t *testing.T) {
	l := NewLog(nil)

	if l.IsMuted() || l.IsPanelOpen() {
		t.Fatal("log must start unmuted with panel closed")
	}
	if !l.ToggleMute() || !l.IsMuted() {
		t.Error("ToggleMute should flip to muted")
	}
	if l.ToggleMute() {
		t.Error("second ToggleMute should flip back")
	}
	if !l.TogglePanel() || !l.IsPanelOpen() {
		t.Error("TogglePanel should open the panel")
	}
	l.ClosePanel()
	if l.IsPanelOpen() {
		t.Error("ClosePanel should close the panel")
	}
	l.ClosePanel() // idempotent
	if l.IsPanelOpen() {
		t.Error("ClosePanel must stay closed")
	}
}

func TestNotifierFiresOncePerAdd(t *testing.T) {
	n := &recordingNotifier{}
	l := NewLog(n)
	l.Add(Alert{Title: "t", Severity: SeverityCritical, Source: SourceEarthquake})

	if len(n.shown) != 1 || len(n.played) != 1 || len(n.pushed) != 1 {
		t.Errorf("notifier calls = show:%d play:%d push:%d, want 1 each",
			len(n.shown), len(n.played), len(n.pushed))
	}
	if n.played[0] != SeverityCritical {
		t.Errorf("Play severity = %q, want critical", n.played[0])
	}
}

func TestMuteGatesAudioOnly(t *testing.T) {
	n := &recordingNotifier{}
	l := NewLog(n)
	l.ToggleMute()
	l.Add(Alert{Title: "t", Severity: SeverityHigh, Source: SourceSocial})

	if len(n.played) != 0 {
		t.Errorf("muted log played %d sounds, want 0", len(n.played))
	}
	if len(n.shown) != 1 || len(n.pushed) != 1 {
		t.Errorf("visual/push must still fire while muted: show:%d push:%d",
			len(n.shown), len(n.pushed))
	}
}

func TestNotifierPanicsSwallowed(t *testing.T) {
	l := NewLog(panickyNotifier{})
	a := l.Add(Alert{Title: "t", Severity: SeverityMedium, Source: SourceEvent})

	if a.ID == "" {
		t.Error("Add must succeed despite notifier panics")
	}
	if len(l.Alerts()) != 1 {
		t.Errorf("log holds %d alerts, want 1", len(l.Alerts()))
	}
}

func TestSeverityOrdering(t *testing.T) {
	if !SeverityCritical.AtLeast(SeverityHigh) || !SeverityHigh.AtLeast(SeverityMedium) {
		t.Error("severity ordering broken")
	}
	if SeverityMedium.AtLeast(SeverityHigh) {
		t.Error("medium must not outrank high")
	}
	if SeverityCritical.Label() != "CRITICAL" || SeverityMedium.Label() != "MEDIUM" {
		t.Error("labels wrong")
	}
}
