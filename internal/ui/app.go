package ui

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/osintwatch/vigil/internal/alert"
	"github.com/osintwatch/vigil/internal/poll"
)

// sourceStatus tracks the last cycle result per feed.
type sourceStatus struct {
	count    int
	err      error
	lastSync time.Time
}

// App is the root Bubble Tea model. All alert state lives in the alert
// log; App renders snapshots of it and translates keys into log and
// engine calls.
type App struct {
	log    *alert.Log
	engine *alert.Engine

	spin    spinner.Model
	sources map[string]sourceStatus
	toast   *alert.Alert

	cursor     int
	testSource int
	width      int
	height     int
	ready      bool
}

// NewApp creates the root model over an engine and its alert log.
func NewApp(engine *alert.Engine) App {
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = lipgloss.NewStyle().Foreground(colorHighlight)

	return App{
		log:     engine.Log(),
		engine:  engine,
		spin:    sp,
		sources: make(map[string]sourceStatus),
	}
}

// Init starts the spinner and the age-refresh ticker.
func (a App) Init() tea.Cmd {
	return tea.Batch(a.spin.Tick, ageTickCmd())
}

// Update handles messages and returns the updated model and any commands.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		return a, nil

	case poll.FetchComplete:
		a.sources[msg.Source] = sourceStatus{
			count:    msg.Count,
			err:      msg.Err,
			lastSync: time.Now(),
		}
		return a, nil

	case ToastMsg:
		toast := msg.Alert
		a.toast = &toast
		return a, toastExpireCmd(toast.ID)

	case toastExpired:
		// A newer toast may have replaced the expiring one.
		if a.toast != nil && a.toast.ID == msg.id {
			a.toast = nil
		}
		return a, nil

	case ageTick:
		return a, ageTickCmd()

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spin, cmd = a.spin.Update(msg)
		return a, cmd
	}

	return a, nil
}

// handleKeyMsg processes keyboard input.
func (a App) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return a, tea.Quit

	case "tab":
		a.log.TogglePanel()
		a.cursor = 0
		return a, nil

	case "esc":
		a.log.ClosePanel()
		return a, nil

	case "m":
		a.log.ToggleMute()
		return a, nil

	case "t":
		sources := []alert.Source{alert.SourceEarthquake, alert.SourceEvent, alert.SourceSocial}
		a.engine.TriggerTestAlert(sources[a.testSource%len(sources)])
		a.testSource++
		return a, nil
	}

	if !a.log.IsPanelOpen() {
		return a, nil
	}

	alerts := a.log.Alerts()

	switch msg.String() {
	case "j", "down":
		if a.cursor < len(alerts)-1 {
			a.cursor++
		}

	case "k", "up":
		if a.cursor > 0 {
			a.cursor--
		}

	case "enter":
		if a.cursor < len(alerts) {
			a.log.MarkAsRead(alerts[a.cursor].ID)
		}

	case "a":
		a.log.MarkAllAsRead()

	case "x", "d":
		if a.cursor < len(alerts) {
			a.log.Dismiss(alerts[a.cursor].ID)
			if a.cursor > 0 {
				a.cursor--
			}
		}
	}

	return a, nil
}

// View renders the full screen.
func (a App) View() string {
	if !a.ready {
		return "Starting..."
	}

	var b strings.Builder

	b.WriteString(a.renderHeader())
	b.WriteString("\n")

	if a.toast != nil {
		b.WriteString(a.renderToast())
		b.WriteString("\n")
	}

	if a.log.IsPanelOpen() {
		b.WriteString(a.renderPanel())
	} else {
		b.WriteString(a.renderSummary())
	}

	b.WriteString("\n")
	b.WriteString(a.renderStatusBar())

	return b.String()
}

func (a App) renderHeader() string {
	title := PanelTitle.Render("VIGIL " + a.spin.View())

	unread := a.log.UnreadCount()
	badge := ""
	if unread > 0 {
		badge = UnreadBadge.Render(fmt.Sprintf("%d unread", unread))
	}

	mute := ""
	if a.log.IsMuted() {
		mute = MutedBadge.Render("muted")
	}

	return title + " " + badge + mute
}

func (a App) renderToast() string {
	t := a.toast
	label := severityStyle(t.Severity).Render(t.Severity.Label())
	text := t.Title
	maxWidth := a.width - lipgloss.Width(label) - 6
	if maxWidth > 0 && utf8.RuneCountInString(text) > maxWidth {
		runes := []rune(text)
		text = string(runes[:maxWidth-3]) + "..."
	}
	return Toast.Render(label + " " + text)
}

// renderSummary shows per-source sync state when the panel is closed.
func (a App) renderSummary() string {
	var b strings.Builder

	order := []string{"usgs", "gdelt", "social"}
	names := map[string]string{
		"usgs":   "Earthquakes",
		"gdelt":  "Conflict events",
		"social": "OSINT accounts",
	}

	for _, key := range order {
		status, ok := a.sources[key]
		line := fmt.Sprintf("%-16s", names[key])
		switch {
		case !ok:
			line += "waiting for first sync"
		case status.err != nil:
			line += ErrorStyle.Render("sync failed")
		default:
			line += fmt.Sprintf("%d items, %s", status.count, formatAge(status.lastSync))
		}
		b.WriteString(NormalItem.Render(line))
		b.WriteString("\n")
	}

	b.WriteString(HelpStyle.Render("Press Tab to open the alert panel."))
	return b.String()
}

func (a App) renderPanel() string {
	alerts := a.log.Alerts()

	if len(alerts) == 0 {
		return HelpStyle.Render("No alerts yet. Press 't' to trigger a test alert.")
	}

	// Reserve lines for header, status bar, and the description of the
	// selected alert.
	availableHeight := a.height - 5
	if availableHeight < 1 {
		availableHeight = 1
	}

	cursor := a.cursor
	if cursor >= len(alerts) {
		cursor = len(alerts) - 1
	}

	scrollOffset := 0
	if cursor >= availableHeight {
		scrollOffset = cursor - availableHeight + 1
	}

	var b strings.Builder
	rendered := 0
	for i := scrollOffset; i < len(alerts) && rendered < availableHeight; i++ {
		b.WriteString(a.renderAlertLine(alerts[i], i == cursor))
		b.WriteString("\n")
		rendered++
	}

	if cursor < len(alerts) && alerts[cursor].Description != "" {
		b.WriteString(DescStyle.Render(alerts[cursor].Description))
		b.WriteString("\n")
	}

	return b.String()
}

func (a App) renderAlertLine(al alert.Alert, selected bool) string {
	label := severityStyle(al.Severity).Render(fmt.Sprintf("%-8s", al.Severity.Label()))
	age := formatAge(al.Timestamp)

	marker := "●"
	if al.Read {
		marker = " "
	}

	titleWidth := a.width - 8 - len(age) - 8
	if titleWidth < 20 {
		titleWidth = 20
	}
	title := al.Title
	if utf8.RuneCountInString(title) > titleWidth {
		runes := []rune(title)
		title = string(runes[:titleWidth-3]) + "..."
	}

	var style lipgloss.Style
	switch {
	case selected:
		style = SelectedItem
	case al.Read:
		style = ReadItem
	default:
		style = NormalItem
	}

	return fmt.Sprintf("%s %s %s %s", marker, label, style.Render(title), StatusBarText.Render(age))
}

func (a App) renderStatusBar() string {
	var keys []string
	if a.log.IsPanelOpen() {
		keys = []string{
			StatusBarKey.Render("j/k") + StatusBarText.Render(":nav"),
			StatusBarKey.Render("Enter") + StatusBarText.Render(":read"),
			StatusBarKey.Render("a") + StatusBarText.Render(":read all"),
			StatusBarKey.Render("x") + StatusBarText.Render(":dismiss"),
			StatusBarKey.Render("Esc") + StatusBarText.Render(":close"),
			StatusBarKey.Render("m") + StatusBarText.Render(":mute"),
			StatusBarKey.Render("q") + StatusBarText.Render(":quit"),
		}
	} else {
		keys = []string{
			StatusBarKey.Render("Tab") + StatusBarText.Render(":alerts"),
			StatusBarKey.Render("m") + StatusBarText.Render(":mute"),
			StatusBarKey.Render("t") + StatusBarText.Render(":test"),
			StatusBarKey.Render("q") + StatusBarText.Render(":quit"),
		}
	}
	hints := strings.Join(keys, " ")

	position := fmt.Sprintf(" %d alerts ", len(a.log.Alerts()))
	padding := a.width - lipgloss.Width(position) - lipgloss.Width(hints)
	if padding < 0 {
		padding = 0
	}

	bar := position + strings.Repeat(" ", padding) + hints
	return StatusBar.Width(a.width).Render(bar)
}

func formatAge(t time.Time) string {
	age := time.Since(t)
	switch {
	case age < time.Minute:
		return "just now"
	case age < time.Hour:
		return fmt.Sprintf("%dm ago", int(age.Minutes()))
	case age < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(age.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(age.Hours()/24))
	}
}
