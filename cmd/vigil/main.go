package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/osintwatch/vigil/internal/alert"
	"github.com/osintwatch/vigil/internal/archive"
	"github.com/osintwatch/vigil/internal/config"
	"github.com/osintwatch/vigil/internal/feeds"
	"github.com/osintwatch/vigil/internal/logging"
	"github.com/osintwatch/vigil/internal/notify"
	"github.com/osintwatch/vigil/internal/poll"
	"github.com/osintwatch/vigil/internal/ui"
)

func main() {
	configPath := flag.String("config", config.Path(), "path to config file")
	muted := flag.Bool("muted", false, "start with audio alerts muted")
	flag.Parse()

	if err := logging.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logging: %v\n", err)
		os.Exit(1)
	}
	defer logging.Close()

	cfg, err := config.LoadFrom(*configPath)
	if err != nil {
		logging.Fatal("failed to load config", "path", *configPath, "error", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Alert history database under ~/.vigil/ unless configured.
	store, err := archive.Open(cfg.ArchivePath())
	if err != nil {
		logging.Fatal("failed to open alert archive", "path", cfg.ArchivePath(), "error", err)
	}
	defer store.Close()

	hub := notify.NewHub()
	hub.SetBell(os.Stderr)
	hub.AddPusher(store)
	if cfg.Alerts.NtfyURL != "" {
		hub.AddPusher(notify.NewNtfy(cfg.Alerts.NtfyURL))
	}

	log := alert.NewLog(hub)
	log.SetMuted(cfg.Alerts.StartMuted || *muted)
	engine := alert.New(log)

	app := ui.NewApp(engine)
	program := tea.NewProgram(app, tea.WithAltScreen())

	hub.SetToast(func(a alert.Alert) {
		program.Send(ui.ToastMsg{Alert: a})
	})

	var mirrors []*feeds.RSSMirror
	for _, m := range cfg.Sources.RSSMirrors {
		mirrors = append(mirrors, feeds.NewRSSMirror(m.Name, m.Handle, m.URL))
	}

	intervals := poll.Intervals{
		Earthquakes: cfg.Poll.EarthquakeInterval.Duration,
		Events:      cfg.Poll.EventInterval.Duration,
		Social:      cfg.Poll.SocialInterval.Duration,
	}
	params := poll.SourceParams{
		USGSMinMagnitude: feeds.MinMagnitude(cfg.Sources.USGSMinMagnitude),
		USGSPeriod:       feeds.Period(cfg.Sources.USGSPeriod),
		GdeltMaxPoints:   cfg.Sources.GdeltMaxPoints,
		GdeltTimespan:    cfg.Sources.GdeltTimespan,
	}

	poller := poll.New(engine, feeds.NewUSGS(), feeds.NewGDELT(), feeds.NewBluesky(),
		mirrors, cfg.Accounts(), intervals, params)
	poller.Start(ctx, program)

	if _, err := program.Run(); err != nil {
		logging.Error("program exited with error", "error", err)
	}

	cancel()
	poller.Wait()
}
