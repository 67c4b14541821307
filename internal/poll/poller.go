// Package poll drives the background fetch cycles for each source and
// hands fresh snapshots to the alert engine.
package poll

import (
	"context"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/time/rate"

	"github.com/osintwatch/vigil/internal/alert"
	"github.com/osintwatch/vigil/internal/feeds"
	"github.com/osintwatch/vigil/internal/logging"
	"github.com/osintwatch/vigil/internal/model"
)

// fetchTimeout is the timeout for each individual fetch.
const fetchTimeout = 30 * time.Second

// FetchComplete is sent to the UI program after each source cycle.
type FetchComplete struct {
	Source string
	Count  int
	Err    error
}

// Intervals controls how often each source is polled.
type Intervals struct {
	Earthquakes time.Duration
	Events      time.Duration
	Social      time.Duration
}

// DefaultIntervals matches the upstream APIs' cache windows.
func DefaultIntervals() Intervals {
	return Intervals{
		Earthquakes: time.Minute,
		Events:      10 * time.Minute,
		Social:      2 * time.Minute,
	}
}

// SourceParams selects what each upstream query asks for.
type SourceParams struct {
	USGSMinMagnitude feeds.MinMagnitude
	USGSPeriod       feeds.Period
	GdeltMaxPoints   int
	GdeltTimespan    string
}

// DefaultSourceParams matches the dashboard's stock queries.
func DefaultSourceParams() SourceParams {
	return SourceParams{
		USGSMinMagnitude: feeds.Mag25,
		USGSPeriod:       feeds.PeriodDay,
		GdeltMaxPoints:   75,
		GdeltTimespan:    "24h",
	}
}

// fetcher interfaces for dependency injection (testing).
type quakeFetcher interface {
	Fetch(ctx context.Context, minMag feeds.MinMagnitude, period feeds.Period) ([]model.Earthquake, error)
}

type eventFetcher interface {
	Fetch(ctx context.Context, maxPoints int, timespan string) ([]model.Article, error)
}

type socialFetcher interface {
	FetchAll(ctx context.Context, accounts []feeds.Account) []model.SocialPost
}

type mirrorFetcher interface {
	Name() string
	Fetch(ctx context.Context) ([]model.SocialPost, error)
}

// Poller manages the background fetch loops.
// Uses context cancellation as the only stop mechanism.
type Poller struct {
	engine    *alert.Engine
	quakes    quakeFetcher
	events    eventFetcher
	social    socialFetcher
	mirrors   []mirrorFetcher
	accounts  []feeds.Account
	intervals Intervals
	params    SourceParams
	limiter   *rate.Limiter
	wg        sync.WaitGroup
}

// New creates a Poller over the real clients.
func New(engine *alert.Engine, usgs *feeds.USGS, gdelt *feeds.GDELT, bluesky *feeds.Bluesky,
	mirrors []*feeds.RSSMirror, accounts []feeds.Account, intervals Intervals, params SourceParams) *Poller {
	p := &Poller{
		engine:    engine,
		quakes:    usgs,
		events:    gdelt,
		social:    bluesky,
		accounts:  accounts,
		intervals: intervals,
		params:    params,
		// Upstream APIs are shared infrastructure; keep outbound
		// requests to a handful per second across all loops.
		limiter: rate.NewLimiter(rate.Every(200*time.Millisecond), 5),
	}
	for _, m := range mirrors {
		p.mirrors = append(p.mirrors, m)
	}
	return p
}

// Start launches one loop per source. Each performs an initial fetch
// immediately, then repeats on its own interval until ctx is cancelled.
// program may be nil (testing); completion messages are then dropped.
func (p *Poller) Start(ctx context.Context, program *tea.Program) {
	p.run(ctx, p.intervals.Earthquakes, func(ctx context.Context) FetchComplete {
		return p.fetchQuakes(ctx)
	}, program)
	p.run(ctx, p.intervals.Events, func(ctx context.Context) FetchComplete {
		return p.fetchEvents(ctx)
	}, program)
	p.run(ctx, p.intervals.Social, func(ctx context.Context) FetchComplete {
		return p.fetchSocial(ctx)
	}, program)
}

// Wait blocks until all loops exit. Call after cancelling the context
// passed to Start.
func (p *Poller) Wait() {
	p.wg.Wait()
}

func (p *Poller) run(ctx context.Context, interval time.Duration, cycle func(context.Context) FetchComplete, program *tea.Program) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		p.cycle(ctx, cycle, program)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				p.cycle(ctx, cycle, program)
			}
		}
	}()
}

func (p *Poller) cycle(ctx context.Context, cycle func(context.Context) FetchComplete, program *tea.Program) {
	if err := p.limiter.Wait(ctx); err != nil {
		return
	}

	fetchCtx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	result := cycle(fetchCtx)
	if result.Err != nil {
		logging.Warn("fetch failed", "source", result.Source, "error", result.Err)
	}

	if program != nil {
		program.Send(result)
	}
}

func (p *Poller) fetchQuakes(ctx context.Context) FetchComplete {
	quakes, err := p.quakes.Fetch(ctx, p.params.USGSMinMagnitude, p.params.USGSPeriod)
	if err != nil {
		return FetchComplete{Source: "usgs", Err: err}
	}
	p.engine.CheckEarthquakes(quakes)
	return FetchComplete{Source: "usgs", Count: len(quakes)}
}

func (p *Poller) fetchEvents(ctx context.Context) FetchComplete {
	articles, err := p.events.Fetch(ctx, p.params.GdeltMaxPoints, p.params.GdeltTimespan)
	if err != nil {
		return FetchComplete{Source: "gdelt", Err: err}
	}
	p.engine.CheckEvents(articles)
	return FetchComplete{Source: "gdelt", Count: len(articles)}
}

func (p *Poller) fetchSocial(ctx context.Context) FetchComplete {
	posts := p.social.FetchAll(ctx, p.accounts)

	for _, m := range p.mirrors {
		mirrored, err := m.Fetch(ctx)
		if err != nil {
			logging.Warn("mirror fetch failed", "source", m.Name(), "error", err)
			continue
		}
		posts = append(posts, mirrored...)
	}

	p.engine.CheckSocialPosts(posts)
	return FetchComplete{Source: "social", Count: len(posts)}
}
