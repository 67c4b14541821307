package alert

import (
	"fmt"
	"sort"
	"sync"

	"github.com/osintwatch/vigil/internal/logging"
	"github.com/osintwatch/vigil/internal/model"
)

// Seismic severity thresholds. Below SeismicHigh a quake is not an alert.
const (
	SeismicCritical = 7.0
	SeismicHigh     = 6.0
)

// correlationThreshold is the minimum number of independent accounts that
// must mention the same term within one refresh batch.
const correlationThreshold = 3

// descriptionLimit caps social post content carried into an alert.
const descriptionLimit = 200

// Engine watches the three feed snapshots and emits alerts into its Log.
// All detection state lives here, in process memory; nothing survives a
// restart. Each Check method runs to completion; the mutex only serializes
// the host's independent per-source poll goroutines.
type Engine struct {
	mu       sync.Mutex
	log      *Log
	quakes   tracker
	events   tracker
	social   tracker
	accounts map[string]*rollingWindow
	extract  TermExtractor
}

// New creates an engine emitting into log, with the default term extractor.
func New(log *Log) *Engine {
	return &Engine{
		log:      log,
		quakes:   newTracker(),
		events:   newTracker(),
		social:   newTracker(),
		accounts: make(map[string]*rollingWindow),
		extract:  ExtractTerms,
	}
}

// SetTermExtractor swaps the correlator's candidate-term function.
// Call before the first CheckSocialPosts.
func (e *Engine) SetTermExtractor(extract TermExtractor) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.extract = extract
}

// Log returns the alert log the engine emits into.
func (e *Engine) Log() *Log {
	return e.log
}

// CheckEarthquakes evaluates a full seismic snapshot. New quakes at or
// above magnitude 6.0 alert high, at or above 7.0 critical; one alert per
// qualifying quake.
func (e *Engine) CheckEarthquakes(quakes []model.Earthquake) {
	e.mu.Lock()
	fresh, seeded := filterNew(&e.quakes, quakes, func(q model.Earthquake) string { return q.ID })
	e.mu.Unlock()

	if seeded {
		logging.Debug("seismic tracker seeded", "items", len(quakes))
		return
	}
	if len(fresh) == 0 {
		return
	}

	for _, q := range fresh {
		var severity Severity
		switch {
		case q.Magnitude >= SeismicCritical:
			severity = SeverityCritical
		case q.Magnitude >= SeismicHigh:
			severity = SeverityHigh
		default:
			continue
		}

		e.log.Add(Alert{
			Title:       fmt.Sprintf("M%.1f Earthquake", q.Magnitude),
			Description: q.Place,
			Severity:    severity,
			Source:      SourceEarthquake,
			URL:         q.URL,
			Coordinates: &model.Coordinates{Latitude: q.Latitude, Longitude: q.Longitude},
		})
	}
}

// CheckEvents evaluates a full news-cluster snapshot. New articles are not
// scored individually: one medium alert per check call summarizes the
// batch, with the first new article as representative. Per-article alerts
// would be too noisy.
func (e *Engine) CheckEvents(articles []model.Article) {
	e.mu.Lock()
	fresh, seeded := filterNew(&e.events, articles, func(a model.Article) string { return a.URL })
	e.mu.Unlock()

	if seeded {
		logging.Debug("news tracker seeded", "items", len(articles))
		return
	}
	if len(fresh) == 0 {
		return
	}

	first := fresh[0]
	title := fmt.Sprintf("%d new articles", len(fresh))
	if len(fresh) == 1 {
		title = "1 new article"
	}

	a := Alert{
		Title:       title,
		Description: first.Title,
		Severity:    SeverityMedium,
		Source:      SourceEvent,
		URL:         first.URL,
	}
	if first.Latitude != 0 {
		a.Coordinates = &model.Coordinates{Latitude: first.Latitude, Longitude: first.Longitude}
	}
	e.log.Add(a)
}

// CheckSocialPosts evaluates a full social snapshot: per-post keyword and
// engagement-spike checks, then a batch-level cross-account correlation
// pass. The seeding snapshot still feeds the rolling engagement histories
// so later baselines reflect it.
func (e *Engine) CheckSocialPosts(posts []model.SocialPost) {
	e.mu.Lock()
	fresh, seeded := filterNew(&e.social, posts, func(p model.SocialPost) string { return p.ID })
	if seeded {
		for _, p := range posts {
			e.observeEngagement(p.AuthorHandle, p.Engagement())
		}
		e.mu.Unlock()
		logging.Debug("social tracker seeded", "items", len(posts), "accounts", len(e.accounts))
		return
	}
	if len(fresh) == 0 {
		e.mu.Unlock()
		return
	}

	// Histories update for every new post, spike or not; the baseline for
	// the spike decision is the average before the post landed.
	priorAvgs := make([]float64, len(fresh))
	for i, p := range fresh {
		priorAvgs[i] = e.observeEngagement(p.AuthorHandle, p.Engagement())
	}
	extract := e.extract
	e.mu.Unlock()

	for _, p := range fresh {
		if matchesCriticalKeyword(p.Content) {
			e.log.Add(Alert{
				Title:       "OSINT: " + p.Author,
				Description: truncate(p.Content, descriptionLimit),
				Severity:    SeverityHigh,
				Source:      SourceSocial,
				URL:         p.URL,
			})
		}
	}

	for i, p := range fresh {
		if isSpike(p.Engagement(), priorAvgs[i]) {
			e.log.Add(Alert{
				Title:       "Viral: " + p.Author,
				Description: truncate(p.Content, descriptionLimit),
				Severity:    SeverityHigh,
				Source:      SourceSocial,
				URL:         p.URL,
			})
		}
	}

	e.correlate(fresh, extract)
}

// correlate detects the same emerging topic reported by several independent
// accounts within one refresh batch. It runs once per batch, over the new
// posts only, after the per-post checks.
func (e *Engine) correlate(fresh []model.SocialPost, extract TermExtractor) {
	termHandles := make(map[string]map[string]struct{})
	for _, p := range fresh {
		for _, term := range extract(p.Content) {
			handles, ok := termHandles[term]
			if !ok {
				handles = make(map[string]struct{})
				termHandles[term] = handles
			}
			handles[p.AuthorHandle] = struct{}{}
		}
	}

	terms := make([]string, 0, len(termHandles))
	for term, handles := range termHandles {
		if len(handles) >= correlationThreshold {
			terms = append(terms, term)
		}
	}
	sort.Strings(terms)

	for _, term := range terms {
		handles := make([]string, 0, len(termHandles[term]))
		for h := range termHandles[term] {
			handles = append(handles, h)
		}
		sort.Strings(handles)

		// No coordinates here: the correlator has no geolocation.
		e.log.Add(Alert{
			Title:       fmt.Sprintf("Multi-source: %q", term),
			Description: fmt.Sprintf("Mentioned by %d accounts: %s", len(handles), joinHandles(handles)),
			Severity:    SeverityCritical,
			Source:      SourceSocial,
		})
	}
}

func joinHandles(handles []string) string {
	out := ""
	for i, h := range handles {
		if i > 0 {
			out += ", "
		}
		out += h
	}
	return out
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen]
}

// TriggerTestAlert injects a canned alert for the given source so the
// notification path can be exercised without waiting for live data.
func (e *Engine) TriggerTestAlert(source Source) {
	switch source {
	case SourceEarthquake:
		e.log.Add(Alert{
			Title:       "M7.2 Earthquake",
			Description: "120km SW of Tonga Islands",
			Severity:    SeverityCritical,
			Source:      SourceEarthquake,
			URL:         "https://earthquake.usgs.gov",
			Coordinates: &model.Coordinates{Latitude: -21.2, Longitude: -175.2},
		})
	case SourceEvent:
		e.log.Add(Alert{
			Title:       "3 new articles",
			Description: "Ukraine confirms counter-offensive in Kherson region",
			Severity:    SeverityMedium,
			Source:      SourceEvent,
			URL:         "https://news.google.com",
			Coordinates: &model.Coordinates{Latitude: 46.6, Longitude: 32.6},
		})
	case SourceSocial:
		e.log.Add(Alert{
			Title:       "OSINT: @IntelCrab",
			Description: "BREAKING: Multiple explosions reported in southern Beirut, large plumes of smoke visible",
			Severity:    SeverityHigh,
			Source:      SourceSocial,
			URL:         "https://bsky.app",
		})
	}
}
