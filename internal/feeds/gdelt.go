package feeds

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/osintwatch/vigil/internal/model"
)

const gdeltGeoURL = "https://api.gdeltproject.org/api/v2/geo/geo"

// geopoliticalQuery selects the GDELT themes that matter for the map.
var geopoliticalQuery = strings.Join([]string{
	"theme:CONFLICT",
	"theme:MILITARY",
	"theme:WAR",
	"theme:ARMED_CONFLICT",
	"theme:TERROR",
	"theme:DIPLOMATIC_CRISIS",
}, " OR ")

// gdeltResponse mirrors the GDELT GEO API GeoJSON payload. Each feature
// bundles its articles as anchor tags inside an HTML blob.
type gdeltResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"` // lon, lat
		} `json:"geometry"`
		Properties struct {
			Name       string `json:"name"`
			Count      string `json:"count"`
			HTML       string `json:"html"`
			ShareImage string `json:"shareimage"`
		} `json:"properties"`
	} `json:"features"`
}

// GDELT fetches geolocated conflict news from the GDELT GEO API.
type GDELT struct {
	baseURL string
	client  *http.Client
}

// NewGDELT creates a GDELT client.
func NewGDELT() *GDELT {
	return &GDELT{
		baseURL: gdeltGeoURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Fetch retrieves recent geolocated events. maxPoints caps the feature
// count; timespan is a GDELT window like "24h".
func (g *GDELT) Fetch(ctx context.Context, maxPoints int, timespan string) ([]model.Article, error) {
	if maxPoints <= 0 {
		maxPoints = 75
	}
	if timespan == "" {
		timespan = "24h"
	}

	params := url.Values{}
	params.Set("query", fmt.Sprintf("(%s) sourcelang:english tone<-5", geopoliticalQuery))
	params.Set("mode", "PointData")
	params.Set("format", "GeoJSON")
	params.Set("timespan", timespan)
	params.Set("maxpoints", strconv.Itoa(maxPoints))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch gdelt feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gdelt API error: %d", resp.StatusCode)
	}

	var data gdeltResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode gdelt response: %w", err)
	}

	articles := make([]model.Article, 0, len(data.Features))
	for _, f := range data.Features {
		extracted := extractAnchors(f.Properties.HTML)
		if len(extracted) == 0 {
			continue
		}
		first := extracted[0]

		count, err := strconv.Atoi(f.Properties.Count)
		if err != nil || count < 1 {
			count = 1
		}

		a := model.Article{
			Title:        first.title,
			URL:          first.url,
			SourceDomain: extractDomain(first.url),
			LocationName: f.Properties.Name,
			Count:        count,
			ShareImage:   f.Properties.ShareImage,
		}
		if a.LocationName == "" {
			a.LocationName = "Unknown"
		}
		if len(f.Geometry.Coordinates) >= 2 {
			a.Longitude = f.Geometry.Coordinates[0]
			a.Latitude = f.Geometry.Coordinates[1]
		}
		articles = append(articles, a)
	}

	return dedupeArticles(articles), nil
}

var anchorRe = regexp.MustCompile(`(?i)<a[^>]+href="([^"]+)"[^>]*>([^<]+)</a>`)

type anchor struct {
	title string
	url   string
}

// extractAnchors pulls article links out of a GDELT feature's HTML blob,
// skipping GDELT's own links.
func extractAnchors(html string) []anchor {
	var out []anchor
	for _, m := range anchorRe.FindAllStringSubmatch(html, -1) {
		u := m[1]
		title := decodeEntities(strings.TrimSpace(m[2]))
		if title == "" || u == "" || strings.Contains(u, "gdeltproject.org") {
			continue
		}
		out = append(out, anchor{title: title, url: u})
	}
	return out
}

var entityReplacer = strings.NewReplacer(
	"&quot;", `"`,
	"&apos;", "'",
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&#39;", "'",
	"&#x27;", "'",
	"&#x2F;", "/",
)

func decodeEntities(s string) string {
	return entityReplacer.Replace(s)
}

func extractDomain(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}

var nonWordRe = regexp.MustCompile(`[^a-zà-ÿ0-9\s]`)

func tokenize(text string) map[string]struct{} {
	cleaned := nonWordRe.ReplaceAllString(strings.ToLower(text), "")
	tokens := make(map[string]struct{})
	for _, w := range strings.Fields(cleaned) {
		if len(w) > 2 {
			tokens[w] = struct{}{}
		}
	}
	return tokens
}

func jaccardSimilarity(a, b string) float64 {
	setA := tokenize(a)
	setB := tokenize(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}
	intersection := 0
	for w := range setA {
		if _, ok := setB[w]; ok {
			intersection++
		}
	}
	union := len(setB)
	for w := range setA {
		if _, ok := setB[w]; !ok {
			union++
		}
	}
	return float64(intersection) / float64(union)
}

// dedupeArticles drops near-duplicate titles, keeping the article with
// the higher source count when two clusters overlap.
func dedupeArticles(articles []model.Article) []model.Article {
	dominated := make(map[int]struct{})

	for i := range articles {
		if _, gone := dominated[i]; gone {
			continue
		}
		for j := i + 1; j < len(articles); j++ {
			if _, gone := dominated[j]; gone {
				continue
			}
			if jaccardSimilarity(articles[i].Title, articles[j].Title) > 0.5 {
				if articles[i].Count >= articles[j].Count {
					dominated[j] = struct{}{}
				} else {
					dominated[i] = struct{}{}
				}
			}
		}
	}

	out := make([]model.Article, 0, len(articles))
	for i, a := range articles {
		if _, gone := dominated[i]; !gone {
			out = append(out, a)
		}
	}
	return out
}
