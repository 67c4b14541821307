package feeds

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/osintwatch/vigil/internal/model"
)

const usgsPayload = `{
	"features": [
		{
			"id": "us7000abcd",
			"properties": {
				"mag": 7.2,
				"place": "120km SSW of Severo-Kuril'sk, Russia",
				"time": 1767225600000,
				"url": "https://earthquake.usgs.gov/earthquakes/eventpage/us7000abcd"
			},
			"geometry": {"coordinates": [155.5, 49.2, 35.0]}
		},
		{
			"id": "us7000wxyz",
			"properties": {
				"mag": 4.6,
				"place": "Central Turkey",
				"time": 1767225700000,
				"url": "https://earthquake.usgs.gov/earthquakes/eventpage/us7000wxyz"
			},
			"geometry": {"coordinates": [35.2, 38.9, 10.0]}
		}
	]
}`

func TestUSGSFetch(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(usgsPayload))
	}))
	defer server.Close()

	u := NewUSGS()
	u.baseURL = server.URL

	quakes, err := u.Fetch(context.Background(), Mag25, PeriodDay)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	if gotPath != "/2.5_day.geojson" {
		t.Errorf("request path = %q, want /2.5_day.geojson", gotPath)
	}
	if len(quakes) != 2 {
		t.Fatalf("expected 2 quakes, got %d", len(quakes))
	}

	q := quakes[0]
	if q.ID != "us7000abcd" {
		t.Errorf("ID = %q", q.ID)
	}
	if q.Magnitude != 7.2 {
		t.Errorf("Magnitude = %v", q.Magnitude)
	}
	// GeoJSON coordinate order is lon, lat, depth.
	if q.Latitude != 49.2 || q.Longitude != 155.5 || q.Depth != 35.0 {
		t.Errorf("coords = %v, %v, %v", q.Latitude, q.Longitude, q.Depth)
	}
	if q.Time.UnixMilli() != 1767225600000 {
		t.Errorf("Time = %v", q.Time)
	}
}

func TestUSGSFetchServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	u := NewUSGS()
	u.baseURL = server.URL

	if _, err := u.Fetch(context.Background(), MagAll, PeriodHour); err == nil {
		t.Fatal("expected error on 503")
	}
}

const gdeltPayload = `{
	"features": [
		{
			"geometry": {"coordinates": [36.23, 49.99]},
			"properties": {
				"name": "Kharkiv, Ukraine",
				"count": "12",
				"shareimage": "https://example.com/thumb.jpg",
				"html": "<a href=\"https://news.example.com/strike\" target=\"_blank\">Missile strike hits Kharkiv &amp; region</a><a href=\"https://gdeltproject.org/about\">GDELT</a>"
			}
		},
		{
			"geometry": {"coordinates": [36.25, 50.01]},
			"properties": {
				"name": "Kharkiv Oblast",
				"count": "3",
				"shareimage": "",
				"html": "<a href=\"https://other.example.com/strike2\">Missile strike hits Kharkiv region today</a>"
			}
		},
		{
			"geometry": {"coordinates": [13.4, 52.5]},
			"properties": {
				"name": "Berlin, Germany",
				"count": "notanumber",
				"shareimage": "",
				"html": "<a href=\"https://de.example.com/talks\">Diplomatic talks collapse in Berlin</a>"
			}
		}
	]
}`

func TestGDELTFetch(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("query")
		w.Write([]byte(gdeltPayload))
	}))
	defer server.Close()

	g := NewGDELT()
	g.baseURL = server.URL

	articles, err := g.Fetch(context.Background(), 75, "24h")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	if !strings.Contains(gotQuery, "theme:CONFLICT") || !strings.Contains(gotQuery, "tone<-5") {
		t.Errorf("query = %q", gotQuery)
	}

	// The two Kharkiv clusters overlap; the higher count wins.
	if len(articles) != 2 {
		t.Fatalf("expected 2 articles after dedup, got %d", len(articles))
	}

	a := articles[0]
	if a.Title != "Missile strike hits Kharkiv & region" {
		t.Errorf("Title = %q", a.Title)
	}
	if a.URL != "https://news.example.com/strike" {
		t.Errorf("URL = %q", a.URL)
	}
	if a.SourceDomain != "news.example.com" {
		t.Errorf("SourceDomain = %q", a.SourceDomain)
	}
	if a.Count != 12 {
		t.Errorf("Count = %d", a.Count)
	}
	if a.Latitude != 49.99 || a.Longitude != 36.23 {
		t.Errorf("coords = %v, %v", a.Latitude, a.Longitude)
	}

	// Unparseable counts fall back to 1.
	if articles[1].Count != 1 {
		t.Errorf("fallback Count = %d", articles[1].Count)
	}
}

func TestExtractAnchorsSkipsGdeltLinks(t *testing.T) {
	html := `<a href="https://gdeltproject.org/x">GDELT</a><a href="https://example.com/a">Real story</a>`
	anchors := extractAnchors(html)
	if len(anchors) != 1 || anchors[0].url != "https://example.com/a" {
		t.Errorf("anchors = %+v", anchors)
	}
}

func TestDecodeEntities(t *testing.T) {
	got := decodeEntities("&quot;Breaking&quot; &amp; more &#x27;news&#x27;")
	want := `"Breaking" & more 'news'`
	if got != want {
		t.Errorf("decodeEntities = %q, want %q", got, want)
	}
}

func TestJaccardSimilarity(t *testing.T) {
	if sim := jaccardSimilarity("Missile strike hits Kharkiv", "Missile strike hits Kharkiv region"); sim <= 0.5 {
		t.Errorf("near-duplicate similarity = %v, want > 0.5", sim)
	}
	if sim := jaccardSimilarity("Missile strike hits Kharkiv", "Floods displace thousands downstream"); sim > 0.2 {
		t.Errorf("unrelated similarity = %v", sim)
	}
	if sim := jaccardSimilarity("", "anything at all here"); sim != 0 {
		t.Errorf("empty similarity = %v", sim)
	}
}

const blueskyPayload = `{
	"feed": [
		{
			"post": {
				"uri": "at://did:plc:abc/app.bsky.feed.post/3kxyz",
				"author": {"handle": "bellingcat.com", "displayName": "Bellingcat"},
				"record": {"text": "Confirmed strike on the airfield", "createdAt": "2026-03-14T09:26:00Z"},
				"likeCount": 40,
				"repostCount": 12,
				"embed": {"$type": "app.bsky.embed.images#view", "images": [{"thumb": "https://cdn.bsky.app/t1.jpg"}]}
			}
		},
		{
			"reply": {"parent": {}},
			"post": {
				"uri": "at://did:plc:abc/app.bsky.feed.post/3kaaa",
				"author": {"handle": "bellingcat.com", "displayName": "Bellingcat"},
				"record": {"text": "A reply that slipped through", "createdAt": "2026-03-14T09:27:00Z"}
			}
		},
		{
			"post": {
				"uri": "at://did:plc:abc/app.bsky.feed.post/3kbbb",
				"author": {"handle": "", "displayName": ""},
				"record": {"text": "Second post", "createdAt": "2026-03-14T09:28:00Z"},
				"likeCount": 2,
				"repostCount": 0
			}
		}
	]
}`

func TestBlueskyFetchAccount(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("filter"); got != "posts_no_replies" {
			t.Errorf("filter = %q", got)
		}
		w.Write([]byte(blueskyPayload))
	}))
	defer server.Close()

	b := NewBluesky()
	b.baseURL = server.URL

	account := Account{Handle: "bellingcat.com", DisplayName: "Bellingcat"}
	posts, err := b.FetchAccount(context.Background(), account)
	if err != nil {
		t.Fatalf("FetchAccount failed: %v", err)
	}

	// The reply is skipped.
	if len(posts) != 2 {
		t.Fatalf("expected 2 posts, got %d", len(posts))
	}

	p := posts[0]
	if p.AuthorHandle != "@bellingcat.com" {
		t.Errorf("AuthorHandle = %q", p.AuthorHandle)
	}
	if p.URL != "https://bsky.app/profile/bellingcat.com/post/3kxyz" {
		t.Errorf("URL = %q", p.URL)
	}
	if p.Engagement() != 52 {
		t.Errorf("Engagement = %d", p.Engagement())
	}
	if p.ImageURL != "https://cdn.bsky.app/t1.jpg" {
		t.Errorf("ImageURL = %q", p.ImageURL)
	}
	if p.Topic != model.TopicConflict {
		t.Errorf("Topic = %q", p.Topic)
	}

	// Missing author fields fall back to the configured account.
	if posts[1].Author != "Bellingcat" || posts[1].AuthorHandle != "@bellingcat.com" {
		t.Errorf("fallback author = %q %q", posts[1].Author, posts[1].AuthorHandle)
	}
}

func TestBlueskyFetchAllDropsFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Query().Get("actor"), "down") {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(blueskyPayload))
	}))
	defer server.Close()

	b := NewBluesky()
	b.baseURL = server.URL

	posts := b.FetchAll(context.Background(), []Account{
		{Handle: "bellingcat.com", DisplayName: "Bellingcat"},
		{Handle: "down.bsky.social", DisplayName: "Down"},
	})
	if len(posts) != 2 {
		t.Errorf("expected 2 posts from the healthy account, got %d", len(posts))
	}
}

func TestExtractEmbedImageVariants(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"images view", `{"$type":"app.bsky.embed.images#view","images":[{"thumb":"https://x/1.jpg"}]}`, "https://x/1.jpg"},
		{"record with media", `{"$type":"app.bsky.embed.recordWithMedia#view","media":{"$type":"app.bsky.embed.images#view","images":[{"thumb":"https://x/2.jpg"}]}}`, "https://x/2.jpg"},
		{"external", `{"$type":"app.bsky.embed.external#view","external":{"thumb":"https://x/3.jpg"}}`, "https://x/3.jpg"},
		{"record quote only", `{"$type":"app.bsky.embed.record#view"}`, ""},
		{"empty", ``, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractEmbedImage([]byte(tt.raw)); got != tt.want {
				t.Errorf("extractEmbedImage = %q, want %q", got, tt.want)
			}
		})
	}
}

const rssPayload = `<?xml version="1.0"?>
<rss version="2.0">
	<channel>
		<title>Wire Mirror</title>
		<item>
			<title>Earthquake reported near coast</title>
			<link>https://wire.example.com/quake</link>
			<description>Magnitude 6.1 tremor felt widely</description>
			<pubDate>Sat, 14 Mar 2026 09:26:00 GMT</pubDate>
		</item>
	</channel>
</rss>`

func TestRSSMirrorFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(rssPayload))
	}))
	defer server.Close()

	s := NewRSSMirror("Wire Mirror", "@wire", server.URL)
	posts, err := s.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(posts) != 1 {
		t.Fatalf("expected 1 post, got %d", len(posts))
	}

	p := posts[0]
	if p.AuthorHandle != "@wire" || p.Platform != model.PlatformRSS {
		t.Errorf("post = %+v", p)
	}
	if p.Topic != model.TopicEarthquake {
		t.Errorf("Topic = %q", p.Topic)
	}
	if p.ID == "" || p.URL != "https://wire.example.com/quake" {
		t.Errorf("ID = %q, URL = %q", p.ID, p.URL)
	}
}
