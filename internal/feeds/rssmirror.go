package feeds

import (
	"context"
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/osintwatch/vigil/internal/model"
)

// RSSMirror treats an RSS or Atom feed as a monitored social account,
// for outlets without a Bluesky presence.
type RSSMirror struct {
	name   string
	handle string
	url    string
	parser *gofeed.Parser
}

// NewRSSMirror creates a mirror source. handle should carry the "@"
// prefix so it lines up with Bluesky handles in the engine.
func NewRSSMirror(name, handle, url string) *RSSMirror {
	return &RSSMirror{
		name:   name,
		handle: handle,
		url:    url,
		parser: gofeed.NewParser(),
	}
}

func (s *RSSMirror) Name() string {
	return s.name
}

// Fetch retrieves and converts the feed's entries.
func (s *RSSMirror) Fetch(ctx context.Context) ([]model.SocialPost, error) {
	feed, err := s.parser.ParseURLWithContext(s.url, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", s.url, err)
	}

	now := time.Now()
	posts := make([]model.SocialPost, 0, len(feed.Items))

	for _, entry := range feed.Items {
		text := entry.Title
		if entry.Description != "" {
			text = entry.Title + " " + entry.Description
		}

		published := now
		if entry.PublishedParsed != nil {
			published = *entry.PublishedParsed
		} else if entry.UpdatedParsed != nil {
			published = *entry.UpdatedParsed
		}

		// Stable ID from the entry URL, GUID when the link is missing.
		key := entry.Link
		if key == "" {
			key = entry.GUID
		}
		id := fmt.Sprintf("%x", sha256.Sum256([]byte(key)))[:16]

		image := ""
		if entry.Image != nil {
			image = entry.Image.URL
		}

		posts = append(posts, model.SocialPost{
			ID:           id,
			Author:       s.name,
			AuthorHandle: s.handle,
			Platform:     model.PlatformRSS,
			Content:      text,
			URL:          entry.Link,
			Timestamp:    published,
			ImageURL:     image,
			Topic:        model.DetectTopic(text),
		})
	}

	return posts, nil
}
