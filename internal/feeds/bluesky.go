package feeds

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/osintwatch/vigil/internal/model"
)

const (
	blueskyAPIBase  = "https://public.api.bsky.app/xrpc"
	postsPerAccount = 10
)

// Account is one monitored Bluesky account.
type Account struct {
	Handle      string `yaml:"handle"`
	DisplayName string `yaml:"display_name"`
}

// DefaultAccounts is the built-in OSINT account list, verified active
// as of Feb 2026.
var DefaultAccounts = []Account{
	// High frequency (daily posts)
	{Handle: "noelreports.com", DisplayName: "NOELREPORTS"},
	{Handle: "wartranslated.bsky.social", DisplayName: "WarTranslated"},
	{Handle: "eliothiggins.bsky.social", DisplayName: "Eliot Higgins"},
	{Handle: "covertshores.bsky.social", DisplayName: "H I Sutton"},
	{Handle: "allsourcenews.bsky.social", DisplayName: "All Source News"},
	{Handle: "dankaszeta.bsky.social", DisplayName: "Dan Kaszeta"},
	{Handle: "bellingcat.com", DisplayName: "Bellingcat"},
	{Handle: "geoconfirmed.org", DisplayName: "GeoConfirmed"},
	{Handle: "warspotting.bsky.social", DisplayName: "WarSpotting"},
	{Handle: "armscontrolwonk.bsky.social", DisplayName: "Stanford CISAC"},
	{Handle: "stratcomcentre.bsky.social", DisplayName: "SPRAVDI"},
	// Medium frequency (weekly posts)
	{Handle: "osinttechnical.bsky.social", DisplayName: "OSINTtechnical"},
	{Handle: "tatarigami.bsky.social", DisplayName: "Tatarigami"},
	{Handle: "rebel44cz.bsky.social", DisplayName: "Jakub Janovsky"},
	{Handle: "topcargo200.com", DisplayName: "TopCargo200"},
}

// feedResponse mirrors app.bsky.feed.getAuthorFeed.
type feedResponse struct {
	Feed []struct {
		Reply json.RawMessage `json:"reply,omitempty"`
		Post  struct {
			URI    string `json:"uri"`
			Author struct {
				Handle      string `json:"handle"`
				DisplayName string `json:"displayName"`
			} `json:"author"`
			Record struct {
				Text      string `json:"text"`
				CreatedAt string `json:"createdAt"`
			} `json:"record"`
			Embed       json.RawMessage `json:"embed,omitempty"`
			LikeCount   int             `json:"likeCount"`
			RepostCount int             `json:"repostCount"`
		} `json:"post"`
	} `json:"feed"`
}

// Bluesky fetches author feeds via the unauthenticated public API.
type Bluesky struct {
	baseURL string
	client  *http.Client
}

// NewBluesky creates a Bluesky client.
func NewBluesky() *Bluesky {
	return &Bluesky{
		baseURL: blueskyAPIBase,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// FetchAccount retrieves one account's recent posts, excluding replies.
func (b *Bluesky) FetchAccount(ctx context.Context, account Account) ([]model.SocialPost, error) {
	endpoint := fmt.Sprintf("%s/app.bsky.feed.getAuthorFeed?actor=%s&limit=%d&filter=posts_no_replies",
		b.baseURL, url.QueryEscape(account.Handle), postsPerAccount)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch bluesky feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bluesky API error: %d", resp.StatusCode)
	}

	var data feedResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode bluesky response: %w", err)
	}

	posts := make([]model.SocialPost, 0, len(data.Feed))
	for _, item := range data.Feed {
		// Replies sometimes slip through the server-side filter.
		if len(item.Reply) > 0 {
			continue
		}
		if item.Post.Record.Text == "" {
			continue
		}

		handle := item.Post.Author.Handle
		if handle == "" {
			handle = account.Handle
		}
		displayName := item.Post.Author.DisplayName
		if displayName == "" {
			displayName = account.DisplayName
		}

		ts := time.Now()
		if parsed, err := time.Parse(time.RFC3339, item.Post.Record.CreatedAt); err == nil {
			ts = parsed
		}

		posts = append(posts, model.SocialPost{
			ID:           item.Post.URI,
			Author:       displayName,
			AuthorHandle: "@" + handle,
			Platform:     model.PlatformBluesky,
			Content:      item.Post.Record.Text,
			URL:          atURIToWebURL(item.Post.URI, handle),
			Timestamp:    ts,
			ImageURL:     extractEmbedImage(item.Post.Embed),
			Topic:        model.DetectTopic(item.Post.Record.Text),
			LikeCount:    item.Post.LikeCount,
			RepostCount:  item.Post.RepostCount,
		})
	}

	return posts, nil
}

// FetchAll retrieves every account's feed in parallel. Per-account
// failures are dropped rather than failing the whole batch.
func (b *Bluesky) FetchAll(ctx context.Context, accounts []Account) []model.SocialPost {
	results := make([][]model.SocialPost, len(accounts))
	var wg sync.WaitGroup

	for i, account := range accounts {
		wg.Add(1)
		go func(i int, account Account) {
			defer wg.Done()
			posts, err := b.FetchAccount(ctx, account)
			if err != nil {
				return
			}
			results[i] = posts
		}(i, account)
	}
	wg.Wait()

	var all []model.SocialPost
	for _, posts := range results {
		all = append(all, posts...)
	}
	return all
}

// atURIToWebURL converts at://did:plc:xxx/app.bsky.feed.post/yyy to
// https://bsky.app/profile/{handle}/post/yyy.
func atURIToWebURL(uri, handle string) string {
	parts := strings.Split(uri, "/")
	rkey := parts[len(parts)-1]
	return fmt.Sprintf("https://bsky.app/profile/%s/post/%s", handle, rkey)
}

// extractEmbedImage pulls the first thumbnail out of a post embed.
func extractEmbedImage(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var embed struct {
		Type   string `json:"$type"`
		Images []struct {
			Thumb string `json:"thumb"`
		} `json:"images"`
		Media struct {
			Type   string `json:"$type"`
			Images []struct {
				Thumb string `json:"thumb"`
			} `json:"images"`
		} `json:"media"`
		External struct {
			Thumb string `json:"thumb"`
		} `json:"external"`
	}
	if err := json.Unmarshal(raw, &embed); err != nil {
		return ""
	}

	switch embed.Type {
	case "app.bsky.embed.images#view":
		if len(embed.Images) > 0 {
			return embed.Images[0].Thumb
		}
	case "app.bsky.embed.recordWithMedia#view":
		if embed.Media.Type == "app.bsky.embed.images#view" && len(embed.Media.Images) > 0 {
			return embed.Media.Images[0].Thumb
		}
	case "app.bsky.embed.external#view":
		return embed.External.Thumb
	}
	return ""
}
