package notify

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/osintwatch/vigil/internal/alert"
)

const ntfyTimeout = 15 * time.Second

// Ntfy pushes alerts to an ntfy topic so they reach phones and desktops
// even when the terminal is out of sight.
type Ntfy struct {
	url    string
	client *http.Client
}

// NewNtfy creates an ntfy pusher for the given topic URL,
// e.g. "https://ntfy.sh/my-vigil-topic".
func NewNtfy(url string) *Ntfy {
	return &Ntfy{
		url: url,
		client: &http.Client{
			Timeout: ntfyTimeout,
		},
	}
}

// ntfyPriority maps alert severity onto ntfy's priority header.
func ntfyPriority(s alert.Severity) string {
	switch s {
	case alert.SeverityCritical:
		return "urgent"
	case alert.SeverityHigh:
		return "high"
	}
	return "default"
}

// ntfyTags picks tag emoji per source.
func ntfyTags(src alert.Source) string {
	switch src {
	case alert.SourceEarthquake:
		return "warning,earth_asia"
	case alert.SourceSocial:
		return "satellite,speech_balloon"
	}
	return "newspaper"
}

// Push sends one alert notification.
func (n *Ntfy) Push(a alert.Alert) error {
	ctx, cancel := context.WithTimeout(context.Background(), ntfyTimeout)
	defer cancel()

	body := a.Description
	if a.URL != "" {
		body += "\n" + a.URL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, strings.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating ntfy request: %w", err)
	}
	req.Header.Set("Title", fmt.Sprintf("[%s] %s", a.Severity.Label(), a.Title))
	req.Header.Set("Priority", ntfyPriority(a.Severity))
	req.Header.Set("Tags", ntfyTags(a.Source))

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("ntfy returned status %d", resp.StatusCode)
	}
	return nil
}
