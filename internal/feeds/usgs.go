// Package feeds retrieves content from the upstream intelligence
// sources (USGS, GDELT, Bluesky, RSS mirrors) and converts it to
// model structs for the alert engine.
package feeds

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/osintwatch/vigil/internal/model"
)

const usgsBaseURL = "https://earthquake.usgs.gov/earthquakes/feed/v1.0/summary"

// Period selects which USGS summary window to fetch.
type Period string

const (
	PeriodHour  Period = "hour"
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

// MinMagnitude selects which USGS summary magnitude floor to fetch.
type MinMagnitude string

const (
	MagSignificant MinMagnitude = "significant"
	Mag45          MinMagnitude = "4.5"
	Mag25          MinMagnitude = "2.5"
	Mag10          MinMagnitude = "1.0"
	MagAll         MinMagnitude = "all"
)

// usgsResponse mirrors the USGS GeoJSON summary payload.
type usgsResponse struct {
	Features []struct {
		ID         string `json:"id"`
		Properties struct {
			Mag   float64 `json:"mag"`
			Place string  `json:"place"`
			Time  int64   `json:"time"`
			URL   string  `json:"url"`
		} `json:"properties"`
		Geometry struct {
			Coordinates []float64 `json:"coordinates"` // lon, lat, depth
		} `json:"geometry"`
	} `json:"features"`
}

// USGS fetches earthquakes from the USGS GeoJSON summary feeds.
type USGS struct {
	baseURL string
	client  *http.Client
}

// NewUSGS creates a USGS client.
func NewUSGS() *USGS {
	return &USGS{
		baseURL: usgsBaseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Fetch retrieves one summary feed, e.g. magnitude 2.5+ over the past day.
func (u *USGS) Fetch(ctx context.Context, minMag MinMagnitude, period Period) ([]model.Earthquake, error) {
	url := fmt.Sprintf("%s/%s_%s.geojson", u.baseURL, minMag, period)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := u.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch usgs feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("usgs API error: %d", resp.StatusCode)
	}

	var data usgsResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode usgs response: %w", err)
	}

	quakes := make([]model.Earthquake, 0, len(data.Features))
	for _, f := range data.Features {
		q := model.Earthquake{
			ID:        f.ID,
			Magnitude: f.Properties.Mag,
			Place:     f.Properties.Place,
			Time:      time.UnixMilli(f.Properties.Time),
			URL:       f.Properties.URL,
		}
		// GeoJSON order is lon, lat, depth.
		if len(f.Geometry.Coordinates) >= 2 {
			q.Longitude = f.Geometry.Coordinates[0]
			q.Latitude = f.Geometry.Coordinates[1]
		}
		if len(f.Geometry.Coordinates) >= 3 {
			q.Depth = f.Geometry.Coordinates[2]
		}
		quakes = append(quakes, q)
	}

	return quakes, nil
}

const userAgent = "Vigil/0.1 (https://github.com/osintwatch/vigil)"
