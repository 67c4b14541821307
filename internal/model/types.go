// Package model defines the data shapes that flow between the feed
// fetchers, the alert engine, and the UI. These mirror the upstream
// payloads (USGS, GDELT, Bluesky) after parsing.
package model

import (
	"regexp"
	"time"
)

// Coordinates is a WGS84 point used for map-centering on alert click.
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// Earthquake is one seismic event from the USGS summary feed.
type Earthquake struct {
	ID        string
	Magnitude float64
	Place     string
	Time      time.Time
	Latitude  float64
	Longitude float64
	Depth     float64
	URL       string
}

// Article is one geolocated news cluster from the GDELT GEO API.
// Articles have no stable numeric id; the URL is the dedup key.
type Article struct {
	Title        string
	URL          string
	SourceDomain string
	Latitude     float64
	Longitude    float64
	LocationName string
	Count        int
	ShareImage   string
}

// SocialPlatform identifies where a social post came from.
type SocialPlatform string

const (
	PlatformBluesky SocialPlatform = "bluesky"
	PlatformRSS     SocialPlatform = "rss"
)

// SocialPost is one post from a monitored account. LikeCount and
// RepostCount are zero when the upstream payload omits them.
type SocialPost struct {
	ID           string
	Author       string // display name
	AuthorHandle string // stable account identity, e.g. "@bellingcat.com"
	Platform     SocialPlatform
	Content      string
	URL          string
	Timestamp    time.Time
	ImageURL     string
	Topic        Topic
	LikeCount    int
	RepostCount  int
}

// Engagement is the post's combined engagement score.
func (p SocialPost) Engagement() int {
	return p.LikeCount + p.RepostCount
}

// Topic is a coarse content category for sidebar filtering.
type Topic string

const (
	TopicEarthquake Topic = "earthquake"
	TopicMilitary   Topic = "military"
	TopicConflict   Topic = "conflict"
	TopicDisaster   Topic = "disaster"
	TopicGeneral    Topic = "general"
)

var (
	earthquakeRe = regexp.MustCompile(`(?i)earthquake|seism|quake|magnitude|richter|tremor`)
	militaryRe   = regexp.MustCompile(`(?i)military|army|navy|airforce|troops|weapon|missile|drone|defense|defence`)
	conflictRe   = regexp.MustCompile(`(?i)war|attack|strike|conflict|bomb|shell|combat|front\s?line|casualt`)
	disasterRe   = regexp.MustCompile(`(?i)flood|hurricane|typhoon|tsunami|volcano|wildfire|cyclone|disaster|relief|humanitarian`)
)

// DetectTopic tags free text with the first matching topic. Order matters:
// earthquake beats military beats conflict beats disaster.
func DetectTopic(text string) Topic {
	switch {
	case earthquakeRe.MatchString(text):
		return TopicEarthquake
	case militaryRe.MatchString(text):
		return TopicMilitary
	case conflictRe.MatchString(text):
		return TopicConflict
	case disasterRe.MatchString(text):
		return TopicDisaster
	}
	return TopicGeneral
}
