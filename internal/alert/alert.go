// Package alert implements the detection and correlation engine behind the
// dashboard's notifications. It watches successive snapshots of the seismic,
// news, and social feeds, decides what is genuinely new, classifies severity,
// flags engagement anomalies, correlates topics across independent accounts,
// and maintains the bounded read/unread alert log.
package alert

import (
	"fmt"
	"time"

	"github.com/osintwatch/vigil/internal/model"
)

// Severity orders alerts for display. Only three tiers exist; anything
// below medium is simply not an alert.
type Severity string

const (
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// rank gives severities a total order for comparisons.
func (s Severity) rank() int {
	switch s {
	case SeverityCritical:
		return 3
	case SeverityHigh:
		return 2
	case SeverityMedium:
		return 1
	}
	return 0
}

// AtLeast reports whether s is at least as severe as other.
func (s Severity) AtLeast(other Severity) bool {
	return s.rank() >= other.rank()
}

// Label returns the uppercase display label, e.g. "CRITICAL".
func (s Severity) Label() string {
	switch s {
	case SeverityCritical:
		return "CRITICAL"
	case SeverityHigh:
		return "HIGH"
	}
	return "MEDIUM"
}

// Source identifies which tracker produced an alert.
type Source string

const (
	SourceEarthquake Source = "earthquake"
	SourceEvent      Source = "event"
	SourceSocial     Source = "social"
)

// Alert is the unit of output. ID, Timestamp, and Read are owned by the
// Log; callers fill in everything else.
type Alert struct {
	ID          string
	Title       string
	Description string
	Severity    Severity
	Source      Source
	Timestamp   time.Time
	Read        bool
	URL         string             // optional deep link to the originating item
	Coordinates *model.Coordinates // optional, for map flyTo on click
}

// newID produces a process-unique id from wall time plus a counter.
// The counter disambiguates alerts created within the same millisecond.
func newID(counter uint64) string {
	return fmt.Sprintf("alert-%d-%d", time.Now().UnixMilli(), counter)
}
