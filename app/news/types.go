package news

import (
	"time"
)

// Item is a candidate article collected from a feed. URL, Title, Source,
// Published, CollectedAt, Summary and Extra are set at collection; the
// remaining fields are derived by the dedup and analyze stages.
type Item struct {
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	Source      string    `json:"source"`
	Published   time.Time `json:"published"`
	CollectedAt time.Time `json:"collected_at"`
	Summary     string    `json:"summary,omitempty"`
	Extra       Extra     `json:"extra"`

	Topics         []string `json:"topics,omitempty"`
	HoursOld       float64  `json:"hours_old,omitempty"`
	KeywordDensity float64  `json:"keyword_density,omitempty"`
	IsRelease      bool     `json:"is_release,omitempty"`
	Score          float64  `json:"score,omitempty"`
}

// MetricKind names a source-specific engagement signal.
type MetricKind string

const (
	MetricNone     MetricKind = ""
	MetricPoints   MetricKind = "points"
	MetricComments MetricKind = "comments"
	MetricStars    MetricKind = "stars"
)

// Extra holds source-specific fields. Known metrics have typed slots; a nil
// slot means the source did not report it. Anything else lands in Other.
type Extra struct {
	Points    *int              `json:"points,omitempty"`
	Comments  *int              `json:"comments,omitempty"`
	Stars     *int              `json:"stars,omitempty"`
	IsRelease bool              `json:"is_release,omitempty"`
	Other     map[string]string `json:"other,omitempty"`
}

// Metric returns the strongest engagement signal the source reported.
// Points win over stars, stars over comments.
func (e Extra) Metric() (MetricKind, int, bool) {
	switch {
	case e.Points != nil:
		return MetricPoints, *e.Points, true
	case e.Stars != nil:
		return MetricStars, *e.Stars, true
	case e.Comments != nil:
		return MetricComments, *e.Comments, true
	default:
		return MetricNone, 0, false
	}
}

// Stats are the run counters reported in the digest header.
type Stats struct {
	Collected int     `json:"collected"`
	Filtered  int     `json:"filtered"`
	Kept      int     `json:"kept"`
	Cost      float64 `json:"cost"`
}

func IntPtr(v int) *int {
	return &v
}
