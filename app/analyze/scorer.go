package analyze

import (
	"math"
	"time"

	"github.com/lysyi3m/herald/app/news"
)

const (
	DefaultSourceWeight  = 0.1
	DefaultHalfLifeHours = 24.0
	DefaultReleaseBoost  = 0.15

	densityFactor    = 0.5
	recencyFactor    = 0.2
	engagementFactor = 0.2
)

// Engagement counts at which a metric contributes its full share.
var defaultThresholds = map[news.MetricKind]float64{
	news.MetricPoints:   500,
	news.MetricComments: 300,
	news.MetricStars:    100,
}

type ScorerOptions struct {
	SourceWeights map[string]float64
	DefaultWeight float64
	HalfLifeHours float64
	ReleaseBoost  float64
}

type Scorer struct {
	weights       map[string]float64
	defaultWeight float64
	halfLife      float64
	releaseBoost  float64
	thresholds    map[news.MetricKind]float64
}

func NewScorer(opts ScorerOptions) *Scorer {
	s := &Scorer{
		weights:       opts.SourceWeights,
		defaultWeight: opts.DefaultWeight,
		halfLife:      opts.HalfLifeHours,
		releaseBoost:  opts.ReleaseBoost,
		thresholds:    defaultThresholds,
	}
	if s.weights == nil {
		s.weights = map[string]float64{}
	}
	if s.defaultWeight <= 0 {
		s.defaultWeight = DefaultSourceWeight
	}
	if s.halfLife <= 0 {
		s.halfLife = DefaultHalfLifeHours
	}
	if s.releaseBoost <= 0 {
		s.releaseBoost = DefaultReleaseBoost
	}
	return s
}

// Score combines source weight, keyword density, recency, release status and
// normalised engagement. Missing fields contribute nothing.
func (s *Scorer) Score(item news.Item) float64 {
	weight, ok := s.weights[item.Source]
	if !ok {
		weight = s.defaultWeight
	}

	score := weight
	score += densityFactor * clamp01(item.KeywordDensity)
	score += recencyFactor * s.recency(item.HoursOld)
	if item.IsRelease {
		score += s.releaseBoost
	}
	score += engagementFactor * s.engagement(item.Extra)

	if math.IsNaN(score) || math.IsInf(score, 0) {
		return weight
	}
	return score
}

// recency is 1 at age zero and 0.5 at halfLife hours. It decays
// hyperbolically and stays strictly decreasing for any realistic age.
func (s *Scorer) recency(hours float64) float64 {
	return 1 / (1 + math.Max(0, hours)/s.halfLife)
}

func (s *Scorer) engagement(extra news.Extra) float64 {
	kind, value, ok := extra.Metric()
	if !ok || value <= 0 {
		return 0
	}
	threshold, ok := s.thresholds[kind]
	if !ok || threshold <= 0 {
		return 0
	}
	return math.Min(1, math.Log1p(float64(value))/math.Log1p(threshold))
}

// HoursOld is the non-negative age of item at now, from Published or, when
// that is unset, CollectedAt.
func HoursOld(item news.Item, now time.Time) float64 {
	ts := item.Published
	if ts.IsZero() {
		ts = item.CollectedAt
	}
	if ts.IsZero() {
		return 0
	}
	return math.Max(0, now.Sub(ts).Hours())
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Min(1, math.Max(0, v))
}
