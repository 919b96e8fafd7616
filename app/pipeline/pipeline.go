package pipeline

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/lysyi3m/herald/app/analyze"
	"github.com/lysyi3m/herald/app/config"
	"github.com/lysyi3m/herald/app/dedup"
	"github.com/lysyi3m/herald/app/news"
)

const DateLayout = "2006-01-02"

type Result struct {
	Items  []news.Item
	Stats  news.Stats
	Digest string
}

// Pipeline runs dedup, keyword filtering, scoring, the hard cap and digest
// rendering over one collected batch.
type Pipeline struct {
	deduper   *dedup.Deduper
	scorer    *analyze.Scorer
	generator *analyze.Generator
	keywords  analyze.Keywords
	maxItems  int
	now       func() time.Time
}

func New(cfg *config.Config) *Pipeline {
	return &Pipeline{
		deduper: dedup.NewDeduper(dedup.DefaultTitleThreshold),
		scorer: analyze.NewScorer(analyze.ScorerOptions{
			SourceWeights: cfg.SourceWeights(),
			DefaultWeight: config.DefaultFeedWeight,
			HalfLifeHours: cfg.Scoring.HalfLifeHours,
			ReleaseBoost:  cfg.Scoring.ReleaseBoost,
		}),
		generator: analyze.NewGenerator(),
		keywords:  cfg.Keywords,
		maxItems:  cfg.Scoring.MaxItems,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Process dedups items against seen, keeps only items matching a topic when
// keywords are configured, scores and caps the rest, and renders the digest
// for date. seen is updated in memory only.
func (p *Pipeline) Process(items []news.Item, seen dedup.SeenSet, date string) (*Result, error) {
	collected := len(items)

	deduped, dedupStats, err := p.deduper.Run(items, seen)
	if err != nil {
		return nil, fmt.Errorf("failed to dedup items: %w", err)
	}

	filtered := p.filterByTopic(deduped)

	now := p.now()
	for i := range filtered {
		item := &filtered[i]
		item.HoursOld = analyze.HoursOld(*item, now)
		item.IsRelease = item.Extra.IsRelease
		item.KeywordDensity = analyze.KeywordDensity(item.Title, p.keywords)
		item.Score = p.scorer.Score(*item)
	}

	final := analyze.ApplyHardCap(filtered, p.maxItems)

	stats := news.Stats{
		Collected: collected,
		Filtered:  len(filtered),
		Kept:      len(final),
	}

	slog.Info("Pipeline completed",
		"collected", collected,
		"seen", dedupStats.Seen,
		"similar", dedupStats.Similar,
		"filtered", stats.Filtered,
		"kept", stats.Kept)

	return &Result{
		Items:  final,
		Stats:  stats,
		Digest: p.generator.Run(final, date, stats),
	}, nil
}

func (p *Pipeline) HasKeywords() bool {
	return len(p.keywords) > 0
}

func (p *Pipeline) filterByTopic(items []news.Item) []news.Item {
	filtered := make([]news.Item, 0, len(items))

	for _, item := range items {
		if !p.HasKeywords() {
			item.Topics = nil
			filtered = append(filtered, item)
			continue
		}

		topics := analyze.KeywordMatch(item.Title, p.keywords)
		if len(topics) == 0 {
			slog.Debug("Item rejected", "reason", "no_topic", "url", item.URL)
			continue
		}
		item.Topics = topics
		filtered = append(filtered, item)
	}

	return filtered
}
