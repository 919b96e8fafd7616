package dedup

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/lysyi3m/herald/app/news"
)

var ErrEmptyURL = errors.New("item has empty url")

// SeenSet is the membership store consulted and updated during dedup.
type SeenSet interface {
	IsSeen(url string) bool
	Add(url string)
}

type Stats struct {
	Seen     int
	Similar  int
	Accepted int
}

type Deduper struct {
	threshold float64
}

func NewDeduper(threshold float64) *Deduper {
	if threshold <= 0 {
		threshold = DefaultTitleThreshold
	}
	return &Deduper{threshold: threshold}
}

// Run filters items in input order. An item is rejected when its URL is in
// seen or its title is a near-duplicate of a title already accepted in this
// batch. Accepted URLs are added to seen in memory; persisting seen is up to
// the caller.
func (d *Deduper) Run(items []news.Item, seen SeenSet) ([]news.Item, Stats, error) {
	var stats Stats
	accepted := make([]news.Item, 0, len(items))
	titles := make([]string, 0, len(items))

	for idx, item := range items {
		if item.URL == "" {
			return nil, stats, fmt.Errorf("failed to dedup item %d (%q): %w", idx, item.Title, ErrEmptyURL)
		}

		if seen.IsSeen(item.URL) {
			stats.Seen++
			slog.Debug("Item rejected", "reason", "seen", "url", item.URL)
			continue
		}

		if IsTitleDuplicate(item.Title, titles, d.threshold) {
			stats.Similar++
			slog.Debug("Item rejected", "reason", "similar_title", "url", item.URL)
			continue
		}

		seen.Add(item.URL)
		titles = append(titles, item.Title)
		accepted = append(accepted, item)
	}

	stats.Accepted = len(accepted)
	return accepted, stats, nil
}
