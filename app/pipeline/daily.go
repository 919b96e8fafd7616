package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/lysyi3m/herald/app/config"
	"github.com/lysyi3m/herald/app/database"
	"github.com/lysyi3m/herald/app/dedup"
	"github.com/lysyi3m/herald/app/news"
	"github.com/lysyi3m/herald/app/paths"
)

// Daily is the scheduled run: collect, keep raw JSONL, render and write the
// digest, then persist the seen store and archive the run.
type Daily struct {
	paths     paths.Paths
	config    *config.Config
	collector ItemCollector
	runs      database.RunRepository
	now       func() time.Time
}

// NewDaily builds a daily run. runs may be nil to skip archiving.
func NewDaily(p paths.Paths, cfg *config.Config, collector ItemCollector, runs database.RunRepository) *Daily {
	return &Daily{
		paths:     p,
		config:    cfg,
		collector: collector,
		runs:      runs,
		now:       time.Now,
	}
}

func (d *Daily) Run(ctx context.Context) (*Result, error) {
	date := d.now().In(time.Local).Format(DateLayout)

	if err := d.paths.EnsureDataDirs(); err != nil {
		return nil, err
	}

	items, err := d.collector.Run(ctx, d.config.Feeds)
	if err != nil {
		return nil, fmt.Errorf("failed to collect items: %w", err)
	}

	rawPath := filepath.Join(d.paths.RawDir(), date+".jsonl")
	if err := writeJSONL(rawPath, items); err != nil {
		return nil, err
	}

	seen, err := dedup.NewSeenStore(d.paths.SeenURLsFile(), d.config.Retention.SeenURLsDays)
	if err != nil {
		return nil, fmt.Errorf("failed to load seen store: %w", err)
	}

	result, err := New(d.config).Process(items, seen, date)
	if err != nil {
		return nil, err
	}

	digestPath := filepath.Join(d.paths.DigestsDir(), date+".md")
	if err := os.WriteFile(digestPath, []byte(result.Digest), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write digest: %w", err)
	}

	// Only mark URLs as seen once they are in a written digest.
	if err := seen.Save(); err != nil {
		return nil, fmt.Errorf("failed to save seen store: %w", err)
	}

	if d.runs != nil {
		if _, err := d.runs.SaveRun(database.Run{
			Date:      date,
			Collected: result.Stats.Collected,
			Filtered:  result.Stats.Filtered,
			Kept:      result.Stats.Kept,
			Cost:      result.Stats.Cost,
			Digest:    result.Digest,
		}); err != nil {
			slog.Warn("Failed to archive run", "date", date, "error", err)
		}
	}

	slog.Info("Digest written", "path", digestPath, "raw", rawPath, "kept", result.Stats.Kept, "seen_entries", seen.Len())

	return result, nil
}

func writeJSONL(path string, items []news.Item) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create raw file: %w", err)
	}

	enc := json.NewEncoder(f)
	for _, item := range items {
		if err := enc.Encode(item); err != nil {
			f.Close()
			return fmt.Errorf("failed to write raw item: %w", err)
		}
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close raw file: %w", err)
	}
	return nil
}
