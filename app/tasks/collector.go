package tasks

import (
	"context"
	"log/slog"

	"github.com/lysyi3m/herald/app/config"
	"github.com/lysyi3m/herald/app/news"
)

type Collector struct {
	runner     *Runner
	fetcher    FeedFetcher
	parser     FeedParser
	maxRetries int
}

func NewCollector(runner *Runner, fetcher FeedFetcher, parser FeedParser, maxRetries int) *Collector {
	return &Collector{
		runner:     runner,
		fetcher:    fetcher,
		parser:     parser,
		maxRetries: maxRetries,
	}
}

// Run collects feeds in order and concatenates their items. A feed that
// keeps failing is logged and skipped; only cancellation aborts the run.
func (c *Collector) Run(ctx context.Context, feeds []config.Feed) ([]news.Item, error) {
	var items []news.Item
	failed := 0

	for _, feed := range feeds {
		task := NewCollectFeedTask(feed, c.fetcher, c.parser, c.maxRetries)

		if err := c.runner.Run(ctx, task); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			failed++
			slog.Warn("Feed skipped", "feed", feed.Name, "url", feed.URL, "error", err)
			continue
		}

		items = append(items, task.Items...)
	}

	slog.Info("Collection completed", "feeds", len(feeds), "failed", failed, "items", len(items))

	return items, nil
}
