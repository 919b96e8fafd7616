package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lysyi3m/herald/app/config"
	"github.com/lysyi3m/herald/app/news"
)

type CollectFeedTask struct {
	Task
	Feed    config.Feed
	Items   []news.Item
	fetcher FeedFetcher
	parser  FeedParser
	now     func() time.Time
}

func NewCollectFeedTask(feed config.Feed, fetcher FeedFetcher, parser FeedParser, maxRetries int) *CollectFeedTask {
	return &CollectFeedTask{
		Task:    NewTask(TaskTypeCollectFeed, feed.Name, maxRetries),
		Feed:    feed,
		fetcher: fetcher,
		parser:  parser,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (t *CollectFeedTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	data, err := t.fetcher.Fetch(ctx, t.Feed.URL)
	if err != nil {
		return fmt.Errorf("failed to fetch feed: %w", err)
	}

	items, err := t.parser.Run(data, t.Feed, t.now())
	if err != nil {
		return fmt.Errorf("failed to parse feed: %w", err)
	}

	t.Items = items

	slog.Debug("Task completed", t.logAttrs("duration", t.Elapsed(), "items", len(items))...)

	return nil
}
