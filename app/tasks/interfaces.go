package tasks

import (
	"context"
	"time"

	"github.com/lysyi3m/herald/app/config"
	"github.com/lysyi3m/herald/app/news"
)

// FeedFetcher downloads raw feed bytes.
//
//	fetcher := collect.NewFetcher(http.DefaultClient, cfg.UserAgent, cfg.FetchTimeout)
//	data, err := fetcher.Fetch(ctx, feed.URL)
type FeedFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// FeedParser turns raw feed bytes into items attributed to feed.
type FeedParser interface {
	Run(data []byte, feed config.Feed, collectedAt time.Time) ([]news.Item, error)
}
