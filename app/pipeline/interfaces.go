package pipeline

import (
	"context"

	"github.com/lysyi3m/herald/app/config"
	"github.com/lysyi3m/herald/app/news"
)

// ItemCollector gathers candidate items from the configured feeds.
type ItemCollector interface {
	Run(ctx context.Context, feeds []config.Feed) ([]news.Item, error)
}
