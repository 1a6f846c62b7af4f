package tasks

import (
	"context"

	"github.com/lysyi3m/news-hub/app/feed"
)

// FeedFetcher retrieves the raw items of one source. *feed.Fetcher is the
// production implementation.
type FeedFetcher interface {
	Run(ctx context.Context, source feed.Source) ([]feed.RawItem, error)
}

// Runner performs one ingestion run. Used by the scheduler and the API.
type Runner interface {
	Run(ctx context.Context) (Summary, error)
}
