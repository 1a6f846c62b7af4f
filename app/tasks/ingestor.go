package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lysyi3m/news-hub/app/database"
	"github.com/lysyi3m/news-hub/app/feed"
)

var _ Runner = (*Ingestor)(nil)

// Summary reports the outcome of one ingestion run.
type Summary struct {
	Feeds         int           `json:"feeds"`
	FailedFeeds   int           `json:"failed_feeds"`
	Items         int           `json:"items"`
	Inserted      int           `json:"inserted"`
	Duplicates    int           `json:"duplicates"`
	Skipped       int           `json:"skipped"`
	WriteFailures int           `json:"write_failures"`
	Duration      time.Duration `json:"duration_ns"`
}

func (s *Summary) add(result FeedResult, failed bool) {
	s.Feeds++
	if failed {
		s.FailedFeeds++
	}
	s.Items += result.Items
	s.Inserted += result.Inserted
	s.Duplicates += result.Duplicates
	s.Skipped += result.Skipped
	s.WriteFailures += result.WriteFailures
}

// Ingestor runs the fetch, normalize and write pipeline over every enabled
// source. Runs are serialized; each one owns its store handle.
type Ingestor struct {
	dbPath      string
	feedsFile   string
	fetcher     FeedFetcher
	workerCount int
	now         func() time.Time
	mu          sync.Mutex
}

func NewIngestor(dbPath, feedsFile string, fetcher FeedFetcher, workerCount int) *Ingestor {
	return &Ingestor{
		dbPath:      dbPath,
		feedsFile:   feedsFile,
		fetcher:     fetcher,
		workerCount: workerCount,
		now:         time.Now,
	}
}

// Run returns once every feed task has finished. Only a missing registry,
// an unavailable store or cancellation make it fail.
func (i *Ingestor) Run(ctx context.Context) (Summary, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	startedAt := time.Now()

	registry, err := feed.LoadRegistry(i.feedsFile)
	if err != nil {
		return Summary{}, err
	}

	sources := registry.Enabled()
	normalizer := feed.NewNormalizer(i.now, feed.NewFilterer(), registry.ExcludeURLPrefixes)

	var summary Summary

	err = database.WithStore(ctx, i.dbPath, func(db *database.DB) error {
		writer := database.NewArticleRepository(db)

		var mu sync.Mutex
		var g errgroup.Group
		g.SetLimit(i.workerCount)

		for _, source := range sources {
			if ctx.Err() != nil {
				break
			}

			task := NewIngestFeedTask(source, i.fetcher, normalizer, writer)
			g.Go(func() error {
				result, failed := task.Execute(ctx)

				mu.Lock()
				summary.add(result, failed)
				mu.Unlock()

				return nil
			})
		}

		g.Wait()

		return ctx.Err()
	})

	summary.Duration = time.Since(startedAt)

	if err != nil {
		return summary, fmt.Errorf("ingestion run failed: %w", err)
	}

	slog.Info("Ingestion run completed",
		"feeds", summary.Feeds,
		"failed_feeds", summary.FailedFeeds,
		"items", summary.Items,
		"new", summary.Inserted,
		"duplicates", summary.Duplicates,
		"skipped", summary.Skipped,
		"write_failures", summary.WriteFailures,
		"duration", summary.Duration)

	return summary, nil
}
