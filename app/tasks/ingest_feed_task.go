package tasks

import (
	"context"
	"errors"
	"log/slog"

	"github.com/lysyi3m/news-hub/app/database"
	"github.com/lysyi3m/news-hub/app/feed"
)

// FeedResult counts what happened to the items of one feed.
type FeedResult struct {
	Items         int
	Inserted      int
	Duplicates    int
	Skipped       int
	WriteFailures int
}

// IngestFeedTask fetches one source, normalizes its items and writes them.
// Fetch and write failures are absorbed here; only context cancellation
// is returned to the caller.
type IngestFeedTask struct {
	Task
	source     feed.Source
	fetcher    FeedFetcher
	normalizer *feed.Normalizer
	writer     database.ArticleWriter
}

func NewIngestFeedTask(source feed.Source, fetcher FeedFetcher, normalizer *feed.Normalizer, writer database.ArticleWriter) *IngestFeedTask {
	return &IngestFeedTask{
		Task:       NewTask(TaskTypeIngestFeed, source.URL),
		source:     source,
		fetcher:    fetcher,
		normalizer: normalizer,
		writer:     writer,
	}
}

// Execute returns the per-feed counts and whether the fetch failed.
func (t *IngestFeedTask) Execute(ctx context.Context) (FeedResult, bool) {
	t.Start()

	var result FeedResult

	items, err := t.fetcher.Run(ctx, t.source)
	if err != nil {
		var fetchErr *feed.FetchError
		if errors.As(err, &fetchErr) {
			slog.Error("Feed fetch failed, skipping", "feed", fetchErr.FeedURL, "error", fetchErr.Err)
		} else {
			slog.Error("Feed fetch failed, skipping", "feed", t.FeedURL, "error", err)
		}
		return result, true
	}

	result.Items = len(items)

	for _, item := range items {
		if ctx.Err() != nil {
			break
		}

		article, reason := t.normalizer.Run(item, t.source)
		if reason != feed.SkipNone {
			result.Skipped++
			continue
		}

		res, err := t.writer.Write(ctx, database.NewArticle{
			Title:       article.Title,
			Content:     article.Content,
			Summary:     article.Summary,
			Source:      article.Source,
			URL:         article.URL,
			PublishedAt: article.PublishedAt,
			Tags:        article.Tags,
		})
		if err != nil {
			result.WriteFailures++
			slog.Error("Article write failed, skipping", "feed", t.FeedURL, "url", article.URL, "error", err)
			continue
		}

		switch res {
		case database.WriteInserted:
			result.Inserted++
		case database.WriteAlreadyExists:
			result.Duplicates++
		}
	}

	slog.Info("Task completed",
		"type", string(t.Type),
		"feed", t.FeedURL,
		"duration", t.GetDuration(),
		"total", result.Items,
		"new", result.Inserted,
		"duplicates", result.Duplicates,
		"skipped", result.Skipped,
		"write_failures", result.WriteFailures)

	return result, false
}
