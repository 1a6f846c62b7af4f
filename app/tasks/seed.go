package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lysyi3m/news-hub/app/database"
)

var seedTags = []string{"Emerging Markets", "Commodities", "Brazil", "Technology"}

var seedArticles = []database.NewArticle{
	{
		Title:   "Brazil Central Bank Holds Rates Steady Amid Inflation Concerns",
		Content: "Full text of the article about Brazil's central bank decision...",
		Summary: "BCB keeps Selic rate at current level, citing persistent inflationary pressures and fiscal risks.",
		Source:  "Reuters",
		URL:     "https://www.reuters.com/world/americas/brazil-central-bank-holds-rates-steady-2025-07-08/",
		Tags:    []string{"Emerging Markets", "Brazil"},
	},
	{
		Title:   "Global Tech Rally Continues, Driven by AI Optimism",
		Content: "Full text of the article about the tech rally...",
		Summary: "Major tech stocks are surging as investors pour capital into AI-related ventures and infrastructure.",
		Source:  "The Wall Street Journal",
		URL:     "https://www.wsj.com/articles/global-tech-rally-continues-2025-07-08/",
		Tags:    []string{"Technology"},
	},
	{
		Title:   "Oil Prices Fluctuate as OPEC+ Decision Looms",
		Content: "Full text of the article about oil prices...",
		Summary: "Crude oil prices see volatility ahead of the upcoming OPEC+ meeting to decide on production quotas.",
		Source:  "Financial Times",
		URL:     "https://www.ft.com/content/oil-prices-opec-decision-2025-07-08",
		Tags:    []string{"Commodities"},
	},
}

// Seed stores the sample tags and articles. Running it again changes nothing.
func Seed(ctx context.Context, dbPath string, now time.Time) (Summary, error) {
	task := NewTask(TaskTypeSeed, "")
	task.Start()

	var summary Summary

	err := database.WithStore(ctx, dbPath, func(db *database.DB) error {
		repo := database.NewArticleRepository(db)

		for _, name := range seedTags {
			if _, err := repo.EnsureTag(ctx, name); err != nil {
				return fmt.Errorf("failed to seed tag %q: %w", name, err)
			}
		}

		for _, article := range seedArticles {
			article.PublishedAt = now
			res, err := repo.Write(ctx, article)
			if err != nil {
				return fmt.Errorf("failed to seed article %q: %w", article.URL, err)
			}

			summary.Items++
			if res == database.WriteInserted {
				summary.Inserted++
			} else {
				summary.Duplicates++
			}
		}

		return nil
	})
	if err != nil {
		return summary, err
	}

	summary.Duration = task.GetDuration()

	slog.Info("Task completed",
		"type", string(task.Type),
		"duration", summary.Duration,
		"new", summary.Inserted,
		"duplicates", summary.Duplicates)

	return summary, nil
}
