package api

import (
	"github.com/lysyi3m/news-hub/app/database"
	"github.com/lysyi3m/news-hub/app/feed"
	"github.com/lysyi3m/news-hub/app/tasks"
)

type GeneratorInterface interface {
	Run(channel feed.Channel, articles []database.AggregatedArticle) (string, error)
}

var _ GeneratorInterface = (*feed.Generator)(nil)

type Handler struct {
	dbPath    string
	runner    tasks.Runner
	generator GeneratorInterface
	version   string
}

// ArticleResponse is one record of the aggregation read.
type ArticleResponse struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	Summary     string   `json:"summary"`
	Source      string   `json:"source"`
	URL         string   `json:"url"`
	PublishedAt string   `json:"published_at"`
	Tags        []string `json:"tags"`
}

// ToArticleResponses maps the aggregation read to its JSON records.
func ToArticleResponses(articles []database.AggregatedArticle) []ArticleResponse {
	responses := make([]ArticleResponse, 0, len(articles))
	for _, article := range articles {
		responses = append(responses, ArticleResponse{
			ID:          article.ID,
			Title:       article.Title,
			Summary:     article.Summary,
			Source:      article.Source,
			URL:         article.URL,
			PublishedAt: database.FormatTime(article.PublishedAt),
			Tags:        article.Tags,
		})
	}
	return responses
}
