package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lysyi3m/news-hub/app/database"
	"github.com/lysyi3m/news-hub/app/feed"
	"github.com/lysyi3m/news-hub/app/tasks"
)

func NewHandler(dbPath string, runner tasks.Runner, version string) *Handler {
	return &Handler{
		dbPath:    dbPath,
		runner:    runner,
		generator: feed.NewGenerator(),
		version:   version,
	}
}

// listArticles performs the aggregation read against a store opened
// read-only for this request.
func (h *Handler) listArticles(ctx context.Context) ([]database.AggregatedArticle, error) {
	var articles []database.AggregatedArticle

	err := database.WithReadOnlyStore(ctx, h.dbPath, func(db *database.DB) error {
		var err error
		articles, err = database.NewArticleRepository(db).ListArticles(ctx)
		return err
	})

	return articles, err
}

func (h *Handler) GetNews(c *gin.Context) {
	articles, err := h.listArticles(c.Request.Context())
	if err != nil {
		h.readFailure(c, "list_articles", err)
		return
	}

	c.Header("X-Total-Count", strconv.Itoa(len(articles)))
	c.JSON(http.StatusOK, ToArticleResponses(articles))
}

func (h *Handler) GetNewsRSS(c *gin.Context) {
	articles, err := h.listArticles(c.Request.Context())
	if err != nil {
		h.readFailure(c, "list_articles", err)
		return
	}

	baseURL := requestBaseURL(c)

	rss, err := h.generator.Run(feed.Channel{
		Title:     "News Hub",
		Link:      baseURL,
		SelfURL:   baseURL + c.Request.URL.Path,
		Generator: "News Hub/" + h.version,
	}, articles)
	if err != nil {
		slog.Error("RSS generation error", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Header("Content-Type", "application/rss+xml; charset=utf-8")
	c.Header("X-Feed-Items", strconv.Itoa(len(articles)))
	c.String(http.StatusOK, rss)
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]any{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   h.version,
	}

	err := database.WithReadOnlyStore(c.Request.Context(), h.dbPath, func(db *database.DB) error {
		count, err := database.NewArticleRepository(db).CountArticles(c.Request.Context())
		if err != nil {
			return err
		}
		health["articles"] = count
		return nil
	})
	if err != nil {
		slog.Warn("Health check failed", "error", err)
		health["status"] = "unavailable"
		health["error"] = err.Error()
		c.JSON(http.StatusServiceUnavailable, health)
		return
	}

	health["status"] = "ok"
	c.JSON(http.StatusOK, health)
}

func (h *Handler) APIIngest(c *gin.Context) {
	summary, err := h.runner.Run(c.Request.Context())
	if err != nil {
		slog.Error("Ingestion via API failed", "error", err)

		status := http.StatusInternalServerError
		if errors.Is(err, database.ErrStoreUnavailable) {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, summary)
}

// readFailure keeps "store unavailable" distinguishable from an empty result.
func (h *Handler) readFailure(c *gin.Context, operation string, err error) {
	if errors.Is(err, database.ErrStoreUnavailable) {
		slog.Error("Store unavailable", "operation", operation, "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "store unavailable"})
		return
	}

	slog.Error("Database error", "operation", operation, "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read articles"})
}

func requestBaseURL(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if forwarded := c.GetHeader("X-Forwarded-Proto"); forwarded != "" {
		scheme = forwarded
	}
	return scheme + "://" + c.Request.Host
}
