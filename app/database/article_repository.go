package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	_ ArticleWriter = (*ArticleRepository)(nil)
	_ ArticleReader = (*ArticleRepository)(nil)
)

// ArticleRepository handles database operations for articles and their tags
type ArticleRepository struct {
	db *DB
}

// NewArticleRepository creates a new article repository
func NewArticleRepository(db *DB) *ArticleRepository {
	return &ArticleRepository{db: db}
}

// Write inserts article unless its URL is already stored. An existing row
// is never updated. Tags are linked only when the article is inserted, in
// the same transaction.
func (r *ArticleRepository) Write(ctx context.Context, article NewArticle) (WriteResult, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var articleID int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO articles (title, content, summary, source, url, published_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (url) DO NOTHING
		RETURNING id
	`, article.Title, article.Content, article.Summary, article.Source, article.URL,
		FormatTime(article.PublishedAt)).Scan(&articleID)

	if errors.Is(err, sql.ErrNoRows) {
		return WriteAlreadyExists, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to insert article: %w", err)
	}

	for _, name := range article.Tags {
		tagID, err := ensureTag(ctx, tx, name)
		if err != nil {
			return 0, err
		}
		if err := linkTag(ctx, tx, articleID, tagID); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit article: %w", err)
	}

	return WriteInserted, nil
}

// EnsureTag returns the id of the tag with name, creating it on first use.
func (r *ArticleRepository) EnsureTag(ctx context.Context, name string) (int64, error) {
	return ensureTag(ctx, r.db, name)
}

// LinkTag associates a stored article with a stored tag. Repeated calls are no-ops.
func (r *ArticleRepository) LinkTag(ctx context.Context, articleID, tagID int64) error {
	return linkTag(ctx, r.db, articleID, tagID)
}

// ListArticles returns every article with its tag names, newest first.
func (r *ArticleRepository) ListArticles(ctx context.Context) ([]AggregatedArticle, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT a.id, a.title, COALESCE(a.summary, ''), a.source, a.url, a.published_at,
		       (SELECT json_group_array(name) FROM (
		            SELECT t.name
		            FROM article_tags at
		            JOIN tags t ON t.id = at.tag_id
		            WHERE at.article_id = a.id
		            ORDER BY t.name
		       )) AS tags
		FROM articles a
		ORDER BY a.published_at DESC, a.id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}
	defer rows.Close()

	articles := []AggregatedArticle{}
	for rows.Next() {
		var article AggregatedArticle
		var publishedAt timestamp
		var tagsJSON sql.NullString

		err := rows.Scan(
			&article.ID, &article.Title, &article.Summary, &article.Source,
			&article.URL, &publishedAt, &tagsJSON,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan article row: %w", err)
		}

		article.PublishedAt = publishedAt.Time
		article.Tags = []string{}
		if tagsJSON.Valid && tagsJSON.String != "" {
			if err := json.Unmarshal([]byte(tagsJSON.String), &article.Tags); err != nil {
				return nil, fmt.Errorf("failed to decode tags of article %d: %w", article.ID, err)
			}
		}

		articles = append(articles, article)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating article rows: %w", err)
	}

	return articles, nil
}

// CountArticles returns the total number of stored articles
func (r *ArticleRepository) CountArticles(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM articles").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get article count: %w", err)
	}
	return count, nil
}

func ensureTag(ctx context.Context, q querier, name string) (int64, error) {
	if name == "" {
		return 0, fmt.Errorf("tag name is empty")
	}

	_, err := q.ExecContext(ctx, `INSERT INTO tags (name) VALUES (?) ON CONFLICT (name) DO NOTHING`, name)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert tag %q: %w", name, err)
	}

	var tagID int64
	err = q.QueryRowContext(ctx, `SELECT id FROM tags WHERE name = ?`, name).Scan(&tagID)
	if err != nil {
		return 0, fmt.Errorf("failed to get tag %q: %w", name, err)
	}

	return tagID, nil
}

func linkTag(ctx context.Context, q querier, articleID, tagID int64) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO article_tags (article_id, tag_id)
		VALUES (?, ?)
		ON CONFLICT (article_id, tag_id) DO NOTHING
	`, articleID, tagID)
	if err != nil {
		return fmt.Errorf("failed to link article %d to tag %d: %w", articleID, tagID, err)
	}
	return nil
}
