package database

import (
	"context"
	"database/sql"
)

type ArticleWriter interface {
	Write(ctx context.Context, article NewArticle) (WriteResult, error)
	EnsureTag(ctx context.Context, name string) (int64, error)
	LinkTag(ctx context.Context, articleID, tagID int64) error
}

type ArticleReader interface {
	ListArticles(ctx context.Context) ([]AggregatedArticle, error)
	CountArticles(ctx context.Context) (int, error)
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
