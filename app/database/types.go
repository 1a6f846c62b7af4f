package database

import (
	"fmt"
	"time"
)

// TimeLayout is the stored form of published_at: UTC, millisecond precision.
// Sub-millisecond parts are truncated on write, so a stored time reads back
// as t.UTC().Truncate(time.Millisecond).
const TimeLayout = "2006-01-02T15:04:05.000Z07:00"

type WriteResult int

const (
	WriteInserted WriteResult = iota + 1
	WriteAlreadyExists
)

func (r WriteResult) String() string {
	switch r {
	case WriteInserted:
		return "inserted"
	case WriteAlreadyExists:
		return "already_exists"
	default:
		return "unknown"
	}
}

// NewArticle is the input of ArticleRepository.Write.
type NewArticle struct {
	Title       string
	Content     string
	Summary     string
	Source      string
	URL         string
	PublishedAt time.Time
	Tags        []string
}

// AggregatedArticle is one article joined with its tag names.
type AggregatedArticle struct {
	ID          int64
	Title       string
	Summary     string
	Source      string
	URL         string
	PublishedAt time.Time
	Tags        []string // Never nil
}

func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// timestamp scans published_at whether the driver hands back text or a
// time.Time for the DATETIME column.
type timestamp struct {
	time.Time
}

func (ts *timestamp) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		ts.Time = v.UTC()
		return nil
	case string:
		return ts.parse(v)
	case []byte:
		return ts.parse(string(v))
	case nil:
		return fmt.Errorf("published_at is NULL")
	default:
		return fmt.Errorf("unsupported published_at type %T", src)
	}
}

func (ts *timestamp) parse(value string) error {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05.999999999-07:00", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, value); err == nil {
			ts.Time = t.UTC()
			return nil
		}
	}
	return fmt.Errorf("failed to parse published_at %q", value)
}
