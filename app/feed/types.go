package feed

import (
	"time"
)

// Feed processing types

// RawItem is one entry of a fetched feed document before normalization.
// Every field may be empty.
type RawItem struct {
	Title          string
	Link           string
	ContentSnippet string // Content with markup stripped
	Summary        string
	Content        string
	IsoDate        string // RFC3339, set when the document date was machine-readable
	PubDate        string // Publication date exactly as written in the document
	Categories     []string
	FeedTitle      string
}

// Article is the canonical record produced by the normalizer.
type Article struct {
	Title       string
	Content     string
	Summary     string
	Source      string
	URL         string
	PublishedAt time.Time // Always UTC
	Tags        []string
}

type SkipReason string

const (
	SkipNone        SkipReason = ""
	SkipMissingLink SkipReason = "missing_link"
	SkipExcludedURL SkipReason = "excluded_url"
	SkipFiltered    SkipReason = "filtered"
)

// Registry types

type Source struct {
	URL                string         `yaml:"url"`
	Label              string         `yaml:"label"`
	Enabled            *bool          `yaml:"enabled"`
	Timeout            int            `yaml:"timeout"` // seconds, 0 means the fetcher default
	Tags               []string       `yaml:"tags"`
	ExcludeURLPrefixes []string       `yaml:"exclude_url_prefixes"`
	Filters            []SourceFilter `yaml:"filters"`
}

func (s Source) IsEnabled() bool {
	return s.Enabled == nil || *s.Enabled
}

func (s Source) GetTimeout(fallback time.Duration) time.Duration {
	if s.Timeout <= 0 {
		return fallback
	}
	return time.Duration(s.Timeout) * time.Second
}

type SourceFilter struct {
	Field    string   `yaml:"field"`
	Includes []string `yaml:"includes"`
	Excludes []string `yaml:"excludes"`
}
