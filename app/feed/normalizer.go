package feed

import (
	"cmp"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

const NoTitle = "No Title"

// Normalizer maps raw feed items to articles. It does no I/O; the clock
// is injected so the fallback timestamp is deterministic in tests.
type Normalizer struct {
	now                func() time.Time
	filterer           *Filterer
	excludeURLPrefixes []string
}

func NewNormalizer(now func() time.Time, filterer *Filterer, excludeURLPrefixes []string) *Normalizer {
	return &Normalizer{
		now:                now,
		filterer:           filterer,
		excludeURLPrefixes: excludeURLPrefixes,
	}
}

// Run returns the article for item, or the reason it must be skipped.
func (n *Normalizer) Run(item RawItem, source Source) (Article, SkipReason) {
	link := strings.TrimSpace(item.Link)
	if link == "" {
		return Article{}, SkipMissingLink
	}

	if prefix, ok := n.excludedPrefix(link, source); ok {
		slog.Debug("Item excluded by URL prefix", "feed", source.URL, "url", link, "prefix", prefix)
		return Article{}, SkipExcludedURL
	}

	summary := cmp.Or(cleanText(item.ContentSnippet), cleanText(item.Summary), cleanText(item.Content))

	article := Article{
		Title:       cmp.Or(cleanText(item.Title), NoTitle),
		Content:     cmp.Or(cleanText(item.Content), summary),
		Summary:     summary,
		Source:      cmp.Or(cleanText(item.FeedTitle), cleanText(source.Label), hostname(source.URL)),
		URL:         link,
		PublishedAt: n.publishedAt(item),
		Tags:        mergeTags(source.Tags, item.Categories),
	}

	if len(source.Filters) > 0 {
		if filtered, reason := n.filterer.Run(article, source.Filters); filtered {
			slog.Debug("Item filtered", "feed", source.URL, "url", link, "reason", reason)
			return Article{}, SkipFiltered
		}
	}

	return article, SkipNone
}

func (n *Normalizer) excludedPrefix(link string, source Source) (string, bool) {
	for _, prefix := range n.excludeURLPrefixes {
		if prefix != "" && strings.HasPrefix(link, prefix) {
			return prefix, true
		}
	}
	for _, prefix := range source.ExcludeURLPrefixes {
		if prefix != "" && strings.HasPrefix(link, prefix) {
			return prefix, true
		}
	}
	return "", false
}

func (n *Normalizer) publishedAt(item RawItem) time.Time {
	if t, ok := parseISODate(item.IsoDate); ok {
		return t
	}
	if t, ok := parseDate(item.PubDate); ok {
		return t
	}
	return n.now().UTC()
}

func parseISODate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t.UTC(), true
	}
	return parseDate(value)
}

func parseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	t, err := dateparse.ParseIn(value, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}

func hostname(feedURL string) string {
	u, err := url.Parse(feedURL)
	if err != nil {
		return feedURL
	}
	return cmp.Or(u.Hostname(), feedURL)
}

func mergeTags(groups ...[]string) []string {
	var tags []string
	seen := make(map[string]struct{})

	for _, group := range groups {
		for _, tag := range group {
			tag = cleanText(tag)
			if tag == "" {
				continue
			}
			if _, ok := seen[tag]; ok {
				continue
			}
			seen[tag] = struct{}{}
			tags = append(tags, tag)
		}
	}

	return tags
}
