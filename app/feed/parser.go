package feed

import (
	"bytes"
	"cmp"
	"fmt"
	"time"

	"github.com/mmcdole/gofeed"
)

type Parser struct {
	gofeedParser *gofeed.Parser
}

func NewParser() *Parser {
	return &Parser{
		gofeedParser: gofeed.NewParser(),
	}
}

// Run parses an RSS, Atom or JSON feed document into raw items.
func (p *Parser) Run(data []byte) ([]RawItem, error) {
	feed, err := p.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	feedTitle := cleanText(feed.Title)

	items := make([]RawItem, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil {
			continue
		}
		items = append(items, p.toRawItem(item, feedTitle))
	}

	return items, nil
}

func (p *Parser) toRawItem(item *gofeed.Item, feedTitle string) RawItem {
	content := cmp.Or(item.Content, item.Description)

	raw := RawItem{
		Title:          item.Title,
		Link:           item.Link,
		ContentSnippet: snippet(content),
		Summary:        item.Description,
		Content:        content,
		PubDate:        cmp.Or(item.Published, item.Updated),
		FeedTitle:      feedTitle,
	}

	if item.PublishedParsed != nil {
		raw.IsoDate = item.PublishedParsed.UTC().Format(time.RFC3339Nano)
	} else if item.UpdatedParsed != nil {
		raw.IsoDate = item.UpdatedParsed.UTC().Format(time.RFC3339Nano)
	}

	if item.Categories != nil {
		raw.Categories = item.Categories
	}

	return raw
}
