package database

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
)

func newArticle(url, title string, publishedAt time.Time, tags ...string) NewArticle {
	return NewArticle{
		Title:       title,
		Content:     title + " content",
		Summary:     title + " summary",
		Source:      "Test Source",
		URL:         url,
		PublishedAt: publishedAt,
		Tags:        tags,
	}
}

func TestWriteInsertsThenIgnoresDuplicateURL(t *testing.T) {
	ctx := context.Background()
	repo := NewArticleRepository(openTestDB(t))
	published := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	result, err := repo.Write(ctx, newArticle("http://x/1", "A", published))
	if err != nil {
		t.Fatal(err)
	}
	if result != WriteInserted {
		t.Errorf("Expected first write to be inserted, got %s", result)
	}

	result, err = repo.Write(ctx, newArticle("http://x/1", "B", published.Add(time.Hour)))
	if err != nil {
		t.Fatal(err)
	}
	if result != WriteAlreadyExists {
		t.Errorf("Expected second write to report already exists, got %s", result)
	}

	articles, err := repo.ListArticles(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(articles) != 1 {
		t.Fatalf("Expected 1 article, got %d", len(articles))
	}
	if articles[0].Title != "A" {
		t.Errorf("Expected first-seen title 'A', got '%s'", articles[0].Title)
	}
	if !articles[0].PublishedAt.Equal(published) {
		t.Errorf("Expected published_at %v to be unchanged, got %v", published, articles[0].PublishedAt)
	}
}

func TestWriteStoresCanonicalUTCTimestamp(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewArticleRepository(db)

	local := time.Date(2025, 3, 4, 10, 30, 0, 0, time.FixedZone("BRT", -3*60*60))
	if _, err := repo.Write(ctx, newArticle("http://x/tz", "TZ", local)); err != nil {
		t.Fatal(err)
	}

	var stored string
	if err := db.QueryRow(`SELECT CAST(published_at AS TEXT) FROM articles WHERE url = ?`, "http://x/tz").Scan(&stored); err != nil {
		t.Fatal(err)
	}
	if stored != "2025-03-04T13:30:00.000Z" {
		t.Errorf("Expected stored timestamp '2025-03-04T13:30:00.000Z', got '%s'", stored)
	}
}

func TestWriteTruncatesTimestampToMilliseconds(t *testing.T) {
	ctx := context.Background()
	repo := NewArticleRepository(openTestDB(t))

	published := time.Date(2025, 1, 1, 0, 0, 0, 123456789, time.UTC)
	if _, err := repo.Write(ctx, newArticle("http://x/ns", "NS", published)); err != nil {
		t.Fatal(err)
	}

	articles, err := repo.ListArticles(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(articles) != 1 {
		t.Fatalf("Expected 1 article, got %d", len(articles))
	}

	want := published.Truncate(time.Millisecond)
	if !articles[0].PublishedAt.Equal(want) {
		t.Errorf("Expected %v, got %v", want, articles[0].PublishedAt)
	}
	if articles[0].PublishedAt.Nanosecond() != 123000000 {
		t.Errorf("Expected 123ms fraction, got %dns", articles[0].PublishedAt.Nanosecond())
	}
}

func TestWriteLinksTags(t *testing.T) {
	ctx := context.Background()
	repo := NewArticleRepository(openTestDB(t))
	published := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	if _, err := repo.Write(ctx, newArticle("http://x/tagged", "Tagged", published, "Markets", "Brazil", "Markets")); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.Write(ctx, newArticle("http://x/plain", "Plain", published.Add(-time.Hour))); err != nil {
		t.Fatal(err)
	}

	articles, err := repo.ListArticles(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(articles) != 2 {
		t.Fatalf("Expected 2 articles, got %d", len(articles))
	}

	tagged := articles[0]
	if len(tagged.Tags) != 2 || tagged.Tags[0] != "Brazil" || tagged.Tags[1] != "Markets" {
		t.Errorf("Expected tags [Brazil Markets], got %v", tagged.Tags)
	}

	plain := articles[1]
	if plain.Tags == nil {
		t.Error("Expected empty, non-nil tags for untagged article")
	}
	if len(plain.Tags) != 0 {
		t.Errorf("Expected no tags, got %v", plain.Tags)
	}
}

func TestEnsureTagIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewArticleRepository(db)

	first, err := repo.EnsureTag(ctx, "Commodities")
	if err != nil {
		t.Fatal(err)
	}
	second, err := repo.EnsureTag(ctx, "Commodities")
	if err != nil {
		t.Fatal(err)
	}

	if first != second {
		t.Errorf("Expected same tag id, got %d and %d", first, second)
	}

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM tags WHERE name = ?`, "Commodities").Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("Expected 1 tag row, got %d", count)
	}
}

func TestEnsureTagRejectsEmptyName(t *testing.T) {
	repo := NewArticleRepository(openTestDB(t))

	if _, err := repo.EnsureTag(context.Background(), ""); err == nil {
		t.Error("Expected error for empty tag name")
	}
}

func TestLinkTagIsIdempotentAndRequiresArticle(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewArticleRepository(db)

	if _, err := repo.Write(ctx, newArticle("http://x/1", "A", time.Now())); err != nil {
		t.Fatal(err)
	}
	var articleID int64
	if err := db.QueryRow(`SELECT id FROM articles WHERE url = ?`, "http://x/1").Scan(&articleID); err != nil {
		t.Fatal(err)
	}

	tagID, err := repo.EnsureTag(ctx, "Technology")
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 2; i++ {
		if err := repo.LinkTag(ctx, articleID, tagID); err != nil {
			t.Fatalf("LinkTag call %d failed: %v", i+1, err)
		}
	}

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM article_tags WHERE article_id = ? AND tag_id = ?`, articleID, tagID).Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("Expected 1 association, got %d", count)
	}

	if err := repo.LinkTag(ctx, articleID+1000, tagID); err == nil {
		t.Error("Expected error linking a tag to a missing article")
	}
}

func TestDeletingArticleCascadesToAssociations(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewArticleRepository(db)

	if _, err := repo.Write(ctx, newArticle("http://x/1", "A", time.Now(), "Brazil")); err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec(`DELETE FROM articles WHERE url = ?`, "http://x/1"); err != nil {
		t.Fatal(err)
	}

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM article_tags`).Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("Expected associations to be removed with the article, got %d", count)
	}
}

func TestListArticlesOrdersByPublishedAtThenID(t *testing.T) {
	ctx := context.Background()
	repo := NewArticleRepository(openTestDB(t))

	t1 := time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC)
	t2 := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	t3 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	// Inserted oldest first, plus a tie on t2.
	for _, a := range []NewArticle{
		newArticle("http://x/3", "T3", t3),
		newArticle("http://x/2a", "T2a", t2),
		newArticle("http://x/1", "T1", t1),
		newArticle("http://x/2b", "T2b", t2),
	} {
		if _, err := repo.Write(ctx, a); err != nil {
			t.Fatal(err)
		}
	}

	articles, err := repo.ListArticles(ctx)
	if err != nil {
		t.Fatal(err)
	}

	expected := []string{"T1", "T2b", "T2a", "T3"}
	if len(articles) != len(expected) {
		t.Fatalf("Expected %d articles, got %d", len(expected), len(articles))
	}
	for i, title := range expected {
		if articles[i].Title != title {
			t.Errorf("Position %d: expected '%s', got '%s'", i, title, articles[i].Title)
		}
	}
}

func TestListArticlesEmptyStore(t *testing.T) {
	repo := NewArticleRepository(openTestDB(t))

	articles, err := repo.ListArticles(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if articles == nil {
		t.Error("Expected empty, non-nil slice")
	}
	if len(articles) != 0 {
		t.Errorf("Expected 0 articles, got %d", len(articles))
	}
}

func TestConcurrentWritersAreSerialized(t *testing.T) {
	ctx := context.Background()
	repo := NewArticleRepository(openTestDB(t))
	published := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	var wg sync.WaitGroup
	errs := make(chan error, 40)

	for worker := 0; worker < 4; worker++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for i := 0; i < 10; i++ {
				// Every worker writes the same ten URLs.
				url := fmt.Sprintf("http://x/%d", i)
				if _, err := repo.Write(ctx, newArticle(url, fmt.Sprintf("w%d", worker), published, "Shared")); err != nil {
					errs <- err
				}
			}
		}(worker)
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Unexpected write error: %v", err)
	}

	count, err := repo.CountArticles(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if count != 10 {
		t.Errorf("Expected 10 distinct articles, got %d", count)
	}
}
