package library_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/LarryLuggage/project-libris/internal/library"
	"github.com/LarryLuggage/project-libris/internal/testsupport"
)

func excerptsWithScores(scores ...float64) []library.Excerpt {
	out := make([]library.Excerpt, len(scores))
	for i, score := range scores {
		out[i] = library.Excerpt{
			Sequence: i + 1,
			Text:     fmt.Sprintf("passage %d", i+1),
			Score:    score,
		}
	}
	return out
}

func TestCreateWorkWithExcerptsRoundTrip(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	created, err := store.CreateWorkWithExcerpts(ctx, library.Work{
		ExternalID: 84,
		Title:      "Frankenstein",
		Author:     "Mary Wollstonecraft Shelley",
		CoverURL:   "https://example.org/84.jpg",
	}, excerptsWithScores(0.4, 0.7, 0.65))
	if err != nil {
		t.Fatalf("CreateWorkWithExcerpts failed: %v", err)
	}
	if created.ID == 0 {
		t.Fatal("expected work ID to be assigned")
	}
	if created.CreatedAt.IsZero() {
		t.Fatal("expected created_at to be set")
	}
	if len(created.Excerpts) != 3 {
		t.Fatalf("expected 3 excerpts, got %d", len(created.Excerpts))
	}
	for i, excerpt := range created.Excerpts {
		if excerpt.Sequence != i+1 || excerpt.WorkID != created.ID || excerpt.ID == 0 {
			t.Fatalf("unexpected excerpt %d: %+v", i, excerpt)
		}
	}

	found, err := store.FindWorkByExternalID(ctx, 84)
	if err != nil {
		t.Fatalf("FindWorkByExternalID failed: %v", err)
	}
	if found == nil || found.ID != created.ID || found.CoverURL != "https://example.org/84.jpg" {
		t.Fatalf("unexpected found work: %#v", found)
	}

	fetched, err := store.GetWork(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetWork failed: %v", err)
	}
	if fetched.Title != "Frankenstein" || len(fetched.Excerpts) != 3 {
		t.Fatalf("unexpected fetched work: %#v", fetched)
	}
	if fetched.Excerpts[1].Score != 0.7 {
		t.Fatalf("expected second excerpt score 0.7, got %v", fetched.Excerpts[1].Score)
	}
	if !fetched.CreatedAt.Equal(created.CreatedAt) {
		t.Fatalf("created_at drifted: %v vs %v", fetched.CreatedAt, created.CreatedAt)
	}
}

func TestFindWorkByExternalIDMissingReturnsNil(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))

	work, err := store.FindWorkByExternalID(context.Background(), 999)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if work != nil {
		t.Fatalf("expected nil work, got %#v", work)
	}
}

func TestGetWorkMissingReturnsNotFound(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))

	if _, err := store.GetWork(context.Background(), 42); !errors.Is(err, library.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateDuplicateWorkIsRejectedAtomically(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	work := library.Work{ExternalID: 1342, Title: "Pride and Prejudice", Author: "Jane Austen"}
	if _, err := store.CreateWorkWithExcerpts(ctx, work, excerptsWithScores(0.5, 0.5)); err != nil {
		t.Fatalf("first create failed: %v", err)
	}

	_, err := store.CreateWorkWithExcerpts(ctx, work, excerptsWithScores(0.9, 0.9, 0.9))
	if !errors.Is(err, library.ErrDuplicateWork) {
		t.Fatalf("expected ErrDuplicateWork, got %v", err)
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.Works != 1 || stats.Excerpts != 2 {
		t.Fatalf("duplicate insert leaked rows: %+v", stats)
	}
}

func TestCreateWorkRejectsGappedSequences(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))

	excerpts := []library.Excerpt{{Sequence: 1, Text: "a"}, {Sequence: 3, Text: "b"}}
	_, err := store.CreateWorkWithExcerpts(context.Background(), library.Work{ExternalID: 5, Title: "Gaps"}, excerpts)
	if err == nil {
		t.Fatal("expected sequence validation error")
	}
	found, err := store.FindWorkByExternalID(context.Background(), 5)
	if err != nil || found != nil {
		t.Fatalf("expected no work after rejected create, got %#v (%v)", found, err)
	}
}

func TestListWorksIncludesExcerptCounts(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	for i, count := range []int{3, 1, 2} {
		scores := make([]float64, count)
		if _, err := store.CreateWorkWithExcerpts(ctx, library.Work{
			ExternalID: 100 + i,
			Title:      fmt.Sprintf("Book %d", i),
			Author:     "Anon",
		}, excerptsWithScores(scores...)); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}

	all, err := store.ListWorks(ctx, 0)
	if err != nil {
		t.Fatalf("ListWorks failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 works, got %d", len(all))
	}
	for i, want := range []int{3, 1, 2} {
		if all[i].ExternalID != 100+i || all[i].ExcerptCount != want {
			t.Fatalf("unexpected summary %d: %+v", i, all[i])
		}
	}

	limited, err := store.ListWorks(ctx, 2)
	if err != nil {
		t.Fatalf("ListWorks(2) failed: %v", err)
	}
	if len(limited) != 2 {
		t.Fatalf("expected 2 works with limit, got %d", len(limited))
	}

	first, err := store.Excerpts(ctx, all[0].ID, 2)
	if err != nil {
		t.Fatalf("Excerpts failed: %v", err)
	}
	if len(first) != 2 || first[0].Sequence != 1 || first[1].Sequence != 2 {
		t.Fatalf("unexpected limited excerpts: %+v", first)
	}
}

func TestFeedPagePaginatesAboveThreshold(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	if _, err := store.CreateWorkWithExcerpts(ctx, library.Work{ExternalID: 1, Title: "One", Author: "A"},
		excerptsWithScores(0.9, 0.2, 0.61, 0.6)); err != nil {
		t.Fatalf("create one: %v", err)
	}
	if _, err := store.CreateWorkWithExcerpts(ctx, library.Work{ExternalID: 2, Title: "Two", Author: "B"},
		excerptsWithScores(0.75, 0.8, 0.1)); err != nil {
		t.Fatalf("create two: %v", err)
	}

	var (
		seen   []float64
		cursor int64
		pages  int
	)
	for {
		page, err := store.FeedPage(ctx, library.FeedQuery{MinScore: 0.6, AfterID: cursor, Limit: 2})
		if err != nil {
			t.Fatalf("FeedPage failed: %v", err)
		}
		pages++
		for _, item := range page.Items {
			if item.Score <= 0.6 {
				t.Fatalf("feed returned excerpt at or below threshold: %+v", item)
			}
			if item.ID <= cursor {
				t.Fatalf("feed went backwards: id %d after cursor %d", item.ID, cursor)
			}
			seen = append(seen, item.Score)
		}
		if page.NextCursor == 0 {
			break
		}
		cursor = page.NextCursor
		if pages > 10 {
			t.Fatal("pagination did not terminate")
		}
	}

	want := []float64{0.9, 0.61, 0.75, 0.8}
	if len(seen) != len(want) {
		t.Fatalf("expected %d feed items, got %v", len(want), seen)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("feed order mismatch at %d: got %v want %v", i, seen, want)
		}
	}
	if pages != 2 {
		t.Fatalf("expected 2 pages, got %d", pages)
	}
}

func TestFeedItemsCarryWorkDetails(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	if _, err := store.CreateWorkWithExcerpts(ctx, library.Work{ExternalID: 11, Title: "Alice", Author: "Lewis Carroll"},
		excerptsWithScores(0.95)); err != nil {
		t.Fatalf("create: %v", err)
	}
	page, err := store.FeedPage(ctx, library.FeedQuery{MinScore: 0.6})
	if err != nil {
		t.Fatalf("FeedPage failed: %v", err)
	}
	if len(page.Items) != 1 || page.NextCursor != 0 {
		t.Fatalf("unexpected page: %+v", page)
	}
	item := page.Items[0]
	if item.ExternalID != 11 || item.Title != "Alice" || item.Author != "Lewis Carroll" || item.CoverURL != "" {
		t.Fatalf("unexpected feed item: %+v", item)
	}
}

func TestOpenReusesExistingDatabase(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	ctx := context.Background()

	first, err := library.Open(ctx, library.Options{Driver: library.DriverSQLite, DSN: cfg.Storage.DSN})
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	if _, err := first.CreateWorkWithExcerpts(ctx, library.Work{ExternalID: 9, Title: "Nine", Author: "N"}, nil); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	second, err := library.Open(ctx, library.Options{Driver: library.DriverSQLite, DSN: cfg.Storage.DSN})
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	defer second.Close()
	stats, err := second.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.Works != 1 || stats.Excerpts != 0 || stats.AverageScore != 0 {
		t.Fatalf("unexpected stats after reopen: %+v", stats)
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := library.Open(context.Background(), library.Options{Driver: "mysql", DSN: "x"})
	if err == nil {
		t.Fatal("expected unsupported driver error")
	}
}
