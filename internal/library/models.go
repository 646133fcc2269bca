package library

import "time"

// Work is a persisted source book.
type Work struct {
	ID         int64
	ExternalID int
	Title      string
	Author     string
	// CoverURL is empty when no cover is known.
	CoverURL  string
	CreatedAt time.Time
	Excerpts  []Excerpt
}

// Excerpt is one scored passage of a Work. Sequence starts at 1 and is dense
// within a work.
type Excerpt struct {
	ID       int64
	WorkID   int64
	Sequence int
	Text     string
	Score    float64
}

// WorkSummary is a Work row plus its excerpt count.
type WorkSummary struct {
	Work
	ExcerptCount int
}

// FeedItem is an excerpt joined with the work it came from.
type FeedItem struct {
	Excerpt
	ExternalID int
	Title      string
	Author     string
	CoverURL   string
}

// FeedQuery selects one page of feed-eligible excerpts.
type FeedQuery struct {
	// MinScore is exclusive: only excerpts scoring strictly above it qualify.
	MinScore float64
	// AfterID is the cursor returned by the previous page; zero starts at the beginning.
	AfterID int64
	Limit   int
}

// FeedPage is one page of the feed. NextCursor is zero on the last page.
type FeedPage struct {
	Items      []FeedItem
	NextCursor int64
}

// Stats summarizes the library contents.
type Stats struct {
	Works        int
	Excerpts     int
	AverageScore float64
}
