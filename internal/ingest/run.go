package ingest

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

const summaryErrorLimit = 10

// Run aggregates the outcome of one IngestBatch call. It is never persisted.
type Run struct {
	RunID             string
	StartedAt         time.Time
	Duration          time.Duration
	BooksProcessed    int
	BooksSkipped      int
	BooksFailed       int
	ExcerptsCreated   int
	HighScoreExcerpts int
	// Errors holds at most MaxErrors messages; the rest are only counted.
	Errors        []string
	ErrorsOmitted int
	Interrupted   bool

	maxErrors int
}

func (r *Run) recordError(msg string) {
	limit := r.maxErrors
	if limit <= 0 {
		limit = DefaultMaxErrors
	}
	if len(r.Errors) >= limit {
		r.ErrorsOmitted++
		return
	}
	r.Errors = append(r.Errors, msg)
}

// Attempted counts entries that reached a terminal outcome.
func (r Run) Attempted() int {
	return r.BooksProcessed + r.BooksSkipped + r.BooksFailed
}

// HighScoreRatio is the share of created excerpts above the threshold, 0..1.
func (r Run) HighScoreRatio() float64 {
	if r.ExcerptsCreated == 0 {
		return 0
	}
	return float64(r.HighScoreExcerpts) / float64(r.ExcerptsCreated)
}

// Succeeded reports whether no entry failed.
func (r Run) Succeeded() bool {
	return r.BooksFailed == 0
}

// Summary renders the run for humans.
func (r Run) Summary() string {
	lines := []string{
		"Summary",
		"-------",
		fmt.Sprintf("Books processed: %d", r.BooksProcessed),
		fmt.Sprintf("Books skipped:   %d (already existed)", r.BooksSkipped),
		fmt.Sprintf("Books failed:    %d", r.BooksFailed),
		fmt.Sprintf("Excerpts created: %s", humanize.Comma(int64(r.ExcerptsCreated))),
		fmt.Sprintf("High-score excerpts: %s (%.1f%%)", humanize.Comma(int64(r.HighScoreExcerpts)), r.HighScoreRatio()*100),
		fmt.Sprintf("Total time:      %s", formatDuration(r.Duration)),
	}
	if r.Interrupted {
		lines = append(lines, "Interrupted:     yes (remaining books not attempted)")
	}

	total := len(r.Errors) + r.ErrorsOmitted
	if total > 0 {
		lines = append(lines, "", fmt.Sprintf("Errors (%d):", total))
		shown := r.Errors
		if len(shown) > summaryErrorLimit {
			shown = shown[:summaryErrorLimit]
		}
		for _, msg := range shown {
			lines = append(lines, "  - "+msg)
		}
		if hidden := total - len(shown); hidden > 0 {
			lines = append(lines, fmt.Sprintf("  ... and %d more", hidden))
		}
	}
	return strings.Join(lines, "\n")
}

func formatDuration(d time.Duration) string {
	seconds := d.Seconds()
	switch {
	case seconds < 60:
		return fmt.Sprintf("%.1fs", seconds)
	case seconds < 3600:
		return fmt.Sprintf("%dm %ds", int(seconds)/60, int(seconds)%60)
	default:
		return fmt.Sprintf("%dh %dm", int(seconds)/3600, (int(seconds)%3600)/60)
	}
}
