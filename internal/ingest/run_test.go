package ingest

import (
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestRunSummaryFormatting(t *testing.T) {
	run := Run{
		BooksProcessed:    12,
		BooksSkipped:      3,
		BooksFailed:       1,
		ExcerptsCreated:   12345,
		HighScoreExcerpts: 4321,
		Duration:          3*time.Minute + 7*time.Second,
		maxErrors:         50,
	}
	for i := 1; i <= 12; i++ {
		run.recordError(fmt.Sprintf("book %d: failed", i))
	}

	summary := run.Summary()
	for _, want := range []string{
		"Books processed: 12",
		"Books skipped:   3 (already existed)",
		"Excerpts created: 12,345",
		"High-score excerpts: 4,321 (35.0%)",
		"Total time:      3m 7s",
		"Errors (12):",
		"  - book 10: failed",
		"  ... and 2 more",
	} {
		if !strings.Contains(summary, want) {
			t.Fatalf("summary missing %q:\n%s", want, summary)
		}
	}
	if strings.Contains(summary, "book 11: failed") {
		t.Fatalf("summary should list only the first 10 errors:\n%s", summary)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{1500 * time.Millisecond, "1.5s"},
		{59 * time.Second, "59.0s"},
		{61 * time.Second, "1m 1s"},
		{2*time.Hour + 5*time.Minute + 9*time.Second, "2h 5m"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.in); got != tt.want {
			t.Fatalf("formatDuration(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRunRatiosWithoutExcerpts(t *testing.T) {
	var run Run
	if run.HighScoreRatio() != 0 {
		t.Fatal("empty run should have zero ratio")
	}
	if !run.Succeeded() || run.Attempted() != 0 {
		t.Fatalf("unexpected empty run state: %+v", run)
	}
	if strings.Contains(run.Summary(), "Errors") {
		t.Fatal("empty run should not list errors")
	}
}
