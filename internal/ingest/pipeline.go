package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	"github.com/LarryLuggage/project-libris/internal/catalog"
	"github.com/LarryLuggage/project-libris/internal/gutenberg"
	"github.com/LarryLuggage/project-libris/internal/library"
	"github.com/LarryLuggage/project-libris/internal/logging"
	"github.com/LarryLuggage/project-libris/internal/sentiment"
	"github.com/LarryLuggage/project-libris/internal/textproc"
)

const (
	// DefaultHighScoreThreshold marks excerpts eligible for the feed.
	DefaultHighScoreThreshold = 0.6
	// DefaultMaxErrors bounds the error messages kept on a Run.
	DefaultMaxErrors = 50
)

// ErrNoExcerpts reports a book whose text produced no excerpts inside the
// word-count window. Nothing is stored for such a book.
var ErrNoExcerpts = errors.New("no excerpts survived chunking")

// Store is the persistence the pipeline needs.
type Store interface {
	FindWorkByExternalID(ctx context.Context, externalID int) (*library.Work, error)
	CreateWorkWithExcerpts(ctx context.Context, work library.Work, excerpts []library.Excerpt) (*library.Work, error)
}

// Fetcher retrieves book text and cover locations.
type Fetcher interface {
	FetchText(ctx context.Context, externalID int) (string, error)
	CoverURL(externalID int) string
	VerifyCover(ctx context.Context, externalID int) (string, bool)
}

// Outcome is the terminal state of one catalog entry.
type Outcome int

const (
	OutcomePending Outcome = iota
	OutcomeSkipped
	OutcomeFailed
	OutcomeSucceeded
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSkipped:
		return "skipped"
	case OutcomeFailed:
		return "failed"
	case OutcomeSucceeded:
		return "succeeded"
	default:
		return "pending"
	}
}

// Result describes what IngestOne did with an entry.
type Result struct {
	Entry   catalog.Entry
	Outcome Outcome
	// Work is the stored work for succeeded entries and the existing work for
	// skipped ones.
	Work      *library.Work
	Excerpts  int
	HighScore int
}

// Progress is reported before each entry of a batch.
type Progress struct {
	Position        int
	Total           int
	Entry           catalog.Entry
	Processed       int
	Skipped         int
	Failed          int
	ExcerptsCreated int
}

// ProgressFunc receives batch progress updates.
type ProgressFunc func(Progress)

// Options tunes a Pipeline. Zero values fall back to defaults.
type Options struct {
	Window             textproc.Window
	HighScoreThreshold float64
	VerifyCovers       bool
	MaxErrors          int
	Progress           ProgressFunc
	// Result, when set, is called after each entry of a batch settles.
	Result func(Result, error)
	Logger *slog.Logger
}

// Pipeline turns catalog entries into stored works with scored excerpts.
type Pipeline struct {
	store   Store
	fetcher Fetcher
	scorer  sentiment.Scorer
	opts    Options
	logger  *slog.Logger
	now     func() time.Time
	newID   func() string
}

// NewPipeline wires the collaborators together.
func NewPipeline(store Store, fetcher Fetcher, scorer sentiment.Scorer, opts Options) *Pipeline {
	if opts.Window.Min <= 0 && opts.Window.Max <= 0 {
		opts.Window = textproc.DefaultWindow()
	}
	if opts.HighScoreThreshold <= 0 {
		opts.HighScoreThreshold = DefaultHighScoreThreshold
	}
	if opts.MaxErrors <= 0 {
		opts.MaxErrors = DefaultMaxErrors
	}
	return &Pipeline{
		store:   store,
		fetcher: fetcher,
		scorer:  scorer,
		opts:    opts,
		logger:  logging.NewComponentLogger(opts.Logger, "ingest"),
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// IngestOne processes a single entry. Already-stored works are skipped
// without touching the archive. On failure the returned error explains why
// and nothing is persisted.
func (p *Pipeline) IngestOne(ctx context.Context, entry catalog.Entry) (Result, error) {
	ctx = logging.WithExternalID(ctx, entry.ExternalID)
	logger := logging.WithContext(ctx, p.logger)
	result := Result{Entry: entry, Outcome: OutcomeFailed}

	existing, err := p.store.FindWorkByExternalID(ctx, entry.ExternalID)
	if err != nil {
		return result, fmt.Errorf("book %d: check existing work: %w", entry.ExternalID, err)
	}
	if existing != nil {
		logger.Info("book already ingested",
			logging.String(logging.FieldEventType, "book_skipped"),
			logging.String("title", entry.Title),
		)
		result.Outcome = OutcomeSkipped
		result.Work = existing
		return result, nil
	}

	logger.Info("fetching book",
		logging.String(logging.FieldEventType, "book_fetch"),
		logging.String("title", entry.Title),
		logging.String("author", entry.Author),
	)
	raw, err := p.fetcher.FetchText(ctx, entry.ExternalID)
	if err != nil {
		return result, err
	}

	chunks := textproc.Chunk(textproc.StripBoilerplate(raw), p.opts.Window)
	if len(chunks) == 0 {
		return result, fmt.Errorf("book %d: %w (window %d-%d words)",
			entry.ExternalID, ErrNoExcerpts, p.opts.Window.Min, p.opts.Window.Max)
	}

	excerpts := make([]library.Excerpt, len(chunks))
	highScore := 0
	for i, chunk := range chunks {
		score := p.scorer.Score(chunk)
		if score > p.opts.HighScoreThreshold {
			highScore++
		}
		excerpts[i] = library.Excerpt{Sequence: i + 1, Text: chunk, Score: score}
	}

	work, err := p.store.CreateWorkWithExcerpts(ctx, library.Work{
		ExternalID: entry.ExternalID,
		Title:      entry.Title,
		Author:     entry.Author,
		CoverURL:   p.resolveCover(ctx, entry.ExternalID),
	}, excerpts)
	if errors.Is(err, library.ErrDuplicateWork) {
		existing, findErr := p.store.FindWorkByExternalID(ctx, entry.ExternalID)
		if findErr != nil {
			return result, fmt.Errorf("book %d: reload after duplicate: %w", entry.ExternalID, findErr)
		}
		if existing == nil {
			return result, fmt.Errorf("book %d: %w", entry.ExternalID, err)
		}
		logger.Info("book stored concurrently, skipping",
			logging.String(logging.FieldEventType, "book_skipped"),
		)
		result.Outcome = OutcomeSkipped
		result.Work = existing
		return result, nil
	}
	if err != nil {
		return result, fmt.Errorf("book %d: store work: %w", entry.ExternalID, err)
	}

	result.Outcome = OutcomeSucceeded
	result.Work = work
	result.Excerpts = len(excerpts)
	result.HighScore = highScore
	logger.Info("book ingested",
		logging.String(logging.FieldEventType, "book_ingested"),
		logging.String("title", entry.Title),
		logging.Int("excerpts", len(excerpts)),
		logging.Int("high_score", highScore),
	)
	return result, nil
}

func (p *Pipeline) resolveCover(ctx context.Context, externalID int) string {
	if !p.opts.VerifyCovers {
		return p.fetcher.CoverURL(externalID)
	}
	url, ok := p.fetcher.VerifyCover(ctx, externalID)
	if !ok {
		return ""
	}
	return url
}

// IngestBatch processes entries one at a time in order and never fails as a
// whole: every per-entry fault is logged, counted and recorded on the Run.
// Cancelling ctx stops the batch before the next entry; the entry in flight
// always runs to completion.
func (p *Pipeline) IngestBatch(ctx context.Context, entries []catalog.Entry) Run {
	run := Run{
		RunID:     p.newID(),
		StartedAt: p.now(),
		maxErrors: p.opts.MaxErrors,
	}
	ctx = logging.WithRunID(ctx, run.RunID)
	logger := logging.WithContext(ctx, p.logger)
	total := len(entries)
	sampler := logging.NewProgressSampler(0)

	logger.Info("ingestion started",
		logging.String(logging.FieldEventType, "run_start"),
		logging.Int(logging.FieldTotal, total),
	)

	for i, entry := range entries {
		if ctx.Err() != nil {
			run.Interrupted = true
			logging.WarnWithContext(logger, "ingestion interrupted", "run_interrupted",
				logging.Int("remaining", total-i),
				logging.String(logging.FieldErrorHint, "rerun the same command; stored books are skipped"),
				logging.String(logging.FieldImpact, "remaining books were not attempted"),
			)
			break
		}

		if p.opts.Progress != nil {
			p.opts.Progress(Progress{
				Position:        i + 1,
				Total:           total,
				Entry:           entry,
				Processed:       run.BooksProcessed,
				Skipped:         run.BooksSkipped,
				Failed:          run.BooksFailed,
				ExcerptsCreated: run.ExcerptsCreated,
			})
		}

		result, err := p.safeIngest(context.WithoutCancel(ctx), entry)
		switch {
		case err != nil:
			run.BooksFailed++
			run.recordError(err.Error())
			logging.ErrorWithContext(logging.WithContext(logging.WithExternalID(ctx, entry.ExternalID), p.logger),
				"book failed", "book_failed",
				logging.Int(logging.FieldPosition, i+1),
				logging.Int(logging.FieldTotal, total),
				logging.String("title", entry.Title),
				logging.String(logging.FieldErrorHint, errorHint(err)),
				logging.Error(err),
			)
		case result.Outcome == OutcomeSkipped:
			run.BooksSkipped++
		default:
			run.BooksProcessed++
			run.ExcerptsCreated += result.Excerpts
			run.HighScoreExcerpts += result.HighScore
		}
		if p.opts.Result != nil {
			p.opts.Result(result, err)
		}
		if sampler.ShouldLog(i+1, total) {
			logger.Info("ingestion progress",
				logging.String(logging.FieldEventType, "run_progress"),
				logging.Int(logging.FieldPosition, i+1),
				logging.Int(logging.FieldTotal, total),
				logging.Int("processed", run.BooksProcessed),
				logging.Int("skipped", run.BooksSkipped),
				logging.Int("failed", run.BooksFailed),
			)
		}
	}

	run.Duration = p.now().Sub(run.StartedAt)
	logger.Info("ingestion finished",
		logging.String(logging.FieldEventType, "run_complete"),
		logging.Int("processed", run.BooksProcessed),
		logging.Int("skipped", run.BooksSkipped),
		logging.Int("failed", run.BooksFailed),
		logging.Int("excerpts", run.ExcerptsCreated),
		logging.Duration("duration", run.Duration),
		logging.Bool("interrupted", run.Interrupted),
	)
	return run
}

// safeIngest converts a panic inside one entry into an error so the batch
// can continue.
func (p *Pipeline) safeIngest(ctx context.Context, entry catalog.Entry) (result Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("book panic recovered",
				logging.Int(logging.FieldExternalID, entry.ExternalID),
				logging.Any("panic", r),
				logging.String("stack", string(debug.Stack())),
			)
			result = Result{Entry: entry, Outcome: OutcomeFailed}
			err = fmt.Errorf("book %d: unexpected error: panic: %v", entry.ExternalID, r)
		}
	}()
	return p.IngestOne(ctx, entry)
}

func errorHint(err error) string {
	switch {
	case gutenberg.IsFetchError(err):
		return "the archive may not carry a plain-text edition; try again later or drop the id"
	case errors.Is(err, ErrNoExcerpts):
		return "widen processing.chunk_min_words/chunk_max_words"
	default:
		return "check storage connectivity and logs"
	}
}
