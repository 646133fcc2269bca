package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/LarryLuggage/project-libris/internal/catalog"
	"github.com/LarryLuggage/project-libris/internal/config"
	"github.com/LarryLuggage/project-libris/internal/ingest"
	"github.com/LarryLuggage/project-libris/internal/runlock"
	"github.com/LarryLuggage/project-libris/internal/textproc"
)

type ingestFlags struct {
	count    int
	ids      []int
	dryRun   bool
	verbose  bool
	minWords int
	maxWords int
	analyzer string
}

func newIngestCommand(ctx *commandContext) *cobra.Command {
	var flags ingestFlags

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Fetch, chunk, score and store books from the catalog",
		Long: `Fetch books from Project Gutenberg, split them into excerpts, score each
excerpt and store the results. Books already in the library are skipped, so
an interrupted or partially failed run can simply be repeated.`,
		Example: `  libris ingest --count 5
  libris ingest --ids 84,1342 --verbose
  libris ingest --dry-run`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(cmd, ctx, flags)
		},
	}

	cmd.Flags().IntVarP(&flags.count, "count", "n", 0, "Number of catalog books to ingest (default ingest.default_count)")
	cmd.Flags().IntSliceVar(&flags.ids, "ids", nil, "Comma-separated book ids to ingest; overrides --count")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Show the books that would be ingested without fetching anything")
	cmd.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "Print one line per book instead of a progress bar")
	cmd.Flags().IntVar(&flags.minWords, "min-words", 0, "Override processing.chunk_min_words")
	cmd.Flags().IntVar(&flags.maxWords, "max-words", 0, "Override processing.chunk_max_words")
	cmd.Flags().StringVar(&flags.analyzer, "analyzer", "", "Override scoring.analyzer (polarity, hybrid, literary)")
	return cmd
}

func runIngest(cmd *cobra.Command, ctx *commandContext, flags ingestFlags) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	entries, err := selectEntries(ctx, cfg, flags)
	if err != nil {
		return err
	}
	window, err := resolveWindow(cmd, cfg, flags)
	if err != nil {
		return err
	}
	scorer, kind, err := ctx.scorer(flags.analyzer)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if flags.dryRun {
		renderDryRun(out, entries, window, string(kind))
		return nil
	}
	if len(entries) == 0 {
		fmt.Fprintln(out, "Nothing to ingest")
		return nil
	}

	lock, err := runlock.Acquire(cfg.LockPath())
	if err != nil {
		return err
	}
	defer lock.Release()

	logger, err := ctx.logger(cmd)
	if err != nil {
		return err
	}
	runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := ctx.openStore(runCtx, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	fetcher, err := ctx.fetcher(logger)
	if err != nil {
		return err
	}

	reporter := newIngestReporter(out, len(entries), flags.verbose)
	pipeline := ingest.NewPipeline(store, fetcher, scorer, ingest.Options{
		Window:             window,
		HighScoreThreshold: cfg.Scoring.HighScoreThreshold,
		VerifyCovers:       cfg.Gutenberg.VerifyCovers,
		MaxErrors:          cfg.Ingest.MaxErrors,
		Progress:           reporter.progress,
		Result:             reporter.result,
		Logger:             logger,
	})

	run := pipeline.IngestBatch(runCtx, entries)
	reporter.finish()

	fmt.Fprintln(out)
	fmt.Fprintln(out, run.Summary())
	fmt.Fprintln(out)
	renderRunStatus(out, run)

	switch {
	case run.Interrupted:
		return fmt.Errorf("ingestion %w after %d of %d books", errInterrupted, run.Attempted(), len(entries))
	case !run.Succeeded():
		return fmt.Errorf("%d of %d books failed", run.BooksFailed, run.Attempted())
	}
	return nil
}

func selectEntries(ctx *commandContext, cfg *config.Config, flags ingestFlags) ([]catalog.Entry, error) {
	cat, err := ctx.loadCatalog()
	if err != nil {
		return nil, err
	}
	if len(flags.ids) > 0 {
		for _, id := range flags.ids {
			if id <= 0 {
				return nil, fmt.Errorf("--ids: book ids must be positive, got %d", id)
			}
		}
		return cat.ByIDs(flags.ids), nil
	}
	count := flags.count
	if count < 0 {
		return nil, errors.New("--count must be positive")
	}
	if count == 0 {
		count = cfg.Ingest.DefaultCount
	}
	return cat.List(count), nil
}

func resolveWindow(cmd *cobra.Command, cfg *config.Config, flags ingestFlags) (textproc.Window, error) {
	window := textproc.Window{Min: cfg.Processing.ChunkMinWords, Max: cfg.Processing.ChunkMaxWords}
	if cmd.Flags().Changed("min-words") {
		window.Min = flags.minWords
	}
	if cmd.Flags().Changed("max-words") {
		window.Max = flags.maxWords
	}
	if window.Min < 1 {
		return window, errors.New("--min-words must be at least 1")
	}
	if window.Max < window.Min {
		return window, fmt.Errorf("--max-words (%d) must not be below --min-words (%d)", window.Max, window.Min)
	}
	return window, nil
}

func renderDryRun(out io.Writer, entries []catalog.Entry, window textproc.Window, analyzer string) {
	fmt.Fprintln(out, renderCatalogTable(entries))
	fmt.Fprintf(out, "Dry run: %d books would be ingested (window %d-%d words, %s scorer); nothing was fetched or stored.\n",
		len(entries), window.Min, window.Max, analyzer)
}

func renderRunStatus(out io.Writer, run ingest.Run) {
	var (
		c   *color.Color
		msg string
	)
	switch {
	case run.Interrupted:
		c, msg = color.New(color.FgYellow, color.Bold), "Interrupted: rerun the same command to continue"
	case !run.Succeeded():
		c, msg = color.New(color.FgRed, color.Bold), fmt.Sprintf("Completed with %d failed books", run.BooksFailed)
	default:
		c, msg = color.New(color.FgGreen, color.Bold), "All books ingested"
	}
	if shouldColorize(out) {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	c.Fprintln(out, msg)
}

// ingestReporter renders batch progress either as one line per book or as a
// single redrawn progress bar on terminals.
type ingestReporter struct {
	out      io.Writer
	verbose  bool
	colorize bool
	bar      *progressbar.ProgressBar
}

func newIngestReporter(out io.Writer, total int, verbose bool) *ingestReporter {
	r := &ingestReporter{out: out, verbose: verbose, colorize: shouldColorize(out)}
	if !verbose && r.colorize {
		r.bar = progressbar.NewOptions(total,
			progressbar.OptionSetWriter(out),
			progressbar.OptionSetWidth(30),
			progressbar.OptionShowCount(),
			progressbar.OptionSetPredictTime(false),
			progressbar.OptionClearOnFinish(),
		)
	}
	return r
}

func (r *ingestReporter) progress(p ingest.Progress) {
	if r.bar != nil {
		r.bar.Describe(fmt.Sprintf("%s (%d stored, %d failed)", truncateTitle(p.Entry.Title), p.Processed, p.Failed))
		return
	}
	if r.verbose {
		fmt.Fprintf(r.out, "[%d/%d] %s by %s\n", p.Position, p.Total, p.Entry.Title, p.Entry.Author)
	}
}

func (r *ingestReporter) result(res ingest.Result, err error) {
	if r.bar != nil {
		_ = r.bar.Add(1)
		return
	}
	if !r.verbose {
		return
	}
	label := fmt.Sprintf("#%d", res.Entry.ExternalID)
	switch {
	case err != nil:
		fmt.Fprintln(r.out, renderStatusLine(label, statusError, err.Error(), r.colorize))
	case res.Outcome == ingest.OutcomeSkipped:
		fmt.Fprintln(r.out, renderStatusLine(label, statusWarn, "already in library", r.colorize))
	default:
		fmt.Fprintln(r.out, renderStatusLine(label, statusOK,
			fmt.Sprintf("%d excerpts, %d high-score", res.Excerpts, res.HighScore), r.colorize))
	}
}

func (r *ingestReporter) finish() {
	if r.bar != nil {
		_ = r.bar.Finish()
	}
}

func truncateTitle(title string) string {
	return preview(title, 32)
}
