package main

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/LarryLuggage/project-libris/internal/library"
	"github.com/LarryLuggage/project-libris/internal/textproc"
)

func newWorksCommand(ctx *commandContext) *cobra.Command {
	worksCmd := &cobra.Command{
		Use:   "works",
		Short: "Inspect ingested books",
	}
	worksCmd.AddCommand(newWorksListCommand(ctx))
	worksCmd.AddCommand(newWorksShowCommand(ctx))
	return worksCmd
}

func newWorksListCommand(ctx *commandContext) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored works with excerpt counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(cmd, func(store *library.Store) error {
				works, err := store.ListWorks(cmd.Context(), limit)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(works) == 0 {
					fmt.Fprintln(out, "Library is empty; run `libris ingest` first")
					return nil
				}
				rows := make([][]string, 0, len(works))
				for _, work := range works {
					rows = append(rows, []string{
						strconv.Itoa(work.ExternalID),
						work.Title,
						work.Author,
						humanize.Comma(int64(work.ExcerptCount)),
						work.CreatedAt.Local().Format("2006-01-02 15:04"),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"ID", "Title", "Author", "Excerpts", "Ingested"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignLeft},
				))

				stats, err := store.Stats(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s works, %s excerpts, average score %.3f\n",
					humanize.Comma(int64(stats.Works)), humanize.Comma(int64(stats.Excerpts)), stats.AverageScore)
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Show only the first N works")
	return cmd
}

func newWorksShowCommand(ctx *commandContext) *cobra.Command {
	var excerptLimit int
	cmd := &cobra.Command{
		Use:   "show <book-id>",
		Short: "Show one stored work and its first excerpts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseBookID(args[0])
			if err != nil {
				return err
			}
			return ctx.withStore(cmd, func(store *library.Store) error {
				work, err := store.FindWorkByExternalID(cmd.Context(), id)
				if err != nil {
					return err
				}
				if work == nil {
					return fmt.Errorf("book %d has not been ingested", id)
				}
				excerpts, err := store.Excerpts(cmd.Context(), work.ID, excerptLimit)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "ID:       %d\n", work.ExternalID)
				fmt.Fprintf(out, "Title:    %s\n", work.Title)
				fmt.Fprintf(out, "Author:   %s\n", work.Author)
				cover := work.CoverURL
				if cover == "" {
					cover = "(none)"
				}
				fmt.Fprintf(out, "Cover:    %s\n", cover)
				fmt.Fprintf(out, "Ingested: %s (%s)\n", work.CreatedAt.Local().Format("2006-01-02 15:04"), humanize.Time(work.CreatedAt))
				if len(excerpts) == 0 {
					return nil
				}

				rows := make([][]string, 0, len(excerpts))
				for _, excerpt := range excerpts {
					rows = append(rows, []string{
						strconv.Itoa(excerpt.Sequence),
						fmt.Sprintf("%.3f", excerpt.Score),
						strconv.Itoa(textproc.WordCount(excerpt.Text)),
						preview(excerpt.Text, previewWidth),
					})
				}
				fmt.Fprintln(out)
				fmt.Fprintln(out, renderTable(
					[]string{"Seq", "Score", "Words", "Excerpt"},
					rows,
					[]columnAlignment{alignRight, alignRight, alignRight, alignLeft},
				))
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&excerptLimit, "excerpts", 5, "Number of excerpts to show (0 for all)")
	return cmd
}
