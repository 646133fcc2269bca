package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/LarryLuggage/project-libris/internal/library"
)

func newFeedCommand(ctx *commandContext) *cobra.Command {
	var (
		after    int64
		limit    int
		minScore float64
	)
	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Page through high-scoring excerpts",
		Long: `List excerpts whose score is above scoring.high_score_threshold, oldest
first. Pass the printed cursor to --after to fetch the next page.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			threshold := cfg.Scoring.HighScoreThreshold
			if cmd.Flags().Changed("min-score") {
				threshold = minScore
			}
			return ctx.withStore(cmd, func(store *library.Store) error {
				page, err := store.FeedPage(cmd.Context(), library.FeedQuery{
					MinScore: threshold,
					AfterID:  after,
					Limit:    limit,
				})
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(page.Items) == 0 {
					fmt.Fprintf(out, "No excerpts above %.2f after cursor %d\n", threshold, after)
					return nil
				}
				rows := make([][]string, 0, len(page.Items))
				for _, item := range page.Items {
					rows = append(rows, []string{
						strconv.FormatInt(item.ID, 10),
						fmt.Sprintf("%s #%d", preview(item.Title, 28), item.Sequence),
						fmt.Sprintf("%.3f", item.Score),
						preview(item.Text, previewWidth),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Cursor", "Book", "Score", "Excerpt"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignRight, alignLeft},
				))
				if page.NextCursor != 0 {
					fmt.Fprintf(out, "Next page: libris feed --after %d\n", page.NextCursor)
				} else {
					fmt.Fprintln(out, "End of feed")
				}
				return nil
			})
		},
	}
	cmd.Flags().Int64Var(&after, "after", 0, "Cursor from the previous page")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Excerpts per page (max 100)")
	cmd.Flags().Float64Var(&minScore, "min-score", 0, "Override scoring.high_score_threshold")
	return cmd
}
