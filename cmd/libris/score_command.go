package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/LarryLuggage/project-libris/internal/sentiment"
	"github.com/LarryLuggage/project-libris/internal/textproc"
)

func newScoreCommand(ctx *commandContext) *cobra.Command {
	var (
		analyzerName string
		filePath     string
	)
	cmd := &cobra.Command{
		Use:   "score [text...]",
		Short: "Score a passage with every sentiment variant",
		Long: `Score a passage the way ingested excerpts are scored. Useful when tuning
keyword weights or a custom lexicon. Text comes from the arguments or --file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := scoreInput(args, filePath)
			if err != nil {
				return err
			}
			analyzer, err := ctx.analyzer()
			if err != nil {
				return err
			}

			kinds := sentiment.Kinds()
			if strings.TrimSpace(analyzerName) != "" {
				kind, err := sentiment.ParseKind(analyzerName)
				if err != nil {
					return err
				}
				kinds = []sentiment.Kind{kind}
			}

			policy := ctx.keywordPolicy()
			rows := make([][]string, 0, len(kinds))
			for _, kind := range kinds {
				scorer, err := sentiment.New(kind, analyzer, policy)
				if err != nil {
					return err
				}
				rows = append(rows, []string{string(kind), fmt.Sprintf("%.4f", scorer.Score(text))})
			}

			assessment := analyzer.Analyze(text)
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable([]string{"Analyzer", "Score"}, rows, []columnAlignment{alignLeft, alignRight}))
			fmt.Fprintf(out, "Words: %d  Polarity: %.3f  Subjectivity: %.3f  Lexicon matches: %d  Keyword bonus: %.3f\n",
				textproc.WordCount(text), assessment.Polarity, assessment.Subjectivity, assessment.Matches, policy.Bonus(text))
			return nil
		},
	}
	cmd.Flags().StringVar(&analyzerName, "analyzer", "", "Score with a single variant (polarity, hybrid, literary)")
	cmd.Flags().StringVarP(&filePath, "file", "f", "", "Read the passage from a file")
	return cmd
}

func scoreInput(args []string, filePath string) (string, error) {
	if filePath != "" {
		if len(args) > 0 {
			return "", errors.New("pass text either as arguments or with --file, not both")
		}
		data, err := os.ReadFile(filePath)
		if err != nil {
			return "", fmt.Errorf("read passage: %w", err)
		}
		return string(data), nil
	}
	text := strings.TrimSpace(strings.Join(args, " "))
	if text == "" {
		return "", errors.New("no text to score; pass it as arguments or with --file")
	}
	return text, nil
}
