package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/LarryLuggage/project-libris/internal/catalog"
)

func newCatalogCommand(ctx *commandContext) *cobra.Command {
	catalogCmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect the curated book list",
	}
	catalogCmd.AddCommand(newCatalogListCommand(ctx))
	catalogCmd.AddCommand(newCatalogShowCommand(ctx))
	return catalogCmd
}

func newCatalogListCommand(ctx *commandContext) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalog entries in ingestion order",
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := ctx.loadCatalog()
			if err != nil {
				return err
			}
			entries := cat.List(limit)
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderCatalogTable(entries))
			fmt.Fprintf(out, "%d of %d entries\n", len(entries), cat.Len())
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Show only the first N entries")
	return cmd
}

func newCatalogShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one catalog entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseBookID(args[0])
			if err != nil {
				return err
			}
			cat, err := ctx.loadCatalog()
			if err != nil {
				return err
			}
			entry, ok := cat.ByID(id)
			if !ok {
				return fmt.Errorf("book %d is not in the catalog (it can still be ingested with --ids)", id)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ID:     %d\n", entry.ExternalID)
			fmt.Fprintf(out, "Title:  %s\n", entry.Title)
			fmt.Fprintf(out, "Author: %s\n", entry.Author)
			return nil
		},
	}
}

func renderCatalogTable(entries []catalog.Entry) string {
	rows := make([][]string, 0, len(entries))
	for i, entry := range entries {
		rows = append(rows, []string{strconv.Itoa(i + 1), strconv.Itoa(entry.ExternalID), entry.Title, entry.Author})
	}
	return renderTable([]string{"#", "ID", "Title", "Author"}, rows, []columnAlignment{alignRight, alignRight, alignLeft, alignLeft})
}

func parseBookID(raw string) (int, error) {
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid book id %q", raw)
	}
	return id, nil
}
