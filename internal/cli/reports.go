package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/netalign/pkg/render/report"
	"github.com/matzehuels/netalign/pkg/score"
	"github.com/matzehuels/netalign/pkg/storage"
)

// reportsCommand creates the reports command for browsing archived runs.
func (c *CLI) reportsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reports",
		Short: "Browse archived alignment reports",
	}

	cmd.AddCommand(c.reportsListCommand())
	cmd.AddCommand(c.reportsShowCommand())

	return cmd
}

// openStore opens the configured report store.
func (c *CLI) openStore(ctx context.Context) (storage.Store, error) {
	return storage.Open(ctx, c.settings().StoreOptions())
}

// reportsListCommand creates the "reports list" subcommand.
func (c *CLI) reportsListCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent reports, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close(context.Background())

			recs, err := store.List(ctx, limit)
			if err != nil {
				return err
			}
			if len(recs) == 0 {
				printInfo("No reports yet")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), recordTable(recs))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum reports listed (0 for all)")
	return cmd
}

// reportsShowCommand creates the "reports show" subcommand.
func (c *CLI) reportsShowCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != report.FormatTable && !report.IsFormat(format) {
				return fmt.Errorf("invalid format: %s (must be one of: table, json, yaml, toml)", format)
			}
			ctx := cmd.Context()
			store, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close(context.Background())

			rec, err := store.Get(ctx, args[0])
			if err != nil {
				return err
			}
			if format != report.FormatTable {
				return report.Encode(cmd.OutOrStdout(), format, rec)
			}

			printKeyValue("Report", rec.ID)
			printKeyValue("Created", rec.CreatedAt.Local().Format("2006-01-02 15:04:05"))
			printKeyValue("Networks", rec.G1+" → "+rec.G2)
			printKeyValue("View", rec.View)
			if rec.Mode != "" {
				printKeyValue("Mode", rec.Mode)
			}
			printKeyValue("Nodes", strconv.Itoa(rec.Nodes))
			fmt.Fprintln(cmd.OutOrStdout(), report.Table(rec.Measures))
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", report.FormatTable, "output format: table, json, yaml, toml")
	return cmd
}

// recordTable renders one row per record with its headline measures.
func recordTable(recs []*storage.Record) string {
	measure := func(r *storage.Record, name string) string {
		if v, ok := r.Measure(name); ok {
			return strconv.FormatFloat(v, 'f', 3, 64)
		}
		return "—"
	}
	rows := make([][]string, len(recs))
	for i, r := range recs {
		rows[i] = []string{
			r.ID,
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
			r.G1,
			r.G2,
			r.View,
			measure(r, score.EC),
			measure(r, score.NC),
		}
	}
	headers := []string{"ID", "CREATED", "G1", "G2", "VIEW", score.EC, score.NC}
	return newTable(headers, rows, func(row, col int) lipgloss.Style {
		if col == 0 {
			return StyleHighlight.Padding(0, 1)
		}
		return lipgloss.NewStyle().Padding(0, 1)
	}).Render()
}
