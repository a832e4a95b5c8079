package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"rollcall/internal/export"
)

func newExportCmd(opts *options) *cobra.Command {
	var (
		dir  string
		keep bool
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every table to CSV, then clear the tables",
		Long: `export writes <dir>/<table>.csv for attendance, flagged_pairings and
audit_events, then deletes their rows in the same transaction. Empty
tables produce no file. Pass --keep to export without deleting.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			db, err := opts.openDB(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			report, err := export.New(db, opts.logger).Run(ctx, dir, !keep)
			if err != nil {
				return fmt.Errorf("export: %w", err)
			}

			out := cmd.OutOrStdout()
			if opts.jsonOutput {
				return outputJSON(out, report)
			}
			for _, t := range report.Tables {
				if t.Rows == 0 {
					fmt.Fprintf(out, "%s is empty\n", t.Table)
					continue
				}
				fmt.Fprintf(out, "%s: %d rows -> %s\n", t.Table, t.Rows, t.File)
			}
			if report.Purged {
				fmt.Fprintln(out, "tables cleared")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "exports", "directory to write CSV files into")
	cmd.Flags().BoolVar(&keep, "keep", false, "export without deleting rows")
	return cmd
}
