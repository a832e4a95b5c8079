package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	directoryservice "rollcall/internal/directory/service"
	directorystore "rollcall/internal/directory/store"
	"rollcall/pkg/platform/audit/publisher"
	sqlstore "rollcall/pkg/platform/audit/store/sql"
)

func newStudentsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "students",
		Short: "Manage the identity directory",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "add <userId> <name>",
		Short: "Add or rename a student",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, err := opts.openDB(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			auditor := publisher.New(sqlstore.New(db), publisher.WithLogger(opts.logger))
			defer auditor.Close()

			svc := directoryservice.New(directorystore.NewSQLStore(db), auditor, opts.cfg.EmailDomain, opts.logger)
			identity, err := svc.Add(ctx, args[1], args[0])
			if err != nil {
				return err
			}
			if opts.jsonOutput {
				return outputJSON(cmd.OutOrStdout(), identity)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved %s (%s)\n", identity.UserID, identity.Name)
			return nil
		},
	})
	return cmd
}
