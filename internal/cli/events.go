package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	audit "rollcall/pkg/platform/audit"
	sqlstore "rollcall/pkg/platform/audit/store/sql"
)

func newEventsCmd(opts *options) *cobra.Command {
	var (
		limit int
		name  string
	)
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Replay the audit log, newest first, as JSON lines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			db, err := opts.openDB(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			enc := json.NewEncoder(cmd.OutOrStdout())
			n := 0
			for e, err := range audit.Events(ctx, sqlstore.New(db), opts.cfg.Audit.PageSize) {
				if err != nil {
					return fmt.Errorf("read audit log: %w", err)
				}
				if name != "" && string(e.Name) != name {
					continue
				}
				if err := enc.Encode(e); err != nil {
					return err
				}
				n++
				if limit > 0 && n >= limit {
					break
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "stop after this many events (0 for all)")
	cmd.Flags().StringVar(&name, "event", "", "only print events with this name")
	return cmd
}
