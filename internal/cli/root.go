// Package cli implements rollcallctl, the operator tool for a rollcall
// attendance database.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"rollcall/internal/platform/config"
	"rollcall/internal/platform/database"
	"rollcall/internal/platform/logger"
)

type options struct {
	jsonOutput bool
	cfg        config.Server
	logger     *slog.Logger
}

// NewRootCmd builds the command tree. Configuration is read from the same
// environment variables as the server.
func NewRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "rollcallctl",
		Short: "rollcallctl - operate a rollcall attendance database",
		Long: `rollcallctl archives and resets the attendance tables, replays the
audit log, tails the audit stream and mints admin tokens. It reads the
same environment variables as the rollcall server.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			opts.cfg = cfg
			opts.logger = logger.NewWithWriter(cmd.ErrOrStderr(), cfg.Log.Level, "text")
			return nil
		},
	}
	root.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "output in JSON format")

	root.AddCommand(
		newExportCmd(opts),
		newEventsCmd(opts),
		newTokenCmd(opts),
		newTailCmd(opts),
		newStudentsCmd(opts),
	)
	return root
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func (o *options) openDB(ctx context.Context) (*database.DB, error) {
	if o.cfg.Database.Driver == config.DriverMemory {
		return nil, fmt.Errorf("DATABASE_DRIVER=memory has no persistent data to operate on")
	}
	return database.Open(ctx, o.cfg.Database.Driver, o.cfg.Database.URL)
}

func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
