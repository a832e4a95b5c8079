package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	audit "rollcall/pkg/platform/audit"
	"rollcall/pkg/platform/audit/consumer"
)

func newTailCmd(opts *options) *cobra.Command {
	var group string
	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Follow the audit stream on Kafka as JSON lines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !opts.cfg.KafkaEnabled() {
				return fmt.Errorf("KAFKA_BROKERS is not set")
			}
			c, err := consumer.New(opts.cfg.Kafka.Brokers, opts.cfg.Kafka.AuditTopic, group, opts.logger)
			if err != nil {
				return err
			}
			defer c.Close()

			enc := json.NewEncoder(cmd.OutOrStdout())
			return c.Run(cmd.Context(), func(_ context.Context, e audit.Event) error {
				return enc.Encode(e)
			})
		},
	}
	cmd.Flags().StringVar(&group, "group", "", "consumer group to commit offsets under")
	return cmd
}
