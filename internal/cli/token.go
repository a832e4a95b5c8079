package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	jwttoken "rollcall/internal/jwt_token"
)

func newTokenCmd(opts *options) *cobra.Command {
	var (
		subject string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an admin bearer token for the /admin routes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.cfg.AdminJWTSecret == "" {
				return fmt.Errorf("ADMIN_JWT_SECRET is not set")
			}
			svc := jwttoken.NewJWTService(opts.cfg.AdminJWTSecret, jwttoken.DefaultIssuer, jwttoken.DefaultAudience)
			token, err := svc.GenerateAdminToken(subject, ttl)
			if err != nil {
				return fmt.Errorf("sign token: %w", err)
			}
			if opts.jsonOutput {
				return outputJSON(cmd.OutOrStdout(), map[string]any{
					"token":      token,
					"subject":    subject,
					"expires_at": time.Now().Add(ttl).UTC(),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "operator", "subject recorded in the token")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	return cmd
}
