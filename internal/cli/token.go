package cli

import (
	"fmt"
	"time"

	"hr-workflow/internal/auth"
	"hr-workflow/internal/config"
	"hr-workflow/internal/service"

	"github.com/spf13/cobra"
)

// NewTokenCommand issues a bearer token for an existing user
func NewTokenCommand() *cobra.Command {
	var (
		userID uint
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an API bearer token for a user",
		Long: `Issue an HS256 bearer token carrying the user's ID and current role.

Example:
  hrworkflow token --user-id 3 --ttl 72h`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.GetConfig()
			a, err := newApp(cfg, service.SystemClock{})
			if err != nil {
				return err
			}
			defer a.Close()

			user, err := a.users.Get(cmd.Context(), userID)
			if err != nil {
				return fmt.Errorf("user %d: %w", userID, err)
			}

			token, err := auth.NewGuard(cfg.JWTSecret).Issue(auth.Identity{UserID: user.ID, Role: user.Role}, ttl)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().UintVar(&userID, "user-id", 0, "user to issue the token for (required)")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("user-id")

	return cmd
}
