package cli

import (
	"fmt"

	"hr-workflow/internal/config"
	"hr-workflow/internal/service"

	"github.com/spf13/cobra"
)

// NewUserCommand groups user administration
func NewUserCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users",
	}

	cmd.AddCommand(newUserAddCommand())

	return cmd
}

func newUserAddCommand() *cobra.Command {
	var input service.RegisterUserInput

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register an employee or administrator",
		Long: `Register a user. Pass --chat-id to link the user to a Telegram chat.

Example:
  hrworkflow user add --first-name Ann --last-name Lee --chat-id 123456789
  hrworkflow user add --first-name Ops --role ADMIN`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(config.GetConfig(), service.SystemClock{})
			if err != nil {
				return err
			}
			defer a.Close()

			user, err := a.users.Register(cmd.Context(), input)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "created user %d (%s %s, %s)\n", user.ID, user.FirstName, user.LastName, user.Role)
			return nil
		},
	}

	cmd.Flags().StringVar(&input.FirstName, "first-name", "", "first name (required)")
	cmd.Flags().StringVar(&input.LastName, "last-name", "", "last name")
	cmd.Flags().StringVar(&input.Username, "username", "", "display username")
	cmd.Flags().Int64Var(&input.ChatID, "chat-id", 0, "Telegram chat ID to link")
	cmd.Flags().StringVar(&input.Role, "role", "EMPLOYEE", "EMPLOYEE or ADMIN")
	_ = cmd.MarkFlagRequired("first-name")

	return cmd
}
