package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCommand creates the hrworkflow command tree
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hrworkflow",
		Short: "Attendance and leave workflow server",
		Long: `Tracks employee check-ins and check-outs, routes leave requests to
administrators and records a notification for every outcome.

Configuration is read from the environment or a .env file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(NewServeCommand())
	cmd.AddCommand(NewUserCommand())
	cmd.AddCommand(NewTokenCommand())

	return cmd
}
