package invitation

import (
	"fmt"

	"github.com/felixgeelhaar/gatherly/adapter/cli"
	invitationCommands "github.com/felixgeelhaar/gatherly/internal/invitations/application/commands"
	"github.com/spf13/cobra"
)

var cancelReason string

var cancelCmd = &cobra.Command{
	Use:   "cancel [invitation-id]",
	Short: "Cancel a pending invitation",
	Long: `Cancel a pending invitation. Confirmed invitations cannot be cancelled.

Examples:
  gatherly invitation cancel abc123 --reason "wrong email"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.CancelInvitationHandler == nil {
			cli.NoDatabase(cmd.OutOrStdout(), "Invitation commands")
			return nil
		}
		actor, err := app.RequireMember()
		if err != nil {
			return err
		}
		id, err := cli.ParseID("invitation", args[0])
		if err != nil {
			return err
		}

		if _, err := app.CancelInvitationHandler.Handle(cmd.Context(), invitationCommands.CancelInvitationCommand{
			InvitationID: id,
			ActorID:      actor,
			Reason:       cancelReason,
		}); err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), "Invitation cancelled.")
		return nil
	},
}

func init() {
	cancelCmd.Flags().StringVar(&cancelReason, "reason", "", "why the invitation is cancelled")
}
