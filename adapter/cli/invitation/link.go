package invitation

import (
	"fmt"

	"github.com/felixgeelhaar/gatherly/adapter/cli"
	invitationCommands "github.com/felixgeelhaar/gatherly/internal/invitations/application/commands"
	"github.com/spf13/cobra"
)

var linkCmd = &cobra.Command{
	Use:   "link [invitation-id]",
	Short: "Issue a missing payment link",
	Long: `Issue the payment link of a pending invitation whose link creation
failed.

Examples:
  gatherly invitation link abc123`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.IssuePaymentLinkHandler == nil {
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

		inv, err := app.IssuePaymentLinkHandler.Handle(cmd.Context(), invitationCommands.IssuePaymentLinkCommand{
			InvitationID: id,
			ActorID:      actor,
		})
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Payment link: %s\n", inv.PaymentLink())
		return nil
	},
}
