package invitation

import (
	"fmt"

	"github.com/felixgeelhaar/gatherly/adapter/cli"
	invitationCommands "github.com/felixgeelhaar/gatherly/internal/invitations/application/commands"
	"github.com/spf13/cobra"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate-payment [payment-link-id]",
	Short: "Confirm an invitation as if its link was paid",
	Long: `Confirm the invitation behind a payment link without a provider.
Disabled in production.

Examples:
  gatherly invitation simulate-payment plink_Abc123`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.SimulateConfirmationHandler == nil {
			cli.NoDatabase(cmd.OutOrStdout(), "Invitation commands")
			return nil
		}

		result, err := app.SimulateConfirmationHandler.Handle(cmd.Context(), invitationCommands.SimulateConfirmationCommand{
			PaymentLinkID: args[0],
		})
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Invitation %s: %s\n", result.InvitationID, result.Outcome)
		return nil
	},
}
