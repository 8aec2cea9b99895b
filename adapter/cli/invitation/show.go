package invitation

import (
	"github.com/felixgeelhaar/gatherly/adapter/cli"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show [invitation-id]",
	Short: "Show an invitation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.GetInvitationHandler == nil {
			cli.NoDatabase(cmd.OutOrStdout(), "Invitation commands")
			return nil
		}
		id, err := cli.ParseID("invitation", args[0])
		if err != nil {
			return err
		}

		inv, err := app.GetInvitationHandler.Handle(cmd.Context(), id)
		if err != nil {
			return err
		}
		printInvitation(cmd.OutOrStdout(), *inv)
		return nil
	},
}
