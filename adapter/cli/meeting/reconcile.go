package meeting

import (
	"fmt"

	"github.com/felixgeelhaar/gatherly/adapter/cli"
	invitationCommands "github.com/felixgeelhaar/gatherly/internal/invitations/application/commands"
	"github.com/spf13/cobra"
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile [meeting-id]",
	Short: "Repair a meeting's roster",
	Long: `Append confirmed invitations that are missing from the meeting's roster.

Examples:
  gatherly meeting reconcile abc123`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.ReconcileRosterHandler == nil {
			cli.NoDatabase(cmd.OutOrStdout(), "Roster reconciliation")
			return nil
		}
		meetingID, err := cli.ParseID("meeting", args[0])
		if err != nil {
			return err
		}

		result, err := app.ReconcileRosterHandler.Handle(cmd.Context(), invitationCommands.ReconcileRosterCommand{
			MeetingID: meetingID,
		})
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Found %d confirmed invitations off the roster, repaired %d.\n", result.Checked, result.Repaired)
		return nil
	},
}
