package meeting

import (
	"fmt"

	"github.com/felixgeelhaar/gatherly/adapter/cli"
	meetingCommands "github.com/felixgeelhaar/gatherly/internal/meetings/application/commands"
	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete [meeting-id]",
	Short: "Delete a meeting",
	Long: `Delete a meeting. Its invitations and roster are kept for reporting.

Examples:
  gatherly meeting delete abc123`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.DeleteMeetingHandler == nil {
			cli.NoDatabase(cmd.OutOrStdout(), "Meeting deletion")
			return nil
		}
		actor, err := app.RequireMember()
		if err != nil {
			return err
		}
		meetingID, err := cli.ParseID("meeting", args[0])
		if err != nil {
			return err
		}

		if err := app.DeleteMeetingHandler.Handle(cmd.Context(), meetingCommands.DeleteMeetingCommand{
			MeetingID: meetingID,
			ActorID:   actor,
		}); err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), "Meeting deleted successfully.")
		return nil
	},
}
