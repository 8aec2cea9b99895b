package meeting

import (
	"github.com/felixgeelhaar/gatherly/adapter/cli"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show [meeting-id]",
	Short: "Show a meeting",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.GetMeetingHandler == nil {
			cli.NoDatabase(cmd.OutOrStdout(), "Meeting commands")
			return nil
		}
		meetingID, err := cli.ParseID("meeting", args[0])
		if err != nil {
			return err
		}

		meeting, err := app.GetMeetingHandler.Handle(cmd.Context(), meetingID)
		if err != nil {
			return err
		}
		printMeeting(cmd, app, *meeting)
		return nil
	},
}
