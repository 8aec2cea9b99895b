package meeting

import "github.com/spf13/cobra"

// Cmd is the meeting command group.
var Cmd = &cobra.Command{
	Use:   "meeting",
	Short: "Manage chapter meetings",
	Long:  `Create, list, update, and delete chapter meetings, register attendees, and show rosters.`,
}

func init() {
	Cmd.AddCommand(createCmd)
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(showCmd)
	Cmd.AddCommand(updateCmd)
	Cmd.AddCommand(deleteCmd)
	Cmd.AddCommand(attendCmd)
	Cmd.AddCommand(rosterCmd)
	Cmd.AddCommand(reconcileCmd)
}
