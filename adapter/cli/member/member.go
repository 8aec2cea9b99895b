package member

import "github.com/spf13/cobra"

// Cmd is the member command group.
var Cmd = &cobra.Command{
	Use:   "member",
	Short: "Manage members",
	Long:  `Register members and list the community.`,
}

func init() {
	Cmd.AddCommand(registerCmd)
	Cmd.AddCommand(showCmd)
	Cmd.AddCommand(communityCmd)
}
