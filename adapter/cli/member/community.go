package member

import (
	"fmt"

	"github.com/felixgeelhaar/gatherly/adapter/cli"
	"github.com/spf13/cobra"
)

var communityCmd = &cobra.Command{
	Use:   "community",
	Short: "List community members",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.ListCommunityHandler == nil {
			cli.NoDatabase(cmd.OutOrStdout(), "Member commands")
			return nil
		}

		members, err := app.ListCommunityHandler.Handle(cmd.Context())
		if err != nil {
			return err
		}
		if len(members) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No community members.")
			return nil
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Community members (%d):\n", len(members))
		for _, m := range members {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s <%s>  %s\n", m.Name, m.Email, m.ID)
		}
		return nil
	},
}
