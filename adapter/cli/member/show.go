package member

import (
	"fmt"

	"github.com/felixgeelhaar/gatherly/adapter/cli"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show [member-id]",
	Short: "Show a member",
	Long: `Show a member. Without an argument, shows the acting member.

Examples:
  gatherly member show
  gatherly member show abc123`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.GetMemberHandler == nil {
			cli.NoDatabase(cmd.OutOrStdout(), "Member commands")
			return nil
		}

		var (
			id  uuid.UUID
			err error
		)
		if len(args) == 1 {
			id, err = cli.ParseID("member", args[0])
		} else {
			id, err = app.RequireMember()
		}
		if err != nil {
			return err
		}

		m, err := app.GetMemberHandler.Handle(cmd.Context(), id)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s <%s>\n", m.Name, m.Email)
		fmt.Fprintf(out, "  ID: %s\n", m.ID)
		if m.Mobile != "" {
			fmt.Fprintf(out, "  Mobile: %s\n", m.Mobile)
		}
		if m.BusinessCategory != "" {
			fmt.Fprintf(out, "  Business: %s / %s\n", m.BusinessCategory, m.BusinessSubcategory)
		}
		fmt.Fprintf(out, "  Community: %t\n", m.Community)
		return nil
	},
}
