package member

import (
	"fmt"

	"github.com/felixgeelhaar/gatherly/adapter/cli"
	memberCommands "github.com/felixgeelhaar/gatherly/internal/members/application/commands"
	"github.com/spf13/cobra"
)

var (
	registerEmail       string
	registerMobile      string
	registerCategory    string
	registerSubcategory string
	registerCommunity   bool
)

var registerCmd = &cobra.Command{
	Use:   "register [name]",
	Short: "Register a member",
	Long: `Register a member. Community members are invited fee-waived by
"gatherly invitation community".

Examples:
  gatherly member register "Asha Rao" --email asha@example.com --category Retail
  gatherly member register "Dev" --email dev@example.com --community`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.RegisterMemberHandler == nil {
			cli.NoDatabase(cmd.OutOrStdout(), "Member commands")
			return nil
		}

		result, err := app.RegisterMemberHandler.Handle(cmd.Context(), memberCommands.RegisterMemberCommand{
			ActorID:             app.CurrentMemberID,
			Name:                args[0],
			Email:               registerEmail,
			Mobile:              registerMobile,
			BusinessCategory:    registerCategory,
			BusinessSubcategory: registerSubcategory,
			Community:           registerCommunity,
		})
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Registered member: %s\n", result.MemberID)
		return nil
	},
}

func init() {
	registerCmd.Flags().StringVar(&registerEmail, "email", "", "email address")
	registerCmd.Flags().StringVar(&registerMobile, "mobile", "", "mobile number")
	registerCmd.Flags().StringVar(&registerCategory, "category", "", "business category")
	registerCmd.Flags().StringVar(&registerSubcategory, "subcategory", "", "business subcategory")
	registerCmd.Flags().BoolVar(&registerCommunity, "community", false, "member of the wider community")
	_ = registerCmd.MarkFlagRequired("email")
}
