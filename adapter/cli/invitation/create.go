package invitation

import (
	"errors"
	"fmt"

	"github.com/felixgeelhaar/gatherly/adapter/cli"
	invitationCommands "github.com/felixgeelhaar/gatherly/internal/invitations/application/commands"
	invitationQueries "github.com/felixgeelhaar/gatherly/internal/invitations/application/queries"
	"github.com/felixgeelhaar/gatherly/internal/shared/apperr"
	"github.com/spf13/cobra"
)

var (
	createName        string
	createCategory    string
	createSubcategory string
	createMobile      string
)

var createCmd = &cobra.Command{
	Use:   "create [meeting-id] [email]",
	Short: "Invite a visitor",
	Long: `Invite a visitor to a meeting. Paid meetings get a payment link; the
visitor is confirmed once the payment webhook arrives.

Examples:
  gatherly invitation create abc123 visitor@example.com --name "Ravi" --category Retail`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.CreateInvitationHandler == nil {
			cli.NoDatabase(cmd.OutOrStdout(), "Invitation commands")
			return nil
		}
		inviter, err := app.RequireMember()
		if err != nil {
			return err
		}
		meetingID, err := cli.ParseID("meeting", args[0])
		if err != nil {
			return err
		}

		result, err := app.CreateInvitationHandler.Handle(cmd.Context(), invitationCommands.CreateInvitationCommand{
			MeetingID:           meetingID,
			InviterID:           inviter,
			Email:               args[1],
			VisitorName:         createName,
			BusinessCategory:    createCategory,
			BusinessSubcategory: createSubcategory,
			Mobile:              createMobile,
		})
		if err != nil && result != nil && result.Invitation != nil && errors.Is(err, apperr.ErrGateway) {
			fmt.Fprintf(cmd.OutOrStdout(), "Created invitation %s, but the payment link failed.\n", result.Invitation.ID())
			fmt.Fprintf(cmd.OutOrStdout(), "Retry with: gatherly invitation link %s\n", result.Invitation.ID())
			return err
		}
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), "Created invitation:")
		printInvitation(cmd.OutOrStdout(), invitationQueries.ToDTO(result.Invitation))
		return nil
	},
}

func init() {
	createCmd.Flags().StringVar(&createName, "name", "", "visitor name")
	createCmd.Flags().StringVar(&createCategory, "category", "", "business category")
	createCmd.Flags().StringVar(&createSubcategory, "subcategory", "", "business subcategory")
	createCmd.Flags().StringVar(&createMobile, "mobile", "", "mobile number")
}
