package invitation

import (
	"fmt"

	"github.com/felixgeelhaar/gatherly/adapter/cli"
	invitationQueries "github.com/felixgeelhaar/gatherly/internal/invitations/application/queries"
	"github.com/felixgeelhaar/gatherly/internal/invitations/domain"
	"github.com/spf13/cobra"
)

var listStatus string

var listCmd = &cobra.Command{
	Use:   "list [meeting-id]",
	Short: "List a meeting's invitations",
	Long: `List a meeting's invitations, oldest first.

Examples:
  gatherly invitation list abc123
  gatherly invitation list abc123 --status pending`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.ListInvitationsHandler == nil {
			cli.NoDatabase(cmd.OutOrStdout(), "Invitation listing")
			return nil
		}
		meetingID, err := cli.ParseID("meeting", args[0])
		if err != nil {
			return err
		}

		query := invitationQueries.ListInvitationsQuery{MeetingID: meetingID}
		if listStatus != "" {
			status := domain.Status(listStatus)
			if !status.IsValid() {
				return domain.ErrInvalidStatus
			}
			query.Status = status
		}

		invitations, err := app.ListInvitationsHandler.Handle(cmd.Context(), query)
		if err != nil {
			return err
		}
		if len(invitations) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No invitations.")
			return nil
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Invitations (%d):\n", len(invitations))
		for _, inv := range invitations {
			printInvitation(cmd.OutOrStdout(), inv)
		}
		return nil
	},
}

func init() {
	listCmd.Flags().StringVarP(&listStatus, "status", "s", "", "only invitations in this status (pending, confirmed, cancelled)")
}
