package invitation

import (
	"fmt"

	"github.com/felixgeelhaar/gatherly/adapter/cli"
	invitationCommands "github.com/felixgeelhaar/gatherly/internal/invitations/application/commands"
	"github.com/spf13/cobra"
)

var communityCmd = &cobra.Command{
	Use:   "community [meeting-id]",
	Short: "Invite every community member",
	Long: `Invite every community member to a meeting, fee-waived. Members who
are already invited are skipped.

Examples:
  gatherly invitation community abc123`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.InviteCommunityHandler == nil {
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

		result, err := app.InviteCommunityHandler.Handle(cmd.Context(), invitationCommands.InviteCommunityCommand{
			MeetingID: meetingID,
			InviterID: inviter,
		})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Invited %d community members, skipped %d.\n", len(result.Created), len(result.Skipped))
		if cli.Verbose() {
			for _, s := range result.Skipped {
				fmt.Fprintf(out, "  skipped %s: %s\n", s.Email, s.Reason)
			}
		}
		return nil
	},
}
