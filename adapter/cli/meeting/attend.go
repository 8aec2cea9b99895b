package meeting

import (
	"fmt"

	"github.com/felixgeelhaar/gatherly/adapter/cli"
	meetingCommands "github.com/felixgeelhaar/gatherly/internal/meetings/application/commands"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var attendMember string

var attendCmd = &cobra.Command{
	Use:   "attend [meeting-id]",
	Short: "Register an attendee",
	Long: `Register a member as attending a meeting. Registering twice is a no-op.

Examples:
  gatherly meeting attend abc123
  gatherly meeting attend abc123 --member def456`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.RegisterAttendeeHandler == nil {
			cli.NoDatabase(cmd.OutOrStdout(), "Attendee registration")
			return nil
		}
		meetingID, err := cli.ParseID("meeting", args[0])
		if err != nil {
			return err
		}

		var memberID uuid.UUID
		if attendMember != "" {
			if memberID, err = cli.ParseID("member", attendMember); err != nil {
				return err
			}
		} else if memberID, err = app.RequireMember(); err != nil {
			return err
		}

		result, err := app.RegisterAttendeeHandler.Handle(cmd.Context(), meetingCommands.RegisterAttendeeCommand{
			MeetingID: meetingID,
			MemberID:  memberID,
		})
		if err != nil {
			return err
		}

		if result.Registered {
			fmt.Fprintln(cmd.OutOrStdout(), "Attendee registered.")
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "Attendee was already registered.")
		}
		return nil
	},
}

func init() {
	attendCmd.Flags().StringVar(&attendMember, "member", "", "member to register (defaults to the acting member)")
}
