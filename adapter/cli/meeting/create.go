package meeting

import (
	"fmt"
	"time"

	"github.com/felixgeelhaar/gatherly/adapter/cli"
	invitationCommands "github.com/felixgeelhaar/gatherly/internal/invitations/application/commands"
	meetingCommands "github.com/felixgeelhaar/gatherly/internal/meetings/application/commands"
	"github.com/spf13/cobra"
)

// dateTimeLayout is how meeting times are given on the command line, in the
// reporting zone.
const dateTimeLayout = "2006-01-02 15:04"

var (
	createSpeaker   string
	createPlace     string
	createAt        string
	createAgenda    string
	createFee       int64
	createCurrency  string
	createCommunity bool
)

var createCmd = &cobra.Command{
	Use:   "create [title]",
	Short: "Create a meeting",
	Long: `Create a chapter meeting organized by the acting member.

The visitor fee is in minor units (paise for INR). A zero fee makes every
invitation fee-waived.

Examples:
  gatherly meeting create "Weekly chapter" --speaker Meera --place "Hall A" --at "2026-11-02 07:30" --fee 50000
  gatherly meeting create "Community mixer" --place Online --at "2026-11-09 18:00" --invite-community`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.CreateMeetingHandler == nil {
			cli.NoDatabase(cmd.OutOrStdout(), "Meeting commands")
			return nil
		}
		organizer, err := app.RequireMember()
		if err != nil {
			return err
		}

		scheduledAt, err := time.ParseInLocation(dateTimeLayout, createAt, app.Location())
		if err != nil {
			return fmt.Errorf("invalid --at, expected %q: %w", dateTimeLayout, err)
		}
		currency := createCurrency
		if currency == "" {
			currency = app.Config.Payment.Currency
		}

		result, err := app.CreateMeetingHandler.Handle(cmd.Context(), meetingCommands.CreateMeetingCommand{
			OrganizerID: organizer,
			Title:       args[0],
			Speaker:     createSpeaker,
			Place:       createPlace,
			ScheduledAt: scheduledAt,
			Agenda:      createAgenda,
			VisitorFee:  createFee,
			Currency:    currency,
		})
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Created meeting: %s\n", result.MeetingID)

		if createCommunity {
			community, err := app.InviteCommunityHandler.Handle(cmd.Context(), invitationCommands.InviteCommunityCommand{
				MeetingID: result.MeetingID,
				InviterID: organizer,
			})
			if err != nil {
				return fmt.Errorf("meeting created but inviting the community failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Invited %d community members, skipped %d.\n",
				len(community.Created), len(community.Skipped))
		}
		return nil
	},
}

func init() {
	createCmd.Flags().StringVar(&createSpeaker, "speaker", "", "speaker name")
	createCmd.Flags().StringVar(&createPlace, "place", "", "venue")
	createCmd.Flags().StringVar(&createAt, "at", "", "start time (YYYY-MM-DD HH:MM)")
	createCmd.Flags().StringVar(&createAgenda, "agenda", "", "agenda")
	createCmd.Flags().Int64Var(&createFee, "fee", 0, "visitor fee in minor units")
	createCmd.Flags().StringVar(&createCurrency, "currency", "", "fee currency (defaults to PAYMENT_CURRENCY)")
	createCmd.Flags().BoolVar(&createCommunity, "invite-community", false, "invite every community member once created")
	_ = createCmd.MarkFlagRequired("at")
}
