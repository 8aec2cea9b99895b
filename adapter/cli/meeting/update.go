package meeting

import (
	"fmt"
	"time"

	"github.com/felixgeelhaar/gatherly/adapter/cli"
	meetingCommands "github.com/felixgeelhaar/gatherly/internal/meetings/application/commands"
	"github.com/spf13/cobra"
)

var (
	updateTitle   string
	updateSpeaker string
	updatePlace   string
	updateAt      string
	updateAgenda  string
	updateFee     int64
)

var updateCmd = &cobra.Command{
	Use:   "update [meeting-id]",
	Short: "Update a meeting",
	Long: `Update meeting details. Only the flags given are changed.

Examples:
  gatherly meeting update abc123 --place "Hall B"
  gatherly meeting update abc123 --at "2026-11-02 08:00" --fee 60000`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.UpdateMeetingHandler == nil {
			cli.NoDatabase(cmd.OutOrStdout(), "Meeting updates")
			return nil
		}
		actor, err := app.RequireMember()
		if err != nil {
			return err
		}
		meetingID, err := cli.ParseID("meeting", args[0])
		if err != nil {
			return err
		}

		command := meetingCommands.UpdateMeetingCommand{
			MeetingID: meetingID,
			ActorID:   actor,
		}
		flags := cmd.Flags()
		if flags.Changed("title") {
			command.Title = &updateTitle
		}
		if flags.Changed("speaker") {
			command.Speaker = &updateSpeaker
		}
		if flags.Changed("place") {
			command.Place = &updatePlace
		}
		if flags.Changed("agenda") {
			command.Agenda = &updateAgenda
		}
		if flags.Changed("fee") {
			command.VisitorFee = &updateFee
		}
		if flags.Changed("at") {
			at, err := time.ParseInLocation(dateTimeLayout, updateAt, app.Location())
			if err != nil {
				return fmt.Errorf("invalid --at, expected %q: %w", dateTimeLayout, err)
			}
			command.ScheduledAt = &at
		}

		if err := app.UpdateMeetingHandler.Handle(cmd.Context(), command); err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), "Meeting updated successfully.")
		return nil
	},
}

func init() {
	updateCmd.Flags().StringVar(&updateTitle, "title", "", "meeting title")
	updateCmd.Flags().StringVar(&updateSpeaker, "speaker", "", "speaker name")
	updateCmd.Flags().StringVar(&updatePlace, "place", "", "venue")
	updateCmd.Flags().StringVar(&updateAt, "at", "", "start time (YYYY-MM-DD HH:MM)")
	updateCmd.Flags().StringVar(&updateAgenda, "agenda", "", "agenda")
	updateCmd.Flags().Int64Var(&updateFee, "fee", 0, "visitor fee in minor units")
}
