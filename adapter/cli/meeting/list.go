package meeting

import (
	"fmt"
	"time"

	"github.com/felixgeelhaar/gatherly/adapter/cli"
	meetingQueries "github.com/felixgeelhaar/gatherly/internal/meetings/application/queries"
	"github.com/spf13/cobra"
)

var (
	includeDeleted bool
	upcomingOnly   bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List meetings",
	Long: `List chapter meetings, soonest first.

Examples:
  gatherly meeting list
  gatherly meeting list --upcoming
  gatherly meeting list --deleted`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.ListMeetingsHandler == nil {
			cli.NoDatabase(cmd.OutOrStdout(), "Meeting listing")
			return nil
		}

		query := meetingQueries.ListMeetingsQuery{IncludeDeleted: includeDeleted}
		if upcomingOnly {
			query.From = time.Now()
		}

		meetings, err := app.ListMeetingsHandler.Handle(cmd.Context(), query)
		if err != nil {
			return err
		}

		if len(meetings) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No meetings. Create one with: gatherly meeting create \"Title\" --at \"YYYY-MM-DD HH:MM\"")
			return nil
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Meetings (%d):\n", len(meetings))
		for _, m := range meetings {
			printMeeting(cmd, app, m)
		}
		return nil
	},
}

func printMeeting(cmd *cobra.Command, app *cli.App, m meetingQueries.MeetingDTO) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "  %s\n", m.Title)
	fmt.Fprintf(out, "    ID: %s\n", m.ID)
	fmt.Fprintf(out, "    When: %s\n", m.ScheduledAt.In(app.Location()).Format(dateTimeLayout))
	fmt.Fprintf(out, "    Place: %s\n", m.Place)
	if m.Speaker != "" {
		fmt.Fprintf(out, "    Speaker: %s\n", m.Speaker)
	}
	if m.VisitorFee > 0 {
		fmt.Fprintf(out, "    Visitor fee: %s\n", cli.FormatAmount(m.VisitorFee, m.Currency))
	} else {
		fmt.Fprintln(out, "    Visitor fee: waived")
	}
	fmt.Fprintf(out, "    Attendees: %d, invited visitors: %d\n", len(m.Attendees), len(m.Invited))
	if m.Deleted {
		fmt.Fprintln(out, "    Status: deleted")
	}
}

func init() {
	listCmd.Flags().BoolVarP(&includeDeleted, "deleted", "d", false, "include deleted meetings")
	listCmd.Flags().BoolVarP(&upcomingOnly, "upcoming", "u", false, "only meetings that have not started")
}
