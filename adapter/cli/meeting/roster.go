package meeting

import (
	"fmt"

	"github.com/felixgeelhaar/gatherly/adapter/cli"
	"github.com/felixgeelhaar/gatherly/internal/reporting"
	"github.com/spf13/cobra"
)

var rosterView string

var rosterCmd = &cobra.Command{
	Use:   "roster [meeting-id]",
	Short: "Show a meeting's visitors",
	Long: `Show the visitors of a meeting.

Views:
  invited      paid visitors invited by members
  community    fee-waived community visitors
  registered   registered attendees nobody invited
  all          all of the above (default)

Examples:
  gatherly meeting roster abc123
  gatherly meeting roster abc123 --view invited`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.Reporter == nil {
			cli.NoDatabase(cmd.OutOrStdout(), "Rosters")
			return nil
		}
		meetingID, err := cli.ParseID("meeting", args[0])
		if err != nil {
			return err
		}
		view, err := reporting.ParseView(rosterView)
		if err != nil {
			return err
		}

		roster, err := app.Reporter.RosterFor(cmd.Context(), meetingID)
		if err != nil {
			return err
		}

		rows := roster.View(view)
		out := cmd.OutOrStdout()
		if len(rows) == 0 {
			fmt.Fprintf(out, "No %s visitors.\n", view)
			return nil
		}
		fmt.Fprintf(out, "Visitors (%d):\n", len(rows))
		for _, v := range rows {
			fmt.Fprintf(out, "  %-10s %s <%s>", v.Source, v.Name, v.Email)
			if v.Amount > 0 {
				fmt.Fprintf(out, "  paid %s", cli.FormatAmount(v.Amount, app.Config.Payment.Currency))
			}
			fmt.Fprintln(out)
		}
		return nil
	},
}

func init() {
	rosterCmd.Flags().StringVar(&rosterView, "view", "all", "roster view (all, invited, community, registered)")
}
