package report

import (
	"fmt"

	"github.com/felixgeelhaar/gatherly/adapter/cli"
	"github.com/felixgeelhaar/gatherly/internal/reporting"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	window    string
	forMember string
)

// Cmd is the report command group.
var Cmd = &cobra.Command{
	Use:   "report",
	Short: "Invitation reports",
}

var invitationsCmd = &cobra.Command{
	Use:   "invitations",
	Short: "Count paid invitations over a window",
	Long: `Count a member's paid invitations and distinct paid visitors.

Windows:
  last15days    one row per day
  last3months   one row per 15 days
  last6months   one row per calendar month
  all           a single total (default)

Examples:
  gatherly report invitations --window last15days
  gatherly report invitations --member abc123 --window last6months`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.Reporter == nil {
			cli.NoDatabase(cmd.OutOrStdout(), "Reports")
			return nil
		}
		w, err := reporting.ParseWindow(window)
		if err != nil {
			return err
		}

		var inviter uuid.UUID
		if forMember != "" {
			inviter, err = cli.ParseID("member", forMember)
		} else {
			inviter, err = app.RequireMember()
		}
		if err != nil {
			return err
		}

		report, err := app.Reporter.WindowedCounts(cmd.Context(), inviter, w)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Paid invitations, %s (UTC%s)\n", report.Window, report.Timezone)
		fmt.Fprintf(out, "  %-12s %11s %7s\n", "period", "invitations", "people")
		for _, b := range report.Series {
			fmt.Fprintf(out, "  %-12s %11d %7d\n", b.Label, b.Invitations, b.People)
		}
		fmt.Fprintf(out, "  %-12s %11d %7d\n", "total", report.Total.Invitations, report.Total.People)
		return nil
	},
}

func init() {
	invitationsCmd.Flags().StringVarP(&window, "window", "w", "all", "report window (all, last15days, last3months, last6months)")
	invitationsCmd.Flags().StringVar(&forMember, "member", "", "inviter to report on (defaults to the acting member)")
	Cmd.AddCommand(invitationsCmd)
}
