package cli

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/felixgeelhaar/gatherly/pkg/observability"
	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the database and other dependencies",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil || app.Health == nil {
			NoDatabase(cmd.OutOrStdout(), "The health check")
			return nil
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
		defer cancel()
		report := app.Health.Check(ctx)

		names := make([]string, 0, len(report.Checks))
		for name := range report.Checks {
			names = append(names, name)
		}
		sort.Strings(names)

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Status: %s\n", report.Status)
		for _, name := range names {
			check := report.Checks[name]
			fmt.Fprintf(out, "  %-10s %-10s %s\n", name, check.Status, check.Message)
		}
		if report.Status == observability.HealthStatusUnhealthy {
			return fmt.Errorf("gatherly is unhealthy")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}
