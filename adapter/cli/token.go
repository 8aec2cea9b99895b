package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/felixgeelhaar/gatherly/adapter/api"
	"github.com/spf13/cobra"
)

var tokenTTL time.Duration

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue an API token for the acting member",
	Long: `Issue a bearer token for the HTTP API, signed with JWT_SECRET.

Examples:
  gatherly token --as abc123 --ttl 24h`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil {
			NoDatabase(cmd.OutOrStdout(), "Token issuing")
			return nil
		}
		if app.Config.API.JWTSecret == "" {
			return errors.New("JWT_SECRET is not set")
		}
		member, err := app.RequireMember()
		if err != nil {
			return err
		}

		token, err := api.NewAuthenticator(app.Config.API.JWTSecret, false).Issue(member, tokenTTL)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 12*time.Hour, "token lifetime")
	rootCmd.AddCommand(tokenCmd)
}
