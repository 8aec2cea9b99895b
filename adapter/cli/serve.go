package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/felixgeelhaar/gatherly/adapter/api"
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Run the HTTP API, and the outbox processor unless
OUTBOX_PROCESSOR_ENABLED=false. Stops on SIGINT or SIGTERM.

Examples:
  gatherly serve
  gatherly serve --addr 127.0.0.1:9090`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil {
			NoDatabase(cmd.OutOrStdout(), "The API server")
			return nil
		}
		ctx := cmd.Context()

		serverCfg := api.DefaultServerConfig()
		serverCfg.Addr = app.Config.API.Addr
		if serveAddr != "" {
			serverCfg.Addr = serveAddr
		}
		serverCfg.AllowedOrigins = app.Config.API.AllowedOrigins
		server := api.NewServer(serverCfg, app.Container)

		if app.Config.Outbox.Enabled {
			if err := app.OutboxProcessor.Start(ctx); err != nil {
				return fmt.Errorf("failed to start outbox processor: %w", err)
			}
		} else {
			logger.Info("outbox processor disabled")
		}

		errCh := make(chan error, 1)
		go func() {
			if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down API server: %w", err)
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (defaults to HTTP_ADDR)")
	rootCmd.AddCommand(serveCmd)
}
