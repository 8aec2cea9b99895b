package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/felixgeelhaar/gatherly/adapter/cli"
	"github.com/felixgeelhaar/gatherly/adapter/cli/invitation"
	"github.com/felixgeelhaar/gatherly/adapter/cli/meeting"
	"github.com/felixgeelhaar/gatherly/adapter/cli/member"
	"github.com/felixgeelhaar/gatherly/adapter/cli/report"
	"github.com/felixgeelhaar/gatherly/internal/app"
	"github.com/felixgeelhaar/gatherly/pkg/config"
	"github.com/felixgeelhaar/gatherly/pkg/observability"
	"github.com/google/uuid"
)

func main() {
	// Create context with cancellation on shutdown signals
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(observability.LogConfig{
		Level:          observability.LogLevel(cfg.LogLevel),
		Format:         observability.LogFormat(cfg.LogFormat),
		Output:         os.Stderr,
		ServiceName:    "gatherly",
		ServiceVersion: cfg.Version,
	})
	slog.SetDefault(logger)
	cli.SetLogger(logger)
	cli.Version = cfg.Version

	var cliApp *cli.App
	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		if !cfg.IsDevelopment() {
			logger.Error("failed to initialize container", "error", err)
			os.Exit(1)
		}
		// In development, allow the CLI to run without a database
		logger.Warn("failed to initialize container, running in limited mode", "error", err)
	} else {
		defer container.Close()

		cliApp = cli.NewApp(container)
		if cfg.MemberID != "" {
			memberID, err := uuid.Parse(cfg.MemberID)
			if err != nil {
				logger.Error("invalid GATHERLY_MEMBER_ID", "error", err)
				os.Exit(1)
			}
			cliApp.SetCurrentMemberID(memberID)
		}
	}

	cli.SetApp(cliApp)

	cli.AddCommand(member.Cmd)
	cli.AddCommand(meeting.Cmd)
	cli.AddCommand(invitation.Cmd)
	cli.AddCommand(report.Cmd)

	cli.Execute(ctx)
}
