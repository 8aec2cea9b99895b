package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/felixgeelhaar/gatherly/internal/app"
	mcpinternal "github.com/felixgeelhaar/gatherly/internal/mcp"
	"github.com/felixgeelhaar/gatherly/pkg/config"
	"github.com/felixgeelhaar/gatherly/pkg/observability"
	"github.com/google/uuid"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	level := observability.LogLevel(cfg.LogLevel)
	if cfg.IsDevelopment() {
		level = observability.LogLevelDebug
	}
	logger := observability.NewLogger(observability.LogConfig{
		Level:          level,
		Format:         observability.LogFormat(cfg.LogFormat),
		Output:         os.Stderr,
		ServiceName:    "gatherly-mcp",
		ServiceVersion: cfg.Version,
	})

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize container", "error", err)
		os.Exit(1)
	}
	defer container.Close()

	memberID := uuid.Nil
	if cfg.MemberID != "" {
		if memberID, err = uuid.Parse(cfg.MemberID); err != nil {
			logger.Error("invalid GATHERLY_MEMBER_ID", "error", err)
			os.Exit(1)
		}
	} else {
		logger.Warn("GATHERLY_MEMBER_ID not set; member-scoped tools will fail")
	}

	cliApp := mcpinternal.NewCLIApp(container, memberID)

	if err := mcpinternal.Serve(ctx, cfg, cliApp, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("mcp server error", "error", err)
		os.Exit(1)
	}
}
