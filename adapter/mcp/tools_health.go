package mcp

import (
	"context"
	"time"

	"github.com/felixgeelhaar/gatherly/pkg/observability"
	"github.com/felixgeelhaar/mcp-go"
)

type healthInput struct{}

func registerHealthTool(srv *mcp.Server, deps ToolDependencies) {
	app := deps.App

	srv.Tool("gatherly.health").
		Description("Check the database and other dependencies").
		Handler(func(ctx context.Context, _ healthInput) (*observability.OverallHealth, error) {
			if app.Container == nil || app.Health == nil {
				return nil, errNoDatabase
			}
			checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			report := app.Health.Check(checkCtx)
			return &report, nil
		})
}
