// Package mcp runs gatherly's MCP server over HTTP.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/felixgeelhaar/gatherly/adapter/cli"
	mcptools "github.com/felixgeelhaar/gatherly/adapter/mcp"
	"github.com/felixgeelhaar/gatherly/pkg/config"
	mcpgo "github.com/felixgeelhaar/mcp-go"
	"github.com/felixgeelhaar/mcp-go/middleware"
)

const serverName = "gatherly-mcp"

// NewServer builds the MCP server. Tools are mandatory; resources and
// prompts are best effort.
func NewServer(cliApp *cli.App, version string, logger *slog.Logger) (*mcpgo.Server, error) {
	if cliApp == nil {
		return nil, errors.New("mcp: CLI app is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	srv := mcpgo.NewServer(mcpgo.ServerInfo{
		Name:         serverName,
		Version:      version,
		Capabilities: mcpgo.Capabilities{Tools: true, Resources: true, Prompts: true},
	})

	deps := mcptools.ToolDependencies{App: cliApp}
	if err := mcptools.RegisterTools(srv, deps); err != nil {
		return nil, fmt.Errorf("mcp: register tools: %w", err)
	}
	optional := map[string]func(*mcpgo.Server, mcptools.ToolDependencies) error{
		"resources": mcptools.RegisterResources,
		"prompts":   mcptools.RegisterPrompts,
	}
	for kind, register := range optional {
		if err := register(srv, deps); err != nil {
			logger.Warn("mcp registration skipped", "kind", kind, "error", err)
		}
	}
	return srv, nil
}

// Serve listens on cfg.MCPAddr until ctx is cancelled.
func Serve(ctx context.Context, cfg *config.Config, cliApp *cli.App, logger *slog.Logger) error {
	if cfg == nil {
		return errors.New("mcp: config is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	stack, err := middlewareStack(cfg, slogBridge{logger})
	if err != nil {
		return err
	}
	srv, err := NewServer(cliApp, cfg.Version, logger)
	if err != nil {
		return err
	}

	logger.Info("mcp server listening", "addr", cfg.MCPAddr, "auth", cfg.MCPAuthToken != "")
	return mcpgo.ServeHTTPWithMiddleware(ctx, srv, cfg.MCPAddr, nil, mcpgo.WithMiddleware(stack...))
}

// middlewareStack puts bearer auth in front of the default stack when a
// token is configured. Production refuses to run without one.
func middlewareStack(cfg *config.Config, log slogBridge) ([]middleware.Middleware, error) {
	stack := middleware.DefaultStack(log)
	if cfg.MCPAuthToken == "" {
		if cfg.IsProduction() {
			return nil, errors.New("mcp: MCP_AUTH_TOKEN is required in production")
		}
		log.Warn("MCP_AUTH_TOKEN not set, accepting unauthenticated requests")
		return stack, nil
	}

	tokens := middleware.StaticTokens(map[string]*middleware.Identity{
		cfg.MCPAuthToken: {ID: serverName, Name: serverName},
	})
	auth := middleware.Auth(middleware.BearerTokenAuthenticator(tokens), middleware.WithAuthLogger(log))
	return append([]middleware.Middleware{auth}, stack...), nil
}

// slogBridge satisfies the mcp-go middleware logger with slog.
type slogBridge struct {
	logger *slog.Logger
}

func (b slogBridge) Debug(msg string, fields ...middleware.Field) {
	b.log(slog.LevelDebug, msg, fields)
}
func (b slogBridge) Info(msg string, fields ...middleware.Field) { b.log(slog.LevelInfo, msg, fields) }
func (b slogBridge) Warn(msg string, fields ...middleware.Field) { b.log(slog.LevelWarn, msg, fields) }
func (b slogBridge) Error(msg string, fields ...middleware.Field) {
	b.log(slog.LevelError, msg, fields)
}

func (b slogBridge) log(level slog.Level, msg string, fields []middleware.Field) {
	attrs := make([]slog.Attr, 0, len(fields))
	for _, f := range fields {
		attrs = append(attrs, slog.Any(f.Key, f.Value))
	}
	b.logger.LogAttrs(context.Background(), level, msg, attrs...)
}
