// Package mcp exposes gatherly's meetings, invitations and reports as MCP
// tools and resources.
package mcp

import (
	"errors"

	"github.com/felixgeelhaar/gatherly/adapter/cli"
	"github.com/felixgeelhaar/mcp-go"
)

// ToolDependencies provides handlers and context for MCP tools.
type ToolDependencies struct {
	App *cli.App
}

// RegisterTools registers the gatherly tools.
func RegisterTools(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return errors.New("server is required")
	}
	if deps.App == nil {
		return errors.New("app is required")
	}

	registerHealthTool(srv, deps)
	registerMeetingTools(srv, deps)
	registerInvitationTools(srv, deps)
	registerReportTools(srv, deps)
	return nil
}
