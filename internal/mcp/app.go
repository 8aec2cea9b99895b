package mcp

import (
	"github.com/felixgeelhaar/gatherly/adapter/cli"
	"github.com/felixgeelhaar/gatherly/internal/app"
	"github.com/google/uuid"
)

// NewCLIApp creates a CLI application backed by container that acts as
// member. A nil member leaves member-scoped tools unavailable.
func NewCLIApp(container *app.Container, member uuid.UUID) *cli.App {
	cliApp := cli.NewApp(container)
	cliApp.SetCurrentMemberID(member)
	return cliApp
}
