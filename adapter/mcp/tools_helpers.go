package mcp

import (
	"errors"
	"fmt"

	"github.com/felixgeelhaar/gatherly/adapter/cli"
	"github.com/google/uuid"
)

var errNoDatabase = errors.New("gatherly requires a database connection")

func parseUUID(value string) (uuid.UUID, error) {
	if value == "" {
		return uuid.UUID{}, errors.New("id is required")
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.UUID{}, fmt.Errorf("invalid id: %w", err)
	}
	return id, nil
}

// actingMember returns the member the server was started for.
func actingMember(app *cli.App) (uuid.UUID, error) {
	if app == nil || app.Container == nil {
		return uuid.Nil, errNoDatabase
	}
	return app.RequireMember()
}
