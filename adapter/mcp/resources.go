package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/felixgeelhaar/gatherly/internal/meetings/application/queries"
	"github.com/felixgeelhaar/mcp-go"
)

// RegisterResources registers read-only gatherly resources.
func RegisterResources(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return errors.New("server is required")
	}
	if deps.App == nil {
		return errors.New("app is required")
	}
	app := deps.App

	srv.Resource("gatherly://meetings/upcoming").
		Name("Upcoming meetings").
		Description("Meetings scheduled from now on").
		MimeType("application/json").
		Handler(func(ctx context.Context, uri string, _ map[string]string) (*mcp.ResourceContent, error) {
			if app.Container == nil {
				return nil, errNoDatabase
			}
			meetings, err := app.ListMeetingsHandler.Handle(ctx, queries.ListMeetingsQuery{From: time.Now()})
			if err != nil {
				return nil, err
			}
			return jsonContent(uri, meetings)
		})

	srv.Resource("gatherly://members/community").
		Name("Community members").
		Description("Members who receive community invitations").
		MimeType("application/json").
		Handler(func(ctx context.Context, uri string, _ map[string]string) (*mcp.ResourceContent, error) {
			if app.Container == nil {
				return nil, errNoDatabase
			}
			members, err := app.ListCommunityHandler.Handle(ctx)
			if err != nil {
				return nil, err
			}
			return jsonContent(uri, members)
		})

	srv.Resource("gatherly://members/me").
		Name("Acting member").
		Description("The member this server acts as").
		MimeType("application/json").
		Handler(func(ctx context.Context, uri string, _ map[string]string) (*mcp.ResourceContent, error) {
			memberID, err := actingMember(app)
			if err != nil {
				return nil, err
			}
			member, err := app.GetMemberHandler.Handle(ctx, memberID)
			if err != nil {
				return nil, err
			}
			return jsonContent(uri, member)
		})

	return nil
}

func jsonContent(uri string, v any) (*mcp.ResourceContent, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return &mcp.ResourceContent{URI: uri, MimeType: "application/json", Text: string(payload)}, nil
}
