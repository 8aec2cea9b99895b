package mcp

import (
	"context"

	invitationCommands "github.com/felixgeelhaar/gatherly/internal/invitations/application/commands"
	"github.com/felixgeelhaar/gatherly/internal/reporting"
	"github.com/felixgeelhaar/mcp-go"
)

type rosterInput struct {
	MeetingID string `json:"meeting_id" jsonschema:"required"`
	View      string `json:"view,omitempty"`
}

type reportInput struct {
	Window   string `json:"window,omitempty"`
	MemberID string `json:"member_id,omitempty"`
}

func registerReportTools(srv *mcp.Server, deps ToolDependencies) {
	app := deps.App

	srv.Tool("meeting.roster").
		Description("List a meeting's visitors. view is all, invited, community or registered").
		Handler(func(ctx context.Context, input rosterInput) ([]reporting.Visitor, error) {
			if app.Container == nil {
				return nil, errNoDatabase
			}
			meetingID, err := parseUUID(input.MeetingID)
			if err != nil {
				return nil, err
			}
			view, err := reporting.ParseView(input.View)
			if err != nil {
				return nil, err
			}
			roster, err := app.Reporter.RosterFor(ctx, meetingID)
			if err != nil {
				return nil, err
			}
			return roster.View(view), nil
		})

	srv.Tool("meeting.reconcile_roster").
		Description("Add confirmed visitors missing from a meeting's invited list").
		Handler(func(ctx context.Context, input meetingIDInput) (*invitationCommands.ReconcileRosterResult, error) {
			if app.Container == nil {
				return nil, errNoDatabase
			}
			meetingID, err := parseUUID(input.MeetingID)
			if err != nil {
				return nil, err
			}
			return app.ReconcileRosterHandler.Handle(ctx, invitationCommands.ReconcileRosterCommand{MeetingID: meetingID})
		})

	srv.Tool("report.invitations").
		Description("Count paid invitations and people per bucket. window is all, last15days, last3months or last6months").
		Handler(func(ctx context.Context, input reportInput) (*reporting.WindowedCounts, error) {
			if app.Container == nil {
				return nil, errNoDatabase
			}
			window, err := reporting.ParseWindow(input.Window)
			if err != nil {
				return nil, err
			}
			inviterID := app.CurrentMemberID
			if input.MemberID != "" {
				if inviterID, err = parseUUID(input.MemberID); err != nil {
					return nil, err
				}
			} else if inviterID, err = app.RequireMember(); err != nil {
				return nil, err
			}
			return app.Reporter.WindowedCounts(ctx, inviterID, window)
		})
}
