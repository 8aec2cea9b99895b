package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/felixgeelhaar/gatherly/adapter/cli"
	invitationCommands "github.com/felixgeelhaar/gatherly/internal/invitations/application/commands"
	meetingCommands "github.com/felixgeelhaar/gatherly/internal/meetings/application/commands"
	"github.com/felixgeelhaar/gatherly/internal/meetings/application/queries"
	"github.com/felixgeelhaar/mcp-go"
	"github.com/google/uuid"
)

type meetingListInput struct {
	IncludeDeleted bool   `json:"include_deleted,omitempty"`
	From           string `json:"from,omitempty"`
}

type meetingIDInput struct {
	MeetingID string `json:"meeting_id" jsonschema:"required"`
}

type meetingCreateInput struct {
	Title       string `json:"title" jsonschema:"required"`
	Speaker     string `json:"speaker,omitempty"`
	Place       string `json:"place" jsonschema:"required"`
	ScheduledAt string `json:"scheduled_at" jsonschema:"required"`
	Agenda      string `json:"agenda,omitempty"`
	VisitorFee  int64  `json:"visitor_fee" jsonschema:"required"`
	Currency    string `json:"currency,omitempty"`
	// InviteCommunity invites every community member once the meeting exists.
	InviteCommunity bool `json:"invite_community,omitempty"`
}

type meetingCreateOutput struct {
	Meeting   *queries.MeetingDTO                       `json:"meeting"`
	Community *invitationCommands.InviteCommunityResult `json:"community,omitempty"`
}

type meetingAttendInput struct {
	MeetingID string `json:"meeting_id" jsonschema:"required"`
	MemberID  string `json:"member_id,omitempty"`
}

type attendResult struct {
	MeetingID  uuid.UUID `json:"meeting_id"`
	MemberID   uuid.UUID `json:"member_id"`
	Registered bool      `json:"registered"`
}

func registerMeetingTools(srv *mcp.Server, deps ToolDependencies) {
	app := deps.App

	srv.Tool("meeting.list").
		Description("List meetings, optionally from an RFC 3339 time onwards").
		Handler(func(ctx context.Context, input meetingListInput) ([]queries.MeetingDTO, error) {
			if app.Container == nil {
				return nil, errNoDatabase
			}
			q := queries.ListMeetingsQuery{IncludeDeleted: input.IncludeDeleted}
			if input.From != "" {
				from, err := time.Parse(time.RFC3339, input.From)
				if err != nil {
					return nil, fmt.Errorf("invalid from: %w", err)
				}
				q.From = from
			}
			return app.ListMeetingsHandler.Handle(ctx, q)
		})

	srv.Tool("meeting.get").
		Description("Get a meeting with its attendees").
		Handler(func(ctx context.Context, input meetingIDInput) (*queries.MeetingDTO, error) {
			if app.Container == nil {
				return nil, errNoDatabase
			}
			id, err := parseUUID(input.MeetingID)
			if err != nil {
				return nil, err
			}
			return app.GetMeetingHandler.Handle(ctx, id)
		})

	srv.Tool("meeting.create").
		Description("Create a meeting organized by the acting member. visitor_fee is in minor units").
		Handler(func(ctx context.Context, input meetingCreateInput) (*meetingCreateOutput, error) {
			organizerID, err := actingMember(app)
			if err != nil {
				return nil, err
			}
			scheduledAt, err := time.Parse(time.RFC3339, input.ScheduledAt)
			if err != nil {
				return nil, fmt.Errorf("invalid scheduled_at: %w", err)
			}
			currency := input.Currency
			if currency == "" {
				currency = app.Config.Payment.Currency
			}

			res, err := app.CreateMeetingHandler.Handle(ctx, meetingCommands.CreateMeetingCommand{
				OrganizerID: organizerID,
				Title:       input.Title,
				Speaker:     input.Speaker,
				Place:       input.Place,
				ScheduledAt: scheduledAt,
				Agenda:      input.Agenda,
				VisitorFee:  input.VisitorFee,
				Currency:    currency,
			})
			if err != nil {
				return nil, err
			}
			meeting, err := app.GetMeetingHandler.Handle(ctx, res.MeetingID)
			if err != nil {
				return nil, err
			}
			out := &meetingCreateOutput{Meeting: meeting}
			if input.InviteCommunity {
				out.Community, err = app.InviteCommunityHandler.Handle(ctx, invitationCommands.InviteCommunityCommand{
					MeetingID: res.MeetingID,
					InviterID: organizerID,
				})
				if err != nil {
					return nil, fmt.Errorf("meeting %s created but inviting the community failed: %w", res.MeetingID, err)
				}
			}
			return out, nil
		})

	srv.Tool("meeting.attend").
		Description("Register a member, the acting one by default, as attending a meeting").
		Handler(func(ctx context.Context, input meetingAttendInput) (*attendResult, error) {
			if app.Container == nil {
				return nil, errNoDatabase
			}
			meetingID, err := parseUUID(input.MeetingID)
			if err != nil {
				return nil, err
			}
			memberID := app.CurrentMemberID
			if input.MemberID != "" {
				if memberID, err = parseUUID(input.MemberID); err != nil {
					return nil, err
				}
			}
			if memberID == uuid.Nil {
				return nil, cli.ErrNoMember
			}
			res, err := app.RegisterAttendeeHandler.Handle(ctx, meetingCommands.RegisterAttendeeCommand{
				MeetingID: meetingID,
				MemberID:  memberID,
			})
			if err != nil {
				return nil, err
			}
			return &attendResult{MeetingID: meetingID, MemberID: memberID, Registered: res.Registered}, nil
		})
}
