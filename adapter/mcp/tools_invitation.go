package mcp

import (
	"context"
	"errors"

	invitationCommands "github.com/felixgeelhaar/gatherly/internal/invitations/application/commands"
	invitationQueries "github.com/felixgeelhaar/gatherly/internal/invitations/application/queries"
	"github.com/felixgeelhaar/gatherly/internal/invitations/domain"
	"github.com/felixgeelhaar/gatherly/internal/shared/apperr"
	"github.com/felixgeelhaar/mcp-go"
)

type invitationCreateInput struct {
	MeetingID           string `json:"meeting_id" jsonschema:"required"`
	Email               string `json:"email" jsonschema:"required"`
	VisitorName         string `json:"visitor_name" jsonschema:"required"`
	BusinessCategory    string `json:"business_category,omitempty"`
	BusinessSubcategory string `json:"business_subcategory,omitempty"`
	Mobile              string `json:"mobile,omitempty"`
}

type invitationListInput struct {
	MeetingID string `json:"meeting_id" jsonschema:"required"`
	Status    string `json:"status,omitempty"`
}

type invitationIDInput struct {
	InvitationID string `json:"invitation_id" jsonschema:"required"`
}

type invitationCancelInput struct {
	InvitationID string `json:"invitation_id" jsonschema:"required"`
	Reason       string `json:"reason,omitempty"`
}

// invitationCreateOutput carries the stored invitation even when issuing
// its payment link failed.
type invitationCreateOutput struct {
	Invitation invitationQueries.InvitationDTO `json:"invitation"`
	LinkError  string                          `json:"link_error,omitempty"`
}

func registerInvitationTools(srv *mcp.Server, deps ToolDependencies) {
	app := deps.App

	srv.Tool("invitation.create").
		Description("Invite a visitor to a meeting and issue their payment link").
		Handler(func(ctx context.Context, input invitationCreateInput) (*invitationCreateOutput, error) {
			inviterID, err := actingMember(app)
			if err != nil {
				return nil, err
			}
			meetingID, err := parseUUID(input.MeetingID)
			if err != nil {
				return nil, err
			}

			res, err := app.CreateInvitationHandler.Handle(ctx, invitationCommands.CreateInvitationCommand{
				MeetingID:           meetingID,
				InviterID:           inviterID,
				Email:               input.Email,
				VisitorName:         input.VisitorName,
				BusinessCategory:    input.BusinessCategory,
				BusinessSubcategory: input.BusinessSubcategory,
				Mobile:              input.Mobile,
			})
			if err != nil {
				if res != nil && res.Invitation != nil && errors.Is(err, apperr.ErrGateway) {
					return &invitationCreateOutput{
						Invitation: invitationQueries.ToDTO(res.Invitation),
						LinkError:  err.Error(),
					}, nil
				}
				return nil, err
			}
			return &invitationCreateOutput{Invitation: invitationQueries.ToDTO(res.Invitation)}, nil
		})

	srv.Tool("invitation.list").
		Description("List a meeting's invitations, optionally filtered by status (pending, confirmed, cancelled)").
		Handler(func(ctx context.Context, input invitationListInput) ([]invitationQueries.InvitationDTO, error) {
			if app.Container == nil {
				return nil, errNoDatabase
			}
			meetingID, err := parseUUID(input.MeetingID)
			if err != nil {
				return nil, err
			}
			q := invitationQueries.ListInvitationsQuery{MeetingID: meetingID}
			if input.Status != "" {
				status := domain.Status(input.Status)
				if !status.IsValid() {
					return nil, domain.ErrInvalidStatus
				}
				q.Status = status
			}
			return app.ListInvitationsHandler.Handle(ctx, q)
		})

	srv.Tool("invitation.get").
		Description("Get an invitation").
		Handler(func(ctx context.Context, input invitationIDInput) (*invitationQueries.InvitationDTO, error) {
			if app.Container == nil {
				return nil, errNoDatabase
			}
			id, err := parseUUID(input.InvitationID)
			if err != nil {
				return nil, err
			}
			return app.GetInvitationHandler.Handle(ctx, id)
		})

	srv.Tool("invitation.issue_link").
		Description("Issue the payment link of a pending invitation whose link is missing").
		Handler(func(ctx context.Context, input invitationIDInput) (*invitationQueries.InvitationDTO, error) {
			actorID, err := actingMember(app)
			if err != nil {
				return nil, err
			}
			id, err := parseUUID(input.InvitationID)
			if err != nil {
				return nil, err
			}
			inv, err := app.IssuePaymentLinkHandler.Handle(ctx, invitationCommands.IssuePaymentLinkCommand{
				InvitationID: id,
				ActorID:      actorID,
			})
			if err != nil {
				return nil, err
			}
			dto := invitationQueries.ToDTO(inv)
			return &dto, nil
		})

	srv.Tool("invitation.cancel").
		Description("Cancel a pending invitation").
		Handler(func(ctx context.Context, input invitationCancelInput) (*invitationQueries.InvitationDTO, error) {
			actorID, err := actingMember(app)
			if err != nil {
				return nil, err
			}
			id, err := parseUUID(input.InvitationID)
			if err != nil {
				return nil, err
			}
			inv, err := app.CancelInvitationHandler.Handle(ctx, invitationCommands.CancelInvitationCommand{
				InvitationID: id,
				ActorID:      actorID,
				Reason:       input.Reason,
			})
			if err != nil {
				return nil, err
			}
			dto := invitationQueries.ToDTO(inv)
			return &dto, nil
		})

	srv.Tool("invitation.invite_community").
		Description("Invite every community member who is not yet invited to a meeting").
		Handler(func(ctx context.Context, input meetingIDInput) (*invitationCommands.InviteCommunityResult, error) {
			inviterID, err := actingMember(app)
			if err != nil {
				return nil, err
			}
			meetingID, err := parseUUID(input.MeetingID)
			if err != nil {
				return nil, err
			}
			return app.InviteCommunityHandler.Handle(ctx, invitationCommands.InviteCommunityCommand{
				MeetingID: meetingID,
				InviterID: inviterID,
			})
		})
}
