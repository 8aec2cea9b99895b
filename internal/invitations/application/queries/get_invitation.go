package queries

import (
	"context"

	"github.com/felixgeelhaar/gatherly/internal/invitations/domain"
	meetingsDomain "github.com/felixgeelhaar/gatherly/internal/meetings/domain"
	"github.com/google/uuid"
)

// GetInvitationHandler loads a single invitation.
type GetInvitationHandler struct {
	repo domain.Repository
}

// NewGetInvitationHandler creates a new GetInvitationHandler.
func NewGetInvitationHandler(repo domain.Repository) *GetInvitationHandler {
	return &GetInvitationHandler{repo: repo}
}

// Handle returns the invitation or ErrInvitationNotFound.
func (h *GetInvitationHandler) Handle(ctx context.Context, id uuid.UUID) (*InvitationDTO, error) {
	inv, err := h.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.ErrInvitationNotFound
	}
	dto := ToDTO(inv)
	return &dto, nil
}

// ListInvitationsQuery filters a meeting's invitations.
type ListInvitationsQuery struct {
	MeetingID uuid.UUID
	// Status keeps only invitations in this status when set.
	Status domain.Status
}

// ListInvitationsHandler handles the ListInvitationsQuery.
type ListInvitationsHandler struct {
	repo     domain.Repository
	meetings meetingsDomain.Repository
}

// NewListInvitationsHandler creates a new ListInvitationsHandler.
func NewListInvitationsHandler(repo domain.Repository, meetings meetingsDomain.Repository) *ListInvitationsHandler {
	return &ListInvitationsHandler{repo: repo, meetings: meetings}
}

// Handle returns the meeting's invitations in creation order.
func (h *ListInvitationsHandler) Handle(ctx context.Context, q ListInvitationsQuery) ([]InvitationDTO, error) {
	if q.Status != "" && !q.Status.IsValid() {
		return nil, domain.ErrInvalidStatus
	}

	meeting, err := h.meetings.FindByID(ctx, q.MeetingID)
	if err != nil {
		return nil, err
	}
	if meeting == nil {
		return nil, meetingsDomain.ErrMeetingNotFound
	}

	invitations, err := h.repo.ListByMeeting(ctx, q.MeetingID)
	if err != nil {
		return nil, err
	}

	dtos := make([]InvitationDTO, 0, len(invitations))
	for _, inv := range invitations {
		if q.Status != "" && inv.Status() != q.Status {
			continue
		}
		dtos = append(dtos, ToDTO(inv))
	}
	return dtos, nil
}
