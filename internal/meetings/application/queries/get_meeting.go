package queries

import (
	"context"

	"github.com/felixgeelhaar/gatherly/internal/meetings/domain"
	"github.com/google/uuid"
)

// GetMeetingHandler loads a single meeting with its attendees and roster.
type GetMeetingHandler struct {
	repo domain.Repository
}

// NewGetMeetingHandler creates a new GetMeetingHandler.
func NewGetMeetingHandler(repo domain.Repository) *GetMeetingHandler {
	return &GetMeetingHandler{repo: repo}
}

// Handle returns the meeting. Soft-deleted meetings are reported as not found.
func (h *GetMeetingHandler) Handle(ctx context.Context, id uuid.UUID) (*MeetingDTO, error) {
	m, err := h.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil || m.IsDeleted() {
		return nil, domain.ErrMeetingNotFound
	}
	dto := ToDTO(m)
	return &dto, nil
}
