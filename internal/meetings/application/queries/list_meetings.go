package queries

import (
	"context"
	"time"

	"github.com/felixgeelhaar/gatherly/internal/meetings/domain"
	"github.com/google/uuid"
)

// MeetingDTO is a data transfer object for meetings.
type MeetingDTO struct {
	ID          uuid.UUID   `json:"id"`
	OrganizerID uuid.UUID   `json:"organizerId"`
	Title       string      `json:"title"`
	Speaker     string      `json:"speaker"`
	Place       string      `json:"place"`
	ScheduledAt time.Time   `json:"scheduledAt"`
	Agenda      string      `json:"agenda"`
	VisitorFee  int64       `json:"visitorFee"`
	Currency    string      `json:"currency"`
	Deleted     bool        `json:"deleted"`
	Attendees   []uuid.UUID `json:"attendees,omitempty"`
	Invited     []uuid.UUID `json:"invited,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// ToDTO projects a meeting.
func ToDTO(m *domain.Meeting) MeetingDTO {
	d := m.Details()
	return MeetingDTO{
		ID:          m.ID(),
		OrganizerID: m.OrganizerID(),
		Title:       d.Title,
		Speaker:     d.Speaker,
		Place:       d.Place,
		ScheduledAt: d.ScheduledAt,
		Agenda:      d.Agenda,
		VisitorFee:  m.VisitorFee(),
		Currency:    m.Currency(),
		Deleted:     m.IsDeleted(),
		Attendees:   m.Attendees(),
		Invited:     m.Invited(),
		CreatedAt:   m.CreatedAt(),
	}
}

// ListMeetingsQuery contains the parameters for listing meetings.
type ListMeetingsQuery struct {
	IncludeDeleted bool
	// From drops meetings scheduled before it when non-zero.
	From time.Time
}

// ListMeetingsHandler handles the ListMeetingsQuery.
type ListMeetingsHandler struct {
	repo domain.Repository
}

// NewListMeetingsHandler creates a new ListMeetingsHandler.
func NewListMeetingsHandler(repo domain.Repository) *ListMeetingsHandler {
	return &ListMeetingsHandler{repo: repo}
}

// Handle executes the ListMeetingsQuery.
func (h *ListMeetingsHandler) Handle(ctx context.Context, query ListMeetingsQuery) ([]MeetingDTO, error) {
	meetings, err := h.repo.List(ctx, query.IncludeDeleted)
	if err != nil {
		return nil, err
	}

	dtos := make([]MeetingDTO, 0, len(meetings))
	for _, m := range meetings {
		if !query.From.IsZero() && m.ScheduledAt().Before(query.From) {
			continue
		}
		dtos = append(dtos, ToDTO(m))
	}
	return dtos, nil
}
