package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for meeting persistence.
type Repository interface {
	// Save inserts or updates the meeting row. It never writes attendees or
	// the invited roster.
	Save(ctx context.Context, meeting *Meeting) error
	// FindByID loads a meeting with its attendees and roster, including soft-
	// deleted meetings. It returns nil, nil when the id is unknown.
	FindByID(ctx context.Context, id uuid.UUID) (*Meeting, error)
	// List returns meetings ordered by schedule without attendees or roster.
	List(ctx context.Context, includeDeleted bool) ([]*Meeting, error)
	// AddAttendee records a registration. It reports false when the member
	// was already registered.
	AddAttendee(ctx context.Context, meetingID, memberID uuid.UUID, at time.Time) (bool, error)
	// AppendToRoster appends an invitation to the end of the invited roster.
	// It reports false when the invitation is already present.
	AppendToRoster(ctx context.Context, meetingID, invitationID uuid.UUID, at time.Time) (bool, error)
}
