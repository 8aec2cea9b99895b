package domain

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the invitation store. Finders return nil, nil when nothing
// matches.
type Repository interface {
	// Insert stores a new invitation. It fails with ErrDuplicateInvitation
	// when a non-cancelled invitation for the same meeting already uses the
	// email, or the mobile when one is given. The check and the insert are
	// atomic.
	Insert(ctx context.Context, inv *Invitation) error
	FindByID(ctx context.Context, id uuid.UUID) (*Invitation, error)
	// FindActiveByContact returns the non-cancelled invitation of the meeting
	// matching email case-insensitively or, when non-empty, mobile.
	FindActiveByContact(ctx context.Context, meetingID uuid.UUID, email, mobile string) (*Invitation, error)
	FindByPaymentLinkID(ctx context.Context, linkID string) (*Invitation, error)
	// FindByPaymentLinkSuffix matches the last path segment of the stored
	// payment link URL.
	FindByPaymentLinkSuffix(ctx context.Context, suffix string) (*Invitation, error)
	// ListByMeeting returns every invitation of a meeting in creation order.
	ListByMeeting(ctx context.Context, meetingID uuid.UUID) ([]*Invitation, error)
	// ListConfirmedOffRoster returns confirmed invitations absent from their
	// meeting's roster. A nil meetingID checks every meeting.
	ListConfirmedOffRoster(ctx context.Context, meetingID uuid.UUID) ([]*Invitation, error)
	// SetPaymentLink stores the link when none is stored yet and reports
	// whether it did.
	SetPaymentLink(ctx context.Context, inv *Invitation) (bool, error)
	// TransitionStatus writes inv's status fields only if the stored status
	// still equals from, and reports whether it did.
	TransitionStatus(ctx context.Context, inv *Invitation, from Status) (bool, error)
}
