package domain

import (
	"time"

	sharedDomain "github.com/felixgeelhaar/gatherly/internal/shared/domain"
	"github.com/google/uuid"
)

const aggregateType = "Invitation"

// Routing keys for invitation events.
const (
	RoutingKeyCreated           = "invitations.invitation.created"
	RoutingKeyPaymentLinkIssued = "invitations.invitation.payment_link_issued"
	RoutingKeyConfirmed         = "invitations.invitation.confirmed"
	RoutingKeyCancelled         = "invitations.invitation.cancelled"
)

// InvitationCreated is emitted when an invitation is created, either pending
// or already confirmed for a free meeting.
type InvitationCreated struct {
	sharedDomain.BaseEvent
	InvitationID        uuid.UUID `json:"invitation_id"`
	MeetingID           uuid.UUID `json:"meeting_id"`
	InviterID           uuid.UUID `json:"inviter_id"`
	Email               string    `json:"email"`
	VisitorName         string    `json:"visitor_name"`
	BusinessCategory    string    `json:"business_category"`
	BusinessSubcategory string    `json:"business_subcategory,omitempty"`
	Mobile              string    `json:"mobile,omitempty"`
	Amount              int64     `json:"amount"`
	Currency            string    `json:"currency"`
	Status              string    `json:"status"`
}

// NewInvitationCreated creates an InvitationCreated event.
func NewInvitationCreated(i *Invitation) *InvitationCreated {
	return &InvitationCreated{
		BaseEvent:           sharedDomain.NewBaseEvent(i.ID(), aggregateType, RoutingKeyCreated, i.CreatedAt()),
		InvitationID:        i.ID(),
		MeetingID:           i.MeetingID(),
		InviterID:           i.InviterID(),
		Email:               i.invitee.Email,
		VisitorName:         i.invitee.VisitorName,
		BusinessCategory:    i.invitee.BusinessCategory,
		BusinessSubcategory: i.invitee.BusinessSubcategory,
		Mobile:              i.invitee.Mobile,
		Amount:              i.Amount(),
		Currency:            i.Currency(),
		Status:              string(i.Status()),
	}
}

// PaymentLinkIssued is emitted when a payment link is attached.
type PaymentLinkIssued struct {
	sharedDomain.BaseEvent
	InvitationID  uuid.UUID `json:"invitation_id"`
	MeetingID     uuid.UUID `json:"meeting_id"`
	InviterID     uuid.UUID `json:"inviter_id"`
	Email         string    `json:"email"`
	VisitorName   string    `json:"visitor_name"`
	Amount        int64     `json:"amount"`
	Currency      string    `json:"currency"`
	PaymentLinkID string    `json:"payment_link_id"`
	PaymentLink   string    `json:"payment_link"`
}

// NewPaymentLinkIssued creates a PaymentLinkIssued event.
func NewPaymentLinkIssued(i *Invitation) *PaymentLinkIssued {
	return &PaymentLinkIssued{
		BaseEvent:     sharedDomain.NewBaseEvent(i.ID(), aggregateType, RoutingKeyPaymentLinkIssued, i.UpdatedAt()),
		InvitationID:  i.ID(),
		MeetingID:     i.MeetingID(),
		InviterID:     i.InviterID(),
		Email:         i.invitee.Email,
		VisitorName:   i.invitee.VisitorName,
		Amount:        i.Amount(),
		Currency:      i.Currency(),
		PaymentLinkID: i.PaymentLinkID(),
		PaymentLink:   i.PaymentLink(),
	}
}

// InvitationConfirmed is emitted when a pending invitation is paid.
type InvitationConfirmed struct {
	sharedDomain.BaseEvent
	InvitationID  uuid.UUID `json:"invitation_id"`
	MeetingID     uuid.UUID `json:"meeting_id"`
	InviterID     uuid.UUID `json:"inviter_id"`
	Email         string    `json:"email"`
	VisitorName   string    `json:"visitor_name"`
	Amount        int64     `json:"amount"`
	Currency      string    `json:"currency"`
	PaymentLinkID string    `json:"payment_link_id,omitempty"`
	PaymentID     string    `json:"payment_id"`
	ConfirmedAt   time.Time `json:"confirmed_at"`
}

// NewInvitationConfirmed creates an InvitationConfirmed event.
func NewInvitationConfirmed(i *Invitation) *InvitationConfirmed {
	return &InvitationConfirmed{
		BaseEvent:     sharedDomain.NewBaseEvent(i.ID(), aggregateType, RoutingKeyConfirmed, *i.ConfirmedAt()),
		InvitationID:  i.ID(),
		MeetingID:     i.MeetingID(),
		InviterID:     i.InviterID(),
		Email:         i.invitee.Email,
		VisitorName:   i.invitee.VisitorName,
		Amount:        i.Amount(),
		Currency:      i.Currency(),
		PaymentLinkID: i.PaymentLinkID(),
		PaymentID:     i.PaymentID(),
		ConfirmedAt:   *i.ConfirmedAt(),
	}
}

// InvitationCancelled is emitted when a pending invitation is cancelled.
type InvitationCancelled struct {
	sharedDomain.BaseEvent
	InvitationID uuid.UUID `json:"invitation_id"`
	MeetingID    uuid.UUID `json:"meeting_id"`
	Reason       string    `json:"reason,omitempty"`
}

// NewInvitationCancelled creates an InvitationCancelled event.
func NewInvitationCancelled(i *Invitation) *InvitationCancelled {
	return &InvitationCancelled{
		BaseEvent:    sharedDomain.NewBaseEvent(i.ID(), aggregateType, RoutingKeyCancelled, *i.CancelledAt()),
		InvitationID: i.ID(),
		MeetingID:    i.MeetingID(),
		Reason:       i.CancelReason(),
	}
}
