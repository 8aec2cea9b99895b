package domain

import (
	"strings"
	"time"

	"github.com/felixgeelhaar/gatherly/internal/shared/apperr"
	sharedDomain "github.com/felixgeelhaar/gatherly/internal/shared/domain"
	"github.com/google/uuid"
)

// Status is the lifecycle state of an invitation.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

// IsValid checks if the status is known.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return true
	default:
		return false
	}
}

var (
	ErrInvitationNotFound    = apperr.NotFound("invitation not found")
	ErrDuplicateInvitation   = apperr.Duplicate("an invitation for this visitor already exists for the meeting")
	ErrInvalidEmail          = apperr.Validation("email is invalid")
	ErrMissingVisitorName    = apperr.Validation("visitor name is required")
	ErrMissingCategory       = apperr.Validation("business category is required")
	ErrInvalidMobile         = apperr.Validation("mobile must be exactly 10 digits")
	ErrNegativeAmount        = apperr.Validation("amount cannot be negative")
	ErrNotPending            = apperr.Conflict("invitation is not pending")
	ErrCancelledInvitation   = apperr.Conflict("invitation has been cancelled")
	ErrPaymentLinkAlreadySet = apperr.Conflict("invitation already has a payment link")
	ErrPaymentLinkIncomplete = apperr.Validation("payment link id and url are required")
	ErrInvalidStatus         = apperr.Validation("status must be pending, confirmed or cancelled")
)

// Invitee describes the invited visitor.
type Invitee struct {
	Email               string
	VisitorName         string
	BusinessCategory    string
	BusinessSubcategory string
	Mobile              string
}

// Normalize trims the fields, lowercases the email and validates them.
func (i Invitee) Normalize() (Invitee, error) {
	i.Email = sharedDomain.NormalizeEmail(i.Email)
	i.VisitorName = strings.TrimSpace(i.VisitorName)
	i.BusinessCategory = strings.TrimSpace(i.BusinessCategory)
	i.BusinessSubcategory = strings.TrimSpace(i.BusinessSubcategory)
	i.Mobile = strings.TrimSpace(i.Mobile)

	switch {
	case !sharedDomain.IsValidEmail(i.Email):
		return i, ErrInvalidEmail
	case i.VisitorName == "":
		return i, ErrMissingVisitorName
	case i.BusinessCategory == "":
		return i, ErrMissingCategory
	case i.Mobile != "" && !sharedDomain.IsValidMobile(i.Mobile):
		return i, ErrInvalidMobile
	}
	return i, nil
}

// Invitation asks a visitor to attend a meeting. Its amount is the meeting's
// visitor fee at creation time and never changes afterwards.
type Invitation struct {
	sharedDomain.BaseAggregateRoot
	meetingID     uuid.UUID
	inviterID     uuid.UUID
	invitee       Invitee
	amount        int64
	currency      string
	status        Status
	paymentLinkID string
	paymentLink   string
	paymentID     string
	cancelReason  string
	confirmedAt   *time.Time
	cancelledAt   *time.Time
}

// NewInvitation creates an invitation. A zero amount is confirmed on the spot;
// anything else starts pending until payment is confirmed.
func NewInvitation(meetingID, inviterID uuid.UUID, invitee Invitee, amount int64, currency string, now time.Time) (*Invitation, error) {
	invitee, err := invitee.Normalize()
	if err != nil {
		return nil, err
	}
	if amount < 0 {
		return nil, ErrNegativeAmount
	}

	inv := &Invitation{
		BaseAggregateRoot: sharedDomain.NewBaseAggregateRoot(now),
		meetingID:         meetingID,
		inviterID:         inviterID,
		invitee:           invitee,
		amount:            amount,
		currency:          strings.ToUpper(strings.TrimSpace(currency)),
		status:            StatusPending,
	}
	if inv.currency == "" {
		inv.currency = "INR"
	}
	if amount == 0 {
		inv.status = StatusConfirmed
		at := inv.CreatedAt()
		inv.confirmedAt = &at
	}

	inv.AddDomainEvent(NewInvitationCreated(inv))
	return inv, nil
}

func (i *Invitation) MeetingID() uuid.UUID    { return i.meetingID }
func (i *Invitation) InviterID() uuid.UUID    { return i.inviterID }
func (i *Invitation) Invitee() Invitee        { return i.invitee }
func (i *Invitation) Email() string           { return i.invitee.Email }
func (i *Invitation) Amount() int64           { return i.amount }
func (i *Invitation) Currency() string        { return i.currency }
func (i *Invitation) Status() Status          { return i.status }
func (i *Invitation) PaymentLinkID() string   { return i.paymentLinkID }
func (i *Invitation) PaymentLink() string     { return i.paymentLink }
func (i *Invitation) PaymentID() string       { return i.paymentID }
func (i *Invitation) CancelReason() string    { return i.cancelReason }
func (i *Invitation) ConfirmedAt() *time.Time { return i.confirmedAt }
func (i *Invitation) CancelledAt() *time.Time { return i.cancelledAt }

func (i *Invitation) IsPending() bool      { return i.status == StatusPending }
func (i *Invitation) IsConfirmed() bool    { return i.status == StatusConfirmed }
func (i *Invitation) IsCancelled() bool    { return i.status == StatusCancelled }
func (i *Invitation) IsFeeBearing() bool   { return i.amount > 0 }
func (i *Invitation) HasPaymentLink() bool { return i.paymentLinkID != "" }

// IdempotencyNote keys payment link requests for this invitation.
func (i *Invitation) IdempotencyNote() string {
	return "invitation:" + i.ID().String()
}

// AttachPaymentLink stores the issued link. A link can be attached once, and
// only while the invitation is pending.
func (i *Invitation) AttachPaymentLink(linkID, url string, now time.Time) error {
	linkID = strings.TrimSpace(linkID)
	url = strings.TrimSpace(url)
	if linkID == "" || url == "" {
		return ErrPaymentLinkIncomplete
	}
	if i.HasPaymentLink() {
		return ErrPaymentLinkAlreadySet
	}
	if !i.IsPending() {
		return ErrNotPending
	}

	i.paymentLinkID = linkID
	i.paymentLink = url
	i.Touch(now)
	i.AddDomainEvent(NewPaymentLinkIssued(i))
	return nil
}

// Confirm marks a pending invitation paid. It returns false without changes
// when the invitation is already confirmed. An empty paymentID is replaced by
// a placeholder derived from the link.
func (i *Invitation) Confirm(paymentID string, now time.Time) (bool, error) {
	switch i.status {
	case StatusConfirmed:
		return false, nil
	case StatusCancelled:
		return false, ErrCancelledInvitation
	}

	paymentID = strings.TrimSpace(paymentID)
	if paymentID == "" {
		paymentID = SyntheticPaymentID(i.paymentLinkID, i.ID())
	}

	at := now.UTC()
	i.status = StatusConfirmed
	i.paymentID = paymentID
	i.confirmedAt = &at
	i.Touch(now)
	i.AddDomainEvent(NewInvitationConfirmed(i))
	return true, nil
}

// SyntheticPaymentID is recorded when a confirmation carries no payment id.
func SyntheticPaymentID(linkID string, invitationID uuid.UUID) string {
	if linkID == "" {
		return "synthetic_" + invitationID.String()
	}
	return "synthetic_" + linkID
}

// Cancel moves a pending invitation to cancelled.
func (i *Invitation) Cancel(reason string, now time.Time) error {
	if !i.IsPending() {
		return ErrNotPending
	}

	at := now.UTC()
	i.status = StatusCancelled
	i.cancelReason = strings.TrimSpace(reason)
	i.cancelledAt = &at
	i.Touch(now)
	i.AddDomainEvent(NewInvitationCancelled(i))
	return nil
}

// Snapshot carries persisted invitation state for rehydration.
type Snapshot struct {
	ID            uuid.UUID
	MeetingID     uuid.UUID
	InviterID     uuid.UUID
	Invitee       Invitee
	Amount        int64
	Currency      string
	Status        Status
	PaymentLinkID string
	PaymentLink   string
	PaymentID     string
	CancelReason  string
	ConfirmedAt   *time.Time
	CancelledAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// RehydrateInvitation recreates an invitation from persisted state.
func RehydrateInvitation(s Snapshot) *Invitation {
	return &Invitation{
		BaseAggregateRoot: sharedDomain.RehydrateBaseAggregateRoot(s.ID, s.CreatedAt, s.UpdatedAt),
		meetingID:         s.MeetingID,
		inviterID:         s.InviterID,
		invitee:           s.Invitee,
		amount:            s.Amount,
		currency:          s.Currency,
		status:            s.Status,
		paymentLinkID:     s.PaymentLinkID,
		paymentLink:       s.PaymentLink,
		paymentID:         s.PaymentID,
		cancelReason:      s.CancelReason,
		confirmedAt:       s.ConfirmedAt,
		cancelledAt:       s.CancelledAt,
	}
}
