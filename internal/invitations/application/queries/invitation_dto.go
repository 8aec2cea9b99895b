package queries

import (
	"time"

	"github.com/felixgeelhaar/gatherly/internal/invitations/domain"
	"github.com/google/uuid"
)

// InvitationDTO is the read projection of an invitation. Fee fields are
// always present, zero for fee-waived invitations.
type InvitationDTO struct {
	ID                  uuid.UUID  `json:"id"`
	MeetingID           uuid.UUID  `json:"meetingId"`
	InviterID           uuid.UUID  `json:"inviterId"`
	Email               string     `json:"email"`
	VisitorName         string     `json:"visitorName"`
	BusinessCategory    string     `json:"businessCategory"`
	BusinessSubcategory string     `json:"businessSubcategory"`
	Mobile              string     `json:"mobile"`
	Amount              int64      `json:"amount"`
	Currency            string     `json:"currency"`
	Status              string     `json:"status"`
	PaymentLinkID       string     `json:"paymentLinkId"`
	PaymentLink         string     `json:"paymentLink"`
	PaymentID           string     `json:"paymentId"`
	CancelReason        string     `json:"cancelReason,omitempty"`
	ConfirmedAt         *time.Time `json:"confirmedAt,omitempty"`
	CancelledAt         *time.Time `json:"cancelledAt,omitempty"`
	CreatedAt           time.Time  `json:"createdAt"`
}

// ToDTO projects an invitation.
func ToDTO(inv *domain.Invitation) InvitationDTO {
	invitee := inv.Invitee()
	return InvitationDTO{
		ID:                  inv.ID(),
		MeetingID:           inv.MeetingID(),
		InviterID:           inv.InviterID(),
		Email:               invitee.Email,
		VisitorName:         invitee.VisitorName,
		BusinessCategory:    invitee.BusinessCategory,
		BusinessSubcategory: invitee.BusinessSubcategory,
		Mobile:              invitee.Mobile,
		Amount:              inv.Amount(),
		Currency:            inv.Currency(),
		Status:              string(inv.Status()),
		PaymentLinkID:       inv.PaymentLinkID(),
		PaymentLink:         inv.PaymentLink(),
		PaymentID:           inv.PaymentID(),
		CancelReason:        inv.CancelReason(),
		ConfirmedAt:         inv.ConfirmedAt(),
		CancelledAt:         inv.CancelledAt(),
		CreatedAt:           inv.CreatedAt(),
	}
}
