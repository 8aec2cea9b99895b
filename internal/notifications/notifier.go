// Package notifications sends invitation and confirmation emails to visitors.
// Delivery is best effort: callers log failures and move on.
package notifications

import (
	"context"
	"time"
)

// Meeting is the meeting as shown in an email.
type Meeting struct {
	Title       string
	Speaker     string
	Place       string
	ScheduledAt time.Time
	Agenda      string
}

// Invitation is an invitation email. PaymentLink is empty for fee-waived
// invitations.
type Invitation struct {
	VisitorName string
	Email       string
	Inviter     string
	Meeting     Meeting
	PaymentLink string
	Amount      int64
	Currency    string
	// Details holds extra lines such as the business category.
	Details map[string]string
}

// Confirmation is a payment confirmation email.
type Confirmation struct {
	VisitorName string
	Email       string
	Meeting     Meeting
	PaymentID   string
}

// Notifier delivers visitor emails.
type Notifier interface {
	SendInvitation(ctx context.Context, msg Invitation) error
	SendConfirmation(ctx context.Context, msg Confirmation) error
}
