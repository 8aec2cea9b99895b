package notifications

import (
	"context"
	"log/slog"
)

// LogNotifier writes emails to the log instead of sending them.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) SendInvitation(ctx context.Context, msg Invitation) error {
	n.logger.InfoContext(ctx, "invitation email",
		"to", msg.Email,
		"visitor", msg.VisitorName,
		"inviter", msg.Inviter,
		"meeting", msg.Meeting.Title,
		"payment_link", msg.PaymentLink,
	)
	return nil
}

func (n *LogNotifier) SendConfirmation(ctx context.Context, msg Confirmation) error {
	n.logger.InfoContext(ctx, "confirmation email",
		"to", msg.Email,
		"visitor", msg.VisitorName,
		"meeting", msg.Meeting.Title,
		"payment_id", msg.PaymentID,
	)
	return nil
}
