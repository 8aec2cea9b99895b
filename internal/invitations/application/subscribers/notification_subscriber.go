package subscribers

import (
	"context"
	"log/slog"

	"github.com/felixgeelhaar/gatherly/internal/invitations/domain"
	meetingsDomain "github.com/felixgeelhaar/gatherly/internal/meetings/domain"
	membersDomain "github.com/felixgeelhaar/gatherly/internal/members/domain"
	"github.com/felixgeelhaar/gatherly/internal/notifications"
	"github.com/felixgeelhaar/gatherly/internal/shared/infrastructure/eventbus"
	"github.com/google/uuid"
)

// NotificationSubscriber turns committed invitation events into emails.
// Failures are logged and the event is acknowledged; nothing is retried.
type NotificationSubscriber struct {
	meetings meetingsDomain.Repository
	members  membersDomain.Repository
	notifier notifications.Notifier
	logger   *slog.Logger
}

// NewNotificationSubscriber creates a new notification subscriber.
func NewNotificationSubscriber(
	meetings meetingsDomain.Repository,
	members membersDomain.Repository,
	notifier notifications.Notifier,
	logger *slog.Logger,
) *NotificationSubscriber {
	if logger == nil {
		logger = slog.Default()
	}
	return &NotificationSubscriber{
		meetings: meetings,
		members:  members,
		notifier: notifier,
		logger:   logger,
	}
}

// EventTypes returns the event types this subscriber handles.
func (s *NotificationSubscriber) EventTypes() []string {
	return []string{
		domain.RoutingKeyCreated,
		domain.RoutingKeyPaymentLinkIssued,
		domain.RoutingKeyConfirmed,
	}
}

// Handle processes an event.
func (s *NotificationSubscriber) Handle(ctx context.Context, event *eventbus.ConsumedEvent) error {
	var err error
	switch event.RoutingKey {
	case domain.RoutingKeyCreated:
		err = s.handleCreated(ctx, event)
	case domain.RoutingKeyPaymentLinkIssued:
		err = s.handleLinkIssued(ctx, event)
	case domain.RoutingKeyConfirmed:
		err = s.handleConfirmed(ctx, event)
	default:
		s.logger.WarnContext(ctx, "unknown event type", "routing_key", event.RoutingKey)
		return nil
	}

	if err != nil {
		s.logger.ErrorContext(ctx, "notification not sent",
			"routing_key", event.RoutingKey,
			"invitation_id", event.AggregateID,
			"error", err,
		)
	}
	return nil
}

type createdPayload struct {
	MeetingID        uuid.UUID `json:"meeting_id"`
	InviterID        uuid.UUID `json:"inviter_id"`
	Email            string    `json:"email"`
	VisitorName      string    `json:"visitor_name"`
	BusinessCategory string    `json:"business_category"`
	Amount           int64     `json:"amount"`
	Currency         string    `json:"currency"`
	Status           string    `json:"status"`
}

// handleCreated only mails fee-waived invitations; fee-bearing ones are
// mailed once their payment link exists.
func (s *NotificationSubscriber) handleCreated(ctx context.Context, event *eventbus.ConsumedEvent) error {
	var p createdPayload
	if err := event.Decode(&p); err != nil {
		return err
	}
	if p.Amount > 0 || p.Status != string(domain.StatusConfirmed) {
		return nil
	}

	meeting, ok, err := s.meeting(ctx, p.MeetingID)
	if err != nil || !ok {
		return err
	}
	return s.notifier.SendInvitation(ctx, notifications.Invitation{
		VisitorName: p.VisitorName,
		Email:       p.Email,
		Inviter:     s.inviterName(ctx, p.InviterID),
		Meeting:     meeting,
		Currency:    p.Currency,
		Details:     details(p.BusinessCategory),
	})
}

type linkIssuedPayload struct {
	MeetingID   uuid.UUID `json:"meeting_id"`
	InviterID   uuid.UUID `json:"inviter_id"`
	Email       string    `json:"email"`
	VisitorName string    `json:"visitor_name"`
	Amount      int64     `json:"amount"`
	Currency    string    `json:"currency"`
	PaymentLink string    `json:"payment_link"`
}

func (s *NotificationSubscriber) handleLinkIssued(ctx context.Context, event *eventbus.ConsumedEvent) error {
	var p linkIssuedPayload
	if err := event.Decode(&p); err != nil {
		return err
	}

	meeting, ok, err := s.meeting(ctx, p.MeetingID)
	if err != nil || !ok {
		return err
	}
	return s.notifier.SendInvitation(ctx, notifications.Invitation{
		VisitorName: p.VisitorName,
		Email:       p.Email,
		Inviter:     s.inviterName(ctx, p.InviterID),
		Meeting:     meeting,
		PaymentLink: p.PaymentLink,
		Amount:      p.Amount,
		Currency:    p.Currency,
	})
}

type confirmedPayload struct {
	MeetingID   uuid.UUID `json:"meeting_id"`
	Email       string    `json:"email"`
	VisitorName string    `json:"visitor_name"`
	PaymentID   string    `json:"payment_id"`
}

func (s *NotificationSubscriber) handleConfirmed(ctx context.Context, event *eventbus.ConsumedEvent) error {
	var p confirmedPayload
	if err := event.Decode(&p); err != nil {
		return err
	}

	meeting, ok, err := s.meeting(ctx, p.MeetingID)
	if err != nil || !ok {
		return err
	}
	return s.notifier.SendConfirmation(ctx, notifications.Confirmation{
		VisitorName: p.VisitorName,
		Email:       p.Email,
		Meeting:     meeting,
		PaymentID:   p.PaymentID,
	})
}

func (s *NotificationSubscriber) meeting(ctx context.Context, id uuid.UUID) (notifications.Meeting, bool, error) {
	m, err := s.meetings.FindByID(ctx, id)
	if err != nil {
		return notifications.Meeting{}, false, err
	}
	if m == nil || m.IsDeleted() {
		s.logger.WarnContext(ctx, "meeting gone, skipping notification", "meeting_id", id)
		return notifications.Meeting{}, false, nil
	}
	d := m.Details()
	return notifications.Meeting{
		Title:       d.Title,
		Speaker:     d.Speaker,
		Place:       d.Place,
		ScheduledAt: d.ScheduledAt,
		Agenda:      d.Agenda,
	}, true, nil
}

func (s *NotificationSubscriber) inviterName(ctx context.Context, id uuid.UUID) string {
	member, err := s.members.FindByID(ctx, id)
	if err != nil || member == nil {
		return ""
	}
	return member.Name()
}

func details(category string) map[string]string {
	if category == "" {
		return nil
	}
	return map[string]string{"Business category": category}
}
