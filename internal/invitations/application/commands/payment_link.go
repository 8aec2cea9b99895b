package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/gatherly/internal/invitations/domain"
	meetingsDomain "github.com/felixgeelhaar/gatherly/internal/meetings/domain"
	"github.com/felixgeelhaar/gatherly/internal/payments"
	"github.com/felixgeelhaar/gatherly/internal/shared/apperr"
	sharedApplication "github.com/felixgeelhaar/gatherly/internal/shared/application"
	"github.com/felixgeelhaar/gatherly/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
)

// linkIssuer requests a payment link outside any transaction and stores it
// in a transaction of its own.
type linkIssuer struct {
	repo       domain.Repository
	gateway    payments.Gateway
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
	logger     *slog.Logger
	now        func() time.Time
}

func (l *linkIssuer) issue(ctx context.Context, inv *domain.Invitation, meeting *meetingsDomain.Meeting, actorID uuid.UUID) (*domain.Invitation, error) {
	invitee := inv.Invitee()
	link, err := l.gateway.CreateLink(ctx, payments.LinkRequest{
		Amount:      inv.Amount(),
		Currency:    inv.Currency(),
		Description: "Visitor fee for " + meeting.Title(),
		Customer: payments.Customer{
			Name:    invitee.VisitorName,
			Email:   invitee.Email,
			Contact: invitee.Mobile,
		},
		ReferenceID:     inv.ID().String(),
		IdempotencyNote: inv.IdempotencyNote(),
	})
	if err != nil {
		l.logger.WarnContext(ctx, "payment link request failed",
			"invitation_id", inv.ID(), "error", err)
		if errors.Is(err, apperr.ErrGateway) {
			return inv, err
		}
		return inv, apperr.Gateway("payment link creation failed", err)
	}

	result := inv
	err = sharedApplication.WithUnitOfWork(ctx, l.uow, func(txCtx context.Context) error {
		if err := inv.AttachPaymentLink(link.ID, link.URL, l.now()); err != nil {
			return err
		}
		stored, err := l.repo.SetPaymentLink(txCtx, inv)
		if err != nil {
			return err
		}
		if !stored {
			// Another request stored a link first, or the invitation moved on.
			current, err := l.repo.FindByID(txCtx, inv.ID())
			if err != nil {
				return err
			}
			if current == nil {
				return domain.ErrInvitationNotFound
			}
			if !current.HasPaymentLink() {
				return domain.ErrNotPending
			}
			result = current
			return nil
		}
		return sharedApplication.Enqueue(txCtx, l.outboxRepo, inv, actorID)
	})
	if err != nil {
		return inv, err
	}

	l.logger.InfoContext(ctx, "payment link issued",
		"invitation_id", result.ID(), "payment_link_id", result.PaymentLinkID())
	return result, nil
}

// IssuePaymentLinkCommand re-requests the payment link of a pending invitation.
type IssuePaymentLinkCommand struct {
	InvitationID uuid.UUID
	ActorID      uuid.UUID
}

// IssuePaymentLinkHandler handles the IssuePaymentLinkCommand.
type IssuePaymentLinkHandler struct {
	repo     domain.Repository
	meetings meetingsDomain.Repository
	issuer   *linkIssuer
}

// NewIssuePaymentLinkHandler creates a new IssuePaymentLinkHandler.
func NewIssuePaymentLinkHandler(
	repo domain.Repository,
	meetings meetingsDomain.Repository,
	gateway payments.Gateway,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	logger *slog.Logger,
) *IssuePaymentLinkHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &IssuePaymentLinkHandler{
		repo:     repo,
		meetings: meetings,
		issuer: &linkIssuer{
			repo:       repo,
			gateway:    gateway,
			outboxRepo: outboxRepo,
			uow:        uow,
			logger:     logger,
			now:        time.Now,
		},
	}
}

// Handle returns the invitation unchanged when it already holds a link.
func (h *IssuePaymentLinkHandler) Handle(ctx context.Context, cmd IssuePaymentLinkCommand) (*domain.Invitation, error) {
	inv, err := h.repo.FindByID(ctx, cmd.InvitationID)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.ErrInvitationNotFound
	}
	if inv.HasPaymentLink() {
		return inv, nil
	}
	if !inv.IsPending() || !inv.IsFeeBearing() {
		return nil, domain.ErrNotPending
	}

	meeting, err := h.meetings.FindByID(ctx, inv.MeetingID())
	if err != nil {
		return nil, err
	}
	if meeting == nil {
		return nil, meetingsDomain.ErrMeetingNotFound
	}

	return h.issuer.issue(ctx, inv, meeting, cmd.ActorID)
}
