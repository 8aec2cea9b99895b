package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/felixgeelhaar/gatherly/internal/invitations/domain"
	meetingsDomain "github.com/felixgeelhaar/gatherly/internal/meetings/domain"
	"github.com/felixgeelhaar/gatherly/internal/payments/webhook"
	"github.com/felixgeelhaar/gatherly/internal/shared/apperr"
	sharedApplication "github.com/felixgeelhaar/gatherly/internal/shared/application"
	"github.com/felixgeelhaar/gatherly/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/gatherly/pkg/observability"
	"github.com/google/uuid"
)

// Outcome describes what a confirmation request did.
type Outcome string

const (
	OutcomeConfirmed        Outcome = "confirmed"
	OutcomeAlreadyConfirmed Outcome = "already_confirmed"
	OutcomeIgnored          Outcome = "ignored"
)

// ConfirmResult reports the outcome of a webhook or simulated confirmation.
type ConfirmResult struct {
	Outcome      Outcome   `json:"outcome"`
	InvitationID uuid.UUID `json:"invitationId"`
}

// ErrSimulationDisabled hides the simulated confirmation outside development.
var ErrSimulationDisabled = apperr.NotFound("simulated confirmations are disabled")

// confirmer applies the success branch shared by webhooks and simulations.
type confirmer struct {
	repo       domain.Repository
	meetings   meetingsDomain.Repository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
	logger     *slog.Logger
	metrics    observability.Metrics
	now        func() time.Time
}

// lookup finds the invitation by link id, falling back to the last path
// segment of link. A link without a slash is taken as the segment itself.
func (c *confirmer) lookup(ctx context.Context, linkID, link string) (*domain.Invitation, error) {
	inv, err := c.repo.FindByPaymentLinkID(ctx, linkID)
	if err != nil || inv != nil {
		return inv, err
	}

	suffix := webhook.LinkSuffix(link)
	if suffix == "" {
		suffix = strings.TrimSpace(link)
	}
	if suffix != "" {
		if inv, err = c.repo.FindByPaymentLinkSuffix(ctx, suffix); err != nil || inv != nil {
			return inv, err
		}
	}
	return nil, domain.ErrInvitationNotFound
}

func (c *confirmer) confirm(ctx context.Context, id uuid.UUID, paymentID, source string) (*ConfirmResult, error) {
	result := &ConfirmResult{InvitationID: id}

	err := sharedApplication.WithUnitOfWork(ctx, c.uow, func(txCtx context.Context) error {
		inv, err := c.repo.FindByID(txCtx, id)
		if err != nil {
			return err
		}
		if inv == nil {
			return domain.ErrInvitationNotFound
		}

		switch {
		case inv.IsConfirmed():
			result.Outcome = OutcomeAlreadyConfirmed
			return nil
		case inv.IsCancelled():
			result.Outcome = OutcomeIgnored
			c.logger.WarnContext(txCtx, "payment reported for cancelled invitation",
				"invitation_id", inv.ID(), "payment_id", paymentID)
			return nil
		}

		now := c.now()
		if _, err := inv.Confirm(paymentID, now); err != nil {
			return err
		}
		applied, err := c.repo.TransitionStatus(txCtx, inv, domain.StatusPending)
		if err != nil {
			return err
		}
		if !applied {
			current, err := c.repo.FindByID(txCtx, id)
			if err != nil {
				return err
			}
			result.Outcome = OutcomeIgnored
			if current != nil && current.IsConfirmed() {
				result.Outcome = OutcomeAlreadyConfirmed
			}
			return nil
		}

		if _, err := c.meetings.AppendToRoster(txCtx, inv.MeetingID(), inv.ID(), now); err != nil {
			return err
		}
		result.Outcome = OutcomeConfirmed
		return sharedApplication.Enqueue(txCtx, c.outboxRepo, inv, uuid.Nil)
	})
	if err != nil {
		return nil, err
	}

	if result.Outcome == OutcomeConfirmed {
		c.metrics.Counter(observability.MetricInvitationsConfirmed, 1, observability.T("source", source))
		c.logger.InfoContext(ctx, "invitation confirmed", "invitation_id", id, "source", source)
	}
	return result, nil
}

// ConfirmFromWebhookCommand carries a raw provider webhook.
type ConfirmFromWebhookCommand struct {
	Body      []byte
	Signature string
}

// ConfirmFromWebhookHandler verifies and applies payment webhooks.
type ConfirmFromWebhookHandler struct {
	confirmer
	secret string
}

// NewConfirmFromWebhookHandler creates a new ConfirmFromWebhookHandler keyed by
// the shared webhook secret.
func NewConfirmFromWebhookHandler(
	repo domain.Repository,
	meetings meetingsDomain.Repository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	secret string,
	logger *slog.Logger,
	metrics observability.Metrics,
) *ConfirmFromWebhookHandler {
	return &ConfirmFromWebhookHandler{
		confirmer: newConfirmer(repo, meetings, outboxRepo, uow, logger, metrics),
		secret:    secret,
	}
}

// Handle verifies the signature before anything is read. Events that parse
// but do not report success are acknowledged without changes.
func (h *ConfirmFromWebhookHandler) Handle(ctx context.Context, cmd ConfirmFromWebhookCommand) (*ConfirmResult, error) {
	if err := webhook.Verify(cmd.Body, cmd.Signature, h.secret); err != nil {
		h.metrics.Counter(observability.MetricWebhooks, 1, observability.T("outcome", "rejected"))
		h.logger.WarnContext(ctx, "webhook signature rejected")
		return nil, err
	}

	event, err := webhook.Parse(cmd.Body)
	if err != nil {
		h.metrics.Counter(observability.MetricWebhooks, 1, observability.T("outcome", string(OutcomeIgnored)))
		h.logger.WarnContext(ctx, "webhook body not understood", "error", err)
		return &ConfirmResult{Outcome: OutcomeIgnored}, nil
	}

	inv, err := h.lookup(ctx, event.PaymentLinkID, event.PaymentLink)
	if err != nil {
		h.metrics.Counter(observability.MetricWebhooks, 1, observability.T("outcome", "unmatched"))
		return nil, err
	}

	if !event.Succeeded() {
		h.metrics.Counter(observability.MetricWebhooks, 1, observability.T("outcome", string(OutcomeIgnored)))
		h.logger.InfoContext(ctx, "webhook status ignored",
			"invitation_id", inv.ID(), "status", event.Status, "event", event.Type)
		return &ConfirmResult{Outcome: OutcomeIgnored, InvitationID: inv.ID()}, nil
	}

	result, err := h.confirm(ctx, inv.ID(), event.PaymentID, "webhook")
	if err != nil {
		return nil, err
	}
	h.metrics.Counter(observability.MetricWebhooks, 1, observability.T("outcome", string(result.Outcome)))
	return result, nil
}

// SimulateConfirmationCommand confirms an invitation as if its link was paid.
type SimulateConfirmationCommand struct {
	PaymentLinkID string
}

// SimulateConfirmationHandler confirms invitations without a provider. It is
// only enabled outside production.
type SimulateConfirmationHandler struct {
	confirmer
	enabled bool
}

// NewSimulateConfirmationHandler creates a new SimulateConfirmationHandler.
func NewSimulateConfirmationHandler(
	repo domain.Repository,
	meetings meetingsDomain.Repository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	enabled bool,
	logger *slog.Logger,
	metrics observability.Metrics,
) *SimulateConfirmationHandler {
	return &SimulateConfirmationHandler{
		confirmer: newConfirmer(repo, meetings, outboxRepo, uow, logger, metrics),
		enabled:   enabled,
	}
}

// Enabled reports whether simulations are accepted.
func (h *SimulateConfirmationHandler) Enabled() bool { return h.enabled }

// Handle executes the SimulateConfirmationCommand.
func (h *SimulateConfirmationHandler) Handle(ctx context.Context, cmd SimulateConfirmationCommand) (*ConfirmResult, error) {
	if !h.enabled {
		return nil, ErrSimulationDisabled
	}
	if cmd.PaymentLinkID == "" {
		return nil, apperr.Validation("payment link id is required")
	}

	inv, err := h.lookup(ctx, cmd.PaymentLinkID, cmd.PaymentLinkID)
	if err != nil {
		return nil, err
	}
	return h.confirm(ctx, inv.ID(), "", "simulated")
}

func newConfirmer(
	repo domain.Repository,
	meetings meetingsDomain.Repository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	logger *slog.Logger,
	metrics observability.Metrics,
) confirmer {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	return confirmer{
		repo:       repo,
		meetings:   meetings,
		outboxRepo: outboxRepo,
		uow:        uow,
		logger:     logger,
		metrics:    metrics,
		now:        time.Now,
	}
}
