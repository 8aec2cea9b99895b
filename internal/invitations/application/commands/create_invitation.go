package commands

import (
	"context"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/gatherly/internal/invitations/domain"
	meetingsDomain "github.com/felixgeelhaar/gatherly/internal/meetings/domain"
	membersDomain "github.com/felixgeelhaar/gatherly/internal/members/domain"
	"github.com/felixgeelhaar/gatherly/internal/payments"
	sharedApplication "github.com/felixgeelhaar/gatherly/internal/shared/application"
	"github.com/felixgeelhaar/gatherly/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/gatherly/pkg/observability"
	"github.com/google/uuid"
)

// CreateInvitationCommand invites a visitor to a meeting.
type CreateInvitationCommand struct {
	MeetingID           uuid.UUID
	InviterID           uuid.UUID
	Email               string
	VisitorName         string
	BusinessCategory    string
	BusinessSubcategory string
	Mobile              string
}

// CreateInvitationResult carries the stored invitation. It is set even when
// the handler also returns a gateway error: the invitation then stays pending
// without a link until IssuePaymentLinkHandler succeeds.
type CreateInvitationResult struct {
	Invitation *domain.Invitation
}

// CreateInvitationHandler handles the CreateInvitationCommand.
type CreateInvitationHandler struct {
	repo       domain.Repository
	meetings   meetingsDomain.Repository
	members    membersDomain.Repository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
	issuer     *linkIssuer
	logger     *slog.Logger
	metrics    observability.Metrics
	now        func() time.Time
}

// NewCreateInvitationHandler creates a new CreateInvitationHandler.
func NewCreateInvitationHandler(
	repo domain.Repository,
	meetings meetingsDomain.Repository,
	members membersDomain.Repository,
	gateway payments.Gateway,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	logger *slog.Logger,
	metrics observability.Metrics,
) *CreateInvitationHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	return &CreateInvitationHandler{
		repo:       repo,
		meetings:   meetings,
		members:    members,
		outboxRepo: outboxRepo,
		uow:        uow,
		issuer: &linkIssuer{
			repo:       repo,
			gateway:    gateway,
			outboxRepo: outboxRepo,
			uow:        uow,
			logger:     logger,
			now:        time.Now,
		},
		logger:  logger,
		metrics: metrics,
		now:     time.Now,
	}
}

// Handle executes the CreateInvitationCommand.
func (h *CreateInvitationHandler) Handle(ctx context.Context, cmd CreateInvitationCommand) (*CreateInvitationResult, error) {
	invitee, err := domain.Invitee{
		Email:               cmd.Email,
		VisitorName:         cmd.VisitorName,
		BusinessCategory:    cmd.BusinessCategory,
		BusinessSubcategory: cmd.BusinessSubcategory,
		Mobile:              cmd.Mobile,
	}.Normalize()
	if err != nil {
		return nil, err
	}

	var (
		inv     *domain.Invitation
		meeting *meetingsDomain.Meeting
	)
	err = sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		meeting, err = h.meetings.FindByID(txCtx, cmd.MeetingID)
		if err != nil {
			return err
		}
		if meeting == nil || meeting.IsDeleted() {
			return meetingsDomain.ErrMeetingNotFound
		}

		inviter, err := h.members.FindByID(txCtx, cmd.InviterID)
		if err != nil {
			return err
		}
		if inviter == nil {
			return membersDomain.ErrMemberNotFound
		}

		now := h.now()
		inv, err = domain.NewInvitation(meeting.ID(), inviter.ID(), invitee, meeting.VisitorFee(), meeting.Currency(), now)
		if err != nil {
			return err
		}
		if err := h.repo.Insert(txCtx, inv); err != nil {
			return err
		}
		if inv.IsConfirmed() {
			if _, err := h.meetings.AppendToRoster(txCtx, meeting.ID(), inv.ID(), now); err != nil {
				return err
			}
		}
		return sharedApplication.Enqueue(txCtx, h.outboxRepo, inv, inviter.ID())
	})
	if err != nil {
		return nil, err
	}

	h.metrics.Counter(observability.MetricInvitationsCreated, 1, observability.T("fee", feeTag(inv)))
	h.logger.InfoContext(ctx, "invitation created",
		"invitation_id", inv.ID(),
		"meeting_id", inv.MeetingID(),
		"status", inv.Status(),
		"amount", inv.Amount(),
	)

	if !inv.IsPending() {
		return &CreateInvitationResult{Invitation: inv}, nil
	}

	issued, err := h.issuer.issue(ctx, inv, meeting, cmd.InviterID)
	return &CreateInvitationResult{Invitation: issued}, err
}

func feeTag(inv *domain.Invitation) string {
	if inv.IsFeeBearing() {
		return "paid"
	}
	return "free"
}
