package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/gatherly/internal/invitations/domain"
	meetingsDomain "github.com/felixgeelhaar/gatherly/internal/meetings/domain"
	membersDomain "github.com/felixgeelhaar/gatherly/internal/members/domain"
	"github.com/felixgeelhaar/gatherly/internal/shared/apperr"
	sharedApplication "github.com/felixgeelhaar/gatherly/internal/shared/application"
	sharedDomain "github.com/felixgeelhaar/gatherly/internal/shared/domain"
	"github.com/felixgeelhaar/gatherly/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
)

// CommunityCategory is recorded for community members without a business category.
const CommunityCategory = "Community"

// InviteCommunityCommand invites every community member to a meeting.
type InviteCommunityCommand struct {
	MeetingID uuid.UUID
	InviterID uuid.UUID
}

// SkippedMember is a community member that was not invited.
type SkippedMember struct {
	MemberID uuid.UUID `json:"memberId"`
	Email    string    `json:"email"`
	Reason   string    `json:"reason"`
}

// InviteCommunityResult lists the created invitations and the skipped members.
type InviteCommunityResult struct {
	Created []uuid.UUID     `json:"created"`
	Skipped []SkippedMember `json:"skipped"`
}

// InviteCommunityHandler creates one fee-waived invitation per community
// member. Each invitation commits on its own, so one duplicate never blocks
// the rest.
type InviteCommunityHandler struct {
	repo       domain.Repository
	meetings   meetingsDomain.Repository
	members    membersDomain.Repository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
	logger     *slog.Logger
	now        func() time.Time
}

// NewInviteCommunityHandler creates a new InviteCommunityHandler.
func NewInviteCommunityHandler(
	repo domain.Repository,
	meetings meetingsDomain.Repository,
	members membersDomain.Repository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	logger *slog.Logger,
) *InviteCommunityHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &InviteCommunityHandler{
		repo:       repo,
		meetings:   meetings,
		members:    members,
		outboxRepo: outboxRepo,
		uow:        uow,
		logger:     logger,
		now:        time.Now,
	}
}

// Handle executes the InviteCommunityCommand.
func (h *InviteCommunityHandler) Handle(ctx context.Context, cmd InviteCommunityCommand) (*InviteCommunityResult, error) {
	meeting, err := h.meetings.FindByID(ctx, cmd.MeetingID)
	if err != nil {
		return nil, err
	}
	if meeting == nil || meeting.IsDeleted() {
		return nil, meetingsDomain.ErrMeetingNotFound
	}
	inviter, err := h.members.FindByID(ctx, cmd.InviterID)
	if err != nil {
		return nil, err
	}
	if inviter == nil {
		return nil, membersDomain.ErrMemberNotFound
	}

	community, err := h.members.ListCommunity(ctx)
	if err != nil {
		return nil, err
	}

	result := &InviteCommunityResult{Created: []uuid.UUID{}, Skipped: []SkippedMember{}}
	for _, member := range community {
		id, err := h.invite(ctx, meeting, member, cmd.InviterID)
		switch {
		case err == nil:
			result.Created = append(result.Created, id)
		case errors.Is(err, apperr.ErrDuplicate), errors.Is(err, apperr.ErrValidation):
			result.Skipped = append(result.Skipped, SkippedMember{
				MemberID: member.ID(),
				Email:    member.Email(),
				Reason:   apperr.MessageOf(err),
			})
		default:
			return result, err
		}
	}

	h.logger.InfoContext(ctx, "community invited",
		"meeting_id", meeting.ID(),
		"created", len(result.Created),
		"skipped", len(result.Skipped),
	)
	return result, nil
}

func (h *InviteCommunityHandler) invite(ctx context.Context, meeting *meetingsDomain.Meeting, member *membersDomain.Member, inviterID uuid.UUID) (uuid.UUID, error) {
	invitee := domain.Invitee{
		Email:               member.Email(),
		VisitorName:         member.Name(),
		BusinessCategory:    member.BusinessCategory(),
		BusinessSubcategory: member.BusinessSubcategory(),
	}
	if invitee.BusinessCategory == "" {
		invitee.BusinessCategory = CommunityCategory
	}
	if sharedDomain.IsValidMobile(member.Mobile()) {
		invitee.Mobile = member.Mobile()
	}

	now := h.now()
	inv, err := domain.NewInvitation(meeting.ID(), inviterID, invitee, 0, meeting.Currency(), now)
	if err != nil {
		return uuid.Nil, err
	}

	err = sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		if err := h.repo.Insert(txCtx, inv); err != nil {
			return err
		}
		if _, err := h.meetings.AppendToRoster(txCtx, meeting.ID(), inv.ID(), now); err != nil {
			return err
		}
		return sharedApplication.Enqueue(txCtx, h.outboxRepo, inv, inviterID)
	})
	if err != nil {
		return uuid.Nil, err
	}
	return inv.ID(), nil
}
