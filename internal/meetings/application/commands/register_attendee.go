package commands

import (
	"context"
	"time"

	"github.com/felixgeelhaar/gatherly/internal/meetings/domain"
	membersDomain "github.com/felixgeelhaar/gatherly/internal/members/domain"
	sharedApplication "github.com/felixgeelhaar/gatherly/internal/shared/application"
	"github.com/felixgeelhaar/gatherly/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
)

// RegisterAttendeeCommand registers a member for a meeting.
type RegisterAttendeeCommand struct {
	MeetingID uuid.UUID
	MemberID  uuid.UUID
}

// RegisterAttendeeResult reports whether a new registration was recorded.
type RegisterAttendeeResult struct {
	Registered bool
}

// RegisterAttendeeHandler handles the RegisterAttendeeCommand.
type RegisterAttendeeHandler struct {
	repo       domain.Repository
	members    membersDomain.Repository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
	now        func() time.Time
}

// NewRegisterAttendeeHandler creates a new RegisterAttendeeHandler.
func NewRegisterAttendeeHandler(repo domain.Repository, members membersDomain.Repository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork) *RegisterAttendeeHandler {
	return &RegisterAttendeeHandler{
		repo:       repo,
		members:    members,
		outboxRepo: outboxRepo,
		uow:        uow,
		now:        time.Now,
	}
}

// Handle executes the RegisterAttendeeCommand.
func (h *RegisterAttendeeHandler) Handle(ctx context.Context, cmd RegisterAttendeeCommand) (*RegisterAttendeeResult, error) {
	var result RegisterAttendeeResult

	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		meeting, err := h.repo.FindByID(txCtx, cmd.MeetingID)
		if err != nil {
			return err
		}
		if meeting == nil {
			return domain.ErrMeetingNotFound
		}

		member, err := h.members.FindByID(txCtx, cmd.MemberID)
		if err != nil {
			return err
		}
		if member == nil {
			return membersDomain.ErrMemberNotFound
		}

		now := h.now()
		added, err := meeting.RegisterAttendee(member.ID(), now)
		if err != nil || !added {
			return err
		}
		if result.Registered, err = h.repo.AddAttendee(txCtx, meeting.ID(), member.ID(), now); err != nil {
			return err
		}
		if !result.Registered {
			return nil
		}
		return sharedApplication.Enqueue(txCtx, h.outboxRepo, meeting, member.ID())
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}
