package commands

import (
	"context"
	"time"

	"github.com/felixgeelhaar/gatherly/internal/meetings/domain"
	sharedApplication "github.com/felixgeelhaar/gatherly/internal/shared/application"
	"github.com/felixgeelhaar/gatherly/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
)

// UpdateMeetingCommand changes a meeting. Nil fields are left as they are.
type UpdateMeetingCommand struct {
	MeetingID   uuid.UUID
	ActorID     uuid.UUID
	Title       *string
	Speaker     *string
	Place       *string
	ScheduledAt *time.Time
	Agenda      *string
	VisitorFee  *int64
}

// UpdateMeetingHandler handles the UpdateMeetingCommand.
type UpdateMeetingHandler struct {
	repo       domain.Repository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
	now        func() time.Time
}

// NewUpdateMeetingHandler creates a new UpdateMeetingHandler.
func NewUpdateMeetingHandler(repo domain.Repository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork) *UpdateMeetingHandler {
	return &UpdateMeetingHandler{
		repo:       repo,
		outboxRepo: outboxRepo,
		uow:        uow,
		now:        time.Now,
	}
}

// Handle executes the UpdateMeetingCommand. A fee change applies to
// invitations created afterwards only.
func (h *UpdateMeetingHandler) Handle(ctx context.Context, cmd UpdateMeetingCommand) error {
	return sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		meeting, err := h.repo.FindByID(txCtx, cmd.MeetingID)
		if err != nil {
			return err
		}
		if meeting == nil {
			return domain.ErrMeetingNotFound
		}

		now := h.now()
		details := meeting.Details()
		if cmd.Title != nil {
			details.Title = *cmd.Title
		}
		if cmd.Speaker != nil {
			details.Speaker = *cmd.Speaker
		}
		if cmd.Place != nil {
			details.Place = *cmd.Place
		}
		if cmd.ScheduledAt != nil {
			details.ScheduledAt = *cmd.ScheduledAt
		}
		if cmd.Agenda != nil {
			details.Agenda = *cmd.Agenda
		}
		if err := meeting.Update(details, now); err != nil {
			return err
		}
		if cmd.VisitorFee != nil {
			if err := meeting.SetVisitorFee(*cmd.VisitorFee, now); err != nil {
				return err
			}
		}

		if len(meeting.DomainEvents()) == 0 {
			return nil
		}
		if err := h.repo.Save(txCtx, meeting); err != nil {
			return err
		}
		return sharedApplication.Enqueue(txCtx, h.outboxRepo, meeting, cmd.ActorID)
	})
}
