package commands

import (
	"context"
	"time"

	"github.com/felixgeelhaar/gatherly/internal/meetings/domain"
	sharedApplication "github.com/felixgeelhaar/gatherly/internal/shared/application"
	"github.com/felixgeelhaar/gatherly/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
)

// DeleteMeetingCommand soft-deletes a meeting.
type DeleteMeetingCommand struct {
	MeetingID uuid.UUID
	ActorID   uuid.UUID
}

// DeleteMeetingHandler handles the DeleteMeetingCommand.
type DeleteMeetingHandler struct {
	repo       domain.Repository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
	now        func() time.Time
}

// NewDeleteMeetingHandler creates a new DeleteMeetingHandler.
func NewDeleteMeetingHandler(repo domain.Repository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork) *DeleteMeetingHandler {
	return &DeleteMeetingHandler{
		repo:       repo,
		outboxRepo: outboxRepo,
		uow:        uow,
		now:        time.Now,
	}
}

// Handle executes the DeleteMeetingCommand. Deleting twice is a no-op.
func (h *DeleteMeetingHandler) Handle(ctx context.Context, cmd DeleteMeetingCommand) error {
	return sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		meeting, err := h.repo.FindByID(txCtx, cmd.MeetingID)
		if err != nil {
			return err
		}
		if meeting == nil {
			return domain.ErrMeetingNotFound
		}
		if meeting.IsDeleted() {
			return nil
		}

		meeting.Delete(h.now())
		if err := h.repo.Save(txCtx, meeting); err != nil {
			return err
		}
		return sharedApplication.Enqueue(txCtx, h.outboxRepo, meeting, cmd.ActorID)
	})
}
