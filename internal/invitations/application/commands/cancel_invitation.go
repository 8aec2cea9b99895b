package commands

import (
	"context"
	"time"

	"github.com/felixgeelhaar/gatherly/internal/invitations/domain"
	sharedApplication "github.com/felixgeelhaar/gatherly/internal/shared/application"
	"github.com/felixgeelhaar/gatherly/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
)

// CancelInvitationCommand cancels a pending invitation.
type CancelInvitationCommand struct {
	InvitationID uuid.UUID
	ActorID      uuid.UUID
	Reason       string
}

// CancelInvitationHandler handles the CancelInvitationCommand.
type CancelInvitationHandler struct {
	repo       domain.Repository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
	now        func() time.Time
}

// NewCancelInvitationHandler creates a new CancelInvitationHandler.
func NewCancelInvitationHandler(repo domain.Repository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork) *CancelInvitationHandler {
	return &CancelInvitationHandler{
		repo:       repo,
		outboxRepo: outboxRepo,
		uow:        uow,
		now:        time.Now,
	}
}

// Handle executes the CancelInvitationCommand.
func (h *CancelInvitationHandler) Handle(ctx context.Context, cmd CancelInvitationCommand) (*domain.Invitation, error) {
	var inv *domain.Invitation
	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		var err error
		inv, err = h.repo.FindByID(txCtx, cmd.InvitationID)
		if err != nil {
			return err
		}
		if inv == nil {
			return domain.ErrInvitationNotFound
		}

		if err := inv.Cancel(cmd.Reason, h.now()); err != nil {
			return err
		}
		applied, err := h.repo.TransitionStatus(txCtx, inv, domain.StatusPending)
		if err != nil {
			return err
		}
		if !applied {
			return domain.ErrNotPending
		}
		return sharedApplication.Enqueue(txCtx, h.outboxRepo, inv, cmd.ActorID)
	})
	if err != nil {
		return nil, err
	}
	return inv, nil
}
