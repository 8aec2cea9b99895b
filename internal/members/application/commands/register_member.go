package commands

import (
	"context"
	"time"

	"github.com/felixgeelhaar/gatherly/internal/members/domain"
	sharedApplication "github.com/felixgeelhaar/gatherly/internal/shared/application"
	"github.com/felixgeelhaar/gatherly/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
)

// RegisterMemberCommand contains the data needed to register a member.
type RegisterMemberCommand struct {
	ActorID             uuid.UUID
	Name                string
	Email               string
	Mobile              string
	BusinessCategory    string
	BusinessSubcategory string
	Community           bool
}

// RegisterMemberResult contains the result of registering a member.
type RegisterMemberResult struct {
	MemberID uuid.UUID
}

// RegisterMemberHandler handles the RegisterMemberCommand.
type RegisterMemberHandler struct {
	repo       domain.Repository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
	now        func() time.Time
}

// NewRegisterMemberHandler creates a new RegisterMemberHandler.
func NewRegisterMemberHandler(repo domain.Repository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork) *RegisterMemberHandler {
	return &RegisterMemberHandler{
		repo:       repo,
		outboxRepo: outboxRepo,
		uow:        uow,
		now:        time.Now,
	}
}

// Handle executes the RegisterMemberCommand.
func (h *RegisterMemberHandler) Handle(ctx context.Context, cmd RegisterMemberCommand) (*RegisterMemberResult, error) {
	member, err := domain.NewMember(domain.Profile{
		Name:                cmd.Name,
		Email:               cmd.Email,
		Mobile:              cmd.Mobile,
		BusinessCategory:    cmd.BusinessCategory,
		BusinessSubcategory: cmd.BusinessSubcategory,
		Community:           cmd.Community,
	}, h.now())
	if err != nil {
		return nil, err
	}

	err = sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		existing, err := h.repo.FindByEmail(txCtx, member.Email())
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrMemberEmailTaken
		}

		if err := h.repo.Save(txCtx, member); err != nil {
			return err
		}

		actorID := cmd.ActorID
		if actorID == uuid.Nil {
			actorID = member.ID()
		}
		return sharedApplication.Enqueue(txCtx, h.outboxRepo, member, actorID)
	})
	if err != nil {
		return nil, err
	}

	return &RegisterMemberResult{MemberID: member.ID()}, nil
}
