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

// CreateMeetingCommand contains the data needed to create a meeting.
type CreateMeetingCommand struct {
	OrganizerID uuid.UUID
	Title       string
	Speaker     string
	Place       string
	ScheduledAt time.Time
	Agenda      string
	VisitorFee  int64
	Currency    string
}

// CreateMeetingResult contains the result of creating a meeting.
type CreateMeetingResult struct {
	MeetingID uuid.UUID
}

// CreateMeetingHandler handles the CreateMeetingCommand.
type CreateMeetingHandler struct {
	repo       domain.Repository
	members    membersDomain.Repository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
	now        func() time.Time
}

// NewCreateMeetingHandler creates a new CreateMeetingHandler.
func NewCreateMeetingHandler(repo domain.Repository, members membersDomain.Repository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork) *CreateMeetingHandler {
	return &CreateMeetingHandler{
		repo:       repo,
		members:    members,
		outboxRepo: outboxRepo,
		uow:        uow,
		now:        time.Now,
	}
}

// Handle executes the CreateMeetingCommand.
func (h *CreateMeetingHandler) Handle(ctx context.Context, cmd CreateMeetingCommand) (*CreateMeetingResult, error) {
	meeting, err := domain.NewMeeting(cmd.OrganizerID, domain.Details{
		Title:       cmd.Title,
		Speaker:     cmd.Speaker,
		Place:       cmd.Place,
		ScheduledAt: cmd.ScheduledAt,
		Agenda:      cmd.Agenda,
	}, cmd.VisitorFee, cmd.Currency, h.now())
	if err != nil {
		return nil, err
	}

	err = sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		organizer, err := h.members.FindByID(txCtx, cmd.OrganizerID)
		if err != nil {
			return err
		}
		if organizer == nil {
			return membersDomain.ErrMemberNotFound
		}

		if err := h.repo.Save(txCtx, meeting); err != nil {
			return err
		}
		return sharedApplication.Enqueue(txCtx, h.outboxRepo, meeting, cmd.OrganizerID)
	})
	if err != nil {
		return nil, err
	}

	return &CreateMeetingResult{MeetingID: meeting.ID()}, nil
}
