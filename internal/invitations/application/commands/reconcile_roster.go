package commands

import (
	"context"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/gatherly/internal/invitations/domain"
	meetingsDomain "github.com/felixgeelhaar/gatherly/internal/meetings/domain"
	sharedApplication "github.com/felixgeelhaar/gatherly/internal/shared/application"
	"github.com/google/uuid"
)

// ReconcileRosterCommand repairs meeting rosters. A nil MeetingID checks
// every meeting.
type ReconcileRosterCommand struct {
	MeetingID uuid.UUID
}

// ReconcileRosterResult counts confirmed invitations found off their roster
// and how many of them were appended.
type ReconcileRosterResult struct {
	Checked  int `json:"checked"`
	Repaired int `json:"repaired"`
}

// ReconcileRosterHandler appends confirmed invitations that are missing from
// their meeting's roster. The invitation status is the source of truth.
type ReconcileRosterHandler struct {
	repo     domain.Repository
	meetings meetingsDomain.Repository
	uow      sharedApplication.UnitOfWork
	logger   *slog.Logger
	now      func() time.Time
}

// NewReconcileRosterHandler creates a new ReconcileRosterHandler.
func NewReconcileRosterHandler(repo domain.Repository, meetings meetingsDomain.Repository, uow sharedApplication.UnitOfWork, logger *slog.Logger) *ReconcileRosterHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReconcileRosterHandler{
		repo:     repo,
		meetings: meetings,
		uow:      uow,
		logger:   logger,
		now:      time.Now,
	}
}

// Handle executes the ReconcileRosterCommand.
func (h *ReconcileRosterHandler) Handle(ctx context.Context, cmd ReconcileRosterCommand) (*ReconcileRosterResult, error) {
	result := &ReconcileRosterResult{}

	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		missing, err := h.repo.ListConfirmedOffRoster(txCtx, cmd.MeetingID)
		if err != nil {
			return err
		}
		result.Checked = len(missing)

		for _, inv := range missing {
			at := h.now()
			if confirmedAt := inv.ConfirmedAt(); confirmedAt != nil {
				at = *confirmedAt
			}
			added, err := h.meetings.AppendToRoster(txCtx, inv.MeetingID(), inv.ID(), at)
			if err != nil {
				return err
			}
			if added {
				result.Repaired++
				h.logger.InfoContext(txCtx, "roster repaired",
					"meeting_id", inv.MeetingID(), "invitation_id", inv.ID())
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
