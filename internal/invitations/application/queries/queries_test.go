package queries

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/felixgeelhaar/gatherly/internal/invitations/domain"
	meetingsDomain "github.com/felixgeelhaar/gatherly/internal/meetings/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRepo struct {
	domain.Repository
	invitations []*domain.Invitation
}

func (s *stubRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.Invitation, error) {
	for _, inv := range s.invitations {
		if inv.ID() == id {
			return inv, nil
		}
	}
	return nil, nil
}

func (s *stubRepo) ListByMeeting(_ context.Context, meetingID uuid.UUID) ([]*domain.Invitation, error) {
	var out []*domain.Invitation
	for _, inv := range s.invitations {
		if inv.MeetingID() == meetingID {
			out = append(out, inv)
		}
	}
	return out, nil
}

type stubMeetings struct {
	meetingsDomain.Repository
	meeting *meetingsDomain.Meeting
}

func (s *stubMeetings) FindByID(_ context.Context, id uuid.UUID) (*meetingsDomain.Meeting, error) {
	if s.meeting != nil && s.meeting.ID() == id {
		return s.meeting, nil
	}
	return nil, nil
}

func newInvitation(t *testing.T, meetingID uuid.UUID, email string, amount int64) *domain.Invitation {
	t.Helper()
	inv, err := domain.NewInvitation(meetingID, uuid.New(), domain.Invitee{
		Email:            email,
		VisitorName:      "Visitor",
		BusinessCategory: "Retail",
	}, amount, "INR", time.Now())
	require.NoError(t, err)
	return inv
}

func TestInvitationQueries(t *testing.T) {
	ctx := context.Background()
	meeting, err := meetingsDomain.NewMeeting(uuid.New(), meetingsDomain.Details{
		Title: "Chapter meeting", Speaker: "Meera", Place: "Hall", ScheduledAt: time.Now(), Agenda: "Referrals",
	}, 50000, "INR", time.Now())
	require.NoError(t, err)

	pending := newInvitation(t, meeting.ID(), "a@x.com", 50000)
	free := newInvitation(t, meeting.ID(), "b@x.com", 0)
	other := newInvitation(t, uuid.New(), "c@x.com", 0)
	repo := &stubRepo{invitations: []*domain.Invitation{pending, free, other}}
	meetings := &stubMeetings{meeting: meeting}

	t.Run("get", func(t *testing.T) {
		dto, err := NewGetInvitationHandler(repo).Handle(ctx, pending.ID())
		require.NoError(t, err)
		assert.Equal(t, "pending", dto.Status)
		assert.Equal(t, int64(50000), dto.Amount)

		_, err = NewGetInvitationHandler(repo).Handle(ctx, uuid.New())
		assert.ErrorIs(t, err, domain.ErrInvitationNotFound)
	})

	t.Run("fee fields are always serialized", func(t *testing.T) {
		data, err := json.Marshal(ToDTO(free))
		require.NoError(t, err)
		var raw map[string]any
		require.NoError(t, json.Unmarshal(data, &raw))
		assert.Contains(t, raw, "amount")
		assert.Contains(t, raw, "paymentLinkId")
		assert.Contains(t, raw, "confirmedAt")
	})

	t.Run("list", func(t *testing.T) {
		h := NewListInvitationsHandler(repo, meetings)

		all, err := h.Handle(ctx, ListInvitationsQuery{MeetingID: meeting.ID()})
		require.NoError(t, err)
		assert.Len(t, all, 2)

		confirmed, err := h.Handle(ctx, ListInvitationsQuery{MeetingID: meeting.ID(), Status: domain.StatusConfirmed})
		require.NoError(t, err)
		require.Len(t, confirmed, 1)
		assert.Equal(t, free.ID(), confirmed[0].ID)

		_, err = h.Handle(ctx, ListInvitationsQuery{MeetingID: meeting.ID(), Status: "lost"})
		assert.ErrorIs(t, err, domain.ErrInvalidStatus)

		_, err = h.Handle(ctx, ListInvitationsQuery{MeetingID: uuid.New()})
		assert.ErrorIs(t, err, meetingsDomain.ErrMeetingNotFound)
	})
}
