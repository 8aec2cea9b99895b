package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/felixgeelhaar/gatherly/internal/meetings/domain"
	"github.com/felixgeelhaar/gatherly/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/gatherly/internal/shared/infrastructure/database/sqlite"
	"github.com/felixgeelhaar/gatherly/internal/shared/infrastructure/migrations"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	conn database.Connection
	repo *SQLMeetingRepository
}

func setup(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	conn, err := sqlite.NewConnection(ctx, database.Config{SQLitePath: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, migrations.Run(ctx, conn))
	return &fixture{conn: conn, repo: NewSQLMeetingRepository(conn)}
}

func (f *fixture) member(t *testing.T) uuid.UUID {
	t.Helper()
	id := uuid.New()
	now := time.Now().UTC()
	_, err := f.conn.Exec(context.Background(),
		`INSERT INTO members (id, name, email, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		id, "Member", id.String()+"@example.com", now, now)
	require.NoError(t, err)
	return id
}

func (f *fixture) invitation(t *testing.T, meetingID, inviterID uuid.UUID) uuid.UUID {
	t.Helper()
	id := uuid.New()
	now := time.Now().UTC()
	_, err := f.conn.Exec(context.Background(), `
		INSERT INTO invitations (id, meeting_id, inviter_id, email, visitor_name, business_category,
			amount, status, confirmed_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, 'Visitor', 'Retail', 0, 'confirmed', ?, ?, ?)`,
		id, meetingID, inviterID, id.String()+"@example.com", now, now, now)
	require.NoError(t, err)
	return id
}

func (f *fixture) meeting(t *testing.T, organizer uuid.UUID, at time.Time) *domain.Meeting {
	t.Helper()
	m, err := domain.NewMeeting(organizer, domain.Details{
		Title:       "Chapter meeting",
		Speaker:     "Speaker",
		Place:       "Hall",
		ScheduledAt: at,
		Agenda:      "Agenda",
	}, 50000, "INR", time.Now())
	require.NoError(t, err)
	require.NoError(t, f.repo.Save(context.Background(), m))
	return m
}

func TestSQLMeetingRepository_SaveAndFind(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	organizer := f.member(t)
	scheduled := time.Date(2026, 11, 5, 7, 0, 0, 0, time.FixedZone("IST", 19800))

	m := f.meeting(t, organizer, scheduled)

	found, err := f.repo.FindByID(ctx, m.ID())
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "Chapter meeting", found.Title())
	assert.Equal(t, organizer, found.OrganizerID())
	assert.Equal(t, int64(50000), found.VisitorFee())
	assert.True(t, scheduled.Equal(found.ScheduledAt()))
	assert.Nil(t, found.DeletedAt())

	require.NoError(t, found.SetVisitorFee(0, time.Now()))
	found.Delete(time.Now())
	require.NoError(t, f.repo.Save(ctx, found))

	reloaded, err := f.repo.FindByID(ctx, m.ID())
	require.NoError(t, err)
	assert.Equal(t, int64(0), reloaded.VisitorFee())
	assert.True(t, reloaded.IsDeleted())

	missing, err := f.repo.FindByID(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestSQLMeetingRepository_List(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	organizer := f.member(t)
	base := time.Now().UTC().Truncate(time.Second)

	later := f.meeting(t, organizer, base.Add(48*time.Hour))
	sooner := f.meeting(t, organizer, base.Add(24*time.Hour))
	gone := f.meeting(t, organizer, base.Add(12*time.Hour))
	gone.Delete(time.Now())
	require.NoError(t, f.repo.Save(ctx, gone))

	active, err := f.repo.List(ctx, false)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, sooner.ID(), active[0].ID())
	assert.Equal(t, later.ID(), active[1].ID())

	all, err := f.repo.List(ctx, true)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestSQLMeetingRepository_Attendees(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	organizer := f.member(t)
	attendee := f.member(t)
	m := f.meeting(t, organizer, time.Now())

	added, err := f.repo.AddAttendee(ctx, m.ID(), attendee, time.Now())
	require.NoError(t, err)
	assert.True(t, added)

	added, err = f.repo.AddAttendee(ctx, m.ID(), attendee, time.Now())
	require.NoError(t, err)
	assert.False(t, added)

	found, err := f.repo.FindByID(ctx, m.ID())
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{attendee}, found.Attendees())
}

func TestSQLMeetingRepository_AppendToRoster(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	organizer := f.member(t)
	m := f.meeting(t, organizer, time.Now())

	first := f.invitation(t, m.ID(), organizer)
	second := f.invitation(t, m.ID(), organizer)

	for _, id := range []uuid.UUID{first, second} {
		added, err := f.repo.AppendToRoster(ctx, m.ID(), id, time.Now())
		require.NoError(t, err)
		assert.True(t, added)
	}

	added, err := f.repo.AppendToRoster(ctx, m.ID(), first, time.Now())
	require.NoError(t, err)
	assert.False(t, added, "an invitation appears on the roster once")

	found, err := f.repo.FindByID(ctx, m.ID())
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{first, second}, found.Invited())

	t.Run("saving the meeting leaves the roster alone", func(t *testing.T) {
		require.NoError(t, found.SetVisitorFee(100, time.Now()))
		require.NoError(t, f.repo.Save(ctx, found))

		again, err := f.repo.FindByID(ctx, m.ID())
		require.NoError(t, err)
		assert.Len(t, again.Invited(), 2)
	})
}

func TestSQLMeetingRepository_JoinsUnitOfWork(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	organizer := f.member(t)
	m := f.meeting(t, organizer, time.Now())
	inv := f.invitation(t, m.ID(), organizer)

	uow := database.NewUnitOfWork(f.conn)
	txCtx, err := uow.Begin(ctx)
	require.NoError(t, err)
	_, err = f.repo.AppendToRoster(txCtx, m.ID(), inv, time.Now())
	require.NoError(t, err)
	require.NoError(t, uow.Rollback(txCtx))

	found, err := f.repo.FindByID(ctx, m.ID())
	require.NoError(t, err)
	assert.Empty(t, found.Invited())
}
