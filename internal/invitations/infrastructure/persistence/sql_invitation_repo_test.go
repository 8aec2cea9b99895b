package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/felixgeelhaar/gatherly/internal/invitations/domain"
	"github.com/felixgeelhaar/gatherly/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/gatherly/internal/shared/infrastructure/database/sqlite"
	"github.com/felixgeelhaar/gatherly/internal/shared/infrastructure/migrations"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	conn      database.Connection
	repo      *SQLInvitationRepository
	inviterID uuid.UUID
	meetingID uuid.UUID
}

func setup(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	conn, err := sqlite.NewConnection(ctx, database.Config{SQLitePath: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, migrations.Run(ctx, conn))

	f := &fixture{conn: conn, repo: NewSQLInvitationRepository(conn)}
	f.inviterID = f.member(t)
	f.meetingID = f.meeting(t)
	return f
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

func (f *fixture) meeting(t *testing.T) uuid.UUID {
	t.Helper()
	id := uuid.New()
	now := time.Now().UTC()
	_, err := f.conn.Exec(context.Background(), `
		INSERT INTO meetings (id, title, speaker, place, scheduled_at, visitor_fee, organizer_id, created_at, updated_at)
		VALUES (?, 'Chapter meeting', 'Speaker', 'Hall', ?, 50000, ?, ?, ?)`,
		id, now.Add(72*time.Hour), f.inviterID, now, now)
	require.NoError(t, err)
	return id
}

func (f *fixture) newInvitation(t *testing.T, meetingID uuid.UUID, email, mobile string, amount int64) *domain.Invitation {
	t.Helper()
	inv, err := domain.NewInvitation(meetingID, f.inviterID, domain.Invitee{
		Email:            email,
		VisitorName:      "Asha Rao",
		BusinessCategory: "Retail",
		Mobile:           mobile,
	}, amount, "INR", time.Now())
	require.NoError(t, err)
	return inv
}

func TestSQLInvitationRepository_InsertAndFind(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	inv := f.newInvitation(t, f.meetingID, "Asha@Example.com", "9876543210", 50000)
	require.NoError(t, f.repo.Insert(ctx, inv))

	found, err := f.repo.FindByID(ctx, inv.ID())
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "asha@example.com", found.Email())
	assert.Equal(t, int64(50000), found.Amount())
	assert.Equal(t, domain.StatusPending, found.Status())
	assert.Empty(t, found.PaymentLinkID())
	assert.Nil(t, found.ConfirmedAt())

	missing, err := f.repo.FindByID(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestSQLInvitationRepository_InsertRejectsDuplicates(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	first := f.newInvitation(t, f.meetingID, "asha@example.com", "9876543210", 50000)
	require.NoError(t, f.repo.Insert(ctx, first))

	t.Run("same email different case", func(t *testing.T) {
		dup := f.newInvitation(t, f.meetingID, "ASHA@example.com", "", 50000)
		assert.ErrorIs(t, f.repo.Insert(ctx, dup), domain.ErrDuplicateInvitation)
	})

	t.Run("same mobile", func(t *testing.T) {
		dup := f.newInvitation(t, f.meetingID, "other@example.com", "9876543210", 50000)
		assert.ErrorIs(t, f.repo.Insert(ctx, dup), domain.ErrDuplicateInvitation)
	})

	t.Run("same email on another meeting", func(t *testing.T) {
		other := f.newInvitation(t, f.meeting(t), "asha@example.com", "9876543210", 50000)
		assert.NoError(t, f.repo.Insert(ctx, other))
	})

	t.Run("cancelled invitations free the contact", func(t *testing.T) {
		require.NoError(t, first.Cancel("no show", time.Now()))
		ok, err := f.repo.TransitionStatus(ctx, first, domain.StatusPending)
		require.NoError(t, err)
		require.True(t, ok)

		again := f.newInvitation(t, f.meetingID, "asha@example.com", "", 50000)
		assert.NoError(t, f.repo.Insert(ctx, again))
	})
}

func TestSQLInvitationRepository_PaymentLink(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	inv := f.newInvitation(t, f.meetingID, "asha@example.com", "", 50000)
	require.NoError(t, f.repo.Insert(ctx, inv))
	require.NoError(t, inv.AttachPaymentLink("plink_abc", "https://rzp.io/i/Xy_9%z", time.Now()))

	ok, err := f.repo.SetPaymentLink(ctx, inv)
	require.NoError(t, err)
	assert.True(t, ok)

	t.Run("second write is refused", func(t *testing.T) {
		ok, err := f.repo.SetPaymentLink(ctx, inv)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("find by link id", func(t *testing.T) {
		found, err := f.repo.FindByPaymentLinkID(ctx, "plink_abc")
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, inv.ID(), found.ID())
		assert.Equal(t, "https://rzp.io/i/Xy_9%z", found.PaymentLink())
	})

	t.Run("find by url suffix", func(t *testing.T) {
		found, err := f.repo.FindByPaymentLinkSuffix(ctx, "Xy_9%z")
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, inv.ID(), found.ID())
	})

	t.Run("wildcards in the suffix are literal", func(t *testing.T) {
		found, err := f.repo.FindByPaymentLinkSuffix(ctx, "Xy%")
		require.NoError(t, err)
		assert.Nil(t, found)
	})

	t.Run("unknown link", func(t *testing.T) {
		found, err := f.repo.FindByPaymentLinkID(ctx, "plink_zzz")
		require.NoError(t, err)
		assert.Nil(t, found)
	})
}

func TestSQLInvitationRepository_TransitionStatus(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	inv := f.newInvitation(t, f.meetingID, "asha@example.com", "", 50000)
	require.NoError(t, f.repo.Insert(ctx, inv))
	require.NoError(t, inv.AttachPaymentLink("plink_abc", "https://rzp.io/i/abc", time.Now()))
	_, err := f.repo.SetPaymentLink(ctx, inv)
	require.NoError(t, err)

	changed, err := inv.Confirm("pay_123", time.Now())
	require.NoError(t, err)
	require.True(t, changed)

	ok, err := f.repo.TransitionStatus(ctx, inv, domain.StatusPending)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.repo.TransitionStatus(ctx, inv, domain.StatusPending)
	require.NoError(t, err)
	assert.False(t, ok, "compare-and-set must fail once the status moved")

	found, err := f.repo.FindByID(ctx, inv.ID())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, found.Status())
	assert.Equal(t, "pay_123", found.PaymentID())
	require.NotNil(t, found.ConfirmedAt())
}

func TestSQLInvitationRepository_Lists(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	paid := f.newInvitation(t, f.meetingID, "paid@example.com", "", 50000)
	free := f.newInvitation(t, f.meetingID, "free@example.com", "", 0)
	pending := f.newInvitation(t, f.meetingID, "pending@example.com", "", 50000)
	for _, inv := range []*domain.Invitation{paid, free, pending} {
		require.NoError(t, f.repo.Insert(ctx, inv))
	}
	_, err := paid.Confirm("pay_1", time.Now())
	require.NoError(t, err)
	_, err = f.repo.TransitionStatus(ctx, paid, domain.StatusPending)
	require.NoError(t, err)

	all, err := f.repo.ListByMeeting(ctx, f.meetingID)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	off, err := f.repo.ListConfirmedOffRoster(ctx, uuid.Nil)
	require.NoError(t, err)
	assert.Len(t, off, 2)

	_, err = f.conn.Exec(ctx,
		`INSERT INTO meeting_invited (meeting_id, invitation_id, position, added_at) VALUES (?, ?, 1, ?)`,
		f.meetingID, paid.ID(), time.Now().UTC())
	require.NoError(t, err)

	off, err = f.repo.ListConfirmedOffRoster(ctx, f.meetingID)
	require.NoError(t, err)
	require.Len(t, off, 1)
	assert.Equal(t, free.ID(), off[0].ID())
}

func TestSQLInvitationRepository_InsertJoinsOuterTransaction(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	uow := database.NewUnitOfWork(f.conn)
	txCtx, err := uow.Begin(ctx)
	require.NoError(t, err)

	inv := f.newInvitation(t, f.meetingID, "asha@example.com", "", 0)
	require.NoError(t, f.repo.Insert(txCtx, inv))
	require.NoError(t, uow.Rollback(txCtx))

	found, err := f.repo.FindByID(ctx, inv.ID())
	require.NoError(t, err)
	assert.Nil(t, found)
}
