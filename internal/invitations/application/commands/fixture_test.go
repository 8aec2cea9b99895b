package commands

import (
	"context"
	"testing"
	"time"

	"github.com/felixgeelhaar/gatherly/internal/invitations/domain"
	invitationsPersistence "github.com/felixgeelhaar/gatherly/internal/invitations/infrastructure/persistence"
	meetingsDomain "github.com/felixgeelhaar/gatherly/internal/meetings/domain"
	meetingsPersistence "github.com/felixgeelhaar/gatherly/internal/meetings/infrastructure/persistence"
	membersDomain "github.com/felixgeelhaar/gatherly/internal/members/domain"
	membersPersistence "github.com/felixgeelhaar/gatherly/internal/members/infrastructure/persistence"
	"github.com/felixgeelhaar/gatherly/internal/payments/simulated"
	"github.com/felixgeelhaar/gatherly/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/gatherly/internal/shared/infrastructure/database/sqlite"
	"github.com/felixgeelhaar/gatherly/internal/shared/infrastructure/migrations"
	"github.com/felixgeelhaar/gatherly/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/gatherly/pkg/observability"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

const webhookSecret = "whsec_test"

// env wires the handlers to an in-memory SQLite store and the simulated gateway.
type env struct {
	invitations *invitationsPersistence.SQLInvitationRepository
	meetings    *meetingsPersistence.SQLMeetingRepository
	members     *membersPersistence.SQLMemberRepository
	outbox      *outbox.SQLRepository
	uow         *database.UnitOfWork
	gateway     *simulated.Gateway
	metrics     *observability.InMemoryMetrics

	create    *CreateInvitationHandler
	issue     *IssuePaymentLinkHandler
	webhook   *ConfirmFromWebhookHandler
	simulate  *SimulateConfirmationHandler
	cancel    *CancelInvitationHandler
	community *InviteCommunityHandler
	reconcile *ReconcileRosterHandler

	inviter *membersDomain.Member
}

func newEnv(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()
	conn, err := sqlite.NewConnection(ctx, database.Config{SQLitePath: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, migrations.Run(ctx, conn))

	e := &env{
		invitations: invitationsPersistence.NewSQLInvitationRepository(conn),
		meetings:    meetingsPersistence.NewSQLMeetingRepository(conn),
		members:     membersPersistence.NewSQLMemberRepository(conn),
		outbox:      outbox.NewSQLRepository(conn),
		uow:         database.NewUnitOfWork(conn),
		gateway:     simulated.New("https://pay.example.com/l"),
		metrics:     observability.NewInMemoryMetrics(),
	}
	e.create = NewCreateInvitationHandler(e.invitations, e.meetings, e.members, e.gateway, e.outbox, e.uow, nil, e.metrics)
	e.issue = NewIssuePaymentLinkHandler(e.invitations, e.meetings, e.gateway, e.outbox, e.uow, nil)
	e.webhook = NewConfirmFromWebhookHandler(e.invitations, e.meetings, e.outbox, e.uow, webhookSecret, nil, e.metrics)
	e.simulate = NewSimulateConfirmationHandler(e.invitations, e.meetings, e.outbox, e.uow, true, nil, e.metrics)
	e.cancel = NewCancelInvitationHandler(e.invitations, e.outbox, e.uow)
	e.community = NewInviteCommunityHandler(e.invitations, e.meetings, e.members, e.outbox, e.uow, nil)
	e.reconcile = NewReconcileRosterHandler(e.invitations, e.meetings, e.uow, nil)

	e.inviter = e.member(t, "Inviter", "inviter@example.com", false)
	return e
}

func (e *env) member(t *testing.T, name, email string, community bool) *membersDomain.Member {
	t.Helper()
	m, err := membersDomain.NewMember(membersDomain.Profile{
		Name:      name,
		Email:     email,
		Community: community,
	}, time.Now())
	require.NoError(t, err)
	require.NoError(t, e.members.Save(context.Background(), m))
	return m
}

func (e *env) meeting(t *testing.T, fee int64) *meetingsDomain.Meeting {
	t.Helper()
	m, err := meetingsDomain.NewMeeting(e.inviter.ID(), meetingsDomain.Details{
		Title:       "Chapter meeting",
		Speaker:     "Meera",
		Place:       "Hall B",
		ScheduledAt: time.Now().Add(72 * time.Hour),
		Agenda:      "Referrals",
	}, fee, "INR", time.Now())
	require.NoError(t, err)
	require.NoError(t, e.meetings.Save(context.Background(), m))
	return m
}

func (e *env) invite(meetingID uuid.UUID, email string) (*CreateInvitationResult, error) {
	return e.create.Handle(context.Background(), CreateInvitationCommand{
		MeetingID:        meetingID,
		InviterID:        e.inviter.ID(),
		Email:            email,
		VisitorName:      "Visitor",
		BusinessCategory: "Retail",
	})
}

func (e *env) roster(t *testing.T, meetingID uuid.UUID) []uuid.UUID {
	t.Helper()
	m, err := e.meetings.FindByID(context.Background(), meetingID)
	require.NoError(t, err)
	require.NotNil(t, m)
	return m.Invited()
}

func (e *env) reload(t *testing.T, id uuid.UUID) *domain.Invitation {
	t.Helper()
	inv, err := e.invitations.FindByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, inv)
	return inv
}

func (e *env) routingKeys(t *testing.T) []string {
	t.Helper()
	msgs, err := e.outbox.GetUnpublished(context.Background(), 1000)
	require.NoError(t, err)
	keys := make([]string, 0, len(msgs))
	for _, msg := range msgs {
		keys = append(keys, msg.RoutingKey)
	}
	return keys
}
