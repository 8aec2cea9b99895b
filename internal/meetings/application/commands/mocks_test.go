package commands

import (
	"context"
	"time"

	"github.com/felixgeelhaar/gatherly/internal/meetings/domain"
	membersDomain "github.com/felixgeelhaar/gatherly/internal/members/domain"
	"github.com/felixgeelhaar/gatherly/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type mockMeetingRepo struct {
	mock.Mock
}

func (m *mockMeetingRepo) Save(ctx context.Context, meeting *domain.Meeting) error {
	return m.Called(ctx, meeting).Error(0)
}

func (m *mockMeetingRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Meeting, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Meeting), args.Error(1)
}

func (m *mockMeetingRepo) List(ctx context.Context, includeDeleted bool) ([]*domain.Meeting, error) {
	args := m.Called(ctx, includeDeleted)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Meeting), args.Error(1)
}

func (m *mockMeetingRepo) AddAttendee(ctx context.Context, meetingID, memberID uuid.UUID, at time.Time) (bool, error) {
	args := m.Called(ctx, meetingID, memberID, at)
	return args.Bool(0), args.Error(1)
}

func (m *mockMeetingRepo) AppendToRoster(ctx context.Context, meetingID, invitationID uuid.UUID, at time.Time) (bool, error) {
	args := m.Called(ctx, meetingID, invitationID, at)
	return args.Bool(0), args.Error(1)
}

type mockMemberRepo struct {
	mock.Mock
}

func (m *mockMemberRepo) Save(ctx context.Context, member *membersDomain.Member) error {
	return m.Called(ctx, member).Error(0)
}

func (m *mockMemberRepo) FindByID(ctx context.Context, id uuid.UUID) (*membersDomain.Member, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*membersDomain.Member), args.Error(1)
}

func (m *mockMemberRepo) FindByEmail(ctx context.Context, email string) (*membersDomain.Member, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*membersDomain.Member), args.Error(1)
}

func (m *mockMemberRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*membersDomain.Member, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*membersDomain.Member), args.Error(1)
}

func (m *mockMemberRepo) ListCommunity(ctx context.Context) ([]*membersDomain.Member, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*membersDomain.Member), args.Error(1)
}

type mockOutboxRepo struct {
	mock.Mock
}

func (m *mockOutboxRepo) Save(ctx context.Context, msg *outbox.Message) error {
	return m.Called(ctx, msg).Error(0)
}

func (m *mockOutboxRepo) SaveBatch(ctx context.Context, msgs []*outbox.Message) error {
	return m.Called(ctx, msgs).Error(0)
}

func (m *mockOutboxRepo) GetUnpublished(ctx context.Context, limit int) ([]*outbox.Message, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*outbox.Message), args.Error(1)
}

func (m *mockOutboxRepo) MarkPublished(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockOutboxRepo) MarkFailed(ctx context.Context, id int64, reason string, nextRetryAt time.Time) error {
	return m.Called(ctx, id, reason, nextRetryAt).Error(0)
}

func (m *mockOutboxRepo) MarkDead(ctx context.Context, id int64, reason string) error {
	return m.Called(ctx, id, reason).Error(0)
}

func (m *mockOutboxRepo) DeleteOld(ctx context.Context, olderThanDays int) (int64, error) {
	args := m.Called(ctx, olderThanDays)
	return args.Get(0).(int64), args.Error(1)
}

type mockUnitOfWork struct {
	mock.Mock
}

func (m *mockUnitOfWork) Begin(ctx context.Context) (context.Context, error) {
	args := m.Called(ctx)
	return args.Get(0).(context.Context), args.Error(1)
}

func (m *mockUnitOfWork) Commit(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockUnitOfWork) Rollback(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type txKey struct{}

func routingKeys(keys ...string) any {
	return mock.MatchedBy(func(msgs []*outbox.Message) bool {
		if len(msgs) != len(keys) {
			return false
		}
		for i, msg := range msgs {
			if msg.RoutingKey != keys[i] {
				return false
			}
		}
		return true
	})
}
