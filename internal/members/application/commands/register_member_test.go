package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/felixgeelhaar/gatherly/internal/members/domain"
	"github.com/felixgeelhaar/gatherly/internal/shared/apperr"
	"github.com/felixgeelhaar/gatherly/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockMemberRepo struct {
	mock.Mock
}

func (m *mockMemberRepo) Save(ctx context.Context, member *domain.Member) error {
	return m.Called(ctx, member).Error(0)
}

func (m *mockMemberRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Member, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Member), args.Error(1)
}

func (m *mockMemberRepo) FindByEmail(ctx context.Context, email string) (*domain.Member, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Member), args.Error(1)
}

func (m *mockMemberRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Member, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Member), args.Error(1)
}

func (m *mockMemberRepo) ListCommunity(ctx context.Context) ([]*domain.Member, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Member), args.Error(1)
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

func TestRegisterMemberHandler_Handle(t *testing.T) {
	ctx := context.Background()
	txCtx := context.WithValue(ctx, txKey{}, "tx")

	t.Run("registers a member and records the event", func(t *testing.T) {
		repo := new(mockMemberRepo)
		outboxRepo := new(mockOutboxRepo)
		uow := new(mockUnitOfWork)
		handler := NewRegisterMemberHandler(repo, outboxRepo, uow)

		uow.On("Begin", ctx).Return(txCtx, nil)
		uow.On("Commit", txCtx).Return(nil)
		repo.On("FindByEmail", txCtx, "asha@example.com").Return(nil, nil)
		repo.On("Save", txCtx, mock.AnythingOfType("*domain.Member")).Return(nil)
		outboxRepo.On("SaveBatch", txCtx, mock.MatchedBy(func(msgs []*outbox.Message) bool {
			return len(msgs) == 1 && msgs[0].RoutingKey == "members.member.registered"
		})).Return(nil)

		result, err := handler.Handle(ctx, RegisterMemberCommand{
			Name:      "Asha",
			Email:     "asha@example.com",
			Community: true,
		})
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, result.MemberID)

		repo.AssertExpectations(t)
		outboxRepo.AssertExpectations(t)
		uow.AssertExpectations(t)
	})

	t.Run("rejects invalid input before opening a transaction", func(t *testing.T) {
		repo := new(mockMemberRepo)
		uow := new(mockUnitOfWork)
		handler := NewRegisterMemberHandler(repo, new(mockOutboxRepo), uow)

		_, err := handler.Handle(ctx, RegisterMemberCommand{Name: "Asha", Email: "bad"})
		assert.ErrorIs(t, err, apperr.ErrValidation)
		uow.AssertNotCalled(t, "Begin", mock.Anything)
	})

	t.Run("rejects a taken email", func(t *testing.T) {
		repo := new(mockMemberRepo)
		uow := new(mockUnitOfWork)
		handler := NewRegisterMemberHandler(repo, new(mockOutboxRepo), uow)

		existing, err := domain.NewMember(domain.Profile{Name: "Asha", Email: "asha@example.com"}, time.Now())
		require.NoError(t, err)

		uow.On("Begin", ctx).Return(txCtx, nil)
		uow.On("Rollback", txCtx).Return(nil)
		repo.On("FindByEmail", txCtx, "asha@example.com").Return(existing, nil)

		_, err = handler.Handle(ctx, RegisterMemberCommand{Name: "Asha", Email: "asha@example.com"})
		assert.ErrorIs(t, err, domain.ErrMemberEmailTaken)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("rolls back when the outbox write fails", func(t *testing.T) {
		repo := new(mockMemberRepo)
		outboxRepo := new(mockOutboxRepo)
		uow := new(mockUnitOfWork)
		handler := NewRegisterMemberHandler(repo, outboxRepo, uow)

		uow.On("Begin", ctx).Return(txCtx, nil)
		uow.On("Rollback", txCtx).Return(nil)
		repo.On("FindByEmail", txCtx, "asha@example.com").Return(nil, nil)
		repo.On("Save", txCtx, mock.Anything).Return(nil)
		outboxRepo.On("SaveBatch", txCtx, mock.Anything).Return(errors.New("disk full"))

		_, err := handler.Handle(ctx, RegisterMemberCommand{Name: "Asha", Email: "asha@example.com"})
		assert.EqualError(t, err, "disk full")
		uow.AssertCalled(t, "Rollback", txCtx)
	})
}
