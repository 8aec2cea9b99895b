package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMember(t *testing.T) {
	now := time.Now()

	t.Run("registers a community member", func(t *testing.T) {
		m, err := NewMember(Profile{
			Name:             "  Asha Rao ",
			Email:            "asha@example.com",
			Mobile:           "9876543210",
			BusinessCategory: "Finance",
			Community:        true,
		}, now)
		require.NoError(t, err)

		assert.Equal(t, "Asha Rao", m.Name())
		assert.True(t, m.IsCommunity())
		require.Len(t, m.DomainEvents(), 1)

		event, ok := m.DomainEvents()[0].(*MemberRegistered)
		require.True(t, ok)
		assert.Equal(t, "members.member.registered", event.RoutingKey())
		assert.Equal(t, m.ID(), event.MemberID)
	})

	t.Run("mobile is optional", func(t *testing.T) {
		_, err := NewMember(Profile{Name: "Ravi", Email: "ravi@example.com"}, now)
		assert.NoError(t, err)
	})

	cases := map[string]struct {
		profile Profile
		want    error
	}{
		"empty name":    {Profile{Email: "a@x.com"}, ErrMemberEmptyName},
		"bad email":     {Profile{Name: "A", Email: "nope"}, ErrMemberInvalidEmail},
		"short mobile":  {Profile{Name: "A", Email: "a@x.com", Mobile: "12345"}, ErrMemberInvalidMobile},
		"letter mobile": {Profile{Name: "A", Email: "a@x.com", Mobile: "98765abcde"}, ErrMemberInvalidMobile},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewMember(tc.profile, now)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestRehydrateMember(t *testing.T) {
	id := uuid.New()
	created := time.Now().Add(-time.Hour)

	m := RehydrateMember(id, Profile{Name: "A", Email: "a@x.com"}, created, created)
	assert.Equal(t, id, m.ID())
	assert.Empty(t, m.DomainEvents())
}
