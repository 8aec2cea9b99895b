package domain

import (
	"testing"
	"time"

	"github.com/felixgeelhaar/gatherly/internal/shared/apperr"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validDetails() Details {
	return Details{
		Title:       "Monthly chapter meeting",
		Speaker:     "Meera Iyer",
		Place:       "Hall B, Pune",
		ScheduledAt: time.Date(2026, 11, 5, 7, 0, 0, 0, time.FixedZone("IST", 19800)),
		Agenda:      "Networking and referrals",
	}
}

func TestNewMeeting(t *testing.T) {
	organizer := uuid.New()
	now := time.Now()

	t.Run("creates a meeting with a fee", func(t *testing.T) {
		m, err := NewMeeting(organizer, validDetails(), 50000, "inr", now)
		require.NoError(t, err)

		assert.Equal(t, organizer, m.OrganizerID())
		assert.Equal(t, int64(50000), m.VisitorFee())
		assert.Equal(t, "INR", m.Currency())
		assert.Equal(t, time.UTC, m.ScheduledAt().Location())
		assert.False(t, m.IsDeleted())
		assert.Empty(t, m.Invited())

		require.Len(t, m.DomainEvents(), 1)
		created, ok := m.DomainEvents()[0].(*MeetingCreated)
		require.True(t, ok)
		assert.Equal(t, RoutingKeyCreated, created.RoutingKey())
		assert.Equal(t, int64(50000), created.VisitorFee)
	})

	t.Run("defaults the currency", func(t *testing.T) {
		m, err := NewMeeting(organizer, validDetails(), 0, "", now)
		require.NoError(t, err)
		assert.Equal(t, DefaultCurrency, m.Currency())
	})

	cases := map[string]struct {
		mutate func(*Details)
		fee    int64
		cur    string
		want   error
	}{
		"empty title":    {mutate: func(d *Details) { d.Title = " " }, want: ErrMeetingEmptyTitle},
		"empty speaker":  {mutate: func(d *Details) { d.Speaker = "" }, want: ErrMeetingEmptySpeaker},
		"empty place":    {mutate: func(d *Details) { d.Place = "" }, want: ErrMeetingEmptyPlace},
		"empty agenda":   {mutate: func(d *Details) { d.Agenda = "" }, want: ErrMeetingEmptyAgenda},
		"missing time":   {mutate: func(d *Details) { d.ScheduledAt = time.Time{} }, want: ErrMeetingMissingTime},
		"negative fee":   {fee: -1, want: ErrMeetingNegativeFee},
		"bad currency":   {cur: "RUPEE", want: ErrMeetingInvalidCurrency},
		"digit currency": {cur: "IN1", want: ErrMeetingInvalidCurrency},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			d := validDetails()
			if tc.mutate != nil {
				tc.mutate(&d)
			}
			_, err := NewMeeting(organizer, d, tc.fee, tc.cur, now)
			assert.ErrorIs(t, err, tc.want)
			assert.ErrorIs(t, err, apperr.ErrValidation)
		})
	}
}

func TestMeeting_Update(t *testing.T) {
	now := time.Now()
	m, err := NewMeeting(uuid.New(), validDetails(), 0, "", now)
	require.NoError(t, err)
	m.ClearDomainEvents()

	t.Run("unchanged details emit nothing", func(t *testing.T) {
		require.NoError(t, m.Update(validDetails(), now))
		assert.Empty(t, m.DomainEvents())
	})

	t.Run("changed details emit an update", func(t *testing.T) {
		d := validDetails()
		d.Place = "Hall C, Pune"
		later := now.Add(time.Minute)
		require.NoError(t, m.Update(d, later))

		assert.Equal(t, "Hall C, Pune", m.Details().Place)
		assert.True(t, later.Equal(m.UpdatedAt()))
		require.Len(t, m.DomainEvents(), 1)
		assert.Equal(t, RoutingKeyUpdated, m.DomainEvents()[0].RoutingKey())
	})
}

func TestMeeting_SetVisitorFee(t *testing.T) {
	m, err := NewMeeting(uuid.New(), validDetails(), 50000, "", time.Now())
	require.NoError(t, err)
	m.ClearDomainEvents()

	require.NoError(t, m.SetVisitorFee(50000, time.Now()))
	assert.Empty(t, m.DomainEvents())

	require.NoError(t, m.SetVisitorFee(0, time.Now()))
	assert.Equal(t, int64(0), m.VisitorFee())
	require.Len(t, m.DomainEvents(), 1)
	changed := m.DomainEvents()[0].(*MeetingFeeChanged)
	assert.Equal(t, int64(50000), changed.PreviousFee)
	assert.Equal(t, int64(0), changed.VisitorFee)

	assert.ErrorIs(t, m.SetVisitorFee(-10, time.Now()), ErrMeetingNegativeFee)
}

func TestMeeting_RegisterAttendee(t *testing.T) {
	m, err := NewMeeting(uuid.New(), validDetails(), 0, "", time.Now())
	require.NoError(t, err)
	member := uuid.New()

	added, err := m.RegisterAttendee(member, time.Now())
	require.NoError(t, err)
	assert.True(t, added)

	added, err = m.RegisterAttendee(member, time.Now())
	require.NoError(t, err)
	assert.False(t, added)
	assert.Equal(t, []uuid.UUID{member}, m.Attendees())
}

func TestMeeting_Delete(t *testing.T) {
	m, err := NewMeeting(uuid.New(), validDetails(), 0, "", time.Now())
	require.NoError(t, err)
	m.ClearDomainEvents()

	m.Delete(time.Now())
	m.Delete(time.Now())
	assert.True(t, m.IsDeleted())
	require.Len(t, m.DomainEvents(), 1)
	assert.Equal(t, RoutingKeyDeleted, m.DomainEvents()[0].RoutingKey())

	assert.ErrorIs(t, m.Update(validDetails(), time.Now()), ErrMeetingDeleted)
	assert.ErrorIs(t, m.SetVisitorFee(10, time.Now()), ErrMeetingDeleted)
	_, err = m.RegisterAttendee(uuid.New(), time.Now())
	assert.ErrorIs(t, err, ErrMeetingDeleted)
}

func TestRehydrateMeeting(t *testing.T) {
	invited := []uuid.UUID{uuid.New(), uuid.New()}
	m := RehydrateMeeting(Snapshot{
		ID:         uuid.New(),
		Details:    validDetails(),
		VisitorFee: 100,
		Currency:   "INR",
		Invited:    invited,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	})

	assert.Equal(t, invited, m.Invited())
	assert.True(t, m.HasInvited(invited[1]))
	assert.False(t, m.HasInvited(uuid.New()))
	assert.Empty(t, m.DomainEvents())
}
