package reporting

import (
	"testing"
	"time"

	invitationsDomain "github.com/felixgeelhaar/gatherly/internal/invitations/domain"
	membersDomain "github.com/felixgeelhaar/gatherly/internal/members/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func member(t *testing.T, name, email string) *membersDomain.Member {
	t.Helper()
	m, err := membersDomain.NewMember(membersDomain.Profile{Name: name, Email: email}, time.Now())
	require.NoError(t, err)
	return m
}

func invitation(t *testing.T, meetingID uuid.UUID, email string, amount int64) *invitationsDomain.Invitation {
	t.Helper()
	inv, err := invitationsDomain.NewInvitation(meetingID, uuid.New(), invitationsDomain.Invitee{
		Email:            email,
		VisitorName:      "Visitor",
		BusinessCategory: "Retail",
	}, amount, "INR", time.Now())
	require.NoError(t, err)
	return inv
}

func TestBuildRoster(t *testing.T) {
	meetingID := uuid.New()

	first := invitation(t, meetingID, "same@x.com", 50000)
	_, err := first.Confirm("pay_1", time.Now())
	require.NoError(t, err)
	second := invitation(t, meetingID, "same@x.com", 0)
	cancelled := invitation(t, meetingID, "gone@x.com", 50000)
	require.NoError(t, cancelled.Cancel("", time.Now()))

	roster := BuildRoster(
		[]*invitationsDomain.Invitation{first, second, cancelled},
		[]*membersDomain.Member{member(t, "Gone", "gone@x.com"), member(t, "New", "new@x.com")},
	)

	assert.Len(t, roster.Invited, 1)
	assert.Len(t, roster.Community, 1)
	require.Len(t, roster.Registered, 1, "an attendee with any invitation record is not a walk-in")
	assert.Equal(t, "new@x.com", roster.Registered[0].Email)

	all := roster.All()
	require.Len(t, all, 3, "rows are not deduplicated by email")
	assert.Equal(t, []View{ViewInvited, ViewCommunity, ViewRegistered}, []View{all[0].Source, all[1].Source, all[2].Source})

	assert.Len(t, roster.View(ViewCommunity), 1)
	assert.Len(t, roster.View(ViewAll), 3)
}

func TestBuildRoster_EmptyViewsAreNotNil(t *testing.T) {
	roster := BuildRoster(nil, nil)
	assert.NotNil(t, roster.Invited)
	assert.NotNil(t, roster.Community)
	assert.NotNil(t, roster.Registered)
}

func TestParseView(t *testing.T) {
	v, err := ParseView("")
	require.NoError(t, err)
	assert.Equal(t, ViewAll, v)

	_, err = ParseView("vip")
	assert.ErrorIs(t, err, ErrUnknownView)
}
