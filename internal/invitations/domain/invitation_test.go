package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/felixgeelhaar/gatherly/internal/shared/apperr"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testInvitee() Invitee {
	return Invitee{
		Email:            "a@x.com",
		VisitorName:      "Anil Kumar",
		BusinessCategory: "Interior design",
		Mobile:           "9876543210",
	}
}

func newPending(t *testing.T) *Invitation {
	t.Helper()
	inv, err := NewInvitation(uuid.New(), uuid.New(), testInvitee(), 50000, "INR", time.Now())
	require.NoError(t, err)
	inv.ClearDomainEvents()
	return inv
}

func TestNewInvitation(t *testing.T) {
	now := time.Now()

	t.Run("fee-bearing invitations start pending", func(t *testing.T) {
		inv, err := NewInvitation(uuid.New(), uuid.New(), testInvitee(), 50000, "inr", now)
		require.NoError(t, err)

		assert.Equal(t, StatusPending, inv.Status())
		assert.Equal(t, int64(50000), inv.Amount())
		assert.Equal(t, "INR", inv.Currency())
		assert.Nil(t, inv.ConfirmedAt())
		assert.False(t, inv.HasPaymentLink())
		assert.Equal(t, "invitation:"+inv.ID().String(), inv.IdempotencyNote())

		require.Len(t, inv.DomainEvents(), 1)
		created := inv.DomainEvents()[0].(*InvitationCreated)
		assert.Equal(t, RoutingKeyCreated, created.RoutingKey())
		assert.Equal(t, "pending", created.Status)
	})

	t.Run("free invitations are confirmed at creation", func(t *testing.T) {
		inv, err := NewInvitation(uuid.New(), uuid.New(), testInvitee(), 0, "", now)
		require.NoError(t, err)

		assert.Equal(t, StatusConfirmed, inv.Status())
		assert.Equal(t, "INR", inv.Currency())
		require.NotNil(t, inv.ConfirmedAt())
		assert.True(t, inv.ConfirmedAt().Equal(inv.CreatedAt()))
		assert.Equal(t, "confirmed", inv.DomainEvents()[0].(*InvitationCreated).Status)
	})

	t.Run("mobile is optional", func(t *testing.T) {
		invitee := testInvitee()
		invitee.Mobile = ""
		_, err := NewInvitation(uuid.New(), uuid.New(), invitee, 0, "", now)
		assert.NoError(t, err)
	})

	cases := map[string]struct {
		mutate func(*Invitee)
		amount int64
		want   error
	}{
		"bad email":        {mutate: func(i *Invitee) { i.Email = "a@" }, want: ErrInvalidEmail},
		"missing name":     {mutate: func(i *Invitee) { i.VisitorName = " " }, want: ErrMissingVisitorName},
		"missing category": {mutate: func(i *Invitee) { i.BusinessCategory = "" }, want: ErrMissingCategory},
		"nine digits":      {mutate: func(i *Invitee) { i.Mobile = "987654321" }, want: ErrInvalidMobile},
		"negative amount":  {amount: -1, want: ErrNegativeAmount},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			invitee := testInvitee()
			if tc.mutate != nil {
				tc.mutate(&invitee)
			}
			_, err := NewInvitation(uuid.New(), uuid.New(), invitee, tc.amount, "INR", now)
			assert.ErrorIs(t, err, tc.want)
			assert.ErrorIs(t, err, apperr.ErrValidation)
		})
	}
}

func TestInvitation_AttachPaymentLink(t *testing.T) {
	inv := newPending(t)

	require.NoError(t, inv.AttachPaymentLink("plink_1", "https://rzp.io/i/a1", time.Now()))
	assert.Equal(t, "plink_1", inv.PaymentLinkID())
	assert.Equal(t, "https://rzp.io/i/a1", inv.PaymentLink())
	require.Len(t, inv.DomainEvents(), 1)
	issued := inv.DomainEvents()[0].(*PaymentLinkIssued)
	assert.Equal(t, "https://rzp.io/i/a1", issued.PaymentLink)

	assert.ErrorIs(t, inv.AttachPaymentLink("plink_2", "https://rzp.io/i/b2", time.Now()), ErrPaymentLinkAlreadySet)
	assert.Equal(t, "plink_1", inv.PaymentLinkID())

	other := newPending(t)
	assert.ErrorIs(t, other.AttachPaymentLink("", "https://rzp.io/i/a1", time.Now()), ErrPaymentLinkIncomplete)

	free, err := NewInvitation(uuid.New(), uuid.New(), testInvitee(), 0, "", time.Now())
	require.NoError(t, err)
	assert.ErrorIs(t, free.AttachPaymentLink("plink_3", "https://rzp.io/i/c3", time.Now()), ErrNotPending)
}

func TestInvitation_Confirm(t *testing.T) {
	t.Run("pending to confirmed once", func(t *testing.T) {
		inv := newPending(t)
		require.NoError(t, inv.AttachPaymentLink("plink_1", "https://rzp.io/i/a1", time.Now()))
		inv.ClearDomainEvents()

		at := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
		changed, err := inv.Confirm("pay_1", at)
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Equal(t, StatusConfirmed, inv.Status())
		assert.Equal(t, "pay_1", inv.PaymentID())
		assert.True(t, at.Equal(*inv.ConfirmedAt()))

		require.Len(t, inv.DomainEvents(), 1)
		confirmed := inv.DomainEvents()[0].(*InvitationConfirmed)
		assert.Equal(t, "pay_1", confirmed.PaymentID)
		assert.Equal(t, "plink_1", confirmed.PaymentLinkID)

		changed, err = inv.Confirm("pay_2", at.Add(time.Hour))
		require.NoError(t, err)
		assert.False(t, changed)
		assert.Equal(t, "pay_1", inv.PaymentID())
		assert.Len(t, inv.DomainEvents(), 1)
	})

	t.Run("missing payment id is synthesized", func(t *testing.T) {
		inv := newPending(t)
		require.NoError(t, inv.AttachPaymentLink("plink_9", "https://rzp.io/i/z9", time.Now()))

		_, err := inv.Confirm("", time.Now())
		require.NoError(t, err)
		assert.Equal(t, "synthetic_plink_9", inv.PaymentID())
	})

	t.Run("cancelled invitations cannot be confirmed", func(t *testing.T) {
		inv := newPending(t)
		require.NoError(t, inv.Cancel("visitor withdrew", time.Now()))

		changed, err := inv.Confirm("pay_1", time.Now())
		assert.False(t, changed)
		assert.ErrorIs(t, err, ErrCancelledInvitation)
		assert.Equal(t, StatusCancelled, inv.Status())
	})
}

func TestInvitation_Cancel(t *testing.T) {
	inv := newPending(t)
	require.NoError(t, inv.Cancel("  duplicate request ", time.Now()))
	assert.Equal(t, StatusCancelled, inv.Status())
	assert.Equal(t, "duplicate request", inv.CancelReason())
	assert.NotNil(t, inv.CancelledAt())
	assert.Equal(t, RoutingKeyCancelled, inv.DomainEvents()[0].RoutingKey())

	assert.ErrorIs(t, inv.Cancel("again", time.Now()), ErrNotPending)

	confirmed := newPending(t)
	_, err := confirmed.Confirm("pay_1", time.Now())
	require.NoError(t, err)
	assert.ErrorIs(t, confirmed.Cancel("late", time.Now()), ErrNotPending)
	assert.Equal(t, StatusConfirmed, confirmed.Status())
}

func TestInvitationEvents_MarshalPayloadOnly(t *testing.T) {
	inv := newPending(t)
	require.NoError(t, inv.AttachPaymentLink("plink_1", "https://rzp.io/i/a1", time.Now()))

	data, err := json.Marshal(inv.DomainEvents()[0])
	require.NoError(t, err)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(data, &payload))
	assert.Equal(t, "plink_1", payload["payment_link_id"])
	assert.Equal(t, "a@x.com", payload["email"])
	assert.NotContains(t, payload, "BaseEvent")
}

func TestStatus_IsValid(t *testing.T) {
	assert.True(t, StatusPending.IsValid())
	assert.True(t, StatusConfirmed.IsValid())
	assert.True(t, StatusCancelled.IsValid())
	assert.False(t, Status("refunded").IsValid())
}
