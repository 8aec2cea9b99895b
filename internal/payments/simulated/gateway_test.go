package simulated

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/felixgeelhaar/gatherly/internal/payments"
	"github.com/felixgeelhaar/gatherly/internal/shared/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGateway(t *testing.T) {
	gw := New("https://pay.test/l/")
	req := payments.LinkRequest{Amount: 50000, Currency: "INR", ReferenceID: "inv-1"}

	first, err := gw.CreateLink(context.Background(), req)
	require.NoError(t, err)
	second, err := gw.CreateLink(context.Background(), req)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(first.ID, "plink_sim_"))
	assert.True(t, strings.HasPrefix(first.URL, "https://pay.test/l/"))
	assert.NotEqual(t, first.ID, second.ID)
	assert.Len(t, gw.Calls(), 2)

	gw.FailWith(errors.New("down"))
	_, err = gw.CreateLink(context.Background(), req)
	assert.ErrorIs(t, err, apperr.ErrGateway)
	assert.Len(t, gw.Calls(), 3)
}
