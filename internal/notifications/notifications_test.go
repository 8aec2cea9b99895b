package notifications

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/felixgeelhaar/gatherly/pkg/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	inputs []*sesv2.SendEmailInput
	err    error
}

func (f *fakeSender) SendEmail(_ context.Context, in *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.inputs = append(f.inputs, in)
	if f.err != nil {
		return nil, f.err
	}
	return &sesv2.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

func testMeeting() Meeting {
	return Meeting{
		Title:       "Chapter meeting",
		Speaker:     "Meera",
		Place:       "Hall B",
		ScheduledAt: time.Date(2026, 11, 5, 1, 30, 0, 0, time.UTC),
		Agenda:      "Referrals",
	}
}

func TestSESNotifier_SendInvitation(t *testing.T) {
	ist := time.FixedZone("+0530", 19800)
	sender := &fakeSender{}
	metrics := observability.NewInMemoryMetrics()
	n := newSESNotifier(sender, SESConfig{From: "events@gatherly.example", DisplayZone: ist}, nil, metrics)

	err := n.SendInvitation(context.Background(), Invitation{
		VisitorName: "Asha <b>Rao</b>",
		Email:       "asha@example.com",
		Inviter:     "Ravi",
		Meeting:     testMeeting(),
		PaymentLink: "https://rzp.io/i/abc",
		Amount:      50000,
		Currency:    "INR",
		Details:     map[string]string{"Category": "Retail"},
	})
	require.NoError(t, err)
	require.Len(t, sender.inputs, 1)

	in := sender.inputs[0]
	assert.Equal(t, "events@gatherly.example", aws.ToString(in.FromEmailAddress))
	assert.Equal(t, []string{"asha@example.com"}, in.Destination.ToAddresses)
	assert.Equal(t, "Invitation: Chapter meeting", aws.ToString(in.Content.Simple.Subject.Data))

	body := aws.ToString(in.Content.Simple.Body.Html.Data)
	assert.Contains(t, body, "INR 500.00")
	assert.Contains(t, body, `href="https://rzp.io/i/abc"`)
	assert.Contains(t, body, "07:00", "meeting time is shown in the display zone")
	assert.Contains(t, body, "Asha &lt;b&gt;Rao&lt;/b&gt;")
	assert.Contains(t, body, "Retail")
	assert.Equal(t, int64(1), metrics.GetCounter(observability.MetricNotifications, observability.T("kind", "invitation"), observability.T("result", "ok")))
}

func TestSESNotifier_FreeInvitationHasNoLink(t *testing.T) {
	sender := &fakeSender{}
	n := newSESNotifier(sender, SESConfig{From: "events@gatherly.example"}, nil, nil)

	require.NoError(t, n.SendInvitation(context.Background(), Invitation{
		VisitorName: "Asha",
		Email:       "asha@example.com",
		Meeting:     testMeeting(),
	}))

	body := aws.ToString(sender.inputs[0].Content.Simple.Body.Html.Data)
	assert.NotContains(t, body, "href=")
	assert.Contains(t, body, "Your seat is confirmed")
}

func TestSESNotifier_SendConfirmation(t *testing.T) {
	sender := &fakeSender{}
	metrics := observability.NewInMemoryMetrics()
	n := newSESNotifier(sender, SESConfig{From: "events@gatherly.example"}, nil, metrics)

	require.NoError(t, n.SendConfirmation(context.Background(), Confirmation{
		VisitorName: "Asha",
		Email:       "asha@example.com",
		Meeting:     testMeeting(),
		PaymentID:   "pay_123",
	}))
	body := aws.ToString(sender.inputs[0].Content.Simple.Body.Html.Data)
	assert.Contains(t, body, "pay_123")

	sender.err = errors.New("throttled")
	err := n.SendConfirmation(context.Background(), Confirmation{Email: "asha@example.com", Meeting: testMeeting()})
	assert.ErrorContains(t, err, "throttled")
	assert.Equal(t, int64(1), metrics.GetCounter(observability.MetricNotifications, observability.T("kind", "confirmation"), observability.T("result", "error")))
}

func TestNewSESNotifier_RequiresSender(t *testing.T) {
	_, err := NewSESNotifier(context.Background(), SESConfig{Region: "ap-south-1"}, nil, nil)
	assert.Error(t, err)
}

func TestLogNotifier(t *testing.T) {
	n := NewLogNotifier(nil)
	assert.NoError(t, n.SendInvitation(context.Background(), Invitation{Email: "a@x.com"}))
	assert.NoError(t, n.SendConfirmation(context.Background(), Confirmation{Email: "a@x.com"}))
}

func TestMoney(t *testing.T) {
	assert.Equal(t, "INR 500.00", money(50000, "INR"))
	assert.Equal(t, "INR 0.05", money(5, "INR"))
}
