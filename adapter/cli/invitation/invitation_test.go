package invitation

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/felixgeelhaar/gatherly/adapter/cli"
	internalApp "github.com/felixgeelhaar/gatherly/internal/app"
	invitationQueries "github.com/felixgeelhaar/gatherly/internal/invitations/application/queries"
	meetingCommands "github.com/felixgeelhaar/gatherly/internal/meetings/application/commands"
	memberCommands "github.com/felixgeelhaar/gatherly/internal/members/application/commands"
	"github.com/felixgeelhaar/gatherly/pkg/config"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestApp returns a CLI app acting as an organizer, and a paid meeting.
func setupTestApp(t *testing.T) (*cli.App, uuid.UUID) {
	t.Helper()

	cfg, err := config.Parse(map[string]string{
		"APP_ENV":     "test",
		"SQLITE_PATH": ":memory:",
	})
	require.NoError(t, err)

	ctx := context.Background()
	container, err := internalApp.NewContainer(ctx, cfg, nil)
	require.NoError(t, err)
	t.Cleanup(container.Close)

	organizer, err := container.RegisterMemberHandler.Handle(ctx, memberCommands.RegisterMemberCommand{
		Name:  "Organizer",
		Email: "organizer@example.com",
	})
	require.NoError(t, err)

	meeting, err := container.CreateMeetingHandler.Handle(ctx, meetingCommands.CreateMeetingCommand{
		OrganizerID: organizer.MemberID,
		Title:       "Weekly chapter",
		Speaker:     "Meera",
		Agenda:      "Referrals",
		Place:       "Hall A",
		ScheduledAt: time.Now().Add(72 * time.Hour),
		VisitorFee:  50000,
		Currency:    "INR",
	})
	require.NoError(t, err)

	app := cli.NewApp(container)
	app.SetCurrentMemberID(organizer.MemberID)
	cli.SetApp(app)
	t.Cleanup(func() { cli.SetApp(nil) })
	return app, meeting.MeetingID
}

func run(t *testing.T, cmd *cobra.Command, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetContext(context.Background())
	require.NoError(t, cmd.RunE(cmd, args))
	return out.String()
}

func invitations(t *testing.T, app *cli.App, meetingID uuid.UUID) []invitationQueries.InvitationDTO {
	t.Helper()
	list, err := app.ListInvitationsHandler.Handle(context.Background(), invitationQueries.ListInvitationsQuery{MeetingID: meetingID})
	require.NoError(t, err)
	return list
}

func TestCreateAndSimulate(t *testing.T) {
	app, meetingID := setupTestApp(t)
	createName, createCategory = "Ravi", "Retail"

	out := run(t, createCmd, meetingID.String(), "Ravi@Example.com")
	assert.Contains(t, out, "Status: pending")
	assert.Contains(t, out, "Fee: 500.00 INR")

	list := invitations(t, app, meetingID)
	require.Len(t, list, 1)
	assert.Equal(t, "ravi@example.com", list[0].Email)
	require.NotEmpty(t, list[0].PaymentLinkID)

	out = run(t, simulateCmd, list[0].PaymentLinkID)
	assert.Contains(t, out, "confirmed")

	listStatus = "confirmed"
	out = run(t, listCmd, meetingID.String())
	assert.Contains(t, out, "Invitations (1):")

	listStatus = "pending"
	assert.Contains(t, run(t, listCmd, meetingID.String()), "No invitations.")
	listStatus = ""
}

func TestCancel(t *testing.T) {
	app, meetingID := setupTestApp(t)
	createName, createCategory = "Visitor", "Consulting"
	run(t, createCmd, meetingID.String(), "visitor@example.com")
	id := invitations(t, app, meetingID)[0].ID.String()

	cancelReason = "wrong email"
	assert.Contains(t, run(t, cancelCmd, id), "Invitation cancelled.")

	out := run(t, showCmd, id)
	assert.Contains(t, out, "Status: cancelled")
	assert.Contains(t, out, "Cancelled: wrong email")

	cancelCmd.SetContext(context.Background())
	assert.Error(t, cancelCmd.RunE(cancelCmd, []string{id}))
}

func TestCommunity(t *testing.T) {
	app, meetingID := setupTestApp(t)
	ctx := context.Background()
	for _, email := range []string{"a@example.com", "b@example.com"} {
		_, err := app.RegisterMemberHandler.Handle(ctx, memberCommands.RegisterMemberCommand{
			Name: email, Email: email, Community: true,
		})
		require.NoError(t, err)
	}

	assert.Contains(t, run(t, communityCmd, meetingID.String()), "Invited 2 community members, skipped 0.")
	assert.Contains(t, run(t, communityCmd, meetingID.String()), "Invited 0 community members, skipped 2.")

	for _, inv := range invitations(t, app, meetingID) {
		assert.Zero(t, inv.Amount)
	}
}

func TestLink_AlreadyIssued(t *testing.T) {
	app, meetingID := setupTestApp(t)
	createName, createCategory = "Visitor", "Consulting"
	run(t, createCmd, meetingID.String(), "visitor@example.com")
	id := invitations(t, app, meetingID)[0].ID.String()

	linkCmd.SetContext(context.Background())
	assert.Error(t, linkCmd.RunE(linkCmd, []string{id}))
}

func TestCreate_RequiresCategory(t *testing.T) {
	app, meetingID := setupTestApp(t)
	createName, createCategory = "Visitor", ""

	createCmd.SetContext(context.Background())
	err := createCmd.RunE(createCmd, []string{meetingID.String(), "visitor@example.com"})
	assert.ErrorContains(t, err, "business category is required")
	assert.Empty(t, invitations(t, app, meetingID))
}
