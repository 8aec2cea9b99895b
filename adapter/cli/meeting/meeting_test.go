package meeting

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/felixgeelhaar/gatherly/adapter/cli"
	internalApp "github.com/felixgeelhaar/gatherly/internal/app"
	meetingQueries "github.com/felixgeelhaar/gatherly/internal/meetings/application/queries"
	memberCommands "github.com/felixgeelhaar/gatherly/internal/members/application/commands"
	"github.com/felixgeelhaar/gatherly/pkg/config"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestApp creates a CLI application over an in-memory SQLite container
// acting as a freshly registered organizer.
func setupTestApp(t *testing.T) *cli.App {
	t.Helper()

	cfg, err := config.Parse(map[string]string{
		"APP_ENV":     "test",
		"SQLITE_PATH": ":memory:",
		"LOG_LEVEL":   "error",
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

	app := cli.NewApp(container)
	app.SetCurrentMemberID(organizer.MemberID)
	cli.SetApp(app)
	t.Cleanup(func() { cli.SetApp(nil) })
	return app
}

func run(t *testing.T, cmd *cobra.Command, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetContext(context.Background())
	require.NoError(t, cmd.RunE(cmd, args))
	return out.String()
}

func resetCreateFlags() {
	createSpeaker = "Meera"
	createPlace = "Hall A"
	createAt = time.Now().Add(72 * time.Hour).Format(dateTimeLayout)
	createAgenda = "Referrals"
	createFee = 50000
	createCurrency = ""
}

func listAll(t *testing.T, app *cli.App) []meetingQueries.MeetingDTO {
	t.Helper()
	meetings, err := app.ListMeetingsHandler.Handle(context.Background(), meetingQueries.ListMeetingsQuery{IncludeDeleted: true})
	require.NoError(t, err)
	return meetings
}

func TestCreateCmd_CreatesMeeting(t *testing.T) {
	app := setupTestApp(t)
	resetCreateFlags()

	out := run(t, createCmd, "Weekly chapter")
	assert.Contains(t, out, "Created meeting:")

	meetings := listAll(t, app)
	require.Len(t, meetings, 1)
	assert.Equal(t, "Weekly chapter", meetings[0].Title)
	assert.Equal(t, "Hall A", meetings[0].Place)
	assert.Equal(t, int64(50000), meetings[0].VisitorFee)
	assert.Equal(t, "INR", meetings[0].Currency)
	assert.Equal(t, app.CurrentMemberID, meetings[0].OrganizerID)
}

func TestCreateCmd_RejectsBadTime(t *testing.T) {
	setupTestApp(t)
	resetCreateFlags()
	createAt = "next tuesday"

	createCmd.SetContext(context.Background())
	err := createCmd.RunE(createCmd, []string{"Weekly chapter"})
	assert.ErrorContains(t, err, "invalid --at")
}

func TestCreateCmd_RequiresMember(t *testing.T) {
	app := setupTestApp(t)
	app.SetCurrentMemberID(uuid.Nil)
	resetCreateFlags()

	createCmd.SetContext(context.Background())
	err := createCmd.RunE(createCmd, []string{"Weekly chapter"})
	assert.ErrorIs(t, err, cli.ErrNoMember)
}

func TestListCmd(t *testing.T) {
	setupTestApp(t)

	out := run(t, listCmd)
	assert.Contains(t, out, "No meetings.")

	resetCreateFlags()
	run(t, createCmd, "Alpha")
	createFee = 0
	run(t, createCmd, "Beta")

	out = run(t, listCmd)
	assert.Contains(t, out, "Meetings (2):")
	assert.Contains(t, out, "Visitor fee: 500.00 INR")
	assert.Contains(t, out, "Visitor fee: waived")
}

func TestUpdateCmd_ChangesOnlyGivenFields(t *testing.T) {
	app := setupTestApp(t)
	resetCreateFlags()
	run(t, createCmd, "Weekly chapter")
	id := listAll(t, app)[0].ID.String()

	require.NoError(t, updateCmd.Flags().Set("place", "Hall B"))
	out := run(t, updateCmd, id)
	assert.Contains(t, out, "Meeting updated")

	m := listAll(t, app)[0]
	assert.Equal(t, "Hall B", m.Place)
	assert.Equal(t, "Meera", m.Speaker)
}

func TestDeleteAndAttend(t *testing.T) {
	app := setupTestApp(t)
	resetCreateFlags()
	run(t, createCmd, "Weekly chapter")
	id := listAll(t, app)[0].ID.String()

	attendMember = ""
	assert.Contains(t, run(t, attendCmd, id), "Attendee registered.")
	assert.Contains(t, run(t, attendCmd, id), "already registered")

	run(t, deleteCmd, id)
	meetings := listAll(t, app)
	require.Len(t, meetings, 1)
	assert.True(t, meetings[0].Deleted)

	includeDeleted, upcomingOnly = false, false
	assert.Contains(t, run(t, listCmd), "No meetings.")
}

func TestRosterAndReconcile_EmptyMeeting(t *testing.T) {
	app := setupTestApp(t)
	resetCreateFlags()
	run(t, createCmd, "Weekly chapter")
	id := listAll(t, app)[0].ID.String()

	rosterView = "invited"
	assert.Contains(t, run(t, rosterCmd, id), "No invited visitors.")

	rosterView = "vip"
	rosterCmd.SetContext(context.Background())
	assert.Error(t, rosterCmd.RunE(rosterCmd, []string{id}))

	assert.Contains(t, run(t, reconcileCmd, id), "Found 0 confirmed invitations")
}

func TestCommandsWithoutDatabase(t *testing.T) {
	cli.SetApp(nil)

	assert.Contains(t, run(t, listCmd), "requires a database connection")
}
