package cli

import (
	"errors"
	"fmt"
	"io"
	"time"

	internalApp "github.com/felixgeelhaar/gatherly/internal/app"
	"github.com/google/uuid"
)

// ErrNoMember is returned by commands that act on behalf of a member when
// none was given.
var ErrNoMember = errors.New("no acting member: pass --as <member-id> or set GATHERLY_MEMBER_ID")

// App holds the CLI application dependencies.
type App struct {
	*internalApp.Container

	// Current member (configured per environment or with --as)
	CurrentMemberID uuid.UUID
}

// NewApp creates a new CLI application over the container's handlers.
func NewApp(container *internalApp.Container) *App {
	return &App{Container: container, CurrentMemberID: uuid.Nil}
}

// SetCurrentMemberID updates the current member ID.
func (a *App) SetCurrentMemberID(id uuid.UUID) {
	a.CurrentMemberID = id
}

// RequireMember returns the acting member or ErrNoMember.
func (a *App) RequireMember() (uuid.UUID, error) {
	if a.CurrentMemberID == uuid.Nil {
		return uuid.Nil, ErrNoMember
	}
	return a.CurrentMemberID, nil
}

// Location is the zone dates are shown and parsed in.
func (a *App) Location() *time.Location {
	if a.Container == nil || a.Config == nil {
		return time.UTC
	}
	return a.Config.ReportLocation()
}

var app *App

// SetApp sets the global CLI application instance.
func SetApp(a *App) {
	app = a
}

// GetApp returns the global CLI application instance.
func GetApp() *App {
	return app
}

// NoDatabase writes the hint shown when a command runs without a container.
func NoDatabase(w io.Writer, what string) {
	fmt.Fprintf(w, "%s requires a database connection.\n", what)
	fmt.Fprintln(w, "Set DATABASE_URL, or SQLITE_PATH for a local database.")
}

// FormatAmount renders an amount in minor units, e.g. 50000 INR as 500.00 INR.
func FormatAmount(minor int64, currency string) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	return fmt.Sprintf("%s%d.%02d %s", sign, minor/100, minor%100, currency)
}

// ParseID parses a UUID argument, naming it in the error.
func ParseID(kind, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s ID: %w", kind, err)
	}
	return id, nil
}
