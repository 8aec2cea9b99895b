package app

import (
	"fmt"

	invitationsDomain "github.com/felixgeelhaar/gatherly/internal/invitations/domain"
	invitationsPersistence "github.com/felixgeelhaar/gatherly/internal/invitations/infrastructure/persistence"
	meetingsDomain "github.com/felixgeelhaar/gatherly/internal/meetings/domain"
	meetingsPersistence "github.com/felixgeelhaar/gatherly/internal/meetings/infrastructure/persistence"
	membersDomain "github.com/felixgeelhaar/gatherly/internal/members/domain"
	membersPersistence "github.com/felixgeelhaar/gatherly/internal/members/infrastructure/persistence"
	"github.com/felixgeelhaar/gatherly/internal/reporting"
	reportingPersistence "github.com/felixgeelhaar/gatherly/internal/reporting/infrastructure/persistence"
	sharedApplication "github.com/felixgeelhaar/gatherly/internal/shared/application"
	"github.com/felixgeelhaar/gatherly/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/gatherly/internal/shared/infrastructure/outbox"
)

// Repositories groups the stores that share one database connection.
type Repositories struct {
	Members     membersDomain.Repository
	Meetings    meetingsDomain.Repository
	Invitations invitationsDomain.Repository
	Counts      reporting.CountStore
	Outbox      outbox.Repository
	UnitOfWork  sharedApplication.UnitOfWork
}

// NewRepositories creates the repositories for the connection's driver.
// Every SQL repository rebinds its queries per driver, so the same types
// serve PostgreSQL and SQLite.
func NewRepositories(conn database.Connection) (*Repositories, error) {
	if !conn.Driver().IsValid() {
		return nil, fmt.Errorf("unsupported driver: %s", conn.Driver())
	}
	return &Repositories{
		Members:     membersPersistence.NewSQLMemberRepository(conn),
		Meetings:    meetingsPersistence.NewSQLMeetingRepository(conn),
		Invitations: invitationsPersistence.NewSQLInvitationRepository(conn),
		Counts:      reportingPersistence.NewSQLCountStore(conn),
		Outbox:      outbox.NewSQLRepository(conn),
		UnitOfWork:  database.NewUnitOfWork(conn),
	}, nil
}
