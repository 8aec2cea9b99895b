package persistence

import (
	"context"
	"time"

	"github.com/felixgeelhaar/gatherly/internal/meetings/domain"
	"github.com/felixgeelhaar/gatherly/internal/shared/apperr"
	"github.com/felixgeelhaar/gatherly/internal/shared/infrastructure/database"
	"github.com/google/uuid"
)

const meetingColumns = `id, organizer_id, title, speaker, place, scheduled_at, agenda,
	visitor_fee, currency, deleted_at, created_at, updated_at`

// SQLMeetingRepository implements domain.Repository for Postgres and SQLite.
type SQLMeetingRepository struct {
	conn database.Connection
}

// NewSQLMeetingRepository creates a new meeting repository.
func NewSQLMeetingRepository(conn database.Connection) *SQLMeetingRepository {
	return &SQLMeetingRepository{conn: conn}
}

func (r *SQLMeetingRepository) exec(ctx context.Context) database.Executor {
	return database.ExecutorFromContext(ctx, r.conn)
}

func (r *SQLMeetingRepository) q(query string) string {
	return database.Rebind(r.conn.Driver(), query)
}

// Save inserts or updates the meeting row.
func (r *SQLMeetingRepository) Save(ctx context.Context, m *domain.Meeting) error {
	d := m.Details()
	var deletedAt *time.Time
	if m.DeletedAt() != nil {
		at := m.DeletedAt().UTC()
		deletedAt = &at
	}

	_, err := r.exec(ctx).Exec(ctx, r.q(`
		INSERT INTO meetings (`+meetingColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			title = excluded.title,
			speaker = excluded.speaker,
			place = excluded.place,
			scheduled_at = excluded.scheduled_at,
			agenda = excluded.agenda,
			visitor_fee = excluded.visitor_fee,
			currency = excluded.currency,
			deleted_at = excluded.deleted_at,
			updated_at = excluded.updated_at`),
		m.ID(), m.OrganizerID(), d.Title, d.Speaker, d.Place, d.ScheduledAt.UTC(), d.Agenda,
		m.VisitorFee(), m.Currency(), deletedAt, m.CreatedAt().UTC(), m.UpdatedAt().UTC(),
	)
	if err != nil {
		return apperr.Storage("save meeting", err)
	}
	return nil
}

// FindByID loads the meeting with its attendees and roster.
func (r *SQLMeetingRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Meeting, error) {
	exec := r.exec(ctx)

	snap, err := scanMeeting(exec.QueryRow(ctx, r.q(`SELECT `+meetingColumns+` FROM meetings WHERE id = ?`), id))
	if err != nil {
		if database.IsNoRows(err) {
			return nil, nil
		}
		return nil, apperr.Storage("load meeting", err)
	}

	snap.Attendees, err = r.ids(ctx, exec,
		`SELECT member_id FROM meeting_attendees WHERE meeting_id = ? ORDER BY registered_at, member_id`, id)
	if err != nil {
		return nil, apperr.Storage("load attendees", err)
	}

	snap.Invited, err = r.ids(ctx, exec,
		`SELECT invitation_id FROM meeting_invited WHERE meeting_id = ? ORDER BY position, added_at, invitation_id`, id)
	if err != nil {
		return nil, apperr.Storage("load roster", err)
	}

	return domain.RehydrateMeeting(snap), nil
}

// List returns meetings ordered by schedule.
func (r *SQLMeetingRepository) List(ctx context.Context, includeDeleted bool) ([]*domain.Meeting, error) {
	query := `SELECT ` + meetingColumns + ` FROM meetings`
	if !includeDeleted {
		query += ` WHERE deleted_at IS NULL`
	}
	query += ` ORDER BY scheduled_at, id`

	rows, err := r.exec(ctx).Query(ctx, r.q(query))
	if err != nil {
		return nil, apperr.Storage("list meetings", err)
	}
	defer rows.Close()

	var meetings []*domain.Meeting
	for rows.Next() {
		snap, err := scanMeeting(rows)
		if err != nil {
			return nil, apperr.Storage("scan meeting", err)
		}
		meetings = append(meetings, domain.RehydrateMeeting(snap))
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Storage("iterate meetings", err)
	}
	return meetings, nil
}

// AddAttendee records a registration.
func (r *SQLMeetingRepository) AddAttendee(ctx context.Context, meetingID, memberID uuid.UUID, at time.Time) (bool, error) {
	res, err := r.exec(ctx).Exec(ctx, r.q(`
		INSERT INTO meeting_attendees (meeting_id, member_id, registered_at)
		VALUES (?, ?, ?)
		ON CONFLICT (meeting_id, member_id) DO NOTHING`),
		meetingID, memberID, at.UTC())
	if err != nil {
		return false, apperr.Storage("add attendee", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, apperr.Storage("add attendee", err)
	}
	return n > 0, nil
}

// AppendToRoster appends invitationID after the current last roster entry.
// Concurrent appends may share a position; reads break ties by added_at.
func (r *SQLMeetingRepository) AppendToRoster(ctx context.Context, meetingID, invitationID uuid.UUID, at time.Time) (bool, error) {
	exec := r.exec(ctx)

	var last int64
	err := exec.QueryRow(ctx,
		r.q(`SELECT COALESCE(MAX(position), 0) FROM meeting_invited WHERE meeting_id = ?`), meetingID,
	).Scan(&last)
	if err != nil {
		return false, apperr.Storage("append to roster", err)
	}

	res, err := exec.Exec(ctx, r.q(`
		INSERT INTO meeting_invited (meeting_id, invitation_id, position, added_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (meeting_id, invitation_id) DO NOTHING`),
		meetingID, invitationID, last+1, at.UTC())
	if err != nil {
		return false, apperr.Storage("append to roster", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, apperr.Storage("append to roster", err)
	}
	return n > 0, nil
}

func (r *SQLMeetingRepository) ids(ctx context.Context, exec database.Executor, query string, meetingID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := exec.Query(ctx, r.q(query), meetingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func scanMeeting(row database.Row) (domain.Snapshot, error) {
	var s domain.Snapshot
	err := row.Scan(&s.ID, &s.OrganizerID, &s.Details.Title, &s.Details.Speaker, &s.Details.Place,
		&s.Details.ScheduledAt, &s.Details.Agenda, &s.VisitorFee, &s.Currency, &s.DeletedAt,
		&s.CreatedAt, &s.UpdatedAt)
	return s, err
}
