package persistence

import (
	"context"

	"github.com/felixgeelhaar/gatherly/internal/reporting"
	"github.com/felixgeelhaar/gatherly/internal/shared/apperr"
	"github.com/felixgeelhaar/gatherly/internal/shared/infrastructure/database"
	"github.com/google/uuid"
)

// SQLCountStore implements reporting.CountStore over the invitations table.
type SQLCountStore struct {
	conn database.Connection
}

// NewSQLCountStore creates a new count store.
func NewSQLCountStore(conn database.Connection) *SQLCountStore {
	return &SQLCountStore{conn: conn}
}

// CountPaid counts confirmed invitations with a positive amount whose
// confirmation time falls inside bucket.
func (s *SQLCountStore) CountPaid(ctx context.Context, inviterID uuid.UUID, bucket reporting.Bucket) (reporting.Counts, error) {
	query := `
		SELECT COUNT(*), COUNT(DISTINCT lower(email))
		FROM invitations
		WHERE inviter_id = ? AND status = 'confirmed' AND amount > 0
		AND confirmed_at < ?`
	args := []any{inviterID, bucket.End.UTC()}
	if !bucket.Start.IsZero() {
		query += ` AND confirmed_at >= ?`
		args = append(args, bucket.Start.UTC())
	}

	var c reporting.Counts
	exec := database.ExecutorFromContext(ctx, s.conn)
	if err := exec.QueryRow(ctx, database.Rebind(s.conn.Driver(), query), args...).Scan(&c.Invitations, &c.People); err != nil {
		return reporting.Counts{}, apperr.Storage("count paid invitations", err)
	}
	return c, nil
}
