package persistence

import (
	"context"
	"strings"
	"time"

	"github.com/felixgeelhaar/gatherly/internal/members/domain"
	"github.com/felixgeelhaar/gatherly/internal/shared/apperr"
	"github.com/felixgeelhaar/gatherly/internal/shared/infrastructure/database"
	"github.com/google/uuid"
)

const memberColumns = `id, name, email, mobile, business_category, business_subcategory,
	community, created_at, updated_at`

// SQLMemberRepository implements domain.Repository for Postgres and SQLite.
type SQLMemberRepository struct {
	conn database.Connection
}

// NewSQLMemberRepository creates a new member repository.
func NewSQLMemberRepository(conn database.Connection) *SQLMemberRepository {
	return &SQLMemberRepository{conn: conn}
}

func (r *SQLMemberRepository) exec(ctx context.Context) database.Executor {
	return database.ExecutorFromContext(ctx, r.conn)
}

func (r *SQLMemberRepository) q(query string) string {
	return database.Rebind(r.conn.Driver(), query)
}

// Save inserts or updates a member.
func (r *SQLMemberRepository) Save(ctx context.Context, m *domain.Member) error {
	_, err := r.exec(ctx).Exec(ctx, r.q(`
		INSERT INTO members (`+memberColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			mobile = excluded.mobile,
			business_category = excluded.business_category,
			business_subcategory = excluded.business_subcategory,
			community = excluded.community,
			updated_at = excluded.updated_at`),
		m.ID(), m.Name(), m.Email(), m.Mobile(), m.BusinessCategory(), m.BusinessSubcategory(),
		m.IsCommunity(), m.CreatedAt().UTC(), m.UpdatedAt().UTC(),
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return domain.ErrMemberEmailTaken
		}
		return apperr.Storage("save member", err)
	}
	return nil
}

// FindByID returns the member with the given id.
func (r *SQLMemberRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Member, error) {
	row := r.exec(ctx).QueryRow(ctx, r.q(`SELECT `+memberColumns+` FROM members WHERE id = ?`), id)
	return r.scanOne(row)
}

// FindByEmail matches case-insensitively.
func (r *SQLMemberRepository) FindByEmail(ctx context.Context, email string) (*domain.Member, error) {
	row := r.exec(ctx).QueryRow(ctx,
		r.q(`SELECT `+memberColumns+` FROM members WHERE lower(email) = ?`),
		strings.ToLower(strings.TrimSpace(email)))
	return r.scanOne(row)
}

// FindByIDs returns the members that exist among ids, in no particular order.
func (r *SQLMemberRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Member, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ")

	rows, err := r.exec(ctx).Query(ctx,
		r.q(`SELECT `+memberColumns+` FROM members WHERE id IN (`+placeholders+`)`), args...)
	if err != nil {
		return nil, apperr.Storage("find members", err)
	}
	return r.scanAll(rows)
}

// ListCommunity returns community members ordered by name.
func (r *SQLMemberRepository) ListCommunity(ctx context.Context) ([]*domain.Member, error) {
	rows, err := r.exec(ctx).Query(ctx,
		r.q(`SELECT `+memberColumns+` FROM members WHERE community = ? ORDER BY name, id`), true)
	if err != nil {
		return nil, apperr.Storage("list community members", err)
	}
	return r.scanAll(rows)
}

func (r *SQLMemberRepository) scanOne(row database.Row) (*domain.Member, error) {
	m, err := scanMember(row)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, nil
		}
		return nil, apperr.Storage("load member", err)
	}
	return m, nil
}

func (r *SQLMemberRepository) scanAll(rows database.Rows) ([]*domain.Member, error) {
	defer rows.Close()

	var members []*domain.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, apperr.Storage("scan member", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Storage("iterate members", err)
	}
	return members, nil
}

func scanMember(row database.Row) (*domain.Member, error) {
	var (
		id                 uuid.UUID
		p                  domain.Profile
		createdAt, updated time.Time
	)
	if err := row.Scan(&id, &p.Name, &p.Email, &p.Mobile, &p.BusinessCategory,
		&p.BusinessSubcategory, &p.Community, &createdAt, &updated); err != nil {
		return nil, err
	}
	return domain.RehydrateMember(id, p, createdAt, updated), nil
}
