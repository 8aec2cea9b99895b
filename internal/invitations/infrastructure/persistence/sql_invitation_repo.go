package persistence

import (
	"context"
	"strings"
	"time"

	"github.com/felixgeelhaar/gatherly/internal/invitations/domain"
	"github.com/felixgeelhaar/gatherly/internal/shared/apperr"
	"github.com/felixgeelhaar/gatherly/internal/shared/infrastructure/database"
	"github.com/google/uuid"
)

var invitationColumnNames = []string{
	"id", "meeting_id", "inviter_id", "email", "visitor_name", "business_category",
	"business_subcategory", "mobile", "amount", "currency", "status", "payment_link_id",
	"payment_link", "payment_id", "cancel_reason", "confirmed_at", "cancelled_at",
	"created_at", "updated_at",
}

var (
	invitationColumns  = strings.Join(invitationColumnNames, ", ")
	invitationColumnsI = "i." + strings.Join(invitationColumnNames, ", i.")
)

// SQLInvitationRepository implements domain.Repository for Postgres and SQLite.
type SQLInvitationRepository struct {
	conn database.Connection
}

// NewSQLInvitationRepository creates a new invitation repository.
func NewSQLInvitationRepository(conn database.Connection) *SQLInvitationRepository {
	return &SQLInvitationRepository{conn: conn}
}

func (r *SQLInvitationRepository) exec(ctx context.Context) database.Executor {
	return database.ExecutorFromContext(ctx, r.conn)
}

func (r *SQLInvitationRepository) q(query string) string {
	return database.Rebind(r.conn.Driver(), query)
}

// Insert checks for a live duplicate and inserts in one transaction. On
// Postgres the meeting's advisory lock serializes concurrent inserts; SQLite
// runs on a single connection so transactions are already serial.
func (r *SQLInvitationRepository) Insert(ctx context.Context, inv *domain.Invitation) error {
	if database.InTx(ctx) {
		return r.insert(ctx, inv)
	}

	uow := database.NewUnitOfWork(r.conn)
	txCtx, err := uow.Begin(ctx)
	if err != nil {
		return apperr.Storage("begin transaction", err)
	}
	if err := r.insert(txCtx, inv); err != nil {
		_ = uow.Rollback(txCtx)
		return err
	}
	if err := uow.Commit(txCtx); err != nil {
		return apperr.Storage("commit transaction", err)
	}
	return nil
}

func (r *SQLInvitationRepository) insert(ctx context.Context, inv *domain.Invitation) error {
	exec := r.exec(ctx)

	if r.conn.Driver() == database.DriverPostgres {
		if _, err := exec.Exec(ctx, r.q(`SELECT pg_advisory_xact_lock(hashtext(?))`), "invitations:"+inv.MeetingID().String()); err != nil {
			return apperr.Storage("lock meeting invitations", err)
		}
	}

	existing, err := r.FindActiveByContact(ctx, inv.MeetingID(), inv.Email(), inv.Invitee().Mobile)
	if err != nil {
		return err
	}
	if existing != nil {
		return domain.ErrDuplicateInvitation
	}

	invitee := inv.Invitee()
	_, err = exec.Exec(ctx, r.q(`
		INSERT INTO invitations (`+invitationColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		inv.ID(), inv.MeetingID(), inv.InviterID(), invitee.Email, invitee.VisitorName,
		invitee.BusinessCategory, invitee.BusinessSubcategory, invitee.Mobile,
		inv.Amount(), inv.Currency(), string(inv.Status()),
		nullString(inv.PaymentLinkID()), nullString(inv.PaymentLink()), nullString(inv.PaymentID()),
		nullString(inv.CancelReason()), nullTime(inv.ConfirmedAt()), nullTime(inv.CancelledAt()),
		inv.CreatedAt().UTC(), inv.UpdatedAt().UTC(),
	)
	if err != nil {
		return apperr.Storage("insert invitation", err)
	}
	return nil
}

// FindByID returns the invitation with the given id.
func (r *SQLInvitationRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Invitation, error) {
	return r.findOne(ctx, `SELECT `+invitationColumns+` FROM invitations WHERE id = ?`, id)
}

// FindActiveByContact matches email case-insensitively, or mobile when given.
func (r *SQLInvitationRepository) FindActiveByContact(ctx context.Context, meetingID uuid.UUID, email, mobile string) (*domain.Invitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM invitations
		WHERE meeting_id = ? AND status <> 'cancelled' AND (lower(email) = ?`
	args := []any{meetingID, strings.ToLower(strings.TrimSpace(email))}
	if mobile = strings.TrimSpace(mobile); mobile != "" {
		query += ` OR mobile = ?`
		args = append(args, mobile)
	}
	query += `) ORDER BY created_at LIMIT 1`

	return r.findOne(ctx, query, args...)
}

// FindByPaymentLinkID returns the invitation holding linkID.
func (r *SQLInvitationRepository) FindByPaymentLinkID(ctx context.Context, linkID string) (*domain.Invitation, error) {
	if linkID == "" {
		return nil, nil
	}
	return r.findOne(ctx, `SELECT `+invitationColumns+` FROM invitations WHERE payment_link_id = ?`, linkID)
}

// FindByPaymentLinkSuffix matches links ending in "/<suffix>".
func (r *SQLInvitationRepository) FindByPaymentLinkSuffix(ctx context.Context, suffix string) (*domain.Invitation, error) {
	if suffix == "" {
		return nil, nil
	}
	escaped := strings.NewReplacer("!", "!!", "%", "!%", "_", "!_").Replace(suffix)
	return r.findOne(ctx, `SELECT `+invitationColumns+` FROM invitations
		WHERE payment_link LIKE ? ESCAPE '!'
		ORDER BY created_at LIMIT 1`, "%/"+escaped)
}

// ListByMeeting returns the meeting's invitations in creation order.
func (r *SQLInvitationRepository) ListByMeeting(ctx context.Context, meetingID uuid.UUID) ([]*domain.Invitation, error) {
	return r.findAll(ctx, `SELECT `+invitationColumns+` FROM invitations
		WHERE meeting_id = ? ORDER BY created_at, id`, meetingID)
}

// ListConfirmedOffRoster returns confirmed invitations missing from the roster.
func (r *SQLInvitationRepository) ListConfirmedOffRoster(ctx context.Context, meetingID uuid.UUID) ([]*domain.Invitation, error) {
	query := `SELECT ` + invitationColumnsI + ` FROM invitations i
		WHERE i.status = 'confirmed'
		AND NOT EXISTS (
			SELECT 1 FROM meeting_invited mi
			WHERE mi.meeting_id = i.meeting_id AND mi.invitation_id = i.id
		)`
	var args []any
	if meetingID != uuid.Nil {
		query += ` AND i.meeting_id = ?`
		args = append(args, meetingID)
	}
	query += ` ORDER BY i.confirmed_at, i.id`
	return r.findAll(ctx, query, args...)
}

// SetPaymentLink stores the link when the invitation is pending and has none.
func (r *SQLInvitationRepository) SetPaymentLink(ctx context.Context, inv *domain.Invitation) (bool, error) {
	res, err := r.exec(ctx).Exec(ctx, r.q(`
		UPDATE invitations
		SET payment_link_id = ?, payment_link = ?, updated_at = ?
		WHERE id = ? AND payment_link_id IS NULL AND status = 'pending'`),
		inv.PaymentLinkID(), inv.PaymentLink(), inv.UpdatedAt().UTC(), inv.ID())
	if err != nil {
		return false, apperr.Storage("set payment link", err)
	}
	return affected(res, "set payment link")
}

// TransitionStatus is a compare-and-set on status.
func (r *SQLInvitationRepository) TransitionStatus(ctx context.Context, inv *domain.Invitation, from domain.Status) (bool, error) {
	res, err := r.exec(ctx).Exec(ctx, r.q(`
		UPDATE invitations
		SET status = ?, payment_id = ?, confirmed_at = ?, cancelled_at = ?, cancel_reason = ?, updated_at = ?
		WHERE id = ? AND status = ?`),
		string(inv.Status()), nullString(inv.PaymentID()), nullTime(inv.ConfirmedAt()),
		nullTime(inv.CancelledAt()), nullString(inv.CancelReason()), inv.UpdatedAt().UTC(),
		inv.ID(), string(from))
	if err != nil {
		return false, apperr.Storage("transition invitation status", err)
	}
	return affected(res, "transition invitation status")
}

func (r *SQLInvitationRepository) findOne(ctx context.Context, query string, args ...any) (*domain.Invitation, error) {
	inv, err := scanInvitation(r.exec(ctx).QueryRow(ctx, r.q(query), args...))
	if err != nil {
		if database.IsNoRows(err) {
			return nil, nil
		}
		return nil, apperr.Storage("load invitation", err)
	}
	return inv, nil
}

func (r *SQLInvitationRepository) findAll(ctx context.Context, query string, args ...any) ([]*domain.Invitation, error) {
	rows, err := r.exec(ctx).Query(ctx, r.q(query), args...)
	if err != nil {
		return nil, apperr.Storage("list invitations", err)
	}
	defer rows.Close()

	var out []*domain.Invitation
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, apperr.Storage("scan invitation", err)
		}
		out = append(out, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Storage("iterate invitations", err)
	}
	return out, nil
}

func scanInvitation(row database.Row) (*domain.Invitation, error) {
	var (
		s                                     domain.Snapshot
		status                                string
		linkID, link, paymentID, cancelReason *string
	)
	err := row.Scan(&s.ID, &s.MeetingID, &s.InviterID, &s.Invitee.Email, &s.Invitee.VisitorName,
		&s.Invitee.BusinessCategory, &s.Invitee.BusinessSubcategory, &s.Invitee.Mobile,
		&s.Amount, &s.Currency, &status, &linkID, &link, &paymentID, &cancelReason,
		&s.ConfirmedAt, &s.CancelledAt, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}

	s.Status = domain.Status(status)
	s.PaymentLinkID = deref(linkID)
	s.PaymentLink = deref(link)
	s.PaymentID = deref(paymentID)
	s.CancelReason = deref(cancelReason)
	return domain.RehydrateInvitation(s), nil
}

func affected(res database.Result, op string) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, apperr.Storage(op, err)
	}
	return n > 0, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
