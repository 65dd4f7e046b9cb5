package support

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/RohithAchar/oxm-sub002/internal/platform/db"
	"github.com/RohithAchar/oxm-sub002/internal/platform/httpx"
	"github.com/RohithAchar/oxm-sub002/internal/shared"
)

// Repository defines ticket persistence.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	GetTicket(ctx context.Context, id uuid.UUID) (*Ticket, error)
	ListTickets(ctx context.Context, filter ListFilter) ([]Ticket, int, error)
	ListMessages(ctx context.Context, ticketID uuid.UUID) ([]Message, error)
	SetStatus(ctx context.Context, id uuid.UUID, status Status) (*Ticket, error)
}

// TxRepository exposes ticket writes inside a transaction.
type TxRepository interface {
	CreateTicket(ctx context.Context, t Ticket) (*Ticket, error)
	AddMessage(ctx context.Context, m Message) (*Message, error)
	// TouchTicket fails with a validation error once the ticket is closed.
	TouchTicket(ctx context.Context, id uuid.UUID, status Status) error
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

type txRepo struct {
	tx pgx.Tx
}

// WithTx runs fn inside a read-committed transaction.
func (r *PGRepository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepo{tx: tx})
	})
}

const ticketColumns = `id, profile_id, subject, category, priority, status, created_at, updated_at`

func scanTicket(row pgx.Row) (*Ticket, error) {
	var t Ticket
	if err := row.Scan(&t.ID, &t.ProfileID, &t.Subject, &t.Category, &t.Priority, &t.Status, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, db.Translate(err, "ticket")
	}
	return &t, nil
}

// GetTicket loads a ticket without its messages.
func (r *PGRepository) GetTicket(ctx context.Context, id uuid.UUID) (*Ticket, error) {
	return scanTicket(r.pool.QueryRow(ctx, `SELECT `+ticketColumns+` FROM support_tickets WHERE id = $1`, id))
}

// ListTickets returns a page of tickets, most recently active first.
func (r *PGRepository) ListTickets(ctx context.Context, filter ListFilter) ([]Ticket, int, error) {
	var (
		conds []string
		args  []any
	)
	if filter.ProfileID != nil {
		args = append(args, *filter.ProfileID)
		conds = append(conds, fmt.Sprintf("profile_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM support_tickets`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count tickets: %w", err)
	}
	args = append(args, filter.PerPage, shared.Offset(filter.Page, filter.PerPage))
	query := fmt.Sprintf(`SELECT %s FROM support_tickets%s ORDER BY updated_at DESC LIMIT $%d OFFSET $%d`, ticketColumns, where, len(args)-1, len(args))
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list tickets: %w", err)
	}
	defer rows.Close()
	var out []Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *t)
	}
	return out, total, rows.Err()
}

// ListMessages returns a thread oldest first.
func (r *PGRepository) ListMessages(ctx context.Context, ticketID uuid.UUID) ([]Message, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, ticket_id, sender_id, body, is_staff, created_at FROM support_messages WHERE ticket_id = $1 ORDER BY created_at`, ticketID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()
	var out []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.TicketID, &m.SenderID, &m.Body, &m.IsStaff, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// SetStatus changes the ticket status.
func (r *PGRepository) SetStatus(ctx context.Context, id uuid.UUID, status Status) (*Ticket, error) {
	return scanTicket(r.pool.QueryRow(ctx, `UPDATE support_tickets SET status = $2, updated_at = NOW() WHERE id = $1 RETURNING `+ticketColumns, id, status))
}

func (t *txRepo) CreateTicket(ctx context.Context, tk Ticket) (*Ticket, error) {
	query := `INSERT INTO support_tickets (profile_id, subject, category, priority) VALUES ($1, $2, $3, $4) RETURNING ` + ticketColumns
	return scanTicket(t.tx.QueryRow(ctx, query, tk.ProfileID, tk.Subject, tk.Category, tk.Priority))
}

func (t *txRepo) AddMessage(ctx context.Context, m Message) (*Message, error) {
	const query = `INSERT INTO support_messages (ticket_id, sender_id, body, is_staff) VALUES ($1, $2, $3, $4) RETURNING id, created_at`
	if err := t.tx.QueryRow(ctx, query, m.TicketID, m.SenderID, m.Body, m.IsStaff).Scan(&m.ID, &m.CreatedAt); err != nil {
		return nil, db.Translate(err, "message")
	}
	return &m, nil
}

func (t *txRepo) TouchTicket(ctx context.Context, id uuid.UUID, status Status) error {
	tag, err := t.tx.Exec(ctx, `UPDATE support_tickets SET status = $2, updated_at = NOW() WHERE id = $1 AND status <> 'closed'`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.Invalid("ticket is closed")
	}
	return nil
}

var _ Repository = (*PGRepository)(nil)
