package notifications

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/RohithAchar/oxm-sub002/internal/platform/db"
	"github.com/RohithAchar/oxm-sub002/internal/shared"
)

// Repository defines persistence for notifications and receipts.
type Repository interface {
	ActiveSupplierIDs(ctx context.Context) ([]uuid.UUID, error)
	CreateWithReceipts(ctx context.Context, n Notification, recipients []uuid.UUID) (Notification, error)
	ListInbox(ctx context.Context, profileID uuid.UUID, filter InboxFilter) ([]InboxItem, int, error)
	UnreadCount(ctx context.Context, profileID uuid.UUID) (int, error)
	GetReceipt(ctx context.Context, id uuid.UUID) (Receipt, error)
	MarkRead(ctx context.Context, id uuid.UUID) error
	MarkAllRead(ctx context.Context, profileID uuid.UUID) (int64, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// ActiveSupplierIDs lists the profile ids of every active supplier.
func (r *PGRepository) ActiveSupplierIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, `SELECT id FROM profiles WHERE role = 'supplier' AND is_active ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list suppliers: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return nil, fmt.Errorf("scan suppliers: %w", err)
	}
	return ids, nil
}

// CreateWithReceipts inserts the notification and one receipt per recipient
// in a single transaction.
func (r *PGRepository) CreateWithReceipts(ctx context.Context, n Notification, recipients []uuid.UUID) (Notification, error) {
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		const insert = `INSERT INTO notifications (title, message, kind, link, created_by)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, created_at`
		if err := tx.QueryRow(ctx, insert, n.Title, n.Message, n.Kind, n.Link, n.CreatedBy).Scan(&n.ID, &n.CreatedAt); err != nil {
			return db.Translate(err, "notification")
		}
		rows := make([][]any, 0, len(recipients))
		for _, id := range recipients {
			rows = append(rows, []any{n.ID, id})
		}
		copied, err := tx.CopyFrom(ctx,
			pgx.Identifier{"notification_receipts"},
			[]string{"notification_id", "profile_id"},
			pgx.CopyFromRows(rows))
		if err != nil {
			return db.Translate(err, "notification receipts")
		}
		if copied != int64(len(recipients)) {
			return fmt.Errorf("notification receipts: copied %d of %d", copied, len(recipients))
		}
		return nil
	})
	if err != nil {
		return Notification{}, err
	}
	return n, nil
}

// ListInbox returns a page of the profile's receipts, newest first.
func (r *PGRepository) ListInbox(ctx context.Context, profileID uuid.UUID, filter InboxFilter) ([]InboxItem, int, error) {
	where := `WHERE r.profile_id = $1`
	if filter.UnreadOnly {
		where += ` AND r.read_at IS NULL`
	}
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM notification_receipts r `+where, profileID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count inbox: %w", err)
	}
	query := `SELECT r.id, n.id, n.title, n.message, n.kind, n.link, r.read_at, n.created_at
FROM notification_receipts r
JOIN notifications n ON n.id = r.notification_id
` + where + `
ORDER BY n.created_at DESC
LIMIT $2 OFFSET $3`
	rows, err := r.pool.Query(ctx, query, profileID, filter.PerPage, shared.Offset(filter.Page, filter.PerPage))
	if err != nil {
		return nil, 0, fmt.Errorf("list inbox: %w", err)
	}
	defer rows.Close()

	var items []InboxItem
	for rows.Next() {
		var item InboxItem
		if err := rows.Scan(&item.ReceiptID, &item.NotificationID, &item.Title, &item.Message, &item.Kind, &item.Link, &item.ReadAt, &item.CreatedAt); err != nil {
			return nil, 0, err
		}
		items = append(items, item)
	}
	return items, total, rows.Err()
}

// UnreadCount counts unread receipts.
func (r *PGRepository) UnreadCount(ctx context.Context, profileID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM notification_receipts WHERE profile_id = $1 AND read_at IS NULL`, profileID).Scan(&count)
	return count, err
}

// GetReceipt loads a receipt by id.
func (r *PGRepository) GetReceipt(ctx context.Context, id uuid.UUID) (Receipt, error) {
	var rc Receipt
	err := r.pool.QueryRow(ctx, `SELECT id, notification_id, profile_id, read_at FROM notification_receipts WHERE id = $1`, id).
		Scan(&rc.ID, &rc.NotificationID, &rc.ProfileID, &rc.ReadAt)
	if err != nil {
		return Receipt{}, db.Translate(err, "notification")
	}
	return rc, nil
}

// MarkRead stamps read_at when still unread.
func (r *PGRepository) MarkRead(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `UPDATE notification_receipts SET read_at = NOW() WHERE id = $1 AND read_at IS NULL`, id)
	return err
}

// MarkAllRead stamps every unread receipt of the profile.
func (r *PGRepository) MarkAllRead(ctx context.Context, profileID uuid.UUID) (int64, error) {
	tag, err := r.pool.Exec(ctx, `UPDATE notification_receipts SET read_at = NOW() WHERE profile_id = $1 AND read_at IS NULL`, profileID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

var _ Repository = (*PGRepository)(nil)
