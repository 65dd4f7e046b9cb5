package addresses

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/RohithAchar/oxm-sub002/internal/platform/db"
)

// Repository defines address persistence.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	List(ctx context.Context, profileID uuid.UUID) ([]Address, error)
	Get(ctx context.Context, id uuid.UUID) (*Address, error)
}

// TxRepository exposes address writes inside a transaction.
type TxRepository interface {
	// LockProfile serialises address writes for one profile until the
	// transaction ends.
	LockProfile(ctx context.Context, profileID uuid.UUID) error
	Count(ctx context.Context, profileID uuid.UUID) (int, error)
	ClearDefault(ctx context.Context, profileID uuid.UUID) error
	Insert(ctx context.Context, a Address) (*Address, error)
	Update(ctx context.Context, a Address) (*Address, error)
	Delete(ctx context.Context, id uuid.UUID) error
	PromoteLatest(ctx context.Context, profileID uuid.UUID) error
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

const addressColumns = `id, profile_id, label, contact_name, phone, line1, line2, city, state, pincode, is_default, created_at, updated_at`

func scanAddress(row pgx.Row) (*Address, error) {
	var a Address
	err := row.Scan(&a.ID, &a.ProfileID, &a.Label, &a.ContactName, &a.Phone, &a.Line1, &a.Line2, &a.City, &a.State,
		&a.Pincode, &a.IsDefault, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, db.Translate(err, "address")
	}
	return &a, nil
}

// List returns a profile's addresses, default first.
func (r *PGRepository) List(ctx context.Context, profileID uuid.UUID) ([]Address, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+addressColumns+` FROM user_addresses WHERE profile_id = $1 ORDER BY is_default DESC, created_at DESC`, profileID)
	if err != nil {
		return nil, fmt.Errorf("list addresses: %w", err)
	}
	defer rows.Close()
	var out []Address
	for rows.Next() {
		a, err := scanAddress(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

// Get loads an address.
func (r *PGRepository) Get(ctx context.Context, id uuid.UUID) (*Address, error) {
	return scanAddress(r.pool.QueryRow(ctx, `SELECT `+addressColumns+` FROM user_addresses WHERE id = $1`, id))
}

func (t *txRepo) LockProfile(ctx context.Context, profileID uuid.UUID) error {
	_, err := t.tx.Exec(ctx, `SELECT id FROM profiles WHERE id = $1 FOR UPDATE`, profileID)
	return err
}

func (t *txRepo) Count(ctx context.Context, profileID uuid.UUID) (int, error) {
	var n int
	err := t.tx.QueryRow(ctx, `SELECT COUNT(*) FROM user_addresses WHERE profile_id = $1`, profileID).Scan(&n)
	return n, err
}

func (t *txRepo) ClearDefault(ctx context.Context, profileID uuid.UUID) error {
	_, err := t.tx.Exec(ctx, `UPDATE user_addresses SET is_default = FALSE, updated_at = NOW() WHERE profile_id = $1 AND is_default`, profileID)
	return err
}

func (t *txRepo) Insert(ctx context.Context, a Address) (*Address, error) {
	query := `INSERT INTO user_addresses (profile_id, label, contact_name, phone, line1, line2, city, state, pincode, is_default)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING ` + addressColumns
	return scanAddress(t.tx.QueryRow(ctx, query, a.ProfileID, a.Label, a.ContactName, a.Phone, a.Line1, a.Line2, a.City, a.State, a.Pincode, a.IsDefault))
}

func (t *txRepo) Update(ctx context.Context, a Address) (*Address, error) {
	query := `UPDATE user_addresses SET label = $2, contact_name = $3, phone = $4, line1 = $5, line2 = $6, city = $7, state = $8,
pincode = $9, is_default = $10, updated_at = NOW()
WHERE id = $1
RETURNING ` + addressColumns
	return scanAddress(t.tx.QueryRow(ctx, query, a.ID, a.Label, a.ContactName, a.Phone, a.Line1, a.Line2, a.City, a.State, a.Pincode, a.IsDefault))
}

func (t *txRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := t.tx.Exec(ctx, `DELETE FROM user_addresses WHERE id = $1`, id)
	return err
}

func (t *txRepo) PromoteLatest(ctx context.Context, profileID uuid.UUID) error {
	_, err := t.tx.Exec(ctx, `UPDATE user_addresses SET is_default = TRUE, updated_at = NOW()
WHERE id = (SELECT id FROM user_addresses WHERE profile_id = $1 ORDER BY created_at DESC LIMIT 1)`, profileID)
	return err
}

var _ Repository = (*PGRepository)(nil)
