package leads

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/RohithAchar/oxm-sub002/internal/platform/db"
	"github.com/RohithAchar/oxm-sub002/internal/platform/httpx"
	"github.com/RohithAchar/oxm-sub002/internal/shared"
)

// Repository defines lead persistence.
type Repository interface {
	Create(ctx context.Context, l Lead) (*Lead, error)
	Get(ctx context.Context, id uuid.UUID) (*Lead, error)
	List(ctx context.Context, filter ListFilter) ([]Lead, int, error)
	Respond(ctx context.Context, id uuid.UUID, message string, quoted *float64) (*Lead, error)
	SetStatus(ctx context.Context, id uuid.UUID, status Status) (*Lead, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const leadColumns = `id, buyer_id, supplier_id, product_id, product_name, quantity, unit, target_price, estimated_unit_price,
estimated_total, delivery_city, requirements, status, quoted_price, supplier_response, responded_at, created_at, updated_at`

func scanLead(row pgx.Row) (*Lead, error) {
	var l Lead
	err := row.Scan(&l.ID, &l.BuyerID, &l.SupplierID, &l.ProductID, &l.ProductName, &l.Quantity, &l.Unit, &l.TargetPrice,
		&l.EstimatedUnitPrice, &l.EstimatedTotal, &l.DeliveryCity, &l.Requirements, &l.Status, &l.QuotedPrice, &l.SupplierResponse,
		&l.RespondedAt, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, db.Translate(err, "lead")
	}
	return &l, nil
}

// Create inserts a lead.
func (r *PGRepository) Create(ctx context.Context, l Lead) (*Lead, error) {
	query := `INSERT INTO buy_leads (buyer_id, supplier_id, product_id, product_name, quantity, unit, target_price,
estimated_unit_price, estimated_total, delivery_city, requirements)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
RETURNING ` + leadColumns
	return scanLead(r.pool.QueryRow(ctx, query, l.BuyerID, l.SupplierID, l.ProductID, l.ProductName, l.Quantity, l.Unit,
		l.TargetPrice, l.EstimatedUnitPrice, l.EstimatedTotal, l.DeliveryCity, l.Requirements))
}

// Get loads a lead.
func (r *PGRepository) Get(ctx context.Context, id uuid.UUID) (*Lead, error) {
	return scanLead(r.pool.QueryRow(ctx, `SELECT `+leadColumns+` FROM buy_leads WHERE id = $1`, id))
}

// List returns a filtered page of leads, newest first.
func (r *PGRepository) List(ctx context.Context, filter ListFilter) ([]Lead, int, error) {
	var (
		conds []string
		args  []any
	)
	if filter.BuyerID != nil {
		args = append(args, *filter.BuyerID)
		conds = append(conds, fmt.Sprintf("buyer_id = $%d", len(args)))
	}
	if filter.SupplierID != nil {
		args = append(args, *filter.SupplierID)
		conds = append(conds, fmt.Sprintf("supplier_id = $%d", len(args)))
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
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM buy_leads`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count leads: %w", err)
	}
	args = append(args, filter.PerPage, shared.Offset(filter.Page, filter.PerPage))
	query := fmt.Sprintf(`SELECT %s FROM buy_leads%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, leadColumns, where, len(args)-1, len(args))
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list leads: %w", err)
	}
	defer rows.Close()

	var out []Lead
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *l)
	}
	return out, total, rows.Err()
}

// Respond stores a supplier quote while the lead is still open.
func (r *PGRepository) Respond(ctx context.Context, id uuid.UUID, message string, quoted *float64) (*Lead, error) {
	query := `UPDATE buy_leads
SET status = 'responded', supplier_response = $2, quoted_price = COALESCE($3, quoted_price), responded_at = NOW(), updated_at = NOW()
WHERE id = $1 AND status IN ('open', 'responded')
RETURNING ` + leadColumns
	return staleAsInvalid(scanLead(r.pool.QueryRow(ctx, query, id, message, quoted)))
}

// SetStatus closes or cancels a lead that is still open.
func (r *PGRepository) SetStatus(ctx context.Context, id uuid.UUID, status Status) (*Lead, error) {
	query := `UPDATE buy_leads SET status = $2, updated_at = NOW()
WHERE id = $1 AND status IN ('open', 'responded')
RETURNING ` + leadColumns
	return staleAsInvalid(scanLead(r.pool.QueryRow(ctx, query, id, status)))
}

// staleAsInvalid reports a guarded update that matched nothing as a status
// conflict; the caller has already loaded the lead.
func staleAsInvalid(l *Lead, err error) (*Lead, error) {
	if errors.Is(err, httpx.ErrNotFound) {
		return nil, httpx.Invalid("lead is no longer open")
	}
	return l, err
}

var _ Repository = (*PGRepository)(nil)
