package suppliers

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/RohithAchar/oxm-sub002/internal/platform/db"
	"github.com/RohithAchar/oxm-sub002/internal/shared"
)

// Repository defines persistence for businesses and bank details.
type Repository interface {
	Create(ctx context.Context, b Business) (*Business, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Business, error)
	FindByProfile(ctx context.Context, profileID uuid.UUID) (*Business, error)
	Update(ctx context.Context, b Business) (*Business, error)
	List(ctx context.Context, filter ListFilter) ([]Business, int, error)
	SetStatus(ctx context.Context, id uuid.UUID, status Status, reason string) (*Business, error)
	UpsertBank(ctx context.Context, d BankDetails) (*BankDetails, error)
	FindBank(ctx context.Context, supplierID uuid.UUID) (*BankDetails, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const businessColumns = `id, profile_id, business_name, business_type, gstin, description, phone, email, city, state, logo_url, status, rejection_reason, verified_at, created_at, updated_at`

func scanBusiness(row pgx.Row) (*Business, error) {
	var b Business
	err := row.Scan(&b.ID, &b.ProfileID, &b.BusinessName, &b.BusinessType, &b.GSTIN, &b.Description, &b.Phone, &b.Email,
		&b.City, &b.State, &b.LogoURL, &b.Status, &b.RejectionReason, &b.VerifiedAt, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, db.Translate(err, "business")
	}
	return &b, nil
}

// Create inserts a business.
func (r *PGRepository) Create(ctx context.Context, b Business) (*Business, error) {
	query := `INSERT INTO supplier_businesses (profile_id, business_name, business_type, gstin, description, phone, email, city, state, logo_url)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING ` + businessColumns
	return scanBusiness(r.pool.QueryRow(ctx, query, b.ProfileID, b.BusinessName, b.BusinessType, b.GSTIN, b.Description,
		b.Phone, b.Email, b.City, b.State, b.LogoURL))
}

// FindByID loads a business.
func (r *PGRepository) FindByID(ctx context.Context, id uuid.UUID) (*Business, error) {
	return scanBusiness(r.pool.QueryRow(ctx, `SELECT `+businessColumns+` FROM supplier_businesses WHERE id = $1`, id))
}

// FindByProfile loads the business owned by a profile.
func (r *PGRepository) FindByProfile(ctx context.Context, profileID uuid.UUID) (*Business, error) {
	return scanBusiness(r.pool.QueryRow(ctx, `SELECT `+businessColumns+` FROM supplier_businesses WHERE profile_id = $1`, profileID))
}

// Update writes every mutable column.
func (r *PGRepository) Update(ctx context.Context, b Business) (*Business, error) {
	query := `UPDATE supplier_businesses SET business_name = $2, business_type = $3, gstin = $4, description = $5, phone = $6,
email = $7, city = $8, state = $9, logo_url = $10, status = $11, rejection_reason = $12, verified_at = $13, updated_at = NOW()
WHERE id = $1
RETURNING ` + businessColumns
	return scanBusiness(r.pool.QueryRow(ctx, query, b.ID, b.BusinessName, b.BusinessType, b.GSTIN, b.Description, b.Phone,
		b.Email, b.City, b.State, b.LogoURL, b.Status, b.RejectionReason, b.VerifiedAt))
}

func businessWhere(filter ListFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if filter.Status != "" {
		args = append(args, filter.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.City != "" {
		args = append(args, db.EscapeLike(filter.City))
		conds = append(conds, fmt.Sprintf("city ILIKE $%d ESCAPE '\\'", len(args)))
	}
	if filter.Search != "" {
		args = append(args, db.Contains(filter.Search))
		conds = append(conds, fmt.Sprintf("(business_name ILIKE $%[1]d ESCAPE '\\' OR description ILIKE $%[1]d ESCAPE '\\')", len(args)))
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// List returns a filtered page of businesses.
func (r *PGRepository) List(ctx context.Context, filter ListFilter) ([]Business, int, error) {
	where, args := businessWhere(filter)

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM supplier_businesses`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count businesses: %w", err)
	}
	args = append(args, filter.PerPage, shared.Offset(filter.Page, filter.PerPage))
	query := fmt.Sprintf(`SELECT %s FROM supplier_businesses%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		businessColumns, where, len(args)-1, len(args))
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list businesses: %w", err)
	}
	defer rows.Close()

	var out []Business
	for rows.Next() {
		b, err := scanBusiness(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *b)
	}
	return out, total, rows.Err()
}

// SetStatus records a moderation decision.
func (r *PGRepository) SetStatus(ctx context.Context, id uuid.UUID, status Status, reason string) (*Business, error) {
	query := `UPDATE supplier_businesses
SET status = $2, rejection_reason = $3,
    verified_at = CASE WHEN $2 = 'verified' THEN NOW() ELSE NULL END,
    updated_at = NOW()
WHERE id = $1
RETURNING ` + businessColumns
	return scanBusiness(r.pool.QueryRow(ctx, query, id, status, reason))
}

const bankColumns = `id, supplier_id, account_holder, account_number, ifsc, bank_name, branch, status, created_at, updated_at`

func scanBank(row pgx.Row) (*BankDetails, error) {
	var d BankDetails
	err := row.Scan(&d.ID, &d.SupplierID, &d.AccountHolder, &d.AccountNumber, &d.IFSC, &d.BankName, &d.Branch, &d.Status, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, db.Translate(err, "bank details")
	}
	return &d, nil
}

// UpsertBank inserts or replaces the payout account of a business.
func (r *PGRepository) UpsertBank(ctx context.Context, d BankDetails) (*BankDetails, error) {
	query := `INSERT INTO supplier_bank_details (supplier_id, account_holder, account_number, ifsc, bank_name, branch, status)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (supplier_id) DO UPDATE SET
    account_holder = EXCLUDED.account_holder,
    account_number = EXCLUDED.account_number,
    ifsc = EXCLUDED.ifsc,
    bank_name = EXCLUDED.bank_name,
    branch = EXCLUDED.branch,
    status = EXCLUDED.status,
    updated_at = NOW()
RETURNING ` + bankColumns
	return scanBank(r.pool.QueryRow(ctx, query, d.SupplierID, d.AccountHolder, d.AccountNumber, d.IFSC, d.BankName, d.Branch, d.Status))
}

// FindBank loads the payout account of a business.
func (r *PGRepository) FindBank(ctx context.Context, supplierID uuid.UUID) (*BankDetails, error) {
	return scanBank(r.pool.QueryRow(ctx, `SELECT `+bankColumns+` FROM supplier_bank_details WHERE supplier_id = $1`, supplierID))
}

var _ Repository = (*PGRepository)(nil)
