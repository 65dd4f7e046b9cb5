package catalog

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

// Repository defines catalog persistence.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	GetProduct(ctx context.Context, id uuid.UUID) (*Product, error)
	ListProducts(ctx context.Context, filter ListFilter) ([]Product, int, error)
	SetProductActive(ctx context.Context, id uuid.UUID, active bool) error
	DeleteProduct(ctx context.Context, id uuid.UUID) error
}

// TxRepository exposes product writes inside a transaction.
type TxRepository interface {
	CreateProduct(ctx context.Context, p Product) (uuid.UUID, error)
	UpdateProduct(ctx context.Context, p Product) error
	DeleteChildren(ctx context.Context, productID uuid.UUID) error
	InsertChildren(ctx context.Context, productID uuid.UUID, images []Image, specs []Specification, tiers []PriceTier) error
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

// ============================================================================
// READS
// ============================================================================

const productSelect = `SELECT p.id, p.supplier_id, sb.business_name, sb.status = 'verified', p.name, p.description, p.category,
p.brand, p.unit, p.moq, p.base_price, p.currency, p.colors, p.sizes, p.is_active, p.created_at, p.updated_at
FROM products p
JOIN supplier_businesses sb ON sb.id = p.supplier_id`

func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.SupplierID, &p.SupplierName, &p.SupplierVerified, &p.Name, &p.Description, &p.Category,
		&p.Brand, &p.Unit, &p.MOQ, &p.BasePrice, &p.Currency, &p.Colors, &p.Sizes, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, db.Translate(err, "product")
	}
	return &p, nil
}

// GetProduct loads a product with its child rows.
func (r *PGRepository) GetProduct(ctx context.Context, id uuid.UUID) (*Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx, productSelect+` WHERE p.id = $1`, id))
	if err != nil {
		return nil, err
	}
	products := []Product{*p}
	if err := r.loadChildren(ctx, products); err != nil {
		return nil, err
	}
	return &products[0], nil
}

// productWhere builds the WHERE clause for ListProducts. User text is
// matched literally.
func productWhere(filter ListFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if filter.PublicOnly {
		conds = append(conds, "p.is_active", "sb.status = 'verified'")
	}
	if filter.SupplierID != nil {
		args = append(args, *filter.SupplierID)
		conds = append(conds, fmt.Sprintf("p.supplier_id = $%d", len(args)))
	}
	if filter.Category != "" {
		args = append(args, db.EscapeLike(filter.Category))
		conds = append(conds, fmt.Sprintf("p.category ILIKE $%d ESCAPE '\\'", len(args)))
	}
	if filter.Search != "" {
		args = append(args, db.Contains(filter.Search))
		conds = append(conds, fmt.Sprintf("(p.name ILIKE $%[1]d ESCAPE '\\' OR p.description ILIKE $%[1]d ESCAPE '\\' OR p.brand ILIKE $%[1]d ESCAPE '\\')", len(args)))
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// ListProducts returns a filtered page of products with child rows.
func (r *PGRepository) ListProducts(ctx context.Context, filter ListFilter) ([]Product, int, error) {
	where, args := productWhere(filter)

	var total int
	countQuery := `SELECT COUNT(*) FROM products p JOIN supplier_businesses sb ON sb.id = p.supplier_id` + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	args = append(args, filter.PerPage, shared.Offset(filter.Page, filter.PerPage))
	query := fmt.Sprintf(`%s%s ORDER BY p.created_at DESC LIMIT $%d OFFSET $%d`, productSelect, where, len(args)-1, len(args))
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	var products []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			rows.Close()
			return nil, 0, err
		}
		products = append(products, *p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if err := r.loadChildren(ctx, products); err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// loadChildren fills images, specifications and tiers for products in place.
func (r *PGRepository) loadChildren(ctx context.Context, products []Product) error {
	if len(products) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(products))
	index := make(map[uuid.UUID]int, len(products))
	for i := range products {
		ids[i] = products[i].ID
		index[products[i].ID] = i
		products[i].Images = []Image{}
		products[i].Specifications = []Specification{}
		products[i].PriceTiers = []PriceTier{}
	}

	rows, err := r.pool.Query(ctx, `SELECT product_id, url, position FROM product_images WHERE product_id = ANY($1) ORDER BY position`, ids)
	if err != nil {
		return fmt.Errorf("load images: %w", err)
	}
	for rows.Next() {
		var (
			pid uuid.UUID
			img Image
		)
		if err := rows.Scan(&pid, &img.URL, &img.Position); err != nil {
			rows.Close()
			return err
		}
		products[index[pid]].Images = append(products[index[pid]].Images, img)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = r.pool.Query(ctx, `SELECT product_id, name, value FROM product_specifications WHERE product_id = ANY($1) ORDER BY position`, ids)
	if err != nil {
		return fmt.Errorf("load specifications: %w", err)
	}
	for rows.Next() {
		var (
			pid  uuid.UUID
			spec Specification
		)
		if err := rows.Scan(&pid, &spec.Name, &spec.Value); err != nil {
			rows.Close()
			return err
		}
		products[index[pid]].Specifications = append(products[index[pid]].Specifications, spec)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = r.pool.Query(ctx, `SELECT product_id, min_qty, max_qty, unit_price FROM product_price_tiers WHERE product_id = ANY($1) ORDER BY min_qty`, ids)
	if err != nil {
		return fmt.Errorf("load price tiers: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			pid  uuid.UUID
			tier PriceTier
		)
		if err := rows.Scan(&pid, &tier.MinQty, &tier.MaxQty, &tier.UnitPrice); err != nil {
			return err
		}
		products[index[pid]].PriceTiers = append(products[index[pid]].PriceTiers, tier)
	}
	return rows.Err()
}

// SetProductActive toggles visibility.
func (r *PGRepository) SetProductActive(ctx context.Context, id uuid.UUID, active bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE products SET is_active = $2, updated_at = NOW() WHERE id = $1`, id, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return db.Translate(pgx.ErrNoRows, "product")
	}
	return nil
}

// DeleteProduct removes a product; child rows cascade.
func (r *PGRepository) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return db.Translate(err, "product")
	}
	if tag.RowsAffected() == 0 {
		return db.Translate(pgx.ErrNoRows, "product")
	}
	return nil
}

// ============================================================================
// TRANSACTIONAL WRITES
// ============================================================================

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func (t *txRepo) CreateProduct(ctx context.Context, p Product) (uuid.UUID, error) {
	const query = `INSERT INTO products (supplier_id, name, description, category, brand, unit, moq, base_price, currency, colors, sizes, is_active)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
RETURNING id`
	var id uuid.UUID
	err := t.tx.QueryRow(ctx, query, p.SupplierID, p.Name, p.Description, p.Category, p.Brand, p.Unit, p.MOQ,
		p.BasePrice, p.Currency, nonNil(p.Colors), nonNil(p.Sizes), p.IsActive).Scan(&id)
	if err != nil {
		return uuid.Nil, db.Translate(err, "product")
	}
	return id, nil
}

func (t *txRepo) UpdateProduct(ctx context.Context, p Product) error {
	const query = `UPDATE products SET name = $2, description = $3, category = $4, brand = $5, unit = $6, moq = $7,
base_price = $8, currency = $9, colors = $10, sizes = $11, updated_at = NOW()
WHERE id = $1`
	tag, err := t.tx.Exec(ctx, query, p.ID, p.Name, p.Description, p.Category, p.Brand, p.Unit, p.MOQ,
		p.BasePrice, p.Currency, nonNil(p.Colors), nonNil(p.Sizes))
	if err != nil {
		return db.Translate(err, "product")
	}
	if tag.RowsAffected() == 0 {
		return db.Translate(pgx.ErrNoRows, "product")
	}
	return nil
}

func (t *txRepo) DeleteChildren(ctx context.Context, productID uuid.UUID) error {
	for _, table := range []string{"product_images", "product_specifications", "product_price_tiers"} {
		if _, err := t.tx.Exec(ctx, `DELETE FROM `+table+` WHERE product_id = $1`, productID); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}

func (t *txRepo) InsertChildren(ctx context.Context, productID uuid.UUID, images []Image, specs []Specification, tiers []PriceTier) error {
	batch := &pgx.Batch{}
	for _, img := range images {
		batch.Queue(`INSERT INTO product_images (product_id, url, position) VALUES ($1, $2, $3)`, productID, img.URL, img.Position)
	}
	for i, spec := range specs {
		batch.Queue(`INSERT INTO product_specifications (product_id, name, value, position) VALUES ($1, $2, $3, $4)`, productID, spec.Name, spec.Value, i)
	}
	for _, tier := range tiers {
		batch.Queue(`INSERT INTO product_price_tiers (product_id, min_qty, max_qty, unit_price) VALUES ($1, $2, $3, $4)`, productID, tier.MinQty, tier.MaxQty, tier.UnitPrice)
	}
	if batch.Len() == 0 {
		return nil
	}
	results := t.tx.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			return db.Translate(err, "product details")
		}
	}
	return results.Close()
}

var _ Repository = (*PGRepository)(nil)
