package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/RohithAchar/oxm-sub002/internal/platform/db"
)

// Repository defines persistence operations for auth module.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (*Profile, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Profile, error)
	CreateProfile(ctx context.Context, p Profile) (*Profile, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, req UpdateProfileRequest) (*Profile, error)
	CreateSession(ctx context.Context, id string, profileID uuid.UUID, expiresAt time.Time, ip, ua string) error
	DeleteSession(ctx context.Context, id string) error
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const profileColumns = `id, email, password_hash, full_name, phone, avatar_url, role, is_active, created_at, updated_at`

func scanProfile(row pgx.Row) (*Profile, error) {
	var p Profile
	if err := row.Scan(&p.ID, &p.Email, &p.PasswordHash, &p.FullName, &p.Phone, &p.AvatarURL, &p.Role, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// FindByEmail fetches a profile by email.
func (r *PGRepository) FindByEmail(ctx context.Context, email string) (*Profile, error) {
	p, err := scanProfile(r.pool.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE email = $1`, email))
	if err != nil {
		return nil, db.Translate(err, "profile")
	}
	return p, nil
}

// FindByID fetches a profile by id.
func (r *PGRepository) FindByID(ctx context.Context, id uuid.UUID) (*Profile, error) {
	p, err := scanProfile(r.pool.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id))
	if err != nil {
		return nil, db.Translate(err, "profile")
	}
	return p, nil
}

// CreateProfile inserts a profile and returns the stored row.
func (r *PGRepository) CreateProfile(ctx context.Context, p Profile) (*Profile, error) {
	const query = `INSERT INTO profiles (email, password_hash, full_name, phone, role, is_active)
VALUES ($1, $2, $3, $4, $5, TRUE)
RETURNING ` + profileColumns
	created, err := scanProfile(r.pool.QueryRow(ctx, query, p.Email, p.PasswordHash, p.FullName, p.Phone, p.Role))
	if err != nil {
		return nil, db.Translate(err, "profile")
	}
	return created, nil
}

// UpdateProfile applies non-nil fields of req.
func (r *PGRepository) UpdateProfile(ctx context.Context, id uuid.UUID, req UpdateProfileRequest) (*Profile, error) {
	const query = `UPDATE profiles SET
	full_name = COALESCE($2, full_name),
	phone = COALESCE($3, phone),
	avatar_url = COALESCE($4, avatar_url),
	updated_at = NOW()
WHERE id = $1
RETURNING ` + profileColumns
	p, err := scanProfile(r.pool.QueryRow(ctx, query, id, req.FullName, req.Phone, req.AvatarURL))
	if err != nil {
		return nil, db.Translate(err, "profile")
	}
	return p, nil
}

// CreateSession persists a login session for auditing.
func (r *PGRepository) CreateSession(ctx context.Context, id string, profileID uuid.UUID, expiresAt time.Time, ip, ua string) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO login_sessions (id, profile_id, created_at, expires_at, ip, ua) VALUES ($1, $2, NOW(), $3, NULLIF($4, ''), NULLIF($5, ''))`,
		id, profileID, expiresAt.UTC(), ip, ua)
	return err
}

// DeleteSession removes a session record from the database.
func (r *PGRepository) DeleteSession(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM login_sessions WHERE id = $1`, id)
	return err
}

var _ Repository = (*PGRepository)(nil)
