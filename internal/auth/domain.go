package auth

import (
	"time"

	"github.com/google/uuid"

	"github.com/RohithAchar/oxm-sub002/internal/shared"
)

// Profile represents a marketplace account.
type Profile struct {
	ID           uuid.UUID   `json:"id"`
	Email        string      `json:"email"`
	PasswordHash string      `json:"-"`
	FullName     string      `json:"full_name"`
	Phone        string      `json:"phone"`
	AvatarURL    string      `json:"avatar_url"`
	Role         shared.Role `json:"role"`
	IsActive     bool        `json:"is_active"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// Principal converts the profile into the caller identity kept in context.
func (p *Profile) Principal() shared.Principal {
	return shared.Principal{ProfileID: p.ID, Email: p.Email, Role: p.Role}
}

// RegisterRequest is the payload for self sign-up. Admins are seeded, never registered.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	FullName string `json:"full_name" validate:"required,max=120"`
	Phone    string `json:"phone" validate:"omitempty,numeric,len=10"`
	Role     string `json:"role" validate:"required,oneof=buyer supplier"`
}

// LoginRequest carries credentials.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateProfileRequest patches editable profile fields.
type UpdateProfileRequest struct {
	FullName  *string `json:"full_name,omitempty" validate:"omitempty,min=1,max=120"`
	Phone     *string `json:"phone,omitempty" validate:"omitempty,numeric,len=10"`
	AvatarURL *string `json:"avatar_url,omitempty" validate:"omitempty,url"`
}
