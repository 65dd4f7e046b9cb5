package shared

import "github.com/google/uuid"

// Role classifies a profile.
type Role string

const (
	RoleBuyer    Role = "buyer"
	RoleSupplier Role = "supplier"
	RoleAdmin    Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleBuyer, RoleSupplier, RoleAdmin:
		return true
	}
	return false
}

// Principal is the authenticated caller resolved by the auth gate.
type Principal struct {
	ProfileID uuid.UUID
	Email     string
	Role      Role
}

// IsAdmin reports whether the caller moderates the marketplace.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// Owns reports whether the caller is the owner referenced by ownerID.
func (p Principal) Owns(ownerID uuid.UUID) bool {
	return ownerID != uuid.Nil && p.ProfileID == ownerID
}
