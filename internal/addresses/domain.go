// Package addresses stores delivery addresses per profile.
package addresses

import (
	"time"

	"github.com/google/uuid"
)

// Address is a delivery address. At most one per profile is the default.
type Address struct {
	ID          uuid.UUID `json:"id"`
	ProfileID   uuid.UUID `json:"profile_id"`
	Label       string    `json:"label,omitempty"`
	ContactName string    `json:"contact_name"`
	Phone       string    `json:"phone"`
	Line1       string    `json:"line1"`
	Line2       string    `json:"line2,omitempty"`
	City        string    `json:"city"`
	State       string    `json:"state"`
	Pincode     string    `json:"pincode"`
	IsDefault   bool      `json:"is_default"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// AddressInput is the payload for creating or replacing an address.
type AddressInput struct {
	Label       string `json:"label" validate:"max=50"`
	ContactName string `json:"contact_name" validate:"required,max=100"`
	Phone       string `json:"phone" validate:"required,numeric,len=10"`
	Line1       string `json:"line1" validate:"required,max=200"`
	Line2       string `json:"line2" validate:"max=200"`
	City        string `json:"city" validate:"required,max=100"`
	State       string `json:"state" validate:"required,max=100"`
	Pincode     string `json:"pincode" validate:"required,numeric,len=6"`
	IsDefault   bool   `json:"is_default"`
}
