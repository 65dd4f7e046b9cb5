// Package leads implements buy leads (requests for quote) raised by buyers
// against a supplier or one of its products.
package leads

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a lead.
type Status string

const (
	StatusOpen      Status = "open"
	StatusResponded Status = "responded"
	StatusClosed    Status = "closed"
	StatusCancelled Status = "cancelled"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusResponded, StatusClosed, StatusCancelled:
		return true
	}
	return false
}

// CanTransition reports whether a lead may move from one status to another.
// Suppliers may respond repeatedly until the buyer closes or cancels.
func CanTransition(from, to Status) bool {
	switch to {
	case StatusResponded, StatusClosed, StatusCancelled:
		return from == StatusOpen || from == StatusResponded
	}
	return false
}

// Lead is a buyer's request for quote.
type Lead struct {
	ID                 uuid.UUID  `json:"id"`
	BuyerID            uuid.UUID  `json:"buyer_id"`
	SupplierID         uuid.UUID  `json:"supplier_id"`
	ProductID          *uuid.UUID `json:"product_id,omitempty"`
	ProductName        string     `json:"product_name"`
	Quantity           int        `json:"quantity"`
	Unit               string     `json:"unit"`
	TargetPrice        *float64   `json:"target_price,omitempty"`
	EstimatedUnitPrice *float64   `json:"estimated_unit_price,omitempty"`
	EstimatedTotal     *float64   `json:"estimated_total,omitempty"`
	DeliveryCity       string     `json:"delivery_city,omitempty"`
	Requirements       string     `json:"requirements,omitempty"`
	Status             Status     `json:"status"`
	QuotedPrice        *float64   `json:"quoted_price,omitempty"`
	SupplierResponse   string     `json:"supplier_response,omitempty"`
	RespondedAt        *time.Time `json:"responded_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// CreateRequest is the payload for a new lead. Either ProductID or
// SupplierID must be set.
type CreateRequest struct {
	ProductID    *uuid.UUID `json:"product_id"`
	SupplierID   *uuid.UUID `json:"supplier_id"`
	ProductName  string     `json:"product_name" validate:"max=200"`
	Quantity     int        `json:"quantity" validate:"required,gt=0"`
	Unit         string     `json:"unit" validate:"max=30"`
	TargetPrice  *float64   `json:"target_price" validate:"omitempty,gt=0"`
	DeliveryCity string     `json:"delivery_city" validate:"max=100"`
	Requirements string     `json:"requirements" validate:"max=2000"`
}

// RespondRequest is a supplier's quote.
type RespondRequest struct {
	Message     string   `json:"message" validate:"required,max=2000"`
	QuotedPrice *float64 `json:"quoted_price" validate:"omitempty,gt=0"`
}

// CloseRequest ends a lead; Cancel selects cancelled over closed.
type CloseRequest struct {
	Cancel bool `json:"cancel"`
}

// Party selects which side of the leads the caller lists.
type Party string

const (
	PartyBuyer    Party = "buyer"
	PartySupplier Party = "supplier"
)

// ListFilter narrows lead listings.
type ListFilter struct {
	BuyerID    *uuid.UUID
	SupplierID *uuid.UUID
	Status     Status
	Page       int
	PerPage    int
}
