// Package catalog manages supplier products with images, specifications and
// quantity based price tiers.
package catalog

import (
	"time"

	"github.com/google/uuid"
)

// Product is a catalog listing owned by a supplier business.
type Product struct {
	ID               uuid.UUID       `json:"id"`
	SupplierID       uuid.UUID       `json:"supplier_id"`
	SupplierName     string          `json:"supplier_name,omitempty"`
	SupplierVerified bool            `json:"supplier_verified"`
	Name             string          `json:"name"`
	Description      string          `json:"description,omitempty"`
	Category         string          `json:"category,omitempty"`
	Brand            string          `json:"brand,omitempty"`
	Unit             string          `json:"unit"`
	MOQ              int             `json:"moq"`
	BasePrice        float64         `json:"base_price"`
	Currency         string          `json:"currency"`
	Colors           []string        `json:"colors"`
	Sizes            []string        `json:"sizes"`
	IsActive         bool            `json:"is_active"`
	Images           []Image         `json:"images"`
	Specifications   []Specification `json:"specifications"`
	PriceTiers       []PriceTier     `json:"price_tiers"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// Image is an ordered product picture.
type Image struct {
	URL      string `json:"url" validate:"required,url"`
	Position int    `json:"position"`
}

// Specification is a name/value attribute.
type Specification struct {
	Name  string `json:"name" validate:"required,max=100"`
	Value string `json:"value" validate:"required,max=500"`
}

// PriceTier applies UnitPrice to quantities in [MinQty, MaxQty]. A nil MaxQty
// is open-ended.
type PriceTier struct {
	MinQty    int     `json:"min_qty" validate:"required,gt=0"`
	MaxQty    *int    `json:"max_qty,omitempty" validate:"omitempty,gt=0"`
	UnitPrice float64 `json:"unit_price" validate:"required,gt=0"`
}

// ProductInput is the full payload for creating or replacing a product.
type ProductInput struct {
	Name           string          `json:"name" validate:"required,max=200"`
	Description    string          `json:"description" validate:"max=5000"`
	Category       string          `json:"category" validate:"max=100"`
	Brand          string          `json:"brand" validate:"max=100"`
	Unit           string          `json:"unit" validate:"max=30"`
	MOQ            int             `json:"moq" validate:"gte=0"`
	BasePrice      float64         `json:"base_price" validate:"gte=0"`
	Currency       string          `json:"currency" validate:"omitempty,len=3"`
	Colors         []string        `json:"colors" validate:"max=30,dive,max=50"`
	Sizes          []string        `json:"sizes" validate:"max=30,dive,max=50"`
	Images         []string        `json:"images" validate:"max=10,dive,url"`
	Specifications []Specification `json:"specifications" validate:"max=50,dive"`
	PriceTiers     []PriceTier     `json:"price_tiers" validate:"max=20,dive"`
}

// StatusRequest toggles product visibility.
type StatusRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

// ListFilter narrows product listings.
type ListFilter struct {
	Search     string
	Category   string
	SupplierID *uuid.UUID
	PublicOnly bool
	Page       int
	PerPage    int
}
