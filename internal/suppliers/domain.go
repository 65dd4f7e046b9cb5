// Package suppliers manages supplier business profiles, payout bank details
// and their moderation.
package suppliers

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status tracks business verification.
type Status string

const (
	StatusPending  Status = "pending"
	StatusVerified Status = "verified"
	StatusRejected Status = "rejected"
)

var gstinPattern = regexp.MustCompile(`^[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z][1-9A-Z]Z[0-9A-Z]$`)

// ValidGSTIN reports whether s has the 15 character GSTIN shape.
func ValidGSTIN(s string) bool {
	return gstinPattern.MatchString(s)
}

// Business is a supplier's storefront. One per supplier profile.
type Business struct {
	ID              uuid.UUID  `json:"id"`
	ProfileID       uuid.UUID  `json:"profile_id"`
	BusinessName    string     `json:"business_name"`
	BusinessType    string     `json:"business_type,omitempty"`
	GSTIN           string     `json:"gstin,omitempty"`
	Description     string     `json:"description,omitempty"`
	Phone           string     `json:"phone,omitempty"`
	Email           string     `json:"email,omitempty"`
	City            string     `json:"city,omitempty"`
	State           string     `json:"state,omitempty"`
	LogoURL         string     `json:"logo_url,omitempty"`
	Status          Status     `json:"status"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
	VerifiedAt      *time.Time `json:"verified_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// IsVerified reports whether the business passed moderation.
func (b *Business) IsVerified() bool {
	return b != nil && b.Status == StatusVerified
}

// BankStatus tracks payout account verification.
type BankStatus string

const (
	BankPending  BankStatus = "pending"
	BankVerified BankStatus = "verified"
	BankFailed   BankStatus = "failed"
)

// BankDetails is the payout account attached to a business.
type BankDetails struct {
	ID            uuid.UUID  `json:"id"`
	SupplierID    uuid.UUID  `json:"supplier_id"`
	AccountHolder string     `json:"account_holder"`
	AccountNumber string     `json:"account_number"`
	IFSC          string     `json:"ifsc"`
	BankName      string     `json:"bank_name"`
	Branch        string     `json:"branch"`
	Status        BankStatus `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Masked returns a copy whose account number only shows the last four digits.
func (d BankDetails) Masked() BankDetails {
	d.AccountNumber = MaskAccount(d.AccountNumber)
	return d
}

// MaskAccount hides all but the last four characters.
func MaskAccount(number string) string {
	if len(number) <= 4 {
		return strings.Repeat("X", len(number))
	}
	return strings.Repeat("X", len(number)-4) + number[len(number)-4:]
}

// CreateBusinessRequest is the payload for a new business.
type CreateBusinessRequest struct {
	BusinessName string `json:"business_name" validate:"required,max=200"`
	BusinessType string `json:"business_type" validate:"max=100"`
	GSTIN        string `json:"gstin" validate:"omitempty,len=15"`
	Description  string `json:"description" validate:"max=2000"`
	Phone        string `json:"phone" validate:"omitempty,numeric,len=10"`
	Email        string `json:"email" validate:"omitempty,email"`
	City         string `json:"city" validate:"max=100"`
	State        string `json:"state" validate:"max=100"`
	LogoURL      string `json:"logo_url" validate:"omitempty,url"`
}

// UpdateBusinessRequest carries optional business fields.
type UpdateBusinessRequest struct {
	BusinessName *string `json:"business_name" validate:"omitempty,min=1,max=200"`
	BusinessType *string `json:"business_type" validate:"omitempty,max=100"`
	GSTIN        *string `json:"gstin" validate:"omitempty,len=15"`
	Description  *string `json:"description" validate:"omitempty,max=2000"`
	Phone        *string `json:"phone" validate:"omitempty,numeric,len=10"`
	Email        *string `json:"email" validate:"omitempty,email"`
	City         *string `json:"city" validate:"omitempty,max=100"`
	State        *string `json:"state" validate:"omitempty,max=100"`
	LogoURL      *string `json:"logo_url" validate:"omitempty,url"`
}

// UpsertBankRequest is the payload for payout details.
type UpsertBankRequest struct {
	AccountHolder string `json:"account_holder" validate:"required,max=200"`
	AccountNumber string `json:"account_number" validate:"required,numeric,min=9,max=18"`
	IFSC          string `json:"ifsc" validate:"required,len=11"`
}

// ReviewRequest is an admin verification decision.
type ReviewRequest struct {
	Status Status `json:"status" validate:"required,oneof=verified rejected"`
	Reason string `json:"reason" validate:"max=500"`
}

// ListFilter narrows business listings.
type ListFilter struct {
	Search  string
	City    string
	Status  Status
	Page    int
	PerPage int
}
