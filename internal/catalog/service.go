package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/RohithAchar/oxm-sub002/internal/platform/httpx"
	"github.com/RohithAchar/oxm-sub002/internal/shared"
	"github.com/RohithAchar/oxm-sub002/internal/suppliers"
)

// Businesses resolves the supplier business of a profile.
type Businesses interface {
	ForProfile(ctx context.Context, profileID uuid.UUID) (*suppliers.Business, error)
}

// Service implements catalog use cases.
type Service struct {
	repo       Repository
	businesses Businesses
	audit      shared.Auditor
}

// NewService constructs a Service.
func NewService(repo Repository, businesses Businesses, audit shared.Auditor) *Service {
	return &Service{repo: repo, businesses: businesses, audit: audit}
}

// Create adds a product to the caller's business.
func (s *Service) Create(ctx context.Context, principal shared.Principal, in ProductInput) (*Product, error) {
	business, err := s.businesses.ForProfile(ctx, principal.ProfileID)
	if errors.Is(err, httpx.ErrNotFound) {
		return nil, fmt.Errorf("create your business first: %w", httpx.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	p, err := normalize(in)
	if err != nil {
		return nil, err
	}
	p.SupplierID = business.ID
	p.IsActive = true

	var id uuid.UUID
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var err error
		id, err = tx.CreateProduct(ctx, p)
		if err != nil {
			return err
		}
		return tx.InsertChildren(ctx, id, p.Images, p.Specifications, p.PriceTiers)
	})
	if err != nil {
		return nil, err
	}
	return s.repo.GetProduct(ctx, id)
}

// Update replaces an owned product and its child rows.
func (s *Service) Update(ctx context.Context, principal shared.Principal, id uuid.UUID, in ProductInput) (*Product, error) {
	current, err := s.owned(ctx, principal, id)
	if err != nil {
		return nil, err
	}
	p, err := normalize(in)
	if err != nil {
		return nil, err
	}
	p.ID = current.ID
	p.SupplierID = current.SupplierID

	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := tx.UpdateProduct(ctx, p); err != nil {
			return err
		}
		if err := tx.DeleteChildren(ctx, p.ID); err != nil {
			return err
		}
		return tx.InsertChildren(ctx, p.ID, p.Images, p.Specifications, p.PriceTiers)
	})
	if err != nil {
		return nil, err
	}
	return s.repo.GetProduct(ctx, id)
}

// Delete removes an owned product.
func (s *Service) Delete(ctx context.Context, principal shared.Principal, id uuid.UUID) error {
	if _, err := s.owned(ctx, principal, id); err != nil {
		return err
	}
	return s.repo.DeleteProduct(ctx, id)
}

// Mine lists the caller's products in any state.
func (s *Service) Mine(ctx context.Context, principal shared.Principal, filter ListFilter) (shared.Page[Product], error) {
	business, err := s.businesses.ForProfile(ctx, principal.ProfileID)
	if err != nil {
		return shared.Page[Product]{}, err
	}
	filter.SupplierID = &business.ID
	filter.PublicOnly = false
	return s.list(ctx, filter)
}

// PublicList lists active products of verified suppliers.
func (s *Service) PublicList(ctx context.Context, filter ListFilter) (shared.Page[Product], error) {
	filter.PublicOnly = true
	return s.list(ctx, filter)
}

func (s *Service) list(ctx context.Context, filter ListFilter) (shared.Page[Product], error) {
	items, total, err := s.repo.ListProducts(ctx, filter)
	if err != nil {
		return shared.Page[Product]{}, err
	}
	return shared.NewPage(items, filter.Page, filter.PerPage, total), nil
}

// PublicGet returns a product visible to buyers.
func (s *Service) PublicGet(ctx context.Context, id uuid.UUID) (*Product, error) {
	p, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.IsActive || !p.SupplierVerified {
		return nil, fmt.Errorf("product: %w", httpx.ErrNotFound)
	}
	return p, nil
}

// Get returns a product regardless of visibility.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Product, error) {
	return s.repo.GetProduct(ctx, id)
}

// SetStatus lets an admin hide or restore a product.
func (s *Service) SetStatus(ctx context.Context, actor shared.Principal, id uuid.UUID, active bool) (*Product, error) {
	if err := s.repo.SetProductActive(ctx, id, active); err != nil {
		return nil, err
	}
	if err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actor.ProfileID,
		Action:   "product.status",
		Entity:   "product",
		EntityID: id.String(),
		Meta:     map[string]any{"is_active": active},
	}); err != nil {
		return nil, fmt.Errorf("audit product status: %w", err)
	}
	return s.repo.GetProduct(ctx, id)
}

// owned loads a product and checks that the caller's business owns it.
func (s *Service) owned(ctx context.Context, principal shared.Principal, id uuid.UUID) (*Product, error) {
	p, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	business, err := s.businesses.ForProfile(ctx, principal.ProfileID)
	if errors.Is(err, httpx.ErrNotFound) {
		return nil, fmt.Errorf("product belongs to another supplier: %w", httpx.ErrForbidden)
	}
	if err != nil {
		return nil, err
	}
	if p.SupplierID != business.ID {
		return nil, fmt.Errorf("product belongs to another supplier: %w", httpx.ErrForbidden)
	}
	return p, nil
}

func normalize(in ProductInput) (Product, error) {
	p := Product{
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Category:    strings.TrimSpace(in.Category),
		Brand:       strings.TrimSpace(in.Brand),
		Unit:        strings.TrimSpace(in.Unit),
		MOQ:         in.MOQ,
		BasePrice:   in.BasePrice,
		Currency:    strings.ToUpper(strings.TrimSpace(in.Currency)),
		Colors:      cleanList(in.Colors),
		Sizes:       cleanList(in.Sizes),
	}
	if p.Name == "" {
		return Product{}, httpx.Invalid("name is required")
	}
	if p.Unit == "" {
		p.Unit = "piece"
	}
	if p.MOQ <= 0 {
		p.MOQ = 1
	}
	if p.Currency == "" {
		p.Currency = "INR"
	}
	if p.BasePrice < 0 {
		return Product{}, httpx.Invalid("base_price cannot be negative")
	}

	for i, url := range in.Images {
		url = strings.TrimSpace(url)
		if url == "" {
			continue
		}
		p.Images = append(p.Images, Image{URL: url, Position: i})
	}
	for _, spec := range in.Specifications {
		name, value := strings.TrimSpace(spec.Name), strings.TrimSpace(spec.Value)
		if name == "" || value == "" {
			return Product{}, httpx.Invalid("specifications need a name and value")
		}
		p.Specifications = append(p.Specifications, Specification{Name: name, Value: value})
	}

	p.PriceTiers = append([]PriceTier(nil), in.PriceTiers...)
	SortTiers(p.PriceTiers)
	if err := ValidateTiers(p.MOQ, p.PriceTiers); err != nil {
		return Product{}, err
	}
	return p, nil
}

func cleanList(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		key := strings.ToLower(v)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}
	return out
}
